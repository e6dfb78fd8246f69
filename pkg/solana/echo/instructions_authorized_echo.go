package echo

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
)

type AuthorizedEchoInstructionArgs struct {
	Data []byte
}

type AuthorizedEchoInstructionAccounts struct {
	Program          ed25519.PublicKey
	AuthorizedBuffer ed25519.PublicKey
	Authority        ed25519.PublicKey
}

// NewAuthorizedEchoInstruction writes the message into an authorized buffer
// after its header. The authority must sign.
//
// Data layout: u8 2 | u32 LE length | message
func NewAuthorizedEchoInstruction(
	accounts *AuthorizedEchoInstructionAccounts,
	args *AuthorizedEchoInstructionArgs,
) (solana.Instruction, error) {
	data, err := encodeMessageInstruction(InstructionTypeAuthorizedEcho, args.Data)
	if err != nil {
		return solana.Instruction{}, err
	}

	return solana.Instruction{
		Program: accounts.Program,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.AuthorizedBuffer,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Authority,
				IsWritable: false,
				IsSigner:   true,
			},
		},
	}, nil
}

func AuthorizedEchoInstructionFromBinary(data []byte) (*AuthorizedEchoInstructionArgs, error) {
	message, err := decodeMessageInstruction(InstructionTypeAuthorizedEcho, data)
	if err != nil {
		return nil, err
	}
	return &AuthorizedEchoInstructionArgs{Data: message}, nil
}

func DecompileAuthorizedEcho(m solana.Message, index int, program ed25519.PublicKey) (*AuthorizedEchoInstructionAccounts, *AuthorizedEchoInstructionArgs, error) {
	i, err := getCompiledInstruction(m, index, program, InstructionTypeAuthorizedEcho)
	if err != nil {
		return nil, nil, err
	}

	if len(i.Accounts) != 2 {
		return nil, nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}

	args, err := AuthorizedEchoInstructionFromBinary(i.Data)
	if err != nil {
		return nil, nil, err
	}

	return &AuthorizedEchoInstructionAccounts{
		Program:          program,
		AuthorizedBuffer: m.Accounts[i.Accounts[0]],
		Authority:        m.Accounts[i.Accounts[1]],
	}, args, nil
}
