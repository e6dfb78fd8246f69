package echo

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
)

type EchoInstructionArgs struct {
	Data []byte
}

type EchoInstructionAccounts struct {
	Program ed25519.PublicKey
	Buffer  ed25519.PublicKey
}

// NewEchoInstruction copies the message into a pre-allocated buffer account.
//
// Data layout: u8 0 | u32 LE length | message
func NewEchoInstruction(
	accounts *EchoInstructionAccounts,
	args *EchoInstructionArgs,
) (solana.Instruction, error) {
	data, err := encodeMessageInstruction(InstructionTypeEcho, args.Data)
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
				PublicKey:  accounts.Buffer,
				IsWritable: true,
				IsSigner:   false,
			},
		},
	}, nil
}

func EchoInstructionFromBinary(data []byte) (*EchoInstructionArgs, error) {
	message, err := decodeMessageInstruction(InstructionTypeEcho, data)
	if err != nil {
		return nil, err
	}
	return &EchoInstructionArgs{Data: message}, nil
}

func DecompileEcho(m solana.Message, index int, program ed25519.PublicKey) (*EchoInstructionAccounts, *EchoInstructionArgs, error) {
	i, err := getCompiledInstruction(m, index, program, InstructionTypeEcho)
	if err != nil {
		return nil, nil, err
	}

	if len(i.Accounts) != 1 {
		return nil, nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}

	args, err := EchoInstructionFromBinary(i.Data)
	if err != nil {
		return nil, nil, err
	}

	return &EchoInstructionAccounts{
		Program: program,
		Buffer:  m.Accounts[i.Accounts[0]],
	}, args, nil
}
