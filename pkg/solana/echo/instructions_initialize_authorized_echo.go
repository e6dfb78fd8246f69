package echo

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
	"github.com/harshasomisetty/solana-bootcamp/pkg/solana/binary"
	"github.com/harshasomisetty/solana-bootcamp/pkg/solana/system"
)

const (
	InitializeAuthorizedEchoInstructionArgsSize = (8 + // buffer_seed
		8) // buffer_size

	InitializeAuthorizedEchoInstructionSize = (1 + // discriminant
		InitializeAuthorizedEchoInstructionArgsSize)
)

type InitializeAuthorizedEchoInstructionArgs struct {
	BufferSeed uint64

	// BufferSize is the full account size, including AuthorizedBufferHeaderSize.
	BufferSize uint64
}

type InitializeAuthorizedEchoInstructionAccounts struct {
	Program          ed25519.PublicKey
	AuthorizedBuffer ed25519.PublicKey
	Authority        ed25519.PublicKey
}

// NewInitializeAuthorizedEchoInstruction creates the authorized buffer derived
// from the authority and seed. The authority must sign.
//
// Data layout: u8 1 | u64 LE buffer_seed | u64 LE buffer_size
func NewInitializeAuthorizedEchoInstruction(
	accounts *InitializeAuthorizedEchoInstructionAccounts,
	args *InitializeAuthorizedEchoInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, InitializeAuthorizedEchoInstructionSize)

	putInstructionType(data[offset:], InstructionTypeInitializeAuthorizedEcho, &offset)
	binary.PutUint64(data[offset:], args.BufferSeed, &offset)
	binary.PutUint64(data[offset:], args.BufferSize, &offset)

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
			{
				PublicKey:  system.SystemAccount,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func InitializeAuthorizedEchoInstructionFromBinary(data []byte) (*InitializeAuthorizedEchoInstructionArgs, error) {
	if len(data) != InitializeAuthorizedEchoInstructionSize {
		return nil, errors.Wrapf(ErrInvalidInstructionData, "%s: expected %d bytes, found %d", InstructionTypeInitializeAuthorizedEcho, InitializeAuthorizedEchoInstructionSize, len(data))
	}

	var offset int
	var t InstructionType
	getInstructionType(data[offset:], &t, &offset)
	if t != InstructionTypeInitializeAuthorizedEcho {
		return nil, errors.Wrapf(ErrInvalidInstructionData, "%s: unexpected discriminant %d", InstructionTypeInitializeAuthorizedEcho, uint8(t))
	}

	var args InitializeAuthorizedEchoInstructionArgs
	binary.GetUint64(data[offset:], &args.BufferSeed, &offset)
	binary.GetUint64(data[offset:], &args.BufferSize, &offset)

	return &args, nil
}

func DecompileInitializeAuthorizedEcho(m solana.Message, index int, program ed25519.PublicKey) (*InitializeAuthorizedEchoInstructionAccounts, *InitializeAuthorizedEchoInstructionArgs, error) {
	i, err := getCompiledInstruction(m, index, program, InstructionTypeInitializeAuthorizedEcho)
	if err != nil {
		return nil, nil, err
	}

	if len(i.Accounts) != 3 {
		return nil, nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}

	args, err := InitializeAuthorizedEchoInstructionFromBinary(i.Data)
	if err != nil {
		return nil, nil, err
	}

	return &InitializeAuthorizedEchoInstructionAccounts{
		Program:          program,
		AuthorizedBuffer: m.Accounts[i.Accounts[0]],
		Authority:        m.Accounts[i.Accounts[1]],
	}, args, nil
}
