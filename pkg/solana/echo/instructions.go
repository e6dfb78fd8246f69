package echo

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
	"github.com/harshasomisetty/solana-bootcamp/pkg/solana/binary"
)

const (
	// MessageInstructionHeaderSize is the discriminant plus the u32 length
	// prefix that precede the message in Echo and AuthorizedEcho.
	MessageInstructionHeaderSize = (1 + // discriminant
		4) // message length
)

// DecodedInstruction is the result of decoding raw instruction data. Exactly
// one of the argument fields is set, matching Type.
type DecodedInstruction struct {
	Type InstructionType

	Echo                     *EchoInstructionArgs
	InitializeAuthorizedEcho *InitializeAuthorizedEchoInstructionArgs
	AuthorizedEcho           *AuthorizedEchoInstructionArgs
}

// DecodeInstructionData dispatches on the discriminant and decodes the
// remaining bytes under that variant's layout only.
func DecodeInstructionData(data []byte) (*DecodedInstruction, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrInvalidInstructionData, "empty instruction data")
	}

	var err error
	decoded := &DecodedInstruction{Type: InstructionType(data[0])}

	switch decoded.Type {
	case InstructionTypeEcho:
		decoded.Echo, err = EchoInstructionFromBinary(data)
	case InstructionTypeInitializeAuthorizedEcho:
		decoded.InitializeAuthorizedEcho, err = InitializeAuthorizedEchoInstructionFromBinary(data)
	case InstructionTypeAuthorizedEcho:
		decoded.AuthorizedEcho, err = AuthorizedEchoInstructionFromBinary(data)
	default:
		return nil, errors.Wrapf(ErrUnknownInstruction, "discriminant %d", data[0])
	}
	if err != nil {
		return nil, err
	}

	return decoded, nil
}

func encodeMessageInstruction(t InstructionType, message []byte) ([]byte, error) {
	if err := checkLength(t.String()+" message", len(message), messageLengthMax); err != nil {
		return nil, err
	}

	var offset int
	data := make([]byte, MessageInstructionHeaderSize+len(message))

	putInstructionType(data[offset:], t, &offset)
	binary.PutUint32(data[offset:], uint32(len(message)), &offset)
	binary.PutBytes(data[offset:], message, &offset)

	return data, nil
}

func decodeMessageInstruction(t InstructionType, data []byte) ([]byte, error) {
	if len(data) < MessageInstructionHeaderSize {
		return nil, errors.Wrapf(ErrInvalidInstructionData, "%s: %d bytes is shorter than the header", t, len(data))
	}

	var offset int
	var actual InstructionType
	getInstructionType(data[offset:], &actual, &offset)
	if actual != t {
		return nil, errors.Wrapf(ErrInvalidInstructionData, "%s: unexpected discriminant %d", t, uint8(actual))
	}

	var length uint32
	binary.GetUint32(data[offset:], &length, &offset)
	if uint64(len(data)-offset) != uint64(length) {
		return nil, errors.Wrapf(ErrInvalidInstructionData, "%s: declared length %d, found %d bytes", t, length, len(data)-offset)
	}

	var message []byte
	binary.GetBytes(data[offset:], int(length), &message, &offset)
	return message, nil
}

func getCompiledInstruction(m solana.Message, index int, program ed25519.PublicKey, t InstructionType) (*solana.CompiledInstruction, error) {
	if index < 0 || index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if int(i.ProgramIndex) >= len(m.Accounts) || !bytes.Equal(m.Accounts[i.ProgramIndex], program) {
		return nil, solana.ErrIncorrectProgram
	}
	if len(i.Data) == 0 || InstructionType(i.Data[0]) != t {
		return nil, solana.ErrIncorrectInstruction
	}

	for _, accountIndex := range i.Accounts {
		if int(accountIndex) >= len(m.Accounts) {
			return nil, errors.Errorf("account index out of range: %d", accountIndex)
		}
	}

	return &i, nil
}
