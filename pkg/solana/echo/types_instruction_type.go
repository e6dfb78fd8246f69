package echo

import (
	"github.com/harshasomisetty/solana-bootcamp/pkg/solana/binary"
)

// InstructionType is the single byte discriminant that prefixes every
// instruction's data.
type InstructionType uint8

const (
	InstructionTypeEcho InstructionType = iota
	InstructionTypeInitializeAuthorizedEcho
	InstructionTypeAuthorizedEcho
)

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeEcho:
		return "echo"
	case InstructionTypeInitializeAuthorizedEcho:
		return "initialize_authorized_echo"
	case InstructionTypeAuthorizedEcho:
		return "authorized_echo"
	}
	return "unknown"
}

func putInstructionType(dst []byte, v InstructionType, offset *int) {
	binary.PutUint8(dst, uint8(v), offset)
}

func getInstructionType(src []byte, dst *InstructionType, offset *int) {
	var v uint8
	binary.GetUint8(src, &v, offset)
	*dst = InstructionType(v)
}
