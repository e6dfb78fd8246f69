// Package echo contains bindings for the echo program: address derivation for
// authorized buffers, instruction encoding and decoding, and buffer account
// state.
//
// The program id is deployment specific, so every constructor takes it from
// its accounts argument rather than from a package level constant.
package echo

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

var (
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
	ErrUnknownInstruction     = errors.New("unknown instruction")
	ErrMessageTooLarge        = errors.New("message too large")
)

// MessageTooLargeError is returned when a length does not fit the fixed-width
// field it is encoded into. Nothing is ever truncated.
type MessageTooLargeError struct {
	Field  string
	Length uint64
	Max    uint64
}

func (e *MessageTooLargeError) Error() string {
	return fmt.Sprintf("%s: length %d exceeds maximum of %d", e.Field, e.Length, e.Max)
}

func (e *MessageTooLargeError) Unwrap() error {
	return ErrMessageTooLarge
}

func checkLength(field string, length int, max uint64) error {
	if length < 0 || uint64(length) > max {
		return &MessageTooLargeError{
			Field:  field,
			Length: uint64(length),
			Max:    max,
		}
	}
	return nil
}

const (
	// messageLengthMax is the largest message a u32 length prefix can describe.
	messageLengthMax = math.MaxUint32
)
