package echo

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"math"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
	"github.com/harshasomisetty/solana-bootcamp/pkg/solana/binary"
)

const (
	// AuthorizedBufferHeaderSize is the program's fixed overhead at the start
	// of every authorized buffer. A buffer that holds a message of n bytes must
	// be initialized with a size of n + AuthorizedBufferHeaderSize.
	AuthorizedBufferHeaderSize = (1 + // bump_seed
		8) // buffer_seed
)

// AuthorizedBufferSize returns the account size to request when initializing
// a buffer for messages of up to maxMessageLength bytes.
func AuthorizedBufferSize(maxMessageLength uint64) (uint64, error) {
	if maxMessageLength > math.MaxUint64-AuthorizedBufferHeaderSize {
		return 0, &MessageTooLargeError{
			Field:  "buffer_size",
			Length: maxMessageLength,
			Max:    math.MaxUint64 - AuthorizedBufferHeaderSize,
		}
	}
	return maxMessageLength + AuthorizedBufferHeaderSize, nil
}

type AuthorizedBuffer struct {
	BumpSeed   uint8
	BufferSeed uint64
	Data       []byte
}

func (obj *AuthorizedBuffer) Unmarshal(data []byte) error {
	if len(data) < AuthorizedBufferHeaderSize {
		return ErrInvalidAccountData
	}

	var offset int

	binary.GetUint8(data[offset:], &obj.BumpSeed, &offset)
	binary.GetUint64(data[offset:], &obj.BufferSeed, &offset)
	binary.GetBytes(data[offset:], len(data)-offset, &obj.Data, &offset)

	return nil
}

// Payload returns the message region with trailing zero padding removed. The
// program zero fills the region on every write, so a message that itself ends
// in zero bytes loses them here; use Message when the length is known.
func (obj *AuthorizedBuffer) Payload() []byte {
	return bytes.TrimRight(obj.Data, "\x00")
}

// Message returns the first length bytes of the message region, or the whole
// region when it is shorter.
func (obj *AuthorizedBuffer) Message(length int) []byte {
	if length < 0 || length > len(obj.Data) {
		return obj.Data
	}
	return obj.Data[:length]
}

func (obj *AuthorizedBuffer) String() string {
	return fmt.Sprintf(
		"AuthorizedBuffer{bump_seed=%d,buffer_seed=%d,data=%s}",
		obj.BumpSeed,
		obj.BufferSeed,
		base58.Encode(obj.Data),
	)
}

// AuthorizedBufferFromAccountInfo decodes an authorized buffer, verifying that
// the account is owned by the program.
func AuthorizedBufferFromAccountInfo(program ed25519.PublicKey, info solana.AccountInfo) (*AuthorizedBuffer, error) {
	if !bytes.Equal(info.Owner, program) {
		return nil, errors.Wrapf(ErrInvalidAccountData, "account owned by %s", base58.Encode(info.Owner))
	}

	var obj AuthorizedBuffer
	if err := obj.Unmarshal(info.Data); err != nil {
		return nil, err
	}
	return &obj, nil
}
