// Package shortvec implements the compact-u16 length prefix used for every
// array in the transaction wire format: 7 bits per byte, high bit set while
// more bytes follow, at most 3 bytes.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

const maxEncodedSize = 3

// EncodeLen writes length as a compact-u16. Lengths outside [0, MaxUint16]
// are rejected.
func EncodeLen(w io.Writer, length int) (n int, err error) {
	if length < 0 || length > math.MaxUint16 {
		return 0, errors.Errorf("len %d outside [0, %d]", length, math.MaxUint16)
	}

	var encoded [maxEncodedSize]byte
	size := 0
	for {
		encoded[size] = byte(length & 0x7f)
		length >>= 7
		if length == 0 {
			size++
			break
		}
		encoded[size] |= 0x80
		size++
	}

	return w.Write(encoded[:size])
}

// DecodeLen reads a compact-u16 length.
func DecodeLen(r io.Reader) (int, error) {
	var val int
	var b [1]byte

	for size := 0; ; size++ {
		if size == maxEncodedSize {
			return 0, errors.Errorf("invalid size: more than %d bytes", maxEncodedSize)
		}
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}

		val |= int(b[0]&0x7f) << (size * 7)
		if b[0]&0x80 == 0 {
			return val, nil
		}
	}
}
