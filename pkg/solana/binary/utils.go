// Package binary contains fixed-width little-endian helpers for reading and
// writing program data at an explicit offset.
//
// Each helper writes to (or reads from) the start of the provided slice and
// advances offset by the number of bytes consumed. Callers pass
// data[offset:] so the slice and offset stay in step.
package binary

import (
	"crypto/ed25519"
	"encoding/binary"
)

func PutKey32(dst []byte, src []byte, offset *int) {
	copy(dst, src)
	*offset += ed25519.PublicKeySize
}

func PutUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst, v)
	*offset += 8
}

func PutUint32(dst []byte, v uint32, offset *int) {
	binary.LittleEndian.PutUint32(dst, v)
	*offset += 4
}

func PutUint8(dst []byte, v uint8, offset *int) {
	dst[0] = v
	*offset += 1
}

// PutBytes copies src verbatim without a length prefix.
func PutBytes(dst []byte, src []byte, offset *int) {
	copy(dst, src)
	*offset += len(src)
}

func GetKey32(src []byte, dst *ed25519.PublicKey, offset *int) {
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src)
	*offset += ed25519.PublicKeySize
}

func GetUint64(src []byte, dst *uint64, offset *int) {
	*dst = binary.LittleEndian.Uint64(src)
	*offset += 8
}

func GetUint32(src []byte, dst *uint32, offset *int) {
	*dst = binary.LittleEndian.Uint32(src)
	*offset += 4
}

func GetUint8(src []byte, dst *uint8, offset *int) {
	*dst = src[0]
	*offset += 1
}

// GetBytes copies the first n bytes of src into a new slice.
func GetBytes(src []byte, n int, dst *[]byte, offset *int) {
	*dst = make([]byte, n)
	copy(*dst, src[:n])
	*offset += n
}
