package echo

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
)

var (
	authorityPrefix = []byte("authority")
)

type GetAuthorizedBufferAddressArgs struct {
	Program    ed25519.PublicKey
	Authority  ed25519.PublicKey
	BufferSeed uint64
}

// GetAuthorizedBufferAddress derives the program owned buffer for an authority
// and seed. The same arguments always produce the same address and bump.
func GetAuthorizedBufferAddress(args *GetAuthorizedBufferAddressArgs) (ed25519.PublicKey, uint8, error) {
	address, bump, err := solana.FindProgramAddressAndBump(
		args.Program,
		authorityPrefix,
		args.Authority,
		EncodeBufferSeed(args.BufferSeed),
	)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "cannot derive authorized buffer for authority %s seed %d", base58.Encode(args.Authority), args.BufferSeed)
	}
	return address, bump, nil
}

// EncodeBufferSeed returns the 8 byte little-endian form of a buffer seed, as
// used both in address derivation and in instruction data.
func EncodeBufferSeed(seed uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, seed)
	return b
}
