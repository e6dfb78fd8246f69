package system

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
)

// SystemAccount is the address of the system program, which owns every
// newly created account until it is assigned.
//
// https://explorer.solana.com/address/11111111111111111111111111111111
var SystemAccount ed25519.PublicKey

func init() {
	var err error

	SystemAccount, err = base58.Decode("11111111111111111111111111111111")
	if err != nil {
		panic(err)
	}
}
