package main

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"strings"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// loadKeypair reads a solana-keygen JSON keypair file.
func loadKeypair(path string) (ed25519.PrivateKey, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve home directory")
		}
		path = filepath.Join(home, path[2:])
	}

	key, err := solanago.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load keypair from %s", path)
	}
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("invalid keypair length in %s: %d", path, len(key))
	}
	return ed25519.PrivateKey(key), nil
}

func generateKeypair() (ed25519.PrivateKey, error) {
	key, err := solanago.NewRandomPrivateKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate keypair")
	}
	return ed25519.PrivateKey(key), nil
}

// parseAddress decodes a base58 account address.
func parseAddress(s string) (ed25519.PublicKey, error) {
	pub, err := solanago.PublicKeyFromBase58(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid address %q", s)
	}
	return ed25519.PublicKey(pub.Bytes()), nil
}
