package main

import (
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
)

func TestExplorerLink(t *testing.T) {
	var sig solana.Signature
	sig[0] = 1

	assert.Equal(t, "https://explorer.solana.com/tx/"+sig.String()+"?cluster=devnet", explorerLink(sig, "devnet"))
	assert.Equal(t, "https://explorer.solana.com/tx/"+sig.String(), explorerLink(sig, "mainnet-beta"))
	assert.Equal(t, "https://explorer.solana.com/tx/"+sig.String(), explorerLink(sig, ""))
}

func TestLoadKeypair(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	ints := make([]int, len(priv))
	for i, b := range priv {
		ints[i] = int(b)
	}
	encoded, err := json.Marshal(ints)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, encoded, 0600))

	loaded, err := loadKeypair(path)
	require.NoError(t, err)
	assert.Equal(t, priv, loaded)

	_, err = loadKeypair(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	parsed, err := parseAddress(base58.Encode(pub))
	require.NoError(t, err)
	assert.Equal(t, pub, parsed)

	_, err = parseAddress("not-an-address")
	assert.Error(t, err)
}

func TestGenerateKeypair(t *testing.T) {
	key, err := generateKeypair()
	require.NoError(t, err)
	assert.Len(t, key, ed25519.PrivateKeySize)
}
