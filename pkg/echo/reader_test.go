package echo

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
	echoprogram "github.com/harshasomisetty/solana-bootcamp/pkg/solana/echo"
	"github.com/harshasomisetty/solana-bootcamp/pkg/testutil"
)

func TestReader_ReadBack(t *testing.T) {
	ledger := newMemoryLedger(t)
	reader := NewReader(ledger)
	address := testutil.GenerateSolanaKeys(t, 1)[0]

	_, err := reader.ReadBack(context.Background(), address, solana.CommitmentConfirmed)
	require.Error(t, err)

	var notFound *AccountNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.EqualValues(t, address, notFound.Address)
	assert.Equal(t, solana.CommitmentConfirmed, notFound.Commitment)

	ledger.accounts[string(address)] = solana.AccountInfo{Data: []byte("hello"), Owner: ledger.program}
	data, err := reader.ReadBack(context.Background(), address, solana.CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = reader.ReadBack(ctx, address, solana.CommitmentConfirmed)
	assert.Equal(t, context.Canceled, err)
}

func TestReader_ReadAuthorizedBuffer(t *testing.T) {
	ledger := newMemoryLedger(t)
	reader := NewReader(ledger)
	address := testutil.GenerateSolanaKeys(t, 1)[0]

	data := []byte{254, 7, 0, 0, 0, 0, 0, 0, 0, 'h', 'i', 0, 0}
	ledger.accounts[string(address)] = solana.AccountInfo{Data: data, Owner: ledger.program}

	buffer, err := reader.ReadAuthorizedBuffer(context.Background(), ledger.program, address, solana.CommitmentConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, 254, buffer.BumpSeed)
	assert.EqualValues(t, 7, buffer.BufferSeed)
	assert.Equal(t, []byte{'h', 'i', 0, 0}, buffer.Data)
	assert.Equal(t, []byte("hi"), buffer.Payload())

	// Accounts owned by another program are not decoded.
	other := testutil.GenerateSolanaKeys(t, 1)[0]
	_, err = reader.ReadAuthorizedBuffer(context.Background(), other, address, solana.CommitmentConfirmed)
	assert.True(t, errors.Is(err, echoprogram.ErrInvalidAccountData))

	// Too short for the header.
	ledger.accounts[string(address)] = solana.AccountInfo{Data: data[:4], Owner: ledger.program}
	_, err = reader.ReadAuthorizedBuffer(context.Background(), ledger.program, address, solana.CommitmentConfirmed)
	assert.True(t, errors.Is(err, echoprogram.ErrInvalidAccountData))
}

func TestVerifyEcho(t *testing.T) {
	for _, tc := range []struct {
		name     string
		expected []byte
		actual   []byte
		ok       bool
	}{
		{"exact", []byte("hello"), []byte("hello"), true},
		{"zero padded", []byte("hello"), []byte("hello\x00\x00"), true},
		{"empty", nil, []byte{0, 0}, true},
		{"short", []byte("hello"), []byte("hell"), false},
		{"different", []byte("hello"), []byte("jello"), false},
		{"trailing data", []byte("hello"), []byte("hello!"), false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := VerifyEcho(tc.expected, tc.actual)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrEchoMismatch))
			}
		})
	}
}
