package echo

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
	echoprogram "github.com/harshasomisetty/solana-bootcamp/pkg/solana/echo"
	"github.com/harshasomisetty/solana-bootcamp/pkg/testutil"
)

func newEchoInstruction(t *testing.T, program, buffer ed25519.PublicKey, message string) solana.Instruction {
	ixn, err := echoprogram.NewEchoInstruction(
		&echoprogram.EchoInstructionAccounts{Program: program, Buffer: buffer},
		&echoprogram.EchoInstructionArgs{Data: []byte(message)},
	)
	require.NoError(t, err)
	return ixn
}

func newAuthorizedEchoInstruction(t *testing.T, program, authority ed25519.PublicKey, message string) solana.Instruction {
	address, _, err := echoprogram.GetAuthorizedBufferAddress(&echoprogram.GetAuthorizedBufferAddressArgs{
		Program:    program,
		Authority:  authority,
		BufferSeed: 1,
	})
	require.NoError(t, err)

	ixn, err := echoprogram.NewAuthorizedEchoInstruction(
		&echoprogram.AuthorizedEchoInstructionAccounts{Program: program, AuthorizedBuffer: address, Authority: authority},
		&echoprogram.AuthorizedEchoInstructionArgs{Data: []byte(message)},
	)
	require.NoError(t, err)
	return ixn
}

func TestNewTransaction_MissingSigner(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)
	program, buffer := keys[0], keys[1]
	payer := testutil.GenerateSolanaKeypair(t)
	authority := testutil.GenerateSolanaKeypair(t)
	authorityPub := authority.Public().(ed25519.PublicKey)

	_, err := NewTransaction(
		payer.Public().(ed25519.PublicKey),
		[]ed25519.PrivateKey{payer},
		newEchoInstruction(t, program, buffer, "hello"),
		newAuthorizedEchoInstruction(t, program, authorityPub, "hello"),
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingSigner))

	var missing *MissingSignerError
	require.True(t, errors.As(err, &missing))
	assert.EqualValues(t, authorityPub, missing.Account)
	assert.Equal(t, 1, missing.InstructionIndex)

	// Supplying the authority resolves it.
	_, err = NewTransaction(
		payer.Public().(ed25519.PublicKey),
		[]ed25519.PrivateKey{payer, authority},
		newEchoInstruction(t, program, buffer, "hello"),
		newAuthorizedEchoInstruction(t, program, authorityPub, "hello"),
	)
	require.NoError(t, err)
}

func TestNewTransaction_MissingFeePayer(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)

	_, err := NewTransaction(keys[0], nil, newEchoInstruction(t, keys[1], keys[2], "hello"))
	require.Error(t, err)

	var missing *MissingSignerError
	require.True(t, errors.As(err, &missing))
	assert.EqualValues(t, keys[0], missing.Account)
	assert.Equal(t, -1, missing.InstructionIndex)
}

func TestNewTransaction_NoInstructions(t *testing.T) {
	payer := testutil.GenerateSolanaKeypair(t)

	_, err := NewTransaction(payer.Public().(ed25519.PublicKey), []ed25519.PrivateKey{payer})
	assert.Equal(t, ErrNoInstructions, err)
}

func TestNewTransaction_TooLarge(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)
	payer := testutil.GenerateSolanaKeypair(t)

	_, err := NewTransaction(
		payer.Public().(ed25519.PublicKey),
		[]ed25519.PrivateKey{payer},
		newEchoInstruction(t, keys[0], keys[1], string(make([]byte, solana.MaxTransactionSize))),
	)
	assert.True(t, errors.Is(err, ErrTransactionTooLarge))
}

func TestNewTransaction_UnusedAndDuplicateSigners(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 1)
	program := keys[0]
	payer := testutil.GenerateSolanaKeypair(t)
	authority := testutil.GenerateSolanaKeypair(t)
	unused := testutil.GenerateSolanaKeypair(t)

	txn, err := NewTransaction(
		payer.Public().(ed25519.PublicKey),
		[]ed25519.PrivateKey{unused, authority, payer, authority, payer},
		newAuthorizedEchoInstruction(t, program, authority.Public().(ed25519.PublicKey), "hello"),
	)
	require.NoError(t, err)

	signers := txn.RequiredSigners()
	require.Len(t, signers, 2)
	assert.EqualValues(t, payer.Public(), signers[0])
	assert.EqualValues(t, authority.Public(), signers[1])
	assert.EqualValues(t, payer.Public(), txn.FeePayer())
}

func TestNewTransaction_InstructionOrder(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)
	program, buffer := keys[0], keys[1]
	payer := testutil.GenerateSolanaKeypair(t)

	first := newEchoInstruction(t, program, buffer, "first")
	second := newEchoInstruction(t, program, buffer, "second")

	forward, err := NewTransaction(payer.Public().(ed25519.PublicKey), []ed25519.PrivateKey{payer}, first, second)
	require.NoError(t, err)
	reversed, err := NewTransaction(payer.Public().(ed25519.PublicKey), []ed25519.PrivateKey{payer}, second, first)
	require.NoError(t, err)

	assert.Equal(t, first.Data, forward.Message().Instructions[0].Data)
	assert.Equal(t, second.Data, forward.Message().Instructions[1].Data)
	assert.Equal(t, second.Data, reversed.Message().Instructions[0].Data)
	assert.Equal(t, first.Data, reversed.Message().Instructions[1].Data)
	assert.NotEqual(t, forward.Message().Marshal(), reversed.Message().Marshal())
}

func TestTransaction_Sign(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 1)
	payer := testutil.GenerateSolanaKeypair(t)
	authority := testutil.GenerateSolanaKeypair(t)

	txn, err := NewTransaction(
		payer.Public().(ed25519.PublicKey),
		[]ed25519.PrivateKey{payer, authority},
		newAuthorizedEchoInstruction(t, keys[0], authority.Public().(ed25519.PublicKey), "hello"),
	)
	require.NoError(t, err)

	var blockhash solana.Blockhash
	blockhash[0] = 1

	signed, err := txn.sign(blockhash)
	require.NoError(t, err)
	assert.True(t, signed.IsSigned())
	assert.Equal(t, blockhash, signed.Message.RecentBlockhash)

	message := signed.Message.Marshal()
	for i, sig := range signed.Signatures {
		assert.True(t, ed25519.Verify(signed.Message.Accounts[i], message, sig[:]))
	}

	// The built transaction is reusable and never mutated by signing.
	assert.Equal(t, solana.Blockhash{}, txn.Message().RecentBlockhash)
	for _, sig := range txn.txn.Signatures {
		assert.Equal(t, solana.Signature{}, sig)
	}

	blockhash[0] = 2
	resigned, err := txn.sign(blockhash)
	require.NoError(t, err)
	assert.False(t, bytes.Equal(signed.Signatures[0][:], resigned.Signatures[0][:]))
}
