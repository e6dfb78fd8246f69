package echo

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
)

// Transaction is an unsigned transaction together with the private keys
// required to sign it. It is immutable once built and may be submitted from
// multiple goroutines.
type Transaction struct {
	txn     solana.Transaction
	signers []ed25519.PrivateKey
}

// NewTransaction compiles the instructions, in order, into a transaction paid
// for by feePayer. Every account an instruction marks as a signer, and the fee
// payer, must have a private key in signers. Signers that the transaction does
// not reference are ignored.
func NewTransaction(feePayer ed25519.PublicKey, signers []ed25519.PrivateKey, instructions ...solana.Instruction) (*Transaction, error) {
	if len(instructions) == 0 {
		return nil, ErrNoInstructions
	}
	if len(feePayer) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid fee payer key length: %d", len(feePayer))
	}

	keys := make(map[string]ed25519.PrivateKey, len(signers))
	for _, s := range signers {
		if len(s) != ed25519.PrivateKeySize {
			return nil, errors.Errorf("invalid signer key length: %d", len(s))
		}
		keys[string(s.Public().(ed25519.PublicKey))] = s
	}

	if _, ok := keys[string(feePayer)]; !ok {
		return nil, &MissingSignerError{Account: feePayer, InstructionIndex: -1}
	}
	for i, ixn := range instructions {
		for _, account := range ixn.Accounts {
			if !account.IsSigner {
				continue
			}
			if _, ok := keys[string(account.PublicKey)]; !ok {
				return nil, &MissingSignerError{Account: account.PublicKey, InstructionIndex: i}
			}
		}
	}

	txn := solana.NewTransaction(feePayer, instructions...)
	if size := len(txn.Marshal()); size > solana.MaxTransactionSize {
		return nil, errors.Wrapf(ErrTransactionTooLarge, "%d bytes exceeds the limit of %d", size, solana.MaxTransactionSize)
	}

	required := txn.RequiredSigners()
	ordered := make([]ed25519.PrivateKey, len(required))
	for i, pub := range required {
		ordered[i] = keys[string(pub)]
	}

	return &Transaction{
		txn:     txn,
		signers: ordered,
	}, nil
}

// FeePayer returns the account paying for the transaction.
func (t *Transaction) FeePayer() ed25519.PublicKey {
	return t.txn.Message.Accounts[0]
}

// RequiredSigners returns the accounts that will sign, in signature order.
func (t *Transaction) RequiredSigners() []ed25519.PublicKey {
	return t.txn.RequiredSigners()
}

// Message returns the compiled, unsigned message.
func (t *Transaction) Message() solana.Message {
	return t.txn.Message
}

// sign returns a signed copy of the transaction bound to the blockhash. The
// receiver is left untouched.
func (t *Transaction) sign(blockhash solana.Blockhash) (solana.Transaction, error) {
	signed := solana.Transaction{
		Signatures: make([]solana.Signature, len(t.txn.Signatures)),
		Message:    t.txn.Message,
	}
	signed.SetBlockhash(blockhash)

	if err := signed.Sign(t.signers...); err != nil {
		return solana.Transaction{}, errors.Wrap(err, "failed to sign transaction")
	}
	return signed, nil
}
