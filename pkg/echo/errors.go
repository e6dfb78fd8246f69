package echo

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
)

var (
	ErrMissingSigner       = errors.New("missing signer")
	ErrNoInstructions      = errors.New("transaction has no instructions")
	ErrTransactionTooLarge = errors.New("transaction too large")
	ErrRemoteRejected      = errors.New("transaction rejected by ledger")
	ErrSubmissionTimeout   = errors.New("transaction confirmation timed out")
	ErrAccountNotFound     = errors.New("account not found")
	ErrEchoMismatch        = errors.New("echoed data does not match")
)

// MissingSignerError is returned when an account that must sign has no
// private key among the provided signers. InstructionIndex is -1 for the fee
// payer.
type MissingSignerError struct {
	Account          ed25519.PublicKey
	InstructionIndex int
}

func (e *MissingSignerError) Error() string {
	if e.InstructionIndex < 0 {
		return fmt.Sprintf("missing signer for fee payer %s", base58.Encode(e.Account))
	}
	return fmt.Sprintf("missing signer for account %s in instruction %d", base58.Encode(e.Account), e.InstructionIndex)
}

func (e *MissingSignerError) Unwrap() error {
	return ErrMissingSigner
}

// RemoteRejectedError is returned when the ledger refuses a transaction, either
// during preflight simulation or on-chain execution. Reason and Raw are the
// ledger's error, unmodified.
type RemoteRejectedError struct {
	Signature solana.Signature
	Reason    string
	Raw       interface{}
	Logs      []string

	// InstructionIndex is the failing instruction, or -1 when the failure is
	// not attributed to an instruction.
	InstructionIndex int
}

func newRemoteRejectedError(sig solana.Signature, txErr *solana.TransactionError) *RemoteRejectedError {
	e := &RemoteRejectedError{
		Signature:        sig,
		Reason:           txErr.Error(),
		Raw:              txErr.Raw(),
		Logs:             txErr.Logs(),
		InstructionIndex: -1,
	}
	if ie := txErr.InstructionError(); ie != nil {
		e.InstructionIndex = ie.Index
	}
	return e
}

func (e *RemoteRejectedError) Error() string {
	return fmt.Sprintf("transaction %s rejected: %s", e.Signature, e.Reason)
}

func (e *RemoteRejectedError) Unwrap() error {
	return ErrRemoteRejected
}

// SubmissionTimeoutError is returned when a submitted transaction was not
// observed at the requested commitment in time. The transaction may still
// land later.
type SubmissionTimeoutError struct {
	Signature  solana.Signature
	Commitment solana.Commitment
	Timeout    time.Duration

	// Cause is the last status poll failure when the ledger was still
	// unreachable at the deadline.
	Cause error
}

func (e *SubmissionTimeoutError) Error() string {
	msg := fmt.Sprintf("transaction %s not %s within %v", e.Signature, e.Commitment, e.Timeout)
	if e.Cause != nil {
		msg += ": last status poll failed: " + e.Cause.Error()
	}
	return msg
}

func (e *SubmissionTimeoutError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrSubmissionTimeout}
	}
	return []error{ErrSubmissionTimeout, e.Cause}
}

type AccountNotFoundError struct {
	Address    ed25519.PublicKey
	Commitment solana.Commitment
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found at commitment %s", base58.Encode(e.Address), e.Commitment)
}

func (e *AccountNotFoundError) Unwrap() error {
	return ErrAccountNotFound
}
