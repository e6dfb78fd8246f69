package echo

import (
	"crypto/ed25519"

	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
)

// Ledger is the subset of the Solana RPC API the client depends on.
type Ledger interface {
	GetAccountInfo(ed25519.PublicKey, solana.Commitment) (solana.AccountInfo, error)
	GetLatestBlockhash() (solana.Blockhash, error)
	GetMinimumBalanceForRentExemption(size uint64) (uint64, error)
	GetSignatureStatuses([]solana.Signature) ([]*solana.SignatureStatus, error)
	GetTransactionLogs(solana.Signature, solana.Commitment) ([]string, error)
	RequestAirdrop(ed25519.PublicKey, uint64, solana.Commitment) (solana.Signature, error)
	SubmitTransaction(solana.Transaction, solana.SubmitConfig) (solana.Signature, error)
}

var _ Ledger = solana.Client(nil)
