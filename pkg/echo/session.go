package echo

import (
	"crypto/ed25519"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
)

// Session holds the state shared by every call made on behalf of one user of
// the client. It is passed explicitly into each operation.
type Session struct {
	ID         uuid.UUID
	Endpoint   string
	Commitment solana.Commitment
	FeePayer   ed25519.PrivateKey
}

func NewSession(endpoint string, commitment solana.Commitment, feePayer ed25519.PrivateKey) (*Session, error) {
	if len(feePayer) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("invalid fee payer key length: %d", len(feePayer))
	}

	if _, err := solana.ParseCommitment(commitment.Commitment); err != nil {
		return nil, err
	}

	return &Session{
		ID:         uuid.New(),
		Endpoint:   endpoint,
		Commitment: commitment,
		FeePayer:   feePayer,
	}, nil
}

func (s *Session) FeePayerAddress() ed25519.PublicKey {
	return s.FeePayer.Public().(ed25519.PublicKey)
}
