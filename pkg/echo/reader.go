package echo

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/harshasomisetty/solana-bootcamp/pkg/metrics"
	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
	echoprogram "github.com/harshasomisetty/solana-bootcamp/pkg/solana/echo"
)

const readerMetricsStructName = "echo.reader"

// Reader fetches buffer accounts back from the ledger.
type Reader struct {
	log    *logrus.Entry
	ledger Ledger
}

func NewReader(ledger Ledger) *Reader {
	return &Reader{
		log:    logrus.StandardLogger().WithField("type", "echo/reader"),
		ledger: ledger,
	}
}

// ReadBack returns the raw data of the account at the requested commitment.
func (r *Reader) ReadBack(ctx context.Context, address ed25519.PublicKey, commitment solana.Commitment) ([]byte, error) {
	info, err := r.getAccountInfo(ctx, address, commitment)
	if err != nil {
		return nil, err
	}
	return info.Data, nil
}

// ReadAuthorizedBuffer fetches and decodes an authorized buffer owned by program.
func (r *Reader) ReadAuthorizedBuffer(ctx context.Context, program, address ed25519.PublicKey, commitment solana.Commitment) (*echoprogram.AuthorizedBuffer, error) {
	info, err := r.getAccountInfo(ctx, address, commitment)
	if err != nil {
		return nil, err
	}

	buffer, err := echoprogram.AuthorizedBufferFromAccountInfo(program, info)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode authorized buffer %s", base58.Encode(address))
	}
	return buffer, nil
}

func (r *Reader) getAccountInfo(ctx context.Context, address ed25519.PublicKey, commitment solana.Commitment) (info solana.AccountInfo, err error) {
	tracer := metrics.TraceMethodCall(ctx, readerMetricsStructName, "getAccountInfo")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	if err := ctx.Err(); err != nil {
		return info, err
	}

	info, err = r.ledger.GetAccountInfo(address, commitment)
	if err == solana.ErrNoAccountInfo {
		return info, &AccountNotFoundError{Address: address, Commitment: commitment}
	} else if err != nil {
		r.log.WithError(err).WithField("address", base58.Encode(address)).Warn("failure getting account info")
		return info, errors.Wrap(err, "failed to get account info")
	}

	return info, nil
}

// VerifyEcho checks that actual holds the expected message. Zero padding after
// the message is accepted since buffers may be sized beyond the message.
func VerifyEcho(expected, actual []byte) error {
	if len(actual) < len(expected) || !bytes.Equal(actual[:len(expected)], expected) {
		return errors.Wrapf(ErrEchoMismatch, "expected %q, found %q", expected, actual)
	}

	for _, b := range actual[len(expected):] {
		if b != 0 {
			return errors.Wrapf(ErrEchoMismatch, "unexpected data after byte %d", len(expected))
		}
	}

	return nil
}
