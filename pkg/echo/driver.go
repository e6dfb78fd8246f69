package echo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/harshasomisetty/solana-bootcamp/pkg/metrics"
	"github.com/harshasomisetty/solana-bootcamp/pkg/retry"
	"github.com/harshasomisetty/solana-bootcamp/pkg/retry/backoff"
	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
)

const (
	driverMetricsStructName = "echo.driver"

	confirmationLatencyMetricName = "Echo/ConfirmationLatency"
	submittedCountMetricName      = "Echo/TransactionsSubmitted"
	rejectedEventName             = "EchoTransactionRejected"
	timedOutEventName             = "EchoTransactionTimedOut"
)

var errNotYetConfirmed = errors.New("transaction not yet confirmed")

// Driver signs, submits and confirms transactions. A transaction is sent at
// most once; only the confirmation status is polled.
type Driver struct {
	log    *logrus.Entry
	conf   *conf
	ledger Ledger
}

func NewDriver(ledger Ledger, configProvider ConfigProvider) *Driver {
	return &Driver{
		log:    logrus.StandardLogger().WithField("type", "echo/driver"),
		conf:   configProvider(),
		ledger: ledger,
	}
}

// Submit signs txn against a recent blockhash, sends it and blocks until it
// reaches the session's commitment level, the confirmation timeout elapses or
// ctx is done.
func (d *Driver) Submit(ctx context.Context, session *Session, txn *Transaction) (sig solana.Signature, err error) {
	tracer := metrics.TraceMethodCall(ctx, driverMetricsStructName, "Submit")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	log := d.log.WithFields(logrus.Fields{
		"method":     "Submit",
		"session":    session.ID.String(),
		"commitment": session.Commitment.String(),
	})

	if err := ctx.Err(); err != nil {
		return sig, err
	}

	blockhash, err := d.ledger.GetLatestBlockhash()
	if err != nil {
		return sig, errors.Wrap(err, "failed to get recent blockhash")
	}

	signed, err := txn.sign(blockhash)
	if err != nil {
		return sig, err
	}
	sig = signed.Signatures[0]

	log = log.WithField("signature", sig.String())
	tracer.AddAttribute("signature", sig.String())

	submitConfig, err := d.submitConfig(ctx)
	if err != nil {
		return sig, err
	}

	if _, err := d.ledger.SubmitTransaction(signed, submitConfig); err != nil {
		if txErr, ok := errors.Cause(err).(*solana.TransactionError); ok {
			rejected := newRemoteRejectedError(sig, txErr)
			d.recordRejection(ctx, session, rejected, "preflight")
			log.WithError(err).Info("transaction rejected during preflight")
			return sig, rejected
		}

		log.WithError(err).Warn("failure submitting transaction")
		return sig, errors.Wrap(err, "failed to submit transaction")
	}

	metrics.RecordCount(ctx, submittedCountMetricName, 1)
	log.Debug("transaction submitted")

	start := time.Now()
	err = d.awaitConfirmation(ctx, session, sig)
	if err != nil {
		var rejected *RemoteRejectedError
		if errors.As(err, &rejected) {
			rejected.Logs = d.fetchLogs(sig, session.Commitment, log)
			d.recordRejection(ctx, session, rejected, "execution")
			log.WithError(err).Info("transaction failed on chain")
		}
		return sig, err
	}

	latency := time.Since(start)
	metrics.RecordDuration(ctx, confirmationLatencyMetricName, latency)
	log.WithField("latency", latency).Debug("transaction confirmed")

	return sig, nil
}

// AwaitSignature blocks until a signature produced elsewhere, such as an
// airdrop, reaches the session's commitment level.
func (d *Driver) AwaitSignature(ctx context.Context, session *Session, sig solana.Signature) error {
	return d.awaitConfirmation(ctx, session, sig)
}

func (d *Driver) awaitConfirmation(ctx context.Context, session *Session, sig solana.Signature) error {
	timeout := d.conf.confirmationTimeout.Get(ctx)
	pollInterval := d.conf.pollInterval.Get(ctx)

	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := d.log.WithField("signature", sig.String())

	// lastPollErr is the most recent transport failure. A successful poll
	// clears it, so it only survives when the node stayed unreachable.
	var lastPollErr error
	_, err := retry.Retry(
		func() error {
			statuses, err := d.ledger.GetSignatureStatuses([]solana.Signature{sig})
			if err != nil {
				log.WithError(err).Debug("failure polling signature status")
				lastPollErr = err
				return errNotYetConfirmed
			}
			lastPollErr = nil

			if len(statuses) == 0 || statuses[0] == nil {
				return errNotYetConfirmed
			}

			status := statuses[0]
			if status.ErrorResult != nil {
				return newRemoteRejectedError(sig, status.ErrorResult)
			}
			if !status.Reached(session.Commitment) {
				return errNotYetConfirmed
			}
			return nil
		},
		retry.NonRetriableErrors(ErrRemoteRejected),
		retry.Context(pollCtx),
		retry.BackoffWithContext(pollCtx, backoff.Constant(pollInterval), pollInterval),
	)
	if err == nil || errors.Is(err, ErrRemoteRejected) {
		return err
	}

	// Caller cancellation takes precedence over the confirmation timeout.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	metrics.RecordEvent(ctx, timedOutEventName, map[string]interface{}{
		"session":   session.ID.String(),
		"signature": sig.String(),
	})

	return &SubmissionTimeoutError{
		Signature:  sig,
		Commitment: session.Commitment,
		Timeout:    timeout,
		Cause:      lastPollErr,
	}
}

func (d *Driver) submitConfig(ctx context.Context) (solana.SubmitConfig, error) {
	preflightCommitment, err := solana.ParseCommitment(d.conf.preflightCommitment.Get(ctx))
	if err != nil {
		return solana.SubmitConfig{}, errors.Wrap(err, "invalid preflight commitment")
	}

	return solana.SubmitConfig{
		SkipPreflight:       d.conf.skipPreflight.Get(ctx),
		PreflightCommitment: preflightCommitment,
	}, nil
}

// fetchLogs is best effort. An execution failure is reported whether or not
// its logs can be retrieved.
func (d *Driver) fetchLogs(sig solana.Signature, commitment solana.Commitment, log *logrus.Entry) []string {
	logs, err := d.ledger.GetTransactionLogs(sig, commitment)
	if err != nil {
		log.WithError(err).Debug("failure fetching transaction logs")
		return nil
	}
	return logs
}

func (d *Driver) recordRejection(ctx context.Context, session *Session, rejected *RemoteRejectedError, stage string) {
	metrics.RecordEvent(ctx, rejectedEventName, map[string]interface{}{
		"session":     session.ID.String(),
		"signature":   rejected.Signature.String(),
		"stage":       stage,
		"reason":      rejected.Reason,
		"instruction": rejected.InstructionIndex,
	})
}
