package echo

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ybbus/jsonrpc"

	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
	"github.com/harshasomisetty/solana-bootcamp/pkg/solana/system"
	"github.com/harshasomisetty/solana-bootcamp/pkg/testutil"
)

type driverTestEnv struct {
	ctx     context.Context
	ledger  *memoryLedger
	driver  *Driver
	session *Session
}

func setupDriver(t *testing.T, overrides *testOverrides) driverTestEnv {
	ledger := newMemoryLedger(t)

	session, err := NewSession("memory", solana.CommitmentConfirmed, testutil.GenerateSolanaKeypair(t))
	require.NoError(t, err)

	return driverTestEnv{
		ctx:     context.Background(),
		ledger:  ledger,
		driver:  NewDriver(ledger, withManualTestOverrides(overrides)),
		session: session,
	}
}

// newCreateAccountTransaction builds a transaction that the memory ledger
// executes successfully.
func (e *driverTestEnv) newCreateAccountTransaction(t *testing.T) *Transaction {
	account := testutil.GenerateSolanaKeypair(t)

	txn, err := NewTransaction(
		e.session.FeePayerAddress(),
		[]ed25519.PrivateKey{e.session.FeePayer, account},
		system.CreateAccount(e.session.FeePayerAddress(), account.Public().(ed25519.PublicKey), e.ledger.program, 1, 8),
	)
	require.NoError(t, err)
	return txn
}

func TestDriver_Submit(t *testing.T) {
	env := setupDriver(t, defaultTestOverrides())
	env.ledger.pollsUntilConfirmed = 3

	txn := env.newCreateAccountTransaction(t)
	sig, err := env.driver.Submit(env.ctx, env.session, txn)
	require.NoError(t, err)

	require.Equal(t, 1, env.ledger.submittedCount())
	assert.Equal(t, env.ledger.submitted[0].Signatures[0], sig)
	assert.Equal(t, env.ledger.blockhash, env.ledger.submitted[0].Message.RecentBlockhash)
	assert.Equal(t, 4, env.ledger.statuses[sig].polls)
}

func TestDriver_PreflightRejection(t *testing.T) {
	env := setupDriver(t, defaultTestOverrides())

	txErr, err := solana.ParseRPCError(&jsonrpc.RPCError{
		Code:    -32002,
		Message: "Transaction simulation failed: Error processing Instruction 1: custom program error: 0x3",
		Data: map[string]interface{}{
			"err": map[string]interface{}{
				"InstructionError": []interface{}{json.Number("1"), map[string]interface{}{"Custom": json.Number("3")}},
			},
			"logs": []interface{}{
				"Program invoke [1]",
				"Program log: Instruction: Echo",
			},
		},
	})
	require.NoError(t, err)
	env.ledger.preflightErr = txErr

	sig, err := env.driver.Submit(env.ctx, env.session, env.newCreateAccountTransaction(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRemoteRejected))

	var rejected *RemoteRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, sig, rejected.Signature)
	assert.Equal(t, 1, rejected.InstructionIndex)
	assert.Equal(t, "Error processing Instruction 1: custom program error: 3", rejected.Reason)
	assert.Equal(t, []string{"Program invoke [1]", "Program log: Instruction: Echo"}, rejected.Logs)
	assert.Equal(t, txErr.Raw(), rejected.Raw)

	// Never re-sent.
	assert.Equal(t, 1, env.ledger.submittedCount())
}

func TestDriver_ExecutionFailure(t *testing.T) {
	env := setupDriver(t, defaultTestOverrides())
	env.ledger.executionErr = solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForFee)
	env.ledger.executionLog = []string{"Program log: insufficient funds"}

	_, err := env.driver.Submit(env.ctx, env.session, env.newCreateAccountTransaction(t))

	var rejected *RemoteRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, -1, rejected.InstructionIndex)
	assert.Equal(t, string(solana.TransactionErrorInsufficientFundsForFee), rejected.Reason)
	assert.Equal(t, env.ledger.executionLog, rejected.Logs)
	assert.Equal(t, 1, env.ledger.submittedCount())
}

func TestDriver_TransportError(t *testing.T) {
	env := setupDriver(t, defaultTestOverrides())
	env.ledger.preflightErr = errors.New("connection refused")

	_, err := env.driver.Submit(env.ctx, env.session, env.newCreateAccountTransaction(t))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRemoteRejected))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDriver_Timeout(t *testing.T) {
	overrides := defaultTestOverrides()
	overrides.confirmationTimeout = 50 * time.Millisecond
	env := setupDriver(t, overrides)
	env.ledger.neverLands = true

	start := time.Now()
	sig, err := env.driver.Submit(env.ctx, env.session, env.newCreateAccountTransaction(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSubmissionTimeout))
	assert.True(t, time.Since(start) >= 50*time.Millisecond)

	var timeout *SubmissionTimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Equal(t, sig, timeout.Signature)
	assert.Equal(t, solana.CommitmentConfirmed, timeout.Commitment)
	assert.Equal(t, 50*time.Millisecond, timeout.Timeout)

	assert.Equal(t, 1, env.ledger.submittedCount())
}

func TestDriver_StatusPollingUnreachable(t *testing.T) {
	overrides := defaultTestOverrides()
	overrides.confirmationTimeout = 50 * time.Millisecond
	env := setupDriver(t, overrides)

	errUnreachable := errors.New("dial tcp 127.0.0.1:8899: connect: connection refused")
	env.ledger.statusErr = errUnreachable

	sig, err := env.driver.Submit(env.ctx, env.session, env.newCreateAccountTransaction(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSubmissionTimeout))
	assert.True(t, errors.Is(err, errUnreachable))
	assert.Contains(t, err.Error(), "connection refused")

	var timeout *SubmissionTimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Equal(t, sig, timeout.Signature)
	assert.Equal(t, errUnreachable, timeout.Cause)

	// Polling failures never cause a re-send.
	assert.Equal(t, 1, env.ledger.submittedCount())
}

func TestDriver_TimeoutWithoutPollFailure(t *testing.T) {
	overrides := defaultTestOverrides()
	overrides.confirmationTimeout = 50 * time.Millisecond
	env := setupDriver(t, overrides)
	env.ledger.neverLands = true

	_, err := env.driver.Submit(env.ctx, env.session, env.newCreateAccountTransaction(t))

	var timeout *SubmissionTimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Nil(t, timeout.Cause)
	assert.NotContains(t, err.Error(), "status poll")
}

func TestDriver_ExecutionLogsAtSessionCommitment(t *testing.T) {
	env := setupDriver(t, defaultTestOverrides())
	env.session.Commitment = solana.CommitmentProcessed
	env.ledger.executionErr = solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForFee)
	env.ledger.executionLog = []string{"Program log: insufficient funds"}

	_, err := env.driver.Submit(env.ctx, env.session, env.newCreateAccountTransaction(t))
	assert.True(t, errors.Is(err, ErrRemoteRejected))
	assert.Equal(t, solana.CommitmentProcessed, env.ledger.logsCommitment)
}

func TestDriver_CommitmentNotReached(t *testing.T) {
	overrides := defaultTestOverrides()
	overrides.confirmationTimeout = 50 * time.Millisecond
	env := setupDriver(t, overrides)
	env.session.Commitment = solana.CommitmentFinalized

	// The memory ledger never finalizes.
	_, err := env.driver.Submit(env.ctx, env.session, env.newCreateAccountTransaction(t))
	assert.True(t, errors.Is(err, ErrSubmissionTimeout))
}

func TestDriver_Cancellation(t *testing.T) {
	env := setupDriver(t, defaultTestOverrides())
	env.ledger.neverLands = true

	ctx, cancel := context.WithCancel(env.ctx)
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := env.driver.Submit(ctx, env.session, env.newCreateAccountTransaction(t))
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 1, env.ledger.submittedCount())

	// Already cancelled contexts never reach the ledger.
	_, err = env.driver.Submit(ctx, env.session, env.newCreateAccountTransaction(t))
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 1, env.ledger.submittedCount())
}
