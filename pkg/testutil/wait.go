package testutil

import (
	"time"

	"github.com/pkg/errors"

	"github.com/harshasomisetty/solana-bootcamp/pkg/retry"
	"github.com/harshasomisetty/solana-bootcamp/pkg/retry/backoff"
)

var errConditionNotMet = errors.New("condition not met")

// WaitFor polls condition every interval until it holds or timeout elapses.
func WaitFor(timeout, interval time.Duration, condition func() bool) error {
	if timeout < interval {
		return errors.New("timeout must be greater than interval")
	}

	deadline := time.Now().Add(timeout)
	_, err := retry.Retry(
		func() error {
			if condition() {
				return nil
			}
			if time.Now().After(deadline) {
				return errors.Errorf("condition not met within %v", timeout)
			}
			return errConditionNotMet
		},
		retry.RetriableErrors(errConditionNotMet),
		retry.Backoff(backoff.Constant(interval), interval),
	)
	return err
}
