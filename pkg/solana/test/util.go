package test

import (
	"crypto/ed25519"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mr-tron/base58"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/pkg/errors"

	"github.com/harshasomisetty/solana-bootcamp/pkg/retry"
	"github.com/harshasomisetty/solana-bootcamp/pkg/retry/backoff"
	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
)

const (
	containerName     = "solanalabs/solana"
	containerVersion  = "v1.18.26"
	containerAutoKill = 300 * time.Second

	rpcPort      = 8899
	programMount = "/program"
)

// StartSolanaTestValidator starts a Docker container running solana-test-validator
// with the shared object at programPath deployed at programID. It returns the
// JSON-RPC endpoint once the validator is producing slots.
func StartSolanaTestValidator(pool *dockertest.Pool, programID ed25519.PublicKey, programPath string) (endpoint string, closeFunc func(), err error) {
	closeFunc = func() {}

	absPath, err := filepath.Abs(programPath)
	if err != nil {
		return "", closeFunc, errors.Wrap(err, "failed to resolve program path")
	}

	// Pulls the image, creates a container based on it and runs it
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: containerName,
		Tag:        containerVersion,
		Entrypoint: []string{"solana-test-validator"},
		Cmd: []string{
			"--reset",
			"--quiet",
			"--rpc-port", fmt.Sprintf("%d", rpcPort),
			"--bpf-program", base58.Encode(programID), filepath.Join(programMount, filepath.Base(absPath)),
		},
		Mounts:       []string{filepath.Dir(absPath) + ":" + programMount},
		ExposedPorts: []string{fmt.Sprintf("%d/tcp", rpcPort)},
	}, func(config *docker.HostConfig) {
		// set AutoRemove to true so that stopped container goes away by itself
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})

	// Check if the container resource was generated as expected
	if err != nil {
		return "", closeFunc, errors.Wrapf(err, "failed to start resource")
	}

	closeFunc = func() {
		_ = pool.Purge(resource)
	}

	endpoint = fmt.Sprintf("http://%s", resource.GetHostPort(fmt.Sprintf("%d/tcp", rpcPort)))

	// Tell docker to expire the container (kill) after containerAutoKill.
	//
	// 2024/04/11: Expire() _never_ returns an error.
	_ = resource.Expire(uint(containerAutoKill.Seconds()))

	client := solana.New(endpoint)
	_, err = retry.Retry(
		func() error {
			slot, err := client.GetSlot(solana.CommitmentConfirmed)
			if err != nil {
				return err
			}
			if slot == 0 {
				return errors.New("validator has not produced a block")
			}
			return nil
		},
		retry.Limit(120),
		retry.Backoff(backoff.Constant(500*time.Millisecond), 500*time.Millisecond),
	)
	if err != nil {
		closeFunc()
		return "", func() {}, errors.Wrap(err, "timed out waiting for solana-test-validator container to become available")
	}

	return endpoint, closeFunc, nil
}
