package echo

import (
	"time"

	"github.com/harshasomisetty/solana-bootcamp/pkg/config"
	"github.com/harshasomisetty/solana-bootcamp/pkg/config/env"
	"github.com/harshasomisetty/solana-bootcamp/pkg/config/memory"
	"github.com/harshasomisetty/solana-bootcamp/pkg/config/wrapper"
	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
)

const (
	envConfigPrefix = "ECHO_CLIENT_"

	ConfirmationTimeoutConfigEnvName = envConfigPrefix + "CONFIRMATION_TIMEOUT"
	defaultConfirmationTimeout       = time.Minute

	PollIntervalConfigEnvName = envConfigPrefix + "POLL_INTERVAL"
	defaultPollInterval       = solana.PollRate

	SkipPreflightConfigEnvName = envConfigPrefix + "SKIP_PREFLIGHT"
	defaultSkipPreflight       = false

	PreflightCommitmentConfigEnvName = envConfigPrefix + "PREFLIGHT_COMMITMENT"
	defaultPreflightCommitment       = "confirmed"

	AirdropLamportsConfigEnvName = envConfigPrefix + "AIRDROP_LAMPORTS"
	defaultAirdropLamports       = 2_000_000_000

	RentCacheBudgetConfigEnvName = envConfigPrefix + "RENT_CACHE_BUDGET"
	defaultRentCacheBudget       = 1024
)

type conf struct {
	confirmationTimeout config.Duration
	pollInterval        config.Duration
	skipPreflight       config.Bool
	preflightCommitment config.String
	airdropLamports     config.Uint64
	rentCacheBudget     config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			confirmationTimeout: env.NewDurationConfig(ConfirmationTimeoutConfigEnvName, defaultConfirmationTimeout),
			pollInterval:        env.NewDurationConfig(PollIntervalConfigEnvName, defaultPollInterval),
			skipPreflight:       env.NewBoolConfig(SkipPreflightConfigEnvName, defaultSkipPreflight),
			preflightCommitment: env.NewStringConfig(PreflightCommitmentConfigEnvName, defaultPreflightCommitment),
			airdropLamports:     env.NewUint64Config(AirdropLamportsConfigEnvName, defaultAirdropLamports),
			rentCacheBudget:     env.NewUint64Config(RentCacheBudgetConfigEnvName, defaultRentCacheBudget),
		}
	}
}

type testOverrides struct {
	confirmationTimeout time.Duration
	pollInterval        time.Duration
	skipPreflight       bool
	airdropLamports     uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			confirmationTimeout: wrapper.NewDurationConfig(memory.NewConfig(overrides.confirmationTimeout), defaultConfirmationTimeout),
			pollInterval:        wrapper.NewDurationConfig(memory.NewConfig(overrides.pollInterval), defaultPollInterval),
			skipPreflight:       wrapper.NewBoolConfig(memory.NewConfig(overrides.skipPreflight), defaultSkipPreflight),
			preflightCommitment: wrapper.NewStringConfig(memory.NewConfig(defaultPreflightCommitment), defaultPreflightCommitment),
			airdropLamports:     wrapper.NewUint64Config(memory.NewConfig(overrides.airdropLamports), defaultAirdropLamports),
			rentCacheBudget:     wrapper.NewUint64Config(memory.NewConfig(uint64(defaultRentCacheBudget)), defaultRentCacheBudget),
		}
	}
}
