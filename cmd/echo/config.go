package main

import (
	"os"
	"strings"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/harshasomisetty/solana-bootcamp/pkg/metrics"
)

// Config is the process configuration, loaded from an optional config file,
// environment variables and command line flags, in increasing precedence.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	AppName  string `mapstructure:"app_name"`

	Endpoint       string        `mapstructure:"endpoint"`
	Cluster        string        `mapstructure:"cluster"`
	Commitment     string        `mapstructure:"commitment"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst"`

	ProgramID string `mapstructure:"program_id"`

	// FeePayerKeypair is a solana-keygen JSON file. When empty, a fresh fee
	// payer is generated and funded through an airdrop.
	FeePayerKeypair string `mapstructure:"fee_payer_keypair"`

	// AuthorityKeypair is a solana-keygen JSON file. When empty, the fee
	// payer is the authority.
	AuthorityKeypair string `mapstructure:"authority_keypair"`

	BufferSeed uint64 `mapstructure:"buffer_seed"`

	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`
}

var defaultConfig = Config{
	LogLevel: "info",
	AppName:  "echo-client",

	Endpoint:       "http://127.0.0.1:8899",
	Cluster:        "devnet",
	Commitment:     "confirmed",
	RequestTimeout: 30 * time.Second,

	BufferSeed: 10,
}

func init() {
	_ = viper.BindEnv("log_level", "LOG_LEVEL")
	_ = viper.BindEnv("app_name", "APP_NAME")

	_ = viper.BindEnv("endpoint", "ECHO_ENDPOINT")
	_ = viper.BindEnv("cluster", "ECHO_CLUSTER")
	_ = viper.BindEnv("commitment", "ECHO_COMMITMENT")
	_ = viper.BindEnv("request_timeout", "ECHO_REQUEST_TIMEOUT")
	_ = viper.BindEnv("rate_limit", "ECHO_RATE_LIMIT")
	_ = viper.BindEnv("rate_burst", "ECHO_RATE_BURST")

	_ = viper.BindEnv("program_id", "ECHO_PROGRAM_ID")
	_ = viper.BindEnv("fee_payer_keypair", "ECHO_FEE_PAYER_KEYPAIR")
	_ = viper.BindEnv("authority_keypair", "ECHO_AUTHORITY_KEYPAIR")
	_ = viper.BindEnv("buffer_seed", "ECHO_BUFFER_SEED")

	_ = viper.BindEnv("new_relic_license_key", "NEW_RELIC_LICENSE_KEY")
}

func loadConfig(configPath string) (Config, error) {
	// viper.ReadInConfig only returns ConfigFileNotFoundError when searching,
	// so a missing explicit file is checked here.
	if _, err := os.Stat(configPath); err == nil {
		viper.SetConfigFile(configPath)
	} else if !os.IsNotExist(err) {
		return Config{}, errors.Wrap(err, "failed to check if config exists")
	}

	err := viper.ReadInConfig()
	_, isConfigNotFound := err.(viper.ConfigFileNotFoundError)
	if err != nil && !isConfigNotFound {
		return Config{}, errors.Wrap(err, "failed to load config")
	}

	config := defaultConfig
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal config")
	}

	if len(config.ProgramID) == 0 {
		return Config{}, errors.New("must specify a program id")
	}

	return config, nil
}

func newMetricsProvider(config Config) (*newrelic.Application, error) {
	if len(config.NewRelicLicenseKey) == 0 {
		return nil, nil
	}

	return newrelic.NewApplication(
		newrelic.ConfigFromEnvironment(),
		newrelic.ConfigAppName(config.AppName),
		newrelic.ConfigLicense(config.NewRelicLicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
}

func configureLogger(config Config, metricsProvider *newrelic.Application) {
	if metricsProvider != nil {
		logrus.SetFormatter(metrics.NewCustomNewRelicLogFormatter(metricsProvider, &logrus.JSONFormatter{}))
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	// Command output goes to stdout.
	logrus.SetOutput(os.Stderr)
}
