package main

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/mr-tron/base58"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/ybbus/jsonrpc"
	xrate "golang.org/x/time/rate"

	"github.com/harshasomisetty/solana-bootcamp/pkg/echo"
	"github.com/harshasomisetty/solana-bootcamp/pkg/metrics"
	"github.com/harshasomisetty/solana-bootcamp/pkg/rate"
	"github.com/harshasomisetty/solana-bootcamp/pkg/solana"
)

// environment is everything a command needs, built once the config is loaded.
type environment struct {
	log *logrus.Entry

	config    Config
	client    *echo.Client
	session   *echo.Session
	authority ed25519.PrivateKey

	// fundFeePayer is set when the fee payer was generated for this run.
	fundFeePayer bool

	metricsProvider *newrelic.Application
}

func newRootCmd() *cobra.Command {
	env := &environment{
		log: logrus.StandardLogger().WithField("type", "cmd/echo"),
	}

	var configPath string

	cmd := &cobra.Command{
		Use:           "echo",
		Short:         "Drive the echo program on a Solana cluster",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.init(configPath)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if env.metricsProvider != nil {
				env.metricsProvider.Shutdown(10 * time.Second)
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "config.yaml", "configuration file path")
	flags.String("endpoint", defaultConfig.Endpoint, "JSON-RPC endpoint or cluster moniker (localnet, devnet, testnet, mainnet-beta)")
	flags.String("cluster", defaultConfig.Cluster, "cluster name used for explorer links")
	flags.String("commitment", defaultConfig.Commitment, "commitment level to confirm and read at")
	flags.String("program-id", "", "echo program id")
	flags.String("fee-payer", "", "fee payer keypair file")
	flags.String("authority", "", "authority keypair file")
	flags.Uint64("seed", defaultConfig.BufferSeed, "authorized buffer seed")
	flags.String("log-level", defaultConfig.LogLevel, "log level")

	for key, flag := range map[string]string{
		"endpoint":          "endpoint",
		"cluster":           "cluster",
		"commitment":        "commitment",
		"program_id":        "program-id",
		"fee_payer_keypair": "fee-payer",
		"authority_keypair": "authority",
		"buffer_seed":       "seed",
		"log_level":         "log-level",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	cmd.AddCommand(
		env.directCmd(),
		env.authorizedCmd(),
		env.initCmd(),
		env.writeCmd(),
		env.readCmd(),
		env.deriveCmd(),
		env.airdropCmd(),
	)

	return cmd
}

func (e *environment) init(configPath string) error {
	config, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	e.config = config
	e.config.Endpoint = solana.ResolveEndpoint(config.Endpoint)

	e.metricsProvider, err = newMetricsProvider(config)
	if err != nil {
		return errors.Wrap(err, "error connecting to new relic")
	}
	configureLogger(config, e.metricsProvider)

	commitment, err := solana.ParseCommitment(config.Commitment)
	if err != nil {
		return err
	}

	program, err := parseAddress(config.ProgramID)
	if err != nil {
		return err
	}

	var feePayer ed25519.PrivateKey
	if len(config.FeePayerKeypair) > 0 {
		feePayer, err = loadKeypair(config.FeePayerKeypair)
	} else {
		feePayer, err = generateKeypair()
		e.fundFeePayer = true
	}
	if err != nil {
		return err
	}

	e.authority = feePayer
	if len(config.AuthorityKeypair) > 0 {
		if e.authority, err = loadKeypair(config.AuthorityKeypair); err != nil {
			return err
		}
	}

	e.session, err = echo.NewSession(e.config.Endpoint, commitment, feePayer)
	if err != nil {
		return err
	}

	opts := []solana.Option{
		solana.WithRPCOptions(&jsonrpc.RPCClientOpts{
			HTTPClient: &http.Client{Timeout: config.RequestTimeout},
		}),
	}
	if config.RateLimit > 0 {
		opts = append(opts, solana.WithLimiter(rate.NewLocalRateLimiter(xrate.Limit(config.RateLimit), config.RateBurst)))
	}

	e.client = echo.NewClient(solana.New(e.config.Endpoint, opts...), program, echo.WithEnvConfigs())

	e.log = e.log.WithFields(logrus.Fields{
		"session":   e.session.ID.String(),
		"endpoint":  e.config.Endpoint,
		"program":   base58.Encode(program),
		"fee_payer": base58.Encode(e.session.FeePayerAddress()),
	})
	e.log.Debug("session initialized")

	return nil
}

// run executes action within a New Relic transaction when one is configured,
// funding a generated fee payer first when needed.
func (e *environment) run(cmd *cobra.Command, fund bool, action func(ctx context.Context) (*echo.Result, error)) error {
	ctx := cmd.Context()
	if e.metricsProvider != nil {
		txn := e.metricsProvider.StartTransaction(cmd.Name())
		defer txn.End()

		ctx = newrelic.NewContext(ctx, txn)
		ctx = metrics.WithNewRelic(ctx, e.metricsProvider)
	}

	if fund && e.fundFeePayer {
		fmt.Fprintf(cmd.ErrOrStderr(), "Requesting airdrop for %s...\n", base58.Encode(e.session.FeePayerAddress()))
		if _, err := e.client.Fund(ctx, e.session, e.session.FeePayerAddress(), 0); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Airdrop received")
	}

	result, err := action(ctx)
	if result != nil {
		e.print(cmd, result)
	}
	if err != nil {
		e.log.WithError(err).WithField("command", cmd.Name()).Warn("command failed")
	}
	return err
}

func (e *environment) print(cmd *cobra.Command, result *echo.Result) {
	out := cmd.OutOrStdout()

	if result.Signature != (solana.Signature{}) {
		fmt.Fprintf(out, "Signature: %s\n", result.Signature)
		fmt.Fprintf(out, "Explorer: %s\n", explorerLink(result.Signature, e.config.Cluster))
	}
	if len(result.Address) > 0 {
		fmt.Fprintf(out, "Address: %s\n", base58.Encode(result.Address))
	}
	if result.Data != nil {
		fmt.Fprintf(out, "Echo Buffer Text: %s\n", result.Payload)
		fmt.Fprintf(out, "Echo Buffer Bytes: %d\n", len(result.Data))
	}
}

func explorerLink(sig solana.Signature, cluster string) string {
	link := fmt.Sprintf("https://explorer.solana.com/tx/%s", sig)
	if cluster == "" || cluster == "mainnet-beta" {
		return link
	}
	return link + "?cluster=" + cluster
}

func (e *environment) directCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "direct <message>",
		Short: "Echo a message into a new buffer account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, true, func(ctx context.Context) (*echo.Result, error) {
				return e.client.EchoDirect(ctx, e.session, []byte(args[0]))
			})
		},
	}
}

func (e *environment) authorizedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "authorized <message>",
		Short: "Initialize an authorized buffer sized to the message and echo into it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, true, func(ctx context.Context) (*echo.Result, error) {
				return e.client.EchoAuthorized(ctx, e.session, e.authority, e.config.BufferSeed, []byte(args[0]))
			})
		},
	}
}

func (e *environment) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <max-message-length>",
		Short: "Initialize an authorized buffer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			maxMessageLength, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return errors.Wrap(err, "invalid max message length")
			}

			return e.run(cmd, true, func(ctx context.Context) (*echo.Result, error) {
				return e.client.InitializeAuthorizedBuffer(ctx, e.session, e.authority, e.config.BufferSeed, maxMessageLength)
			})
		},
	}
}

func (e *environment) writeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write <message>",
		Short: "Echo a message into an existing authorized buffer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, true, func(ctx context.Context) (*echo.Result, error) {
				return e.client.WriteAuthorizedBuffer(ctx, e.session, e.authority, e.config.BufferSeed, []byte(args[0]))
			})
		},
	}
}

func (e *environment) readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read [address]",
		Short: "Read a buffer account, or the authorized buffer when no address is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, false, func(ctx context.Context) (*echo.Result, error) {
				if len(args) == 0 {
					return e.client.ReadAuthorized(ctx, e.session, e.authority.Public().(ed25519.PublicKey), e.config.BufferSeed)
				}

				address, err := parseAddress(args[0])
				if err != nil {
					return nil, err
				}
				return e.client.Read(ctx, e.session, address)
			})
		},
	}
}

func (e *environment) deriveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "derive",
		Short: "Print the authorized buffer address for the authority and seed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			address, bump, err := e.client.AuthorizedBufferAddress(e.authority.Public().(ed25519.PublicKey), e.config.BufferSeed)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Address: %s\nBump: %d\n", base58.Encode(address), bump)
			return nil
		},
	}
}

func (e *environment) airdropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "airdrop [lamports]",
		Short: "Request test funds for the fee payer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var lamports uint64
			if len(args) == 1 {
				var err error
				if lamports, err = strconv.ParseUint(args[0], 10, 64); err != nil {
					return errors.Wrap(err, "invalid lamports")
				}
			}

			return e.run(cmd, false, func(ctx context.Context) (*echo.Result, error) {
				return e.client.Fund(ctx, e.session, e.session.FeePayerAddress(), lamports)
			})
		},
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}
