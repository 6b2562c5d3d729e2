package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/s0up4200/stytchctl/config"
	"github.com/s0up4200/stytchctl/stytch"
	"github.com/s0up4200/stytchctl/transport"
)

var (
	cfgFile      string
	envOverride  string
	outputFormat string
	traceFlag    bool

	cfg      *config.Config
	logger   = zerolog.Nop()
	client   stytch.Sender
	registry *prometheus.Registry

	commandSpan    trace.Span
	shutdownTracer func(context.Context) error
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "stytchctl",
	Short: "A command line client for the Stytch authentication API",
	Long: `stytchctl sends magic links, authenticates and revokes sessions and creates
users against a Stytch project.

Credentials are read from the config file, a .env file or the
STYTCH_PROJECT_ID and STYTCH_SECRET environment variables.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	finishApp()
	stop()

	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envOverride, "env", "", "stytch environment: live, test or a base URL")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "output format (json or yaml)")
	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "write OpenTelemetry spans to stderr")

	rootCmd.AddCommand(magicLinkCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// initializeApp loads the configuration and builds the API client
func initializeApp(cmd *cobra.Command, args []string) error {
	if err := validateOutputFormat(outputFormat); err != nil {
		return err
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Command line overrides
	if cmd.Flags().Changed("env") {
		cfg.Stytch.Env = stytch.ParseEnvironment(envOverride)
	}
	if cmd.Flags().Changed("trace") {
		cfg.Tracing.Enabled = traceFlag
	}

	logger = setupLogger(cfg.Logging)

	if cfg.Tracing.Enabled {
		shutdownTracer, err = initTracer(logger)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		ctx, span := otel.Tracer(tracerName).Start(cmd.Context(), cmd.CommandPath())
		commandSpan = span
		cmd.SetContext(ctx)
	}

	tc, err := cfg.TransportConfig()
	if err != nil {
		return fmt.Errorf("invalid stytch environment: %w", err)
	}

	opts := cfg.TransportOptions()
	if cfg.HTTP.Metrics {
		registry = prometheus.NewRegistry()
		opts = append(opts, transport.WithMetrics(registry))
	}

	c, err := transport.NewClient(tc, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create Stytch client: %w", err)
	}
	client = c

	logger.Debug().
		Str("env", cfg.Environment().String()).
		Object("config", tc).
		Msg("Stytch client ready")

	return nil
}

// finishApp flushes spans and reports metrics once the command returned
func finishApp() {
	if commandSpan != nil {
		commandSpan.End()
		commandSpan = nil
	}
	if shutdownTracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := shutdownTracer(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to flush spans")
		}
		cancel()
		shutdownTracer = nil
	}
	if registry != nil {
		logMetrics(logger, registry)
	}
}

// skipInit replaces initializeApp for commands that never talk to the API
func skipInit(cmd *cobra.Command, args []string) error {
	return validateOutputFormat(outputFormat)
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, colored only on a terminal
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
