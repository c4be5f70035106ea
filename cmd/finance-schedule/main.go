package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/iwvelando/finance-schedule/internal/config"
	"github.com/iwvelando/finance-schedule/pkg/constants"
	"github.com/iwvelando/finance-schedule/pkg/currency"
	"github.com/iwvelando/finance-schedule/pkg/rates"
	"github.com/iwvelando/finance-schedule/pkg/schedule"
	"github.com/iwvelando/finance-schedule/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}

		// Test if we can create/write to the file
		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

type cliOptions struct {
	configPath   string
	logLevel     string
	outputFormat string
}

// app is everything a subcommand needs once the configuration is loaded.
type app struct {
	conf      *config.Configuration
	logger    *zap.Logger
	schedules []schedule.Schedule
	converter *currency.Converter
	format    string
	out       io.Writer
	now       time.Time
}

func loadApp(cmd *cobra.Command, opts *cliOptions) (*app, error) {
	conf, err := config.LoadConfiguration(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, opts.logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if opts.outputFormat != "" {
		outputFormat = opts.outputFormat
	}
	outputFormat, err = validation.ResolveOutput(outputFormat, conf.DisplayCurrency())
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for _, warning := range conf.ValidateConfiguration(now) {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.loadApp"),
		)
	}

	schedules, err := conf.Schedules()
	if err != nil {
		return nil, err
	}

	store := rates.NewStore()
	loadRates(cmd.Context(), conf, store, logger)

	return &app{
		conf:      conf,
		logger:    logger,
		schedules: schedules,
		converter: currency.NewConverter(store, logger),
		format:    outputFormat,
		out:       cmd.OutOrStdout(),
		now:       now,
	}, nil
}

// rateProvider picks the HTTP provider when a URL is configured and the
// static configured rates otherwise.
func rateProvider(conf *config.Configuration) (rates.Provider, time.Duration, error) {
	if conf.RateProvider.URL == "" {
		return rates.NewStaticProvider(conf.RateTable()), 0, nil
	}
	interval, err := conf.RefreshInterval()
	if err != nil {
		return nil, 0, err
	}
	timeout, err := conf.FetchTimeout()
	if err != nil {
		return nil, 0, err
	}
	return rates.NewHTTPProvider(conf.RateProvider.URL, timeout), interval, nil
}

// loadRates fills store once. A failed remote fetch falls back to the
// static configured rates.
func loadRates(ctx context.Context, conf *config.Configuration, store *rates.Store, logger *zap.Logger) {
	if ctx == nil {
		ctx = context.Background()
	}
	provider, _, err := rateProvider(conf)
	if err == nil {
		err = rates.NewRefresher(provider, store, 0, logger).Refresh(ctx)
	}
	if err != nil {
		logger.Warn("using configured static rates",
			zap.String("op", "main.loadRates"),
			zap.Error(err),
		)
		store.Apply(store.Begin(), conf.RateTable())
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "finance-schedule",
		Short:         "Project recurring payments onto calendar months",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	root.PersistentFlags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newMonthCmd(opts),
		newForecastCmd(opts),
		newPreviewCmd(opts),
		newImpactCmd(opts),
		newConvertCmd(opts),
		newServeCmd(opts),
		newValidateCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
}
