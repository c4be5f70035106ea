package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/finance-schedule/internal/config"
	"github.com/iwvelando/finance-schedule/internal/server"
	"github.com/iwvelando/finance-schedule/pkg/constants"
	"github.com/iwvelando/finance-schedule/pkg/rates"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(opts *cliOptions) *cobra.Command {
	var serverConfigPath string
	var address string
	var maxRequestSize string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve projections, previews and conversions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			serverConf, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return fmt.Errorf("failed to load server configuration at %s: %w", serverConfigPath, err)
			}
			if address != "" {
				serverConf.Address = address
			}
			if maxRequestSize != "" {
				size, err := server.ParseSize(maxRequestSize)
				if err != nil {
					return fmt.Errorf("invalid --max-request-size: %w", err)
				}
				serverConf.SetRequestSizeBytes(size)
			}

			conf, err := config.LoadConfiguration(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
			}

			logger, err := initializeLogger(serverConf.Logging, opts.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, logger, serverConf, conf)
		},
	}

	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	cmd.Flags().StringVar(&maxRequestSize, "max-request-size", "", "request body limit override (e.g. 512K, 1M)")
	return cmd
}

// serve runs the rate refresher and the HTTP server until ctx is done,
// then shuts the server down within the configured timeout.
func serve(ctx context.Context, logger *zap.Logger, serverConf *server.Config, conf *config.Configuration) error {
	for _, warning := range conf.ValidateConfiguration(time.Now()) {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.serve"),
		)
	}

	schedules, err := conf.Schedules()
	if err != nil {
		return err
	}

	provider, interval, err := rateProvider(conf)
	if err != nil {
		return err
	}

	store := rates.NewStore()
	// Seed with the configured rates so requests arriving before the first
	// remote fetch still convert.
	store.Apply(store.Begin(), conf.RateTable())
	refresher := rates.NewRefresher(provider, store, interval, logger)

	handler := server.NewHandler(logger, serverConf.RequestSizeBytes(), version, server.Dependencies{
		Rates:    store,
		Payments: schedules,
		Display:  conf.DisplayCurrency(),
	})
	httpServer := &http.Server{
		Addr:              serverConf.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return refresher.Run(groupCtx)
	})

	group.Go(func() error {
		logger.Info("starting HTTP server",
			zap.String("op", "main.serve"),
			zap.String("address", serverConf.Address),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConf.ShutdownTimeoutDuration())
		defer cancel()

		logger.Info("shutting down HTTP server",
			zap.String("op", "main.serve"),
		)
		return httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
