package main

import (
	"fmt"
	"time"

	"github.com/iwvelando/finance-schedule/internal/config"
	"github.com/iwvelando/finance-schedule/internal/projection"
	"github.com/iwvelando/finance-schedule/pkg/constants"
	"github.com/iwvelando/finance-schedule/pkg/currency"
	"github.com/iwvelando/finance-schedule/pkg/datetime"
	"github.com/iwvelando/finance-schedule/pkg/format"
	"github.com/iwvelando/finance-schedule/pkg/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMonthCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Show the payments falling on each day of a month",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			window := datetime.WindowFor(a.now)
			if len(args) == 1 {
				window, err = datetime.ParseMonth(args[0])
				if err != nil {
					return err
				}
			}

			result := projection.Month(a.logger, a.schedules, window, a.converter, a.conf.DisplayCurrency())
			if a.format == constants.OutputFormatCSV {
				return output.CsvMonth(a.out, result)
			}
			output.PrettyMonth(a.out, result)
			return nil
		},
	}
}

func newForecastCmd(opts *cliOptions) *cobra.Command {
	var months int
	var from string

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Show the projected total of each upcoming month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if months <= 0 {
				return fmt.Errorf("--months must be positive, got %d", months)
			}

			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			start := datetime.WindowFor(a.now)
			if from != "" {
				start, err = datetime.ParseMonth(from)
				if err != nil {
					return err
				}
			}

			display := a.conf.DisplayCurrency()
			totals := projection.Forecast(a.logger, a.schedules, start, months, a.converter, display)
			if a.format == constants.OutputFormatCSV {
				return output.CsvForecast(a.out, totals, display)
			}
			output.PrettyForecast(a.out, totals, display)
			return nil
		},
	}

	cmd.Flags().IntVar(&months, "months", constants.DefaultForecastMonths, "number of months to project")
	cmd.Flags().StringVar(&from, "from", "", "first month to project (YYYY-MM), defaults to the current month")
	return cmd
}

func newPreviewCmd(opts *cliOptions) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "List the next execution dates of every active payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 || count > constants.MaxPreviewCount {
				return fmt.Errorf("--count must be between 1 and %d, got %d", constants.MaxPreviewCount, count)
			}

			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			previews := projection.Previews(a.schedules, a.now, count)
			if a.format == constants.OutputFormatCSV {
				return output.CsvPreview(a.out, previews)
			}
			output.PrettyPreview(a.out, previews)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", constants.DefaultPreviewCount, "number of upcoming dates per payment")
	return cmd
}

func newImpactCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "impact",
		Short: "Show the monthly-equivalent cost of every active payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			display := a.conf.DisplayCurrency()
			impacts := projection.Impacts(a.logger, a.schedules, a.now, a.converter, display)
			if a.format == constants.OutputFormatCSV {
				return output.CsvImpacts(a.out, impacts, display)
			}
			output.PrettyImpacts(a.out, impacts, display)
			return nil
		},
	}
}

func newConvertCmd(opts *cliOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "convert AMOUNT FROM TO",
		Short: "Convert an amount between two currencies using the current rates",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}

			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			from, to := currency.Normalize(args[1]), currency.Normalize(args[2])
			if strict {
				converted, err := a.converter.ConvertStrict(amount, from, to)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, format.Amount(converted, to))
				return nil
			}

			converted, outcome := a.converter.Convert(amount, from, to)
			if outcome == currency.Fallback {
				a.logger.Warn("no rate available, amount left unconverted",
					zap.String("op", "main.convert"),
					zap.String("from", from),
					zap.String("to", to),
				)
				fmt.Fprintln(a.out, format.Amount(converted, from))
				return nil
			}
			fmt.Fprintln(a.out, format.Amount(converted, to))
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail instead of leaving the amount unconverted when a rate is missing")
	return cmd
}

func newValidateCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and report any warnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			conf, err := config.LoadConfiguration(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
			}
			fmt.Fprintf(out, "✓ Loaded config with %d payments\n", len(conf.Payments))

			schedules, err := conf.Schedules()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ %d payment schedules parsed\n", len(schedules))

			warnings := conf.ValidateConfiguration(time.Now())
			for _, warning := range warnings {
				fmt.Fprintf(out, "⚠️  %s\n", warning)
			}
			if len(warnings) == 0 {
				fmt.Fprintln(out, "✓ No warnings")
			}
			return nil
		},
	}
}
