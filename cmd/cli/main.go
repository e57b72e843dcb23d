package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iho/txengine/internal/adapter/csvio"
	"github.com/iho/txengine/internal/adapter/repository/memory"
	"github.com/iho/txengine/internal/infrastructure/config"
	"github.com/iho/txengine/internal/infrastructure/idgen"
	"github.com/iho/txengine/internal/infrastructure/logger"
	"github.com/iho/txengine/internal/infrastructure/metrics"
	"github.com/iho/txengine/internal/infrastructure/pipeline"
	"github.com/iho/txengine/internal/usecase"
)

var errInconsistent = errors.New("ledger is inconsistent")

// options controls a single processing run.
type options struct {
	input       string
	capacity    int
	verify      bool
	metricsFile string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config, stdout, stderr io.Writer) *cobra.Command {
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: stderr,
		RunID:  idgen.NewULIDGenerator().Generate(),
	})

	opts := options{
		capacity:    cfg.QueueCapacity,
		verify:      cfg.VerifyInvariants,
		metricsFile: cfg.MetricsTextfile,
	}

	rootCmd := &cobra.Command{
		Use:   "txengine [csv_file]",
		Short: "Apply a stream of transactions and report client accounts",
		Long: `Reads deposits, withdrawals, disputes, resolves and chargebacks from a CSV
file and writes the resulting client accounts to stdout as CSV.

csv_file defaults to ` + cfg.InputPath + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Usage is only useful for argument errors, and run errors are logged.
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true

			opts.input = cfg.InputPath
			if len(args) == 1 {
				opts.input = args[0]
			}

			err := run(cmd.Context(), opts, stdout, log)
			if err != nil {
				log.Error().Err(err).Msg("run failed")
			}
			return err
		},
	}

	rootCmd.SetOut(stderr)
	rootCmd.SetErr(stderr)

	rootCmd.Flags().BoolVar(&opts.verify, "verify", opts.verify, "Check that every account's total equals available plus held; exit 1 otherwise")
	rootCmd.Flags().StringVar(&opts.metricsFile, "metrics-file", opts.metricsFile, "Write Prometheus metrics to this file after the run")

	rootCmd.AddCommand(newConsistencyCmd(stdout, log))

	return rootCmd
}

// validateInput checks that path names an existing CSV file.
func validateInput(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("file %q not found", path)
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%q is a directory", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return fmt.Errorf("file %q is not a CSV file", path)
	}
	return nil
}

// run streams opts.input through the ledger and writes the account report
// to stdout.
func run(ctx context.Context, opts options, stdout io.Writer, log zerolog.Logger) error {
	if err := validateInput(opts.input); err != nil {
		return err
	}

	f, err := os.Open(opts.input)
	if err != nil {
		return err
	}
	defer f.Close()

	log.Info().Str("path", opts.input).Msg("processing transactions")

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	ledger := usecase.NewLedgerUseCase(memory.NewAccountRepository(), memory.NewTransactionHistory(), m)
	p := pipeline.New(pipeline.Config{
		Engine:   ledger,
		Logger:   &log,
		Metrics:  m,
		Capacity: opts.capacity,
	})

	var stats pipeline.FeedStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer p.Close()

		var err error
		stats, err = p.Feed(gctx, csvio.NewReader(bufio.NewReader(f)))
		return err
	})
	g.Go(func() error {
		return p.Run(gctx)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("processing %s: %w", opts.input, err)
	}

	// The consumer has stopped; the ledger can be read directly.
	accounts, err := ledger.ListAccounts(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Int("records", stats.Read).
		Int("skipped", stats.Skipped).
		Int("transactions", ledger.TransactionCount()).
		Int("accounts", len(accounts)).
		Msg("processing complete")

	w := bufio.NewWriter(stdout)
	if err := csvio.WriteAccounts(w, accounts); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if opts.metricsFile != "" {
		if err := metrics.WriteTextfile(opts.metricsFile, registry); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	if opts.verify {
		return verify(ctx, usecase.NewReconciliationUseCase(ledger), log)
	}

	return nil
}

func verify(ctx context.Context, uc *usecase.ReconciliationUseCase, log zerolog.Logger) error {
	report, err := uc.GenerateReconciliationReport(ctx)
	if err != nil {
		return err
	}

	for _, d := range report.Discrepancies {
		log.Error().
			Uint16("client", uint16(d.ClientID)).
			Str("recorded_total", d.RecordedTotal.String()).
			Str("calculated_total", d.CalculatedTotal.String()).
			Msg("account total does not match available plus held")
	}

	if !report.Consistent() {
		return fmt.Errorf("%w: %d of %d accounts", errInconsistent, len(report.Discrepancies), report.TotalAccounts)
	}

	log.Info().
		Int("accounts", report.TotalAccounts).
		Int("locked", report.LockedAccounts).
		Msg("ledger verified")
	return nil
}
