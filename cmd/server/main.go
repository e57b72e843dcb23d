package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iho/txengine/internal/adapter/csvio"
	httpAdapter "github.com/iho/txengine/internal/adapter/http"
	"github.com/iho/txengine/internal/adapter/http/handler"
	"github.com/iho/txengine/internal/adapter/http/middleware"
	"github.com/iho/txengine/internal/adapter/repository/memory"
	"github.com/iho/txengine/internal/infrastructure/config"
	"github.com/iho/txengine/internal/infrastructure/idgen"
	"github.com/iho/txengine/internal/infrastructure/logger"
	"github.com/iho/txengine/internal/infrastructure/metrics"
	"github.com/iho/txengine/internal/infrastructure/pipeline"
	"github.com/iho/txengine/internal/usecase"
)

// limiterIdle is how long a client IP is remembered by the rate limiter.
const limiterIdle = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ids := idgen.NewULIDGenerator()
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		RunID:  ids.Generate(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, log, os.Stdout, nil); err != nil {
		log.Error().Err(err).Msg("server failed")
		stop()
		os.Exit(1)
	}
}

// serve accepts transactions over HTTP until ctx ends. It then stops the
// HTTP server, drains the pipeline and writes the final account report to
// report. onListen, if set, receives the bound address.
func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger, report io.Writer, onListen func(addr string)) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Initialize the ledger and the pipeline that owns it
	ledger := usecase.NewLedgerUseCase(memory.NewAccountRepository(), memory.NewTransactionHistory(), m)
	p := pipeline.New(pipeline.Config{
		Engine:   ledger,
		Logger:   &log,
		Metrics:  m,
		Capacity: cfg.QueueCapacity,
	})

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(p)
	reconciliationUC := usecase.NewReconciliationUseCase(p)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC, log),
		TransactionHandler: handler.NewTransactionHandler(p, idgen.NewULIDGenerator(), log),
		LedgerHandler:      handler.NewLedgerHandler(reconciliationUC),
		HealthHandler:      handler.NewHealthHandler(p),
		Logger:             log,
		RateLimiter:        limiter,
		HTTPMetrics:        middleware.NewHTTPMetrics(registry),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	ln, err := net.Listen("tcp", ":"+cfg.HTTPPort)
	if err != nil {
		return err
	}
	if onListen != nil {
		onListen(ln.Addr().String())
	}

	server := &http.Server{
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Not tied to gctx: the queue is drained after Close.
		return p.Run(context.Background())
	})

	g.Go(func() error {
		log.Info().Str("addr", ln.Addr().String()).Msg("starting server")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		p.Close()
		if err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				limiter.Cleanup(limiterIdle)
			}
		}
	})

	waitErr := g.Wait()

	accounts, err := ledger.ListAccounts(context.Background())
	if err != nil {
		return err
	}
	if err := csvio.WriteAccounts(report, accounts); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	log.Info().
		Int("transactions", ledger.TransactionCount()).
		Int("accounts", len(accounts)).
		Msg("server stopped")

	return waitErr
}
