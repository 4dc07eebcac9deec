package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dgallion1/boletoscan/internal/api"
	"github.com/dgallion1/boletoscan/internal/config"
	"github.com/dgallion1/boletoscan/internal/logging"
	"github.com/dgallion1/boletoscan/internal/pipeline"
	"github.com/dgallion1/boletoscan/internal/resident"
	"github.com/dgallion1/boletoscan/internal/textextract"
)

func main() {
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Resident roster.
	source, closeSource, err := rosterSource(ctx, cfg)
	if err != nil {
		log.Error("roster source unavailable", "source", cfg.RosterSource, "error", err)
		os.Exit(1)
	}
	defer closeSource()

	roster := resident.NewCache(source, log)
	if err := roster.Refresh(ctx); err != nil {
		// The cache retries on first use and on schedule.
		log.Warn("initial roster load failed", "error", err)
	}
	if cfg.RosterRefresh != "" {
		if err := roster.Schedule(cfg.RosterRefresh); err != nil {
			log.Error("invalid roster refresh schedule", "spec", cfg.RosterRefresh, "error", err)
			os.Exit(1)
		}
		defer roster.Stop()
	}

	// Metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := pipeline.NewMetrics(reg)

	// Pipeline.
	proc := pipeline.NewProcessor(roster, textextract.Options{
		MinTextLength: cfg.MinTextLength,
		Pdftotext:     cfg.PDFFallbackPdftotext,
		OCRCommand:    cfg.OCRCommand,
	}, metrics, log)
	orch := pipeline.NewOrchestrator(proc, cfg.WorkerCount, cfg.MaxQueueSize, cfg.JobTTL, metrics, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, roster, reg, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		log.Error("listen failed", "addr", httpServer.Addr, "error", err)
		os.Exit(1)
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting boletoscan", "port", cfg.Port, "roster", cfg.RosterSource)
	if err := serve(sigCtx, httpServer, ln, orch.Stop, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// serve runs srv on ln until ctx is done, then drains in-flight requests and
// calls stopWorkers. It returns only after both have finished, so deferred
// cleanup in main never runs under a live request or job.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, stopWorkers func(), log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		stopWorkers()
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)

	// No handler can submit once the listener is drained.
	stopWorkers()

	if serveErr := <-errCh; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return err
}

// rosterSource builds the configured resident provider and a func that
// releases whatever it holds open.
func rosterSource(ctx context.Context, cfg config.Config) (resident.Provider, func(), error) {
	switch cfg.RosterSource {
	case config.RosterFile:
		return resident.NewFileProvider(cfg.RosterPath), func() {}, nil
	case config.RosterPostgres:
		pool, err := resident.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return resident.NewPostgresProvider(pool), pool.Close, nil
	case config.RosterREST:
		return resident.NewRESTProvider(cfg.SupabaseURL, cfg.SupabaseKey), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown roster source %q", cfg.RosterSource)
	}
}
