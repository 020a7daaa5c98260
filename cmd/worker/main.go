package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/config"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/repository/postgres"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/service/dispatch"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/targetcache"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/worker"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/logger"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/metrics"
)

type pinger interface {
	Ping() error
}

// newMux serves the worker's operational surface: liveness plus the
// prometheus metrics the scanner's dispatcher records.
func newMux(db pinger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// FUELOGIC_WORKER_* env vars override file settings for the worker
	// section so deployments can tune the scanner without a config file.
	if err := envconfig.Process("fuelogic_worker", &cfg.Worker); err != nil {
		fmt.Fprintf(os.Stderr, "failed to process worker env: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	orderRepo := postgres.NewOrderRepository(base)
	contactRepo := postgres.NewContactRepository(base)
	targetRepo := targetcache.New(postgres.NewWebhookTargetRepository(base), cfg.Dispatch.TargetCacheTTL)
	deliveryRepo := postgres.NewDeliveryLogRepository(base)

	m := metrics.NewMetrics("fuelogic_worker")

	dispatcher := dispatch.NewService(
		contactRepo,
		targetRepo,
		deliveryRepo,
		dispatch.Config{
			GatewayURL:         cfg.Dispatch.GatewayURL,
			DefaultTimeout:     cfg.Dispatch.DefaultTimeout,
			DefaultMaxAttempts: cfg.Dispatch.DefaultMaxAttempts,
			DefaultRetryDelay:  cfg.Dispatch.DefaultRetryDelay,
		},
		log,
		dispatch.WithMetrics(m),
	)

	scanner, err := worker.NewScanner(orderRepo, dispatcher, worker.ScannerConfig{
		BatchSize:    cfg.Worker.BatchSize,
		PollInterval: cfg.Worker.PollInterval,
		MinOrderAge:  cfg.Worker.MinOrderAge,
	}, log)
	if err != nil {
		log.Fatal(err, "Failed to create scanner")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go scanner.Start(ctx)

	healthSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Worker.HealthPort),
		Handler: newMux(db),
	}
	go func() {
		log.Info("Starting worker health server", "port", cfg.Worker.HealthPort)
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "Health server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "Health server forced to shutdown")
	}
	log.Info("Worker exited")
}
