package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/config"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/handler"
	notifyHandler "github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/handler/notify"
	orderHandler "github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/handler/order"
	webhookHandler "github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/handler/webhook"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/repository/postgres"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/router"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/service/aggregate"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/service/dispatch"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/service/inspection"
	orderService "github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/service/order"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/service/sophia"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/targetcache"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/logger"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/messaging"
	redisBroker "github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/messaging/redis"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
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
	stationRepo := postgres.NewStationRepository(base)
	contactRepo := postgres.NewContactRepository(base)
	targetRepo := targetcache.New(postgres.NewWebhookTargetRepository(base), cfg.Dispatch.TargetCacheTTL)
	deliveryRepo := postgres.NewDeliveryLogRepository(base)

	var broker messaging.Broker
	if cfg.Redis.Enabled {
		broker, err = redisBroker.NewRedisBroker(redisBroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, &log.ZL)
		if err != nil {
			log.Fatal(err, "Failed to connect to Redis")
		}
		defer broker.Close()
	}

	m := metrics.NewMetrics("fuelogic")

	dispatchOpts := []dispatch.Option{dispatch.WithMetrics(m)}
	if broker != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithBroker(broker))
	}
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
		dispatchOpts...,
	)

	aggregator := aggregate.NewService(stationRepo, log)
	orderSvc := orderService.NewService(orderRepo, dispatcher, log)
	sophiaSvc := sophia.NewService(orderRepo, aggregator, dispatcher, cfg.Worker.BatchSize, log)
	inspectionSvc := inspection.NewService(stationRepo, dispatcher, cfg.Inspection, log)

	r := router.NewRouter(
		handler.NewHealthHandler(db),
		router.Config{
			RateLimit:      rate.Limit(cfg.Server.RateLimit),
			RateBurst:      cfg.Server.RateBurst,
			MetricsEnabled: cfg.Server.MetricsEnabled,
		},
		orderHandler.NewHandler(orderSvc),
		webhookHandler.NewHandler(targetRepo, deliveryRepo, dispatcher),
		notifyHandler.NewHandler(sophiaSvc, inspectionSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Starting API server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}
	log.Info("Server exited")
}
