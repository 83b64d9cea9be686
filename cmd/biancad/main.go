package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"candy-bianca-backend/config"
	"candy-bianca-backend/internal/api"
	"candy-bianca-backend/internal/control"
	"candy-bianca-backend/internal/db"
	"candy-bianca-backend/internal/device"
	"candy-bianca-backend/internal/entry"
	"candy-bianca-backend/internal/logging"
	"candy-bianca-backend/internal/model"
	"candy-bianca-backend/internal/mw"
	"candy-bianca-backend/internal/notification"
	"candy-bianca-backend/internal/poller"
	"candy-bianca-backend/internal/store"
	"candy-bianca-backend/internal/timer"
	"candy-bianca-backend/internal/ws"
)

const (
	probeTimeout     = 5 * time.Second
	limiterSweep     = time.Minute
	limiterMaxIdle   = 10 * time.Minute
	shutdownDeadline = 5 * time.Second
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("Configuration loaded", zap.String("path", configPath), zap.Int("devices", len(cfg.Devices)))

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	appStore := store.NewGormStore(gormDB, logger)

	devices := make([]model.Device, 0, len(cfg.Devices))
	for _, d := range cfg.Devices {
		devices = append(devices, model.Device{ID: d.ID, Name: d.Name, Host: d.Host})
	}
	if err := appStore.UpsertDevices(context.Background(), devices); err != nil {
		logger.Fatal("Failed to register devices", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var webpushOptions *webpush.Options
	var pool *notification.WorkerPool
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool = notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions, logger)
		pool.Start(ctx)
	} else {
		logger.Warn("VAPID keys are not configured, web push notifications are disabled")
	}

	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	registry := control.NewRegistry()
	timers := make(map[string]*timer.Tracker)

	for _, dc := range cfg.Devices {
		devLogger := logger.With(zap.String("device", dc.ID))

		e := entry.New(dc)
		client := device.NewClient(dc.Host, cfg.DeviceClient.Timeout, devLogger)

		probeCtx, probeCancel := context.WithTimeout(ctx, probeTimeout)
		if err := client.Probe(probeCtx); err != nil {
			devLogger.Warn("Washer did not answer the probe, polling anyway",
				zap.String("host", dc.Host),
				zap.Error(err))
		}
		probeCancel()

		poll := poller.NewService(e, client, appStore, dc.ScanInterval, devLogger)
		poll.Subscribe(hub)

		if dc.FinishNotification {
			sinks := []notification.FinishSink{hub}
			if pool != nil {
				sinks = append(sinks, pool)
			}
			poll.Subscribe(notification.NewFinishWatcher(dc.ID, dc.FinishMessage, devLogger, sinks...))
		}

		if dc.Timer {
			tr := timer.NewTracker(dc.ID, devLogger, hub)
			timers[dc.ID] = tr
			poll.Subscribe(tr)
		}

		ctrl := control.NewController(e, client, poll, appStore, devLogger)
		ctrl.AddListener(hub)
		registry.Add(ctrl)

		go poll.Run(ctx)
		devLogger.Info("Device registered",
			zap.String("name", dc.Name),
			zap.String("host", dc.Host),
			zap.Duration("scan_interval", dc.ScanInterval),
			zap.Bool("test_mode", dc.TestMode))
	}

	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	limiter.StartJanitor(ctx, limiterSweep, limiterMaxIdle)

	router := api.NewRouter(api.Deps{
		Registry: registry,
		Store:    appStore,
		WebPush:  webpushOptions,
		Timers:   timers,
		Hub:      hub,
		Limiter:  limiter,
	}, cfg.Server)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("Shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownDeadline)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server Shutdown failed", zap.Error(err))
	}
	cancel()

	logger.Info("Server gracefully stopped")
}
