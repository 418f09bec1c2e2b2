package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/AMASPC-Org/olybars-sub000/internal/adapters/http/api"
	app "github.com/AMASPC-Org/olybars-sub000/internal/app"
	"github.com/AMASPC-Org/olybars-sub000/internal/config"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/admission"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/pulse"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/ranking"
	"github.com/AMASPC-Org/olybars-sub000/pkg/logger"
	"github.com/AMASPC-Org/olybars-sub000/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Disable default Go metrics collection; the engine publishes its own
	// system metrics on the custom registry.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to flush logs: " + err.Error() + "\n")
		}
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithSignalDBPath(cfg.SignalDBPath),
		app.WithWorkerCount(cfg.RefreshWorkerCount),
		app.WithQueueSize(cfg.RefreshQueueSize),
		app.WithRefreshInterval(time.Duration(cfg.RefreshIntervalS)*time.Second),
		app.WithRotationBucket(time.Duration(cfg.RotationBucketMS)*time.Millisecond),
		app.WithBuzzWindowSize(cfg.BuzzWindowSize),
		app.WithGateOptions(
			admission.WithGeofenceRadius(cfg.GeofenceRadiusM),
			admission.WithGlobalCooldown(time.Duration(cfg.GlobalCooldownMin)*time.Minute),
			admission.WithVenueCooldown(time.Duration(cfg.VenueCooldownMin)*time.Minute),
			admission.WithComplianceCap(time.Duration(cfg.ComplianceWindowH)*time.Hour, cfg.ComplianceCap),
		),
		app.WithPulseOptions(
			pulse.WithHalfLife(time.Duration(cfg.HalfLifeMin)*time.Minute),
			pulse.WithWindow(time.Duration(cfg.SignalWindowH)*time.Hour),
			pulse.WithThresholds(cfg.LivelyThreshold, cfg.BuzzingThreshold),
		),
		app.WithRankerOptions(
			ranking.WithProximityThreshold(cfg.ProximityThresholdMi),
		),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater periodically refreshes system-level gauges.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}
