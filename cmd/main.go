package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/openbi/rankindex/internal/adapters/http/api"
	"github.com/openbi/rankindex/internal/adapters/http/swagger"
	"github.com/openbi/rankindex/internal/adapters/repository"
	service "github.com/openbi/rankindex/internal/app"
	"github.com/openbi/rankindex/internal/config"
	"github.com/openbi/rankindex/pkg/logger"
	"github.com/openbi/rankindex/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	datasetMetricsInterval = 10 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if cfg.APIKey == "" {
		log.Warn(ctx, "no api_key configured; query endpoints will reject all requests")
	}

	// Dataset provider and background refresher. The initial load must
	// succeed before the server starts taking traffic.
	provider := repository.NewProvider()
	loader := repository.NewLoader(provider,
		repository.WithURL(cfg.DataURL),
		repository.WithFilePath(cfg.DataFile),
		repository.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.FetchTimeoutSeconds) * time.Second}),
		repository.WithRefreshInterval(time.Duration(cfg.RefreshIntervalSeconds)*time.Second),
		repository.WithLogger(log.Named("loader")),
	)
	if err := loader.Start(ctx); err != nil {
		log.Error(ctx, "initial dataset load failed", logger.Error(err))
		return
	}

	svc := service.New(
		service.WithStore(provider),
		service.WithLogger(log.Named("query")),
		service.WithDefaultLimit(cfg.DefaultPageLimit),
		service.WithMaxLimit(cfg.MaxPageLimit),
		service.WithTopLimit(cfg.TopCompaniesLimit),
	)

	go startDatasetMetricsUpdater(ctx, provider, loader)

	apiServer := api.NewServer(svc, svc,
		api.WithAPIKey(cfg.APIKey),
		api.WithRateLimit(cfg.RateLimitRequests, time.Duration(cfg.RateLimitWindowSeconds)*time.Second),
	)
	router := apiServer.Routes()
	swagger.Register(router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// startDatasetMetricsUpdater periodically publishes dataset age and size
// gauges from the current store.
func startDatasetMetricsUpdater(ctx context.Context, provider *repository.Provider, loader *repository.Loader) {
	ticker := time.NewTicker(datasetMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if last := loader.LastRefresh(); !last.IsZero() {
				metrics.UpdateDatasetAge(time.Since(last).Seconds())
			}
			industries, snapshots, entries := provider.Counts(ctx)
			metrics.UpdateDatasetStats(industries, snapshots, entries)
		}
	}
}
