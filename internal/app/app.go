package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/heartcheck/internal/config"
	httpserver "github.com/yungbote/heartcheck/internal/http"
	"github.com/yungbote/heartcheck/internal/observability"
	"github.com/yungbote/heartcheck/internal/platform/logger"
	"github.com/yungbote/heartcheck/internal/platform/shutdown"
)

// Version is reported in traces; set at build time.
var Version = "dev"

type App struct {
	Log      *logger.Logger
	Cfg      *config.Config
	Metrics  *observability.Metrics
	Services Services
	Router   *gin.Engine

	server       *httpserver.Server
	otelShutdown func(context.Context) error
	closeSource  func() error
}

// New wires every component and loads the model. An artifact that is
// missing or unreadable aborts startup.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := wireLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Starting heartcheck", "env", cfg.Env, "config", cfg.Path, "version", Version)

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OTel.Enabled,
		ServiceName: cfg.OTel.ServiceName,
		Environment: cfg.Env,
		Version:     Version,
		Endpoint:    cfg.OTel.Endpoint,
		Headers:     cfg.OTel.Headers,
		Insecure:    cfg.OTel.Insecure,
		SampleRatio: cfg.OTel.SampleRatio,
	})

	var metrics *observability.Metrics
	if cfg.HTTP.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	src, closeSource, err := wireArtifactSource(ctx, log, cfg)
	if err != nil {
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, err
	}

	serviceset, err := wireServices(log, cfg, src, metrics)
	if err != nil {
		_ = closeSource()
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, err
	}

	if _, err := serviceset.Loader.Load(ctx); err != nil {
		_ = closeSource()
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, fmt.Errorf("load model: %w", err)
	}
	metrics.SetModelLoaded(true)

	handlerset := wireHandlers(log, serviceset)
	router := wireRouter(log, cfg, metrics, handlerset)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Metrics:      metrics,
		Services:     serviceset,
		Router:       router,
		server:       httpserver.NewServer(cfg.HTTP, router),
		otelShutdown: otelShutdown,
		closeSource:  closeSource,
	}, nil
}

// Run serves until ctx is cancelled or the listener fails, then shuts the
// server down within the configured timeout.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("HTTP server listening", "addr", a.server.Addr())
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		a.Log.Info("Shutting down")
		if err := shutdown.Graceful(a.Cfg.HTTP.ShutdownTimeout, a.server.Shutdown); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// Close flushes traces and logs and releases the artifact source.
func (a *App) Close() {
	if a == nil {
		return
	}
	err := shutdown.Graceful(a.Cfg.HTTP.ShutdownTimeout,
		a.otelShutdown,
		func(context.Context) error { return a.closeSource() },
	)
	if err != nil {
		a.Log.Warn("Shutdown incomplete", "error", err)
	}
	a.Log.Sync()
}

func wireLogger(cfg *config.Config) (*logger.Logger, error) {
	mode := "development"
	if cfg.IsProduction() {
		mode = "production"
	}
	return logger.New(logger.Config{
		Mode:       mode,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
}
