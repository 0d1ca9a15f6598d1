package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"QuantEase/internal/usecase"
	pkgch "QuantEase/pkg/clickhouse"
	"QuantEase/pkg/config"
	xhttp "QuantEase/pkg/http"
	pkgkafka "QuantEase/pkg/kafka"
	applogger "QuantEase/pkg/logger"
	"QuantEase/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	chClient   *pkgch.Client
	jobQueue   *queue.RedisQueue
	recorder   *usecase.RunRecorder
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. The consumer,
// ClickHouse client, job queue and recorder may be nil when the matching
// feature is disabled in config.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	jobQueue *queue.RedisQueue,
	recorder *usecase.RunRecorder,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		handler:  handler,
		consumer: consumer,
		kh:       kh,
		chClient: chClient,
		jobQueue: jobQueue,
		recorder: recorder,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverOpts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	}
	if a.cfg.Metrics.Enabled {
		serverOpts = append(serverOpts, xhttp.WithMetricsMiddleware(a.log, time.Second))
	}
	a.httpServer = xhttp.NewServer(a.handler, serverOpts...)

	// Start async job workers if configured
	if a.jobQueue != nil {
		if err := a.jobQueue.Start(); err != nil {
			a.log.Error("job queue start error", applogger.Error(err))
			return err
		}
		a.log.Info("job queue started", applogger.Int("workers", a.cfg.Queue.Workers))
	}

	// Start archive consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.log.Info("shutting down...")

	// Shutdown HTTP server first so no new runs arrive
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}

	// Stop job workers
	if a.jobQueue != nil {
		if err := a.jobQueue.Stop(shutdownCtx); err != nil {
			a.log.Warn("job queue stop error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close recorder resources (publisher/storage)
	if a.recorder != nil {
		a.recorder.Close()
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	// Final flush of aggregated logs
	a.log.RemoveCollector()

	a.log.Info("shutdown complete")
	return nil
}
