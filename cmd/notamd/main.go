package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/notam-briefing-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/notam-briefing-service/internal/adapter/kafka"
	"github.com/couchcryptid/notam-briefing-service/internal/app"
	"github.com/couchcryptid/notam-briefing-service/internal/config"
	"github.com/couchcryptid/notam-briefing-service/internal/observability"
	"github.com/couchcryptid/notam-briefing-service/internal/pipeline"
)

// alwaysReady is the readiness checker when no broker dependency is configured.
type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }

func main() {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	svc, err := app.New(cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to initialize service", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		ready  sharedobs.ReadinessChecker = alwaysReady{}
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		ready = reader

		transformer := pipeline.NewTransformer(svc.Briefer, logger)
		p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

		// Start briefing pipeline.
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
		logger.Info("kafka briefing pipeline enabled",
			"source_topic", cfg.KafkaSourceTopic, "sink_topic", cfg.KafkaSinkTopic)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, svc.Fetcher, svc.Briefer, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
