// Command alertgen runs the weather alert derivation service: it loads the
// newest parsed meteogram dataset, derives per-city alerts, and submits them
// to the configured gateway and Kafka sinks, either once or on an interval.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/meteoalerta/meteo-alert-service/internal/adapter/http"
	kafkaadapter "github.com/meteoalerta/meteo-alert-service/internal/adapter/kafka"
	"github.com/meteoalerta/meteo-alert-service/internal/config"
	"github.com/meteoalerta/meteo-alert-service/internal/domain"
	"github.com/meteoalerta/meteo-alert-service/internal/gateway"
	"github.com/meteoalerta/meteo-alert-service/internal/observability"
	"github.com/meteoalerta/meteo-alert-service/internal/pipeline"
	"github.com/meteoalerta/meteo-alert-service/internal/registry"
	"github.com/meteoalerta/meteo-alert-service/internal/report"
	"github.com/meteoalerta/meteo-alert-service/internal/source"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	reg, err := registry.LoadCSV(cfg.RegistryPath)
	if err != nil {
		logger.Error("failed to load polygon registry", "error", err, "path", cfg.RegistryPath)
		os.Exit(1)
	}
	logger.Info("polygon registry loaded", "polygons", len(reg.Polygons()))

	engine := domain.NewEngine(reg, domain.Thresholds{
		HumidityMin: cfg.HumidityMinThreshold,
		WindMaxSq:   cfg.WindMaxThreshold,
		RainMax:     cfg.RainMaxThreshold,
	}, cfg.RainEnabled, logger)

	src := source.NewFileSource(cfg.MeteogramDir, cfg.MeteogramFile, logger)
	builder := report.NewBuilder(nil, nil, logger, metrics)

	opts := pipeline.Options{
		Interval: cfg.ScanInterval,
		RunOnce:  cfg.RunOnce,
	}

	if cfg.GatewayEnabled {
		opts.Gateway = gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayNotifyURL,
			cfg.GatewayEmail, cfg.GatewayPassword, cfg.GatewayTimeout, logger, metrics)
		logger.Info("gateway delivery enabled", "base_url", cfg.GatewayBaseURL)
	} else {
		logger.Info("gateway delivery disabled, running standalone")
	}

	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		opts.Sink = kafkaWriter
		logger.Info("kafka sink enabled", "topic", cfg.KafkaAlertTopic)
	}

	p := pipeline.New(src, engine, builder, logger, metrics, opts)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p.LastRun, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	pipeDone := make(chan error, 1)
	go func() { pipeDone <- p.Run(ctx) }()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-pipeDone:
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	if runErr != nil {
		logger.Error("pipeline failed", "error", runErr)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
