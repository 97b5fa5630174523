// Command synop-etl polls ogimet for the latest SYNOP bulletin, decodes it,
// and publishes one GeoJSON feature per station to Kafka.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/synop-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/synop-etl/internal/adapter/kafka"
	"github.com/couchcryptid/synop-etl/internal/adapter/ogimet"
	"github.com/couchcryptid/synop-etl/internal/config"
	"github.com/couchcryptid/synop-etl/internal/observability"
	"github.com/couchcryptid/synop-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := ogimet.NewClient(cfg, metrics, logger)
	source := ogimet.NewCachedSource(client, cfg.FetchCacheSize, cfg.FetchCacheTTL, metrics)
	logger.Info("bulletin source configured",
		"base_url", cfg.OgimetBaseURL,
		"country", cfg.OgimetCountry,
		"timeout", cfg.OgimetTimeout,
		"max_retries", cfg.OgimetMaxRetries,
		"cache_size", cfg.FetchCacheSize,
		"cache_ttl", cfg.FetchCacheTTL,
	)

	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(logger)

	p := pipeline.New(source, transformer, writer, logger, metrics, cfg.PollInterval)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, source, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	pipelineDone := make(chan struct{})
	go func() {
		defer close(pipelineDone)
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-pipelineDone:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
