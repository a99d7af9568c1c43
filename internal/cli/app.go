package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/pfrederiksen/fis-results/internal/config"
	"github.com/pfrederiksen/fis-results/internal/fetcher"
	"github.com/pfrederiksen/fis-results/internal/logger"
	"github.com/pfrederiksen/fis-results/internal/scrape"
	"github.com/pfrederiksen/fis-results/internal/telemetry"
)

// app bundles the collaborators a command needs
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	service  *scrape.Service
	shutdown telemetry.ShutdownFunc
}

// loadConfig reads the layered config and applies flag overrides on top
func loadConfig(global *globalOptions, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(global.configPath)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}
	if global.verbose {
		cfg.LogLevel = string(logger.LevelDebug)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp builds the logger, tracer and scrape service for cfg
func newApp(ctx context.Context, cfg *config.Config, logOutput io.Writer, opts ...scrape.Option) (*app, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	log := logger.New(level, logOutput)
	logger.SetDefault(log)

	schema, err := cfg.NormalizerSchema()
	if err != nil {
		return nil, err
	}

	f, err := fetcher.New(cfg.FetcherOptions())
	if err != nil {
		return nil, fmt.Errorf("creating fetcher: %w", err)
	}

	shutdown, err := telemetry.Setup(ctx, "fis-results", Version, cfg.TraceEndpoint)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	opts = append([]scrape.Option{
		scrape.WithRetryPolicy(cfg.RetryPolicy()),
		scrape.WithSchema(schema),
		scrape.WithLogger(log),
	}, opts...)

	log.Debug("configuration loaded", logger.Fields{
		"url_template": cfg.URLTemplate,
		"timeout":      cfg.Timeout.String(),
		"attempts":     cfg.Retry.Attempts,
		"schema":       schema.Name,
	})

	return &app{
		cfg:      cfg,
		log:      log,
		service:  scrape.New(f, opts...),
		shutdown: shutdown,
	}, nil
}

func (a *app) close() {
	if err := a.shutdown(context.Background()); err != nil {
		a.log.Warn("tracer shutdown failed", logger.Fields{"error": err.Error()})
	}
}
