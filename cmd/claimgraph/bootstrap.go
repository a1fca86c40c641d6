package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/soundprediction/claimgraph"
	"github.com/soundprediction/claimgraph/pkg/alert"
	"github.com/soundprediction/claimgraph/pkg/config"
	"github.com/soundprediction/claimgraph/pkg/docstore"
	"github.com/soundprediction/claimgraph/pkg/driver"
	"github.com/soundprediction/claimgraph/pkg/logger"
	"github.com/soundprediction/claimgraph/pkg/nlp"
	"github.com/soundprediction/claimgraph/pkg/telemetry"
)

// app holds everything a command needs. Fields are nil when the command did
// not ask for them.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	graph   driver.GraphDriver
	store   *docstore.Store
	client  *claimgraph.Client
	flushes []func() error
}

// components selects what bootstrap opens.
type components struct {
	graph    bool
	store    bool
	pipeline bool
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bootstrap builds the requested components. The pipeline implies both
// stores. Call close when done.
func bootstrap(ctx context.Context, cfg *config.Config, want components) (*app, error) {
	a := &app{cfg: cfg}
	if want.pipeline {
		want.graph, want.store = true, true
	}

	handler := logger.NewHandler(os.Stderr, cfg.Log.Format, logger.ParseLevel(cfg.Log.Level))
	if cfg.Telemetry.Enabled && cfg.Telemetry.ParquetPath != "" {
		parquetHandler, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize error tracking: %v\n", err)
		} else {
			handler = parquetHandler
			a.flushes = append(a.flushes, parquetHandler.Flush)
		}
	}
	a.logger = slog.New(handler)

	if want.store {
		store, err := docstore.Open(ctx, cfg.Documents.Driver, cfg.Documents.DSN)
		if err != nil {
			return nil, err
		}
		a.store = store
		if err := store.Migrate(ctx); err != nil {
			a.close(ctx)
			return nil, err
		}
		if cfg.Telemetry.SQL {
			sqlHandler, err := telemetry.NewSQLHandler(handler, store.DB())
			if err != nil {
				a.logger.Warn("SQL error tracking disabled", "error", err)
			} else {
				a.logger = slog.New(sqlHandler)
			}
		}
	}

	if want.graph {
		graph, err := openGraph(cfg.Graph)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		a.graph = graph
	}

	if want.pipeline {
		nlpClient, err := buildNLPClient(cfg, a.logger)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		a.client = claimgraph.NewClient(a.graph, nlpClient, a.store, &claimgraph.Options{
			ChunkSize:           cfg.Pipeline.ChunkSize,
			TopK:                cfg.Pipeline.TopK,
			AnalysisConcurrency: cfg.Pipeline.AnalysisConcurrency,
			LinkByProperty:      cfg.Pipeline.LinkByProperty,
		}, a.logger)
	}

	return a, nil
}

func openGraph(cfg config.GraphConfig) (driver.GraphDriver, error) {
	switch cfg.Driver {
	case string(driver.GraphProviderMemory):
		return driver.NewMemoryDriver(), nil
	case string(driver.GraphProviderNeo4j):
		graph, err := driver.NewNeo4jDriver(cfg.URI, cfg.Username, cfg.Password, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
		}
		return graph, nil
	default:
		return nil, fmt.Errorf("unsupported graph driver: %s", cfg.Driver)
	}
}

// buildNLPClient wraps the provider client with token tracking, rate
// limiting, circuit breaking and caching, innermost first.
func buildNLPClient(cfg *config.Config, log *slog.Logger) (nlp.Client, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.NLP.Provider != "openai" {
		return nil, fmt.Errorf("unsupported NLP provider: %s", cfg.NLP.Provider)
	}
	if cfg.NLP.APIKey == "" && cfg.NLP.BaseURL == "" {
		return nil, errors.New("nlp.api_key (or OPENAI_API_KEY) is required")
	}

	nlpConfig := nlp.Config{
		Model:       cfg.NLP.Model,
		Temperature: &cfg.NLP.Temperature,
		BaseURL:     cfg.NLP.BaseURL,
	}
	if cfg.NLP.MaxTokens > 0 {
		nlpConfig.MaxTokens = &cfg.NLP.MaxTokens
	}
	base, err := nlp.NewOpenAIClient(cfg.NLP.APIKey, nlpConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create NLP client: %w", err)
	}

	var client nlp.Client = base
	if cfg.Telemetry.Enabled && cfg.Telemetry.TokenPath != "" {
		tracker, err := nlp.NewTokenTracker(cfg.Telemetry.TokenPath)
		if err != nil {
			log.Warn("Token tracking disabled", "error", err)
		} else {
			client = nlp.NewTokenTrackingClient(client, tracker, log)
		}
	}
	if cfg.NLP.RateLimit > 0 {
		client = nlp.NewRateLimitClient(client, cfg.NLP.RateLimit, cfg.NLP.RateBurst)
	}
	if cfg.CircuitBreaker.Enabled {
		client = nlp.NewCircuitBreakerClient(client, cfg.CircuitBreaker, alert.New(cfg.Alert, log), cfg.NLP.Model, log)
	}
	if cfg.NLP.CacheTTL > 0 {
		client = nlp.NewCachingClient(client, time.Duration(cfg.NLP.CacheTTL)*time.Second)
	}

	log.Debug("Completion client ready", "provider", cfg.NLP.Provider, "model", cfg.NLP.Model)
	return client, nil
}

// close releases everything bootstrap opened.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.client != nil {
		errs = append(errs, a.client.Close(ctx))
	} else if a.graph != nil {
		errs = append(errs, a.graph.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	for _, flush := range a.flushes {
		errs = append(errs, flush())
	}
	return errors.Join(errs...)
}
