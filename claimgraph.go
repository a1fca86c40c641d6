package claimgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soundprediction/claimgraph/pkg/chunker"
	"github.com/soundprediction/claimgraph/pkg/contradiction"
	"github.com/soundprediction/claimgraph/pkg/dedupe"
	"github.com/soundprediction/claimgraph/pkg/docstore"
	"github.com/soundprediction/claimgraph/pkg/driver"
	"github.com/soundprediction/claimgraph/pkg/extraction"
	"github.com/soundprediction/claimgraph/pkg/ingest"
	"github.com/soundprediction/claimgraph/pkg/nlp"
	"github.com/soundprediction/claimgraph/pkg/types"
)

var (
	// ErrInvalidDocument is returned when a document request fails validation.
	// It wraps the underlying types error.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrNoIDSource is returned when a supporting document is ingested by a
	// client built without an id source.
	ErrNoIDSource = errors.New("no document id source configured")
)

// Options tunes the pipeline. Zero values take the package defaults.
type Options struct {
	// ChunkSize is the chunk length in characters.
	ChunkSize int
	// TopK is the number of candidates judged pairwise per proposition.
	TopK int
	// AnalysisConcurrency bounds how many propositions are analyzed at once.
	AnalysisConcurrency int
	// LinkByProperty links edges by property value instead of graph id.
	LinkByProperty bool
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		ChunkSize:           chunker.DefaultSize,
		TopK:                contradiction.DefaultTopK,
		AnalysisConcurrency: 1,
	}
}

// DocumentRequest is a document submitted for ingestion.
type DocumentRequest struct {
	Title          string        `json:"title"`
	Content        string        `json:"content"`
	Schema         *types.Schema `json:"schema"`
	ProjectContext string        `json:"project_context,omitempty"`
}

// Client is the main implementation of the ClaimGraph interface.
type Client struct {
	driver    driver.GraphDriver
	nlp       nlp.Client
	ids       docstore.IDSource
	extractor *extraction.Extractor
	dedupe    *dedupe.Deduplicator
	ingestor  *ingest.Ingestor
	analyzer  *contradiction.Analyzer
	opts      Options
	logger    *slog.Logger
}

// NewClient creates a Client. A nil ids source makes supporting-document
// ingestion fail with ErrNoIDSource; nil opts use DefaultOptions; a nil
// logger uses slog.Default().
func NewClient(d driver.GraphDriver, nlpClient nlp.Client, ids docstore.IDSource, opts *Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	resolved := *DefaultOptions()
	if opts != nil {
		if opts.ChunkSize > 0 {
			resolved.ChunkSize = opts.ChunkSize
		}
		if opts.TopK > 0 {
			resolved.TopK = opts.TopK
		}
		if opts.AnalysisConcurrency > 0 {
			resolved.AnalysisConcurrency = opts.AnalysisConcurrency
		}
		resolved.LinkByProperty = opts.LinkByProperty
	}

	return &Client{
		driver:    d,
		nlp:       nlpClient,
		ids:       ids,
		extractor: extraction.NewExtractor(nlpClient, logger),
		dedupe:    dedupe.NewDeduplicator(nlpClient, logger),
		ingestor:  ingest.NewIngestor(d, logger, &ingest.Options{LinkByProperty: resolved.LinkByProperty}),
		analyzer: contradiction.NewAnalyzer(d, nlpClient, logger, &contradiction.Options{
			TopK:        resolved.TopK,
			Concurrency: resolved.AnalysisConcurrency,
		}),
		opts:   resolved,
		logger: logger,
	}
}

// GetDriver returns the underlying graph driver
func (c *Client) GetDriver() driver.GraphDriver {
	return c.driver
}

// GetNLP returns the completion client
func (c *Client) GetNLP() nlp.Client {
	return c.nlp
}

// Options returns the resolved pipeline options.
func (c *Client) Options() Options {
	return c.opts
}

// AnalyzeContradictions analyzes every persisted proposition against the
// resource claims in the graph.
func (c *Client) AnalyzeContradictions(ctx context.Context) ([]types.PropositionResult, error) {
	return c.analyzer.Analyze(ctx)
}

// Walk visits the nodes reachable from graphID over outgoing edges of relType
// (every type when empty), up to maxDepth hops (unbounded when negative).
func (c *Client) Walk(ctx context.Context, graphID, relType string, maxDepth int) ([]driver.WalkStep, error) {
	return driver.Walk(ctx, c.driver, graphID, relType, maxDepth)
}

// Stats returns node and edge counts for the graph.
func (c *Client) Stats(ctx context.Context) (*driver.GraphStats, error) {
	stats, err := c.driver.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph stats: %w", err)
	}
	return stats, nil
}

// Health checks that the graph store is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// Close closes the graph driver and the completion client.
func (c *Client) Close(ctx context.Context) error {
	var errs []error
	if err := c.driver.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close graph driver: %w", err))
	}
	if c.nlp != nil {
		if err := c.nlp.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close completion client: %w", err))
		}
	}
	return errors.Join(errs...)
}
