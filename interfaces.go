package claimgraph

import (
	"context"

	"github.com/soundprediction/claimgraph/pkg/driver"
	"github.com/soundprediction/claimgraph/pkg/types"
)

// Consumers should depend on the smallest interface that meets their needs.

// DocumentIngester runs documents through extraction, deduplication and
// graph ingestion.
type DocumentIngester interface {
	// IngestSupportingDocument mints an id for the document, then persists its
	// entities, claims and their edges. It returns the minted id.
	IngestSupportingDocument(ctx context.Context, req DocumentRequest) (int64, error)

	// IngestMainDocument persists the document's claims as Propositions.
	IngestMainDocument(ctx context.Context, req DocumentRequest) error
}

// ContradictionFinder judges persisted propositions against resource claims.
type ContradictionFinder interface {
	// AnalyzeContradictions analyzes every persisted proposition.
	AnalyzeContradictions(ctx context.Context) ([]types.PropositionResult, error)
}

// GraphExplorer exposes read-only views of the graph.
type GraphExplorer interface {
	// Walk visits nodes reachable from a start node depth first.
	Walk(ctx context.Context, graphID, relType string, maxDepth int) ([]driver.WalkStep, error)

	// Stats returns node and edge counts.
	Stats(ctx context.Context) (*driver.GraphStats, error)

	// Health checks that the graph store is reachable.
	Health(ctx context.Context) error
}

// ClaimGraph is the full pipeline surface.
type ClaimGraph interface {
	DocumentIngester
	ContradictionFinder
	GraphExplorer

	// Close releases the graph driver and the completion client.
	Close(ctx context.Context) error
}

var _ ClaimGraph = (*Client)(nil)
