package driver

import (
	"context"

	"github.com/soundprediction/claimgraph/pkg/types"
)

// Consumers should depend on the smallest interface that meets their needs.

// NodeWriter creates nodes.
type NodeWriter interface {
	// CreateNode stores a node with flat scalar properties and returns its identifier.
	CreateNode(ctx context.Context, label types.NodeLabel, properties map[string]any) (string, error)
}

// EdgeWriter creates directed, typed edges.
type EdgeWriter interface {
	// CreateEdge links two nodes by the identifiers CreateNode returned.
	CreateEdge(ctx context.Context, sourceID, targetID, relType string, properties map[string]any) error

	// CreateEdgeByMatch links every node matching from to every node matching to
	// and returns how many edges were created. It returns ErrNoMatch when none were.
	CreateEdgeByMatch(ctx context.Context, from, to NodeRef, relType string, properties map[string]any) (int, error)
}

// NodeReader reads stored nodes.
type NodeReader interface {
	// GetNodeByID retrieves a node or returns ErrNodeNotFound.
	GetNodeByID(ctx context.Context, id string) (*types.GraphNode, error)

	// GetNodesByLabel retrieves all nodes under a label in creation order.
	GetNodesByLabel(ctx context.Context, label types.NodeLabel) ([]*types.GraphNode, error)

	// FindNodes retrieves the nodes under label whose property equals value.
	FindNodes(ctx context.Context, label types.NodeLabel, property string, value any) ([]*types.GraphNode, error)
}

// Traverser follows outgoing edges.
type Traverser interface {
	// OutNeighbors returns the identifiers of nodes reachable over one outgoing
	// edge of relType, in edge creation order. An empty relType follows every type.
	OutNeighbors(ctx context.Context, id, relType string) ([]string, error)
}

// FactExporter renders part of the graph as plain-text statements.
type FactExporter interface {
	// ExportFacts returns one fact per node under the given labels followed by one
	// fact per edge whose endpoints both carry those labels.
	ExportFacts(ctx context.Context, labels ...types.NodeLabel) ([]string, error)
}

// DatabaseAdmin provides administrative operations for database maintenance.
type DatabaseAdmin interface {
	// CreateIndices creates the lookup indexes used by value-matched edges.
	CreateIndices(ctx context.Context) error

	// GetStats retrieves statistics about the graph.
	GetStats(ctx context.Context) (*GraphStats, error)

	// Clear deletes every node and edge.
	Clear(ctx context.Context) error

	// VerifyConnectivity checks that the store is reachable.
	VerifyConnectivity(ctx context.Context) error
}

// WalkReader is what Walk needs from a driver.
type WalkReader interface {
	NodeReader
	Traverser
}

// Ensure implementations satisfy the full interface.
var (
	_ GraphDriver = (*Neo4jDriver)(nil)
	_ GraphDriver = (*MemoryDriver)(nil)
)
