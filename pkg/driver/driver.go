package driver

import (
	"errors"
	"time"

	"github.com/soundprediction/claimgraph/pkg/types"
)

var (
	// ErrNodeNotFound is returned when no node has the requested identifier.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoMatch is returned when a value-matched edge finds no endpoint pair.
	ErrNoMatch = errors.New("no nodes matched edge endpoints")

	// ErrInvalidIdentifier is returned for labels, property names or relationship
	// types that can't be safely placed in a query.
	ErrInvalidIdentifier = errors.New("invalid graph identifier")
)

// GraphProvider represents the type of graph database provider
type GraphProvider string

const (
	GraphProviderNeo4j  GraphProvider = "neo4j"
	GraphProviderMemory GraphProvider = "memory"
)

// NodeRef identifies nodes by label and property value.
type NodeRef struct {
	Label    types.NodeLabel
	Property string
	Value    any
}

// GraphStats holds summary counts for the whole graph.
type GraphStats struct {
	NodeCount    int64            `json:"node_count"`
	EdgeCount    int64            `json:"edge_count"`
	NodesByLabel map[string]int64 `json:"nodes_by_label"`
	EdgesByType  map[string]int64 `json:"edges_by_type"`
	LastUpdated  time.Time        `json:"last_updated"`
}

// GraphDriver defines the graph store capabilities the pipeline relies on.
type GraphDriver interface {
	NodeWriter
	EdgeWriter
	NodeReader
	Traverser
	FactExporter
	DatabaseAdmin

	// Provider returns the type of graph database provider.
	Provider() GraphProvider

	// Close releases all resources held by the driver.
	Close() error
}
