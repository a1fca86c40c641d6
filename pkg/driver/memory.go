package driver

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/soundprediction/claimgraph/pkg/types"
)

var errClosed = errors.New("memory driver is closed")

type memoryEdge struct {
	relType    string
	source     string
	target     string
	properties map[string]any
}

// MemoryDriver is an in-process GraphDriver. Nodes and edges live for the
// lifetime of the driver.
type MemoryDriver struct {
	mu     sync.RWMutex
	nextID int
	order  []string
	nodes  map[string]*types.GraphNode
	edges  []memoryEdge
	closed bool
}

// NewMemoryDriver creates an empty in-memory graph.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{nodes: make(map[string]*types.GraphNode)}
}

// CreateNode implements NodeWriter.
func (m *MemoryDriver) CreateNode(_ context.Context, label types.NodeLabel, properties map[string]any) (string, error) {
	if err := ValidateIdentifier(string(label)); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", errClosed
	}

	m.nextID++
	id := fmt.Sprintf("mem:%d", m.nextID)
	m.nodes[id] = &types.GraphNode{ID: id, Label: label, Properties: copyProperties(properties)}
	m.order = append(m.order, id)
	return id, nil
}

// CreateEdge implements EdgeWriter.
func (m *MemoryDriver) CreateEdge(_ context.Context, sourceID, targetID, relType string, properties map[string]any) error {
	if err := ValidateIdentifier(relType); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}

	if _, ok := m.nodes[sourceID]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, sourceID)
	}
	if _, ok := m.nodes[targetID]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, targetID)
	}
	m.edges = append(m.edges, memoryEdge{relType: relType, source: sourceID, target: targetID, properties: copyProperties(properties)})
	return nil
}

// CreateEdgeByMatch implements EdgeWriter.
func (m *MemoryDriver) CreateEdgeByMatch(_ context.Context, from, to NodeRef, relType string, properties map[string]any) (int, error) {
	for _, id := range []string{string(from.Label), from.Property, string(to.Label), to.Property, relType} {
		if err := ValidateIdentifier(id); err != nil {
			return 0, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, errClosed
	}

	sources := m.match(from.Label, from.Property, from.Value)
	targets := m.match(to.Label, to.Property, to.Value)
	created := 0
	for _, s := range sources {
		for _, t := range targets {
			m.edges = append(m.edges, memoryEdge{relType: relType, source: s, target: t, properties: copyProperties(properties)})
			created++
		}
	}
	if created == 0 {
		return 0, ErrNoMatch
	}
	return created, nil
}

// GetNodeByID implements NodeReader.
func (m *MemoryDriver) GetNodeByID(_ context.Context, id string) (*types.GraphNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return cloneNode(node), nil
}

// GetNodesByLabel implements NodeReader.
func (m *MemoryDriver) GetNodesByLabel(_ context.Context, label types.NodeLabel) ([]*types.GraphNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	nodes := []*types.GraphNode{}
	for _, id := range m.order {
		if n := m.nodes[id]; n.Label == label {
			nodes = append(nodes, cloneNode(n))
		}
	}
	return nodes, nil
}

// FindNodes implements NodeReader.
func (m *MemoryDriver) FindNodes(_ context.Context, label types.NodeLabel, property string, value any) ([]*types.GraphNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.match(label, property, value)
	nodes := make([]*types.GraphNode, len(ids))
	for i, id := range ids {
		nodes[i] = cloneNode(m.nodes[id])
	}
	return nodes, nil
}

// OutNeighbors implements Traverser.
func (m *MemoryDriver) OutNeighbors(_ context.Context, id, relType string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	neighbors := []string{}
	for _, e := range m.edges {
		if e.source == id && (relType == "" || e.relType == relType) {
			neighbors = append(neighbors, e.target)
		}
	}
	return neighbors, nil
}

// Edges returns a snapshot of all edges in creation order.
func (m *MemoryDriver) Edges() []types.GraphEdge {
	m.mu.RLock()
	defer m.mu.RUnlock()

	edges := make([]types.GraphEdge, len(m.edges))
	for i, e := range m.edges {
		edges[i] = types.GraphEdge{
			ID:         fmt.Sprintf("mem-edge:%d", i+1),
			Type:       e.relType,
			SourceID:   e.source,
			TargetID:   e.target,
			Properties: copyProperties(e.properties),
		}
	}
	return edges
}

// ExportFacts implements FactExporter.
func (m *MemoryDriver) ExportFacts(_ context.Context, labels ...types.NodeLabel) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	include := make(map[types.NodeLabel]bool, len(labels))
	for _, l := range labels {
		include[l] = true
	}

	facts := []string{}
	for _, id := range m.order {
		n := m.nodes[id]
		if !include[n.Label] {
			continue
		}
		if line := NodeFact(n); line != "" {
			facts = append(facts, line)
		}
	}
	for _, e := range m.edges {
		s, t := m.nodes[e.source], m.nodes[e.target]
		if include[s.Label] && include[t.Label] {
			facts = append(facts, EdgeFact(s, e.relType, t))
		}
	}
	return facts, nil
}

// CreateIndices implements DatabaseAdmin. Lookups are linear scans.
func (m *MemoryDriver) CreateIndices(_ context.Context) error {
	return nil
}

// GetStats implements DatabaseAdmin.
func (m *MemoryDriver) GetStats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &GraphStats{
		NodeCount:    int64(len(m.nodes)),
		EdgeCount:    int64(len(m.edges)),
		NodesByLabel: make(map[string]int64),
		EdgesByType:  make(map[string]int64),
		LastUpdated:  time.Now(),
	}
	for _, n := range m.nodes {
		stats.NodesByLabel[string(n.Label)]++
	}
	for _, e := range m.edges {
		stats.EdgesByType[e.relType]++
	}
	return stats, nil
}

// Clear implements DatabaseAdmin.
func (m *MemoryDriver) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nodes = make(map[string]*types.GraphNode)
	m.order = nil
	m.edges = nil
	return nil
}

// VerifyConnectivity implements DatabaseAdmin.
func (m *MemoryDriver) VerifyConnectivity(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return errClosed
	}
	return nil
}

// Provider returns GraphProviderMemory.
func (m *MemoryDriver) Provider() GraphProvider {
	return GraphProviderMemory
}

// Close marks the driver closed; later writes fail.
func (m *MemoryDriver) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// match returns the ids of nodes under label whose property equals value.
// Caller must hold the lock.
func (m *MemoryDriver) match(label types.NodeLabel, property string, value any) []string {
	ids := []string{}
	for _, id := range m.order {
		n := m.nodes[id]
		if n.Label != label {
			continue
		}
		if v, ok := n.Properties[property]; ok && reflect.DeepEqual(v, value) {
			ids = append(ids, id)
		}
	}
	return ids
}

func cloneNode(n *types.GraphNode) *types.GraphNode {
	return &types.GraphNode{ID: n.ID, Label: n.Label, Properties: copyProperties(n.Properties)}
}

func copyProperties(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
