package driver

import (
	"context"
	"os"
	"testing"

	"github.com/soundprediction/claimgraph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestNeo4j connects to the database named by NEO4J_TEST_URI or skips.
func newTestNeo4j(t *testing.T) *Neo4jDriver {
	t.Helper()
	uri := os.Getenv("NEO4J_TEST_URI")
	if uri == "" {
		t.Skip("NEO4J_TEST_URI not set")
	}
	user := os.Getenv("NEO4J_TEST_USER")
	if user == "" {
		user = "neo4j"
	}
	password := os.Getenv("NEO4J_TEST_PASSWORD")
	if password == "" {
		password = "neo4j123"
	}

	d, err := NewNeo4jDriver(uri, user, password, os.Getenv("NEO4J_TEST_DATABASE"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	ctx := context.Background()
	if err := d.VerifyConnectivity(ctx); err != nil {
		t.Skipf("neo4j not reachable: %v", err)
	}
	require.NoError(t, d.Clear(ctx))
	require.NoError(t, d.CreateIndices(ctx))
	return d
}

func TestNeo4jDriverRoundTrip(t *testing.T) {
	d := newTestNeo4j(t)
	ctx := context.Background()

	a, err := d.CreateNode(ctx, types.ClaimLabel, map[string]any{"text": "a", "doc_title": "T", "chunk_index": 0})
	require.NoError(t, err)
	b, err := d.CreateNode(ctx, types.ClaimLabel, map[string]any{"text": "b"})
	require.NoError(t, err)
	require.NoError(t, d.CreateEdge(ctx, a, b, types.EdgeTypeImplies, nil))

	node, err := d.GetNodeByID(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, types.ClaimLabel, node.Label)

	neighbors, err := d.OutNeighbors(ctx, a, types.EdgeTypeImplies)
	require.NoError(t, err)
	assert.Equal(t, []string{b}, neighbors)

	steps, err := Walk(ctx, d, a, types.EdgeTypeImplies, -1)
	require.NoError(t, err)
	assert.Len(t, steps, 2)

	facts, err := d.ExportFacts(ctx, types.ClaimLabel)
	require.NoError(t, err)
	assert.Contains(t, facts, "a -[IMPLIES]-> b")

	stats, err := d.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.NodeCount)
	assert.Equal(t, int64(1), stats.EdgesByType[types.EdgeTypeImplies])
}

func TestNeo4jDriverCreateEdgeByMatch(t *testing.T) {
	d := newTestNeo4j(t)
	ctx := context.Background()

	_, err := d.CreateNode(ctx, types.EntityLabel, map[string]any{"normalized": "drug x"})
	require.NoError(t, err)
	_, err = d.CreateNode(ctx, types.EntityLabel, map[string]any{"normalized": "nausea"})
	require.NoError(t, err)

	created, err := d.CreateEdgeByMatch(ctx,
		NodeRef{Label: types.EntityLabel, Property: "normalized", Value: "drug x"},
		NodeRef{Label: types.EntityLabel, Property: "normalized", Value: "nausea"},
		"CAUSES", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	_, err = d.CreateEdgeByMatch(ctx,
		NodeRef{Label: types.EntityLabel, Property: "normalized", Value: "missing"},
		NodeRef{Label: types.EntityLabel, Property: "normalized", Value: "nausea"},
		"CAUSES", nil)
	assert.ErrorIs(t, err, ErrNoMatch)
}
