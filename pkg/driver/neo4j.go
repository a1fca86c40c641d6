package driver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/soundprediction/claimgraph/pkg/types"
)

// Neo4jDriver implements the GraphDriver interface for Neo4j databases.
type Neo4jDriver struct {
	client   neo4j.DriverWithContext
	database string
	uri      string
}

// NewNeo4jDriver creates a new Neo4j driver instance.
func NewNeo4jDriver(uri, username, password, database string) (*Neo4jDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	return &Neo4jDriver{
		client:   driver,
		database: database,
		uri:      uri,
	}, nil
}

// URI returns the address the driver connects to.
func (n *Neo4jDriver) URI() string {
	return n.uri
}

func (n *Neo4jDriver) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database, AccessMode: mode})
}

// CreateNode implements NodeWriter.
func (n *Neo4jDriver) CreateNode(ctx context.Context, label types.NodeLabel, properties map[string]any) (string, error) {
	query, err := createNodeQuery(label)
	if err != nil {
		return "", err
	}

	session := n.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"props": properties})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return MustString(record, "id")
	})
	if err != nil {
		return "", fmt.Errorf("failed to create %s node: %w", label, err)
	}
	return result.(string), nil
}

// CreateEdge implements EdgeWriter.
func (n *Neo4jDriver) CreateEdge(ctx context.Context, sourceID, targetID, relType string, properties map[string]any) error {
	query, err := createEdgeQuery(relType)
	if err != nil {
		return err
	}

	created, err := n.writeCount(ctx, query, map[string]any{
		"source": sourceID,
		"target": targetID,
		"props":  nonNil(properties),
	})
	if err != nil {
		return fmt.Errorf("failed to create %s edge: %w", relType, err)
	}
	if created == 0 {
		return fmt.Errorf("%w: %s or %s", ErrNodeNotFound, sourceID, targetID)
	}
	return nil
}

// CreateEdgeByMatch implements EdgeWriter.
func (n *Neo4jDriver) CreateEdgeByMatch(ctx context.Context, from, to NodeRef, relType string, properties map[string]any) (int, error) {
	query, err := createEdgeByMatchQuery(from, to, relType)
	if err != nil {
		return 0, err
	}

	created, err := n.writeCount(ctx, query, map[string]any{
		"fromValue": from.Value,
		"toValue":   to.Value,
		"props":     nonNil(properties),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create %s edge: %w", relType, err)
	}
	if created == 0 {
		return 0, ErrNoMatch
	}
	return int(created), nil
}

// writeCount runs a write query returning a single "created" count.
func (n *Neo4jDriver) writeCount(ctx context.Context, query string, params map[string]any) (int64, error) {
	session := n.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return MustInt64(record, "created")
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

// GetNodeByID implements NodeReader.
func (n *Neo4jDriver) GetNodeByID(ctx context.Context, id string) (*types.GraphNode, error) {
	nodes, err := n.readNodes(ctx, "MATCH (n) WHERE elementId(n) = $id RETURN n", map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return nodes[0], nil
}

// GetNodesByLabel implements NodeReader.
func (n *Neo4jDriver) GetNodesByLabel(ctx context.Context, label types.NodeLabel) ([]*types.GraphNode, error) {
	if err := ValidateIdentifier(string(label)); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("MATCH (n:%s) RETURN n ORDER BY id(n)", label)
	return n.readNodes(ctx, query, nil)
}

// FindNodes implements NodeReader.
func (n *Neo4jDriver) FindNodes(ctx context.Context, label types.NodeLabel, property string, value any) ([]*types.GraphNode, error) {
	query, err := findNodesQuery(label, property)
	if err != nil {
		return nil, err
	}
	return n.readNodes(ctx, query, map[string]any{"value": value})
}

func (n *Neo4jDriver) readNodes(ctx context.Context, query string, params map[string]any) ([]*types.GraphNode, error) {
	records, err := n.readRecords(ctx, query, params)
	if err != nil {
		return nil, err
	}

	nodes := make([]*types.GraphNode, 0, len(records))
	for _, record := range records {
		node, err := MustDBNode(record, "n")
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, nodeFromDBNode(node))
	}
	return nodes, nil
}

func (n *Neo4jDriver) readRecords(ctx context.Context, query string, params map[string]any) ([]*db.Record, error) {
	session := n.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return MustRecordSlice(result, "records")
}

// OutNeighbors implements Traverser.
func (n *Neo4jDriver) OutNeighbors(ctx context.Context, id, relType string) ([]string, error) {
	query, err := outNeighborsQuery(relType)
	if err != nil {
		return nil, err
	}

	records, err := n.readRecords(ctx, query, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(records))
	for _, record := range records {
		neighbor, err := MustString(record, "id")
		if err != nil {
			return nil, err
		}
		ids = append(ids, neighbor)
	}
	return ids, nil
}

// ExportFacts implements FactExporter.
func (n *Neo4jDriver) ExportFacts(ctx context.Context, labels ...types.NodeLabel) ([]string, error) {
	names, err := labelStrings(labels)
	if err != nil {
		return nil, err
	}
	params := map[string]any{"labels": names}

	nodes, err := n.readNodes(ctx, `
		MATCH (n)
		WHERE any(l IN labels(n) WHERE l IN $labels)
		RETURN n
		ORDER BY id(n)`, params)
	if err != nil {
		return nil, fmt.Errorf("failed to export nodes: %w", err)
	}

	facts := []string{}
	for _, node := range nodes {
		if line := NodeFact(node); line != "" {
			facts = append(facts, line)
		}
	}

	records, err := n.readRecords(ctx, `
		MATCH (a)-[r]->(b)
		WHERE any(l IN labels(a) WHERE l IN $labels) AND any(l IN labels(b) WHERE l IN $labels)
		RETURN a, type(r) AS rel_type, b
		ORDER BY id(r)`, params)
	if err != nil {
		return nil, fmt.Errorf("failed to export edges: %w", err)
	}

	for _, record := range records {
		source, err := MustDBNode(record, "a")
		if err != nil {
			return nil, err
		}
		target, err := MustDBNode(record, "b")
		if err != nil {
			return nil, err
		}
		relType, err := MustString(record, "rel_type")
		if err != nil {
			return nil, err
		}
		facts = append(facts, EdgeFact(nodeFromDBNode(source), relType, nodeFromDBNode(target)))
	}

	return facts, nil
}

// CreateIndices implements DatabaseAdmin.
func (n *Neo4jDriver) CreateIndices(ctx context.Context) error {
	session := n.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, indexQuery := range GetRangeIndices(GraphProviderNeo4j) {
		result, err := session.Run(ctx, indexQuery, nil)
		if err == nil {
			_, err = result.Consume(ctx)
		}
		if err != nil {
			if !strings.Contains(err.Error(), "already exists") && !strings.Contains(err.Error(), "An equivalent") {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}
	}

	return nil
}

// GetStats implements DatabaseAdmin.
func (n *Neo4jDriver) GetStats(ctx context.Context) (*GraphStats, error) {
	session := n.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		nodeRes, err := tx.Run(ctx, `
			MATCH (n)
			UNWIND labels(n) AS label
			RETURN label, count(n) AS node_count
			ORDER BY label`, nil)
		if err != nil {
			return nil, err
		}
		nodeRecords, err := nodeRes.Collect(ctx)
		if err != nil {
			return nil, err
		}

		totalRes, err := tx.Run(ctx, "MATCH (n) RETURN count(n) AS total_nodes", nil)
		if err != nil {
			return nil, err
		}
		totalRecord, err := totalRes.Single(ctx)
		if err != nil {
			return nil, err
		}

		edgeRes, err := tx.Run(ctx, `
			MATCH ()-[r]->()
			RETURN type(r) AS edge_type, count(r) AS edge_count
			ORDER BY edge_type`, nil)
		if err != nil {
			return nil, err
		}
		edgeRecords, err := edgeRes.Collect(ctx)
		if err != nil {
			return nil, err
		}

		return map[string]any{
			"nodes":       nodeRecords,
			"edges":       edgeRecords,
			"total_nodes": totalRecord,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read graph stats: %w", err)
	}

	data := result.(map[string]any)
	stats := &GraphStats{
		NodesByLabel: make(map[string]int64),
		EdgesByType:  make(map[string]int64),
		LastUpdated:  time.Now(),
	}

	if total, err := MustInt64(data["total_nodes"].(*db.Record), "total_nodes"); err == nil {
		stats.NodeCount = total
	}
	for _, record := range data["nodes"].([]*db.Record) {
		label, lerr := MustString(record, "label")
		count, cerr := MustInt64(record, "node_count")
		if lerr == nil && cerr == nil {
			stats.NodesByLabel[label] = count
		}
	}
	for _, record := range data["edges"].([]*db.Record) {
		edgeType, terr := MustString(record, "edge_type")
		count, cerr := MustInt64(record, "edge_count")
		if terr == nil && cerr == nil {
			stats.EdgesByType[edgeType] = count
			stats.EdgeCount += count
		}
	}

	return stats, nil
}

// Clear implements DatabaseAdmin.
func (n *Neo4jDriver) Clear(ctx context.Context) error {
	session := n.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (n) DETACH DELETE n", nil)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to clear graph: %w", err)
	}
	return nil
}

// VerifyConnectivity checks if the driver can connect to the database.
func (n *Neo4jDriver) VerifyConnectivity(ctx context.Context) error {
	return n.client.VerifyConnectivity(ctx)
}

// Provider returns GraphProviderNeo4j.
func (n *Neo4jDriver) Provider() GraphProvider {
	return GraphProviderNeo4j
}

func (n *Neo4jDriver) Close() error {
	return n.client.Close(context.Background())
}

// nodeFromDBNode converts a driver node. Nodes carry exactly one pipeline
// label; the first label wins otherwise.
func nodeFromDBNode(node dbtype.Node) *types.GraphNode {
	var label types.NodeLabel
	if len(node.Labels) > 0 {
		label = types.NodeLabel(node.Labels[0])
	}
	props := node.Props
	if props == nil {
		props = map[string]any{}
	}
	return &types.GraphNode{ID: node.ElementId, Label: label, Properties: props}
}

func nonNil(props map[string]any) map[string]any {
	if props == nil {
		return map[string]any{}
	}
	return props
}
