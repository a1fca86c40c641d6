package driver

import (
	"fmt"
	"regexp"

	"github.com/soundprediction/claimgraph/pkg/types"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateIdentifier reports whether name can be used unquoted as a label,
// property key or relationship type.
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// GetRangeIndices returns the index creation queries for the provider.
func GetRangeIndices(provider GraphProvider) []string {
	switch provider {
	case GraphProviderMemory:
		return []string{}

	default: // Neo4j
		return []string{
			"CREATE INDEX entity_normalized IF NOT EXISTS FOR (n:Entity) ON (n.normalized)",
			"CREATE INDEX entity_surface IF NOT EXISTS FOR (n:Entity) ON (n.surface)",
			"CREATE INDEX entity_doc IF NOT EXISTS FOR (n:Entity) ON (n.doc_id)",
			"CREATE INDEX claim_text IF NOT EXISTS FOR (n:Claim) ON (n.text)",
			"CREATE INDEX claim_relation IF NOT EXISTS FOR (n:Claim) ON (n.relation_id)",
			"CREATE INDEX proposition_text IF NOT EXISTS FOR (n:Proposition) ON (n.text)",
			"CREATE INDEX proposition_doc IF NOT EXISTS FOR (n:Proposition) ON (n.doc_id)",
		}
	}
}

// createNodeQuery builds the query for CreateNode.
func createNodeQuery(label types.NodeLabel) (string, error) {
	if err := ValidateIdentifier(string(label)); err != nil {
		return "", err
	}
	return fmt.Sprintf("CREATE (n:%s) SET n = $props RETURN elementId(n) AS id", label), nil
}

// createEdgeQuery builds the query for CreateEdge.
func createEdgeQuery(relType string) (string, error) {
	if err := ValidateIdentifier(relType); err != nil {
		return "", err
	}
	return fmt.Sprintf(`
		MATCH (a) WHERE elementId(a) = $source
		MATCH (b) WHERE elementId(b) = $target
		CREATE (a)-[r:%s]->(b)
		SET r = $props
		RETURN count(r) AS created`, relType), nil
}

// createEdgeByMatchQuery builds the query for CreateEdgeByMatch.
func createEdgeByMatchQuery(from, to NodeRef, relType string) (string, error) {
	for _, id := range []string{string(from.Label), from.Property, string(to.Label), to.Property, relType} {
		if err := ValidateIdentifier(id); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf(`
		MATCH (a:%s {%s: $fromValue})
		MATCH (b:%s {%s: $toValue})
		CREATE (a)-[r:%s]->(b)
		SET r = $props
		RETURN count(r) AS created`,
		from.Label, from.Property, to.Label, to.Property, relType), nil
}

// outNeighborsQuery builds the query for OutNeighbors.
func outNeighborsQuery(relType string) (string, error) {
	pattern := "[r]"
	if relType != "" {
		if err := ValidateIdentifier(relType); err != nil {
			return "", err
		}
		pattern = "[r:" + relType + "]"
	}
	return fmt.Sprintf(`
		MATCH (a)-%s->(b)
		WHERE elementId(a) = $id
		RETURN elementId(b) AS id
		ORDER BY id(r)`, pattern), nil
}

// findNodesQuery builds the query for FindNodes.
func findNodesQuery(label types.NodeLabel, property string) (string, error) {
	if err := ValidateIdentifier(string(label)); err != nil {
		return "", err
	}
	if err := ValidateIdentifier(property); err != nil {
		return "", err
	}
	return fmt.Sprintf("MATCH (n:%s {%s: $value}) RETURN n ORDER BY id(n)", label, property), nil
}

func labelStrings(labels []types.NodeLabel) ([]string, error) {
	out := make([]string, len(labels))
	for i, l := range labels {
		if err := ValidateIdentifier(string(l)); err != nil {
			return nil, err
		}
		out[i] = string(l)
	}
	return out, nil
}
