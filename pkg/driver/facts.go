package driver

import (
	"fmt"
	"strings"

	"github.com/soundprediction/claimgraph/pkg/types"
)

// NodeFact renders a node as a single line, or "" when it has nothing to say.
func NodeFact(node *types.GraphNode) string {
	switch node.Label {
	case types.ClaimLabel, types.PropositionLabel:
		text := strings.TrimSpace(node.StringProperty("text"))
		if text == "" {
			return ""
		}
		prov := types.ProvenanceFromProperties(node.Properties)
		return fmt.Sprintf("%s: %s [source: %s, chunk %d]", node.Label, text, prov.DocTitle, prov.ChunkIndex)
	case types.EntityLabel:
		name := displayName(node)
		if name == "" {
			return ""
		}
		return fmt.Sprintf("Entity (%s): %s", node.StringProperty("type_id"), name)
	default:
		name := displayName(node)
		if name == "" {
			return ""
		}
		return fmt.Sprintf("%s: %s", node.Label, name)
	}
}

// EdgeFact renders an edge between two nodes as a single line.
func EdgeFact(source *types.GraphNode, relType string, target *types.GraphNode) string {
	return fmt.Sprintf("%s -[%s]-> %s", displayName(source), relType, displayName(target))
}

func displayName(node *types.GraphNode) string {
	for _, key := range []string{"text", "normalized", "surface", "name"} {
		if v := strings.TrimSpace(node.StringProperty(key)); v != "" {
			return v
		}
	}
	return node.ID
}
