package types

import (
	"errors"
	"strings"
	"unicode"
)

// Validation errors
var (
	ErrEmptyTitle   = errors.New("title cannot be empty")
	ErrEmptyContent = errors.New("content cannot be empty")
	ErrEmptySchema  = errors.New("schema must define at least one entity or relationship type")
	ErrInvalidKind  = errors.New("document kind must be supporting or main")
)

// DocumentKind distinguishes evidence documents from documents under review.
type DocumentKind string

const (
	// SupportingDocument is a resource whose claims are treated as evidence.
	SupportingDocument DocumentKind = "supporting"
	// MainDocument is the document whose propositions are checked for contradictions.
	MainDocument DocumentKind = "main"
)

// Document is a unit of text submitted for ingestion.
type Document struct {
	ID      string       `json:"id"`
	Title   string       `json:"title"`
	Content string       `json:"content"`
	Kind    DocumentKind `json:"kind"`
}

// Validate checks that the document can be ingested.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	if d.Content == "" {
		return ErrEmptyContent
	}
	if d.Kind != SupportingDocument && d.Kind != MainDocument {
		return ErrInvalidKind
	}
	return nil
}

// Chunk is a contiguous span of a document's content.
// CharStart is counted in characters, not bytes.
type Chunk struct {
	DocumentID string `json:"document_id"`
	Index      int    `json:"index"`
	CharStart  int    `json:"char_start"`
	Text       string `json:"text"`
}

// NodeLabel is the label a node is stored under.
type NodeLabel string

const (
	// EntityLabel marks entities extracted from supporting documents.
	EntityLabel NodeLabel = "Entity"
	// ClaimLabel marks claims extracted from supporting documents.
	ClaimLabel NodeLabel = "Claim"
	// PropositionLabel marks claims extracted from main documents.
	PropositionLabel NodeLabel = "Proposition"
)

// Edge types used between claim nodes.
const (
	EdgeTypeImplies     = "IMPLIES"
	EdgeTypeContradicts = "CONTRADICTS"
)

// GraphNode is a node as returned by the graph store.
type GraphNode struct {
	ID         string         `json:"id"`
	Label      NodeLabel      `json:"label"`
	Properties map[string]any `json:"properties"`
}

// StringProperty returns the named property as a string, or "" when absent.
func (n *GraphNode) StringProperty(key string) string {
	if n == nil || n.Properties == nil {
		return ""
	}
	if s, ok := n.Properties[key].(string); ok {
		return s
	}
	return ""
}

// GraphEdge is a directed, typed relationship between two stored nodes.
type GraphEdge struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	SourceID   string         `json:"source_id"`
	TargetID   string         `json:"target_id"`
	Properties map[string]any `json:"properties,omitempty"`
}

// EdgeTypeFor converts a schema relationship id such as "treats" or
// "is-part-of" into a graph relationship type ("TREATS", "IS_PART_OF").
func EdgeTypeFor(relationID string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range relationID {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToUpper(r))
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.TrimRight(b.String(), "_")
	if out == "" {
		return "RELATED_TO"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "R_" + out
	}
	return out
}
