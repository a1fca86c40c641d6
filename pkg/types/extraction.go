package types

import (
	"sort"
	"strings"
)

// ClaimRelation is the kind of link between two claims from the same chunk.
type ClaimRelation string

const (
	// Implies means the source claim supports the target claim.
	Implies ClaimRelation = "implies"
	// Contradicts means the two claims cannot both hold.
	Contradicts ClaimRelation = "contradicts"
)

// EdgeType returns the graph relationship type for the claim relation.
func (r ClaimRelation) EdgeType() string {
	if r == Contradicts {
		return EdgeTypeContradicts
	}
	return EdgeTypeImplies
}

// Valid reports whether r is a known claim relation.
func (r ClaimRelation) Valid() bool {
	return r == Implies || r == Contradicts
}

// ExtractedEntity is an entity mention found in a single chunk.
type ExtractedEntity struct {
	LocalID    string `json:"id"`
	TypeID     string `json:"type_id"`
	Surface    string `json:"surface"`
	Normalized string `json:"normalized,omitempty"`
	CharStart  int    `json:"char_start"`
	CharEnd    int    `json:"char_end"`
}

// MatchValue is the value used to find this entity's node by property.
func (e ExtractedEntity) MatchValue() (string, string) {
	if strings.TrimSpace(e.Normalized) != "" {
		return "normalized", e.Normalized
	}
	return "surface", e.Surface
}

// ExtractedRelationship is a typed link between two entities of the same chunk.
type ExtractedRelationship struct {
	LocalID        string `json:"id"`
	TypeID         string `json:"type_id"`
	SourceEntityID string `json:"source_entity_id"`
	TargetEntityID string `json:"target_entity_id"`
	Evidence       string `json:"evidence,omitempty"`
	CharStart      int    `json:"char_start"`
	CharEnd        int    `json:"char_end"`
}

// ClaimEntity is an entity a claim is about.
type ClaimEntity struct {
	Role  string `json:"role,omitempty"`
	Label string `json:"label"`
}

// Claim is an atomic assertion extracted from a chunk.
type Claim struct {
	LocalID    string         `json:"id"`
	Text       string         `json:"text"`
	RelationID string         `json:"relation_id"`
	Entities   []ClaimEntity  `json:"entities"`
	Qualifiers map[string]any `json:"qualifiers,omitempty"`
}

// EntityLabels returns the sorted, de-duplicated entity labels of the claim.
func (c Claim) EntityLabels() []string {
	seen := make(map[string]struct{}, len(c.Entities))
	labels := make([]string, 0, len(c.Entities))
	for _, e := range c.Entities {
		if e.Label == "" {
			continue
		}
		if _, ok := seen[e.Label]; ok {
			continue
		}
		seen[e.Label] = struct{}{}
		labels = append(labels, e.Label)
	}
	sort.Strings(labels)
	return labels
}

// ClaimEdge links two claims of the same chunk.
type ClaimEdge struct {
	SourceClaimID string        `json:"source_claim_id"`
	TargetClaimID string        `json:"target_claim_id"`
	RelationType  ClaimRelation `json:"relation_type"`
}

// ExtractionResult is everything extracted from one chunk.
type ExtractionResult struct {
	Entities      []ExtractedEntity       `json:"entities"`
	Relationships []ExtractedRelationship `json:"relationships"`
	Claims        []Claim                 `json:"claims"`
	ClaimEdges    []ClaimEdge             `json:"claim_edges"`

	// Dropped counts items discarded for not conforming to the schema.
	Dropped int `json:"-"`
}

// NewExtractionResult returns a result with four empty, non-nil lists.
func NewExtractionResult() *ExtractionResult {
	return &ExtractionResult{
		Entities:      []ExtractedEntity{},
		Relationships: []ExtractedRelationship{},
		Claims:        []Claim{},
		ClaimEdges:    []ClaimEdge{},
	}
}

// IsEmpty reports whether nothing was extracted.
func (r *ExtractionResult) IsEmpty() bool {
	return len(r.Entities) == 0 && len(r.Relationships) == 0 && len(r.Claims) == 0 && len(r.ClaimEdges) == 0
}
