package types

// ContradictionCandidate is a resource claim shortlisted for one proposition.
type ContradictionCandidate struct {
	GraphID            string         `json:"graph_id"`
	Score              int            `json:"score"`
	SharedEntityLabels []string       `json:"shared_entity_labels"`
	SharedRelation     bool           `json:"shared_relation"`
	Properties         map[string]any `json:"claim_properties"`
}

// PropositionSummary identifies the proposition an analysis result is about.
type PropositionSummary struct {
	GraphID    string     `json:"graph_id"`
	Text       string     `json:"text"`
	RelationID string     `json:"relation_id,omitempty"`
	Provenance Provenance `json:"provenance"`
}

// PairwiseContradiction is a resource claim judged to contradict the proposition.
type PairwiseContradiction struct {
	ResourceClaimID    string     `json:"resource_claim_id"`
	ResourceText       string     `json:"resource_text"`
	ResourceProvenance Provenance `json:"resource_provenance"`
	Score              int        `json:"score"`
	Reason             string     `json:"reason"`
}

// FallbackContradiction is a graph fact judged to contradict the proposition.
type FallbackContradiction struct {
	EvidenceID   string `json:"evidence_id"`
	EvidenceText string `json:"evidence_text"`
	Reason       string `json:"reason"`
}

// PropositionResult is the analysis outcome for one proposition.
type PropositionResult struct {
	Proposition PropositionSummary      `json:"proposition"`
	Pairwise    []PairwiseContradiction `json:"pairwise_contradictions"`
	Fallback    []FallbackContradiction `json:"fallback_contradictions"`

	// FallbackUsed is set when the pairwise stage found nothing and the
	// full-graph judgment ran.
	FallbackUsed bool `json:"fallback_used"`
}

// HasContradictions reports whether either stage found anything.
func (r *PropositionResult) HasContradictions() bool {
	return len(r.Pairwise) > 0 || len(r.Fallback) > 0
}
