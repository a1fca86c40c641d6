package prompts

import "github.com/soundprediction/claimgraph/pkg/types"

// ExtractionResponse is the object the extraction prompt asks for.
type ExtractionResponse = types.ExtractionResult

// Merge combines several bucket members into one item.
type Merge[T any] struct {
	SourceIDs []string `json:"source_ids"`
	Item      T        `json:"item"`
}

// MergeResponse is the object the dedupe prompts ask for.
type MergeResponse[T any] struct {
	Merges   []Merge[T] `json:"merges"`
	Unmerged []string   `json:"unmerged"`
}

// EntityMergeResponse is the dedupe response for entity buckets.
type EntityMergeResponse = MergeResponse[types.ExtractedEntity]

// ClaimMergeResponse is the dedupe response for claim buckets.
type ClaimMergeResponse = MergeResponse[types.Claim]

// CandidateClaim is a resource claim shown to the pairwise judge.
type CandidateClaim struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	RelationID   string   `json:"relation_id"`
	EntityLabels []string `json:"entity_labels"`
}

// PropositionInput is the main-document claim under review.
type PropositionInput struct {
	Text         string   `json:"text"`
	RelationID   string   `json:"relation_id"`
	EntityLabels []string `json:"entity_labels"`
}

// PairwiseMatch is one flagged resource claim.
type PairwiseMatch struct {
	ResourceClaimID string `json:"resource_claim_id"`
	Reason          string `json:"reason,omitempty"`
}

// PairwiseResponse is the object the pairwise prompt asks for.
type PairwiseResponse struct {
	Contradictions []PairwiseMatch `json:"contradictions"`
}

// EvidenceItem is one exported graph fact.
type EvidenceItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// FallbackMatch is one flagged evidence line.
type FallbackMatch struct {
	EvidenceID string `json:"evidence_id"`
	Reason     string `json:"reason,omitempty"`
}

// FallbackResponse is the object the fallback prompt asks for.
type FallbackResponse struct {
	Contradictions []FallbackMatch `json:"contradictions"`
}
