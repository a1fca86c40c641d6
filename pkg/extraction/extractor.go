// Package extraction turns one chunk of text into entities, relationships,
// claims and claim edges constrained to a caller-supplied schema.
package extraction

import (
	"context"
	"log/slog"
	"strings"

	"github.com/soundprediction/claimgraph/pkg/llm"
	"github.com/soundprediction/claimgraph/pkg/nlp"
	"github.com/soundprediction/claimgraph/pkg/prompts"
	"github.com/soundprediction/claimgraph/pkg/types"
)

// StageExtraction is the stage name attached to extraction requests.
const StageExtraction = "extraction"

// Extractor sends one structured-completion request per chunk.
type Extractor struct {
	client  nlp.Client
	prompts prompts.Library
	logger  *slog.Logger
}

// NewExtractor creates an Extractor. A nil logger uses slog.Default().
func NewExtractor(client nlp.Client, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		client:  client,
		prompts: prompts.NewLibrary(),
		logger:  logger,
	}
}

// Extract returns what the completion service found in chunk. It never fails:
// a request or parse failure yields four empty lists.
func (e *Extractor) Extract(ctx context.Context, chunk types.Chunk, schema types.Schema, projectContext string) *types.ExtractionResult {
	log := e.logger.With("doc_id", chunk.DocumentID, "chunk_index", chunk.Index)

	msgs, err := e.prompts.ExtractClaims().Call(map[string]any{
		prompts.KeySchema:         &schema,
		prompts.KeyChunkText:      chunk.Text,
		prompts.KeyProjectContext: projectContext,
		prompts.KeyLogger:         e.logger,
	})
	if err != nil {
		log.Warn("failed to build extraction prompt", "error", err)
		return types.NewExtractionResult()
	}

	ctx = context.WithValue(ctx, types.ContextKeyStage, StageExtraction)
	parsed := llm.GenerateJSON[prompts.ExtractionResponse](ctx, e.client, msgs)
	if !parsed.OK {
		log.Warn("extraction degraded to empty result", "error", parsed.Err)
		return types.NewExtractionResult()
	}
	if parsed.Repaired {
		log.Debug("extraction response needed JSON repair")
	}

	result := Conform(&parsed.Value, &schema)
	if result.Dropped > 0 {
		log.Debug("dropped non-conforming items", "dropped", result.Dropped)
	}
	log.Debug("extracted chunk",
		"entities", len(result.Entities),
		"relationships", len(result.Relationships),
		"claims", len(result.Claims),
		"claim_edges", len(result.ClaimEdges))
	return result
}

// Conform keeps only the items of raw that use the schema's type ids and
// counts the rest in Dropped. Claim edge relation types are lower-cased.
func Conform(raw *types.ExtractionResult, schema *types.Schema) *types.ExtractionResult {
	out := types.NewExtractionResult()
	if raw == nil {
		return out
	}

	for _, ent := range raw.Entities {
		if !schema.HasEntityType(ent.TypeID) ||
			(strings.TrimSpace(ent.Surface) == "" && strings.TrimSpace(ent.Normalized) == "") {
			out.Dropped++
			continue
		}
		out.Entities = append(out.Entities, ent)
	}

	for _, rel := range raw.Relationships {
		if !schema.HasRelationshipType(rel.TypeID) {
			out.Dropped++
			continue
		}
		out.Relationships = append(out.Relationships, rel)
	}

	for _, claim := range raw.Claims {
		if !schema.HasRelationshipType(claim.RelationID) || strings.TrimSpace(claim.Text) == "" {
			out.Dropped++
			continue
		}
		if claim.Entities == nil {
			claim.Entities = []types.ClaimEntity{}
		}
		out.Claims = append(out.Claims, claim)
	}

	for _, edge := range raw.ClaimEdges {
		edge.RelationType = types.ClaimRelation(strings.ToLower(strings.TrimSpace(string(edge.RelationType))))
		if !edge.RelationType.Valid() {
			out.Dropped++
			continue
		}
		out.ClaimEdges = append(out.ClaimEdges, edge)
	}

	return out
}
