package prompts

import (
	"errors"
	"fmt"

	"github.com/soundprediction/claimgraph/pkg/types"
)

// ErrMissingSchema is returned when a prompt needs a schema and none was supplied.
var ErrMissingSchema = errors.New("prompt context has no schema")

// ExtractVersions holds all versions of extraction prompts.
type ExtractVersions struct {
	extractClaimsPrompt PromptVersion
}

func (e *ExtractVersions) ExtractClaims() PromptVersion { return e.extractClaimsPrompt }

// extractClaimsPrompt extracts entities, relationships, claims and claim edges
// from one chunk. The schema is embedded verbatim as JSON.
func extractClaimsPrompt(context map[string]any) ([]types.Message, error) {
	sysPrompt := `You are an information extraction system that turns text into a knowledge graph.
You extract entities, typed relationships between entities, and atomic claims, using only the types in the provided SCHEMA.
You are conservative: when you are unsure whether something is stated in the text, you leave it out.`

	schema, err := schemaFromContext(context)
	if err != nil {
		return nil, err
	}

	projectContext := contextString(context, KeyProjectContext)
	if projectContext == "" {
		projectContext = "(none)"
	}

	userPrompt := fmt.Sprintf(`
<SCHEMA>
%s
</SCHEMA>

<PROJECT CONTEXT>
%s
</PROJECT CONTEXT>

<TEXT>
%s
</TEXT>

Extract from TEXT:
- entities: mentions of things whose type appears in SCHEMA.entity_types
- relationships: links between two extracted entities whose type appears in SCHEMA.relationship_types
- claims: atomic assertions made by TEXT, each described by one relationship type from SCHEMA.relationship_types
- claim_edges: links between two of your claims where one implies or contradicts the other

Rules:
1. Use ONLY the type ids listed in SCHEMA. Never invent a new entity type id or relationship type id.
2. Omit anything uncertain rather than guess. An empty list is a valid answer.
3. Give every entity, relationship and claim a short id unique within this response (e.g. "e1", "r1", "c1").
4. Relationship source_entity_id and target_entity_id must be ids of entities in your entities list.
5. Claim edge source_claim_id and target_claim_id must be ids of claims in your claims list, and relation_type must be "implies" or "contradicts".
6. A claim entity label has the form "EntityType:identifier", for example "Drug:X".
7. char_start and char_end are character offsets into TEXT.
8. Keep numbers, units and conditions in claim text exactly as written.

Respond with a single JSON object and nothing else, in this shape:
{
  "entities": [{"id": "e1", "type_id": "...", "surface": "...", "normalized": "...", "char_start": 0, "char_end": 0}],
  "relationships": [{"id": "r1", "type_id": "...", "source_entity_id": "e1", "target_entity_id": "e2", "evidence": "...", "char_start": 0, "char_end": 0}],
  "claims": [{"id": "c1", "text": "...", "relation_id": "...", "entities": [{"role": "...", "label": "Type:identifier"}], "qualifiers": {}}],
  "claim_edges": [{"source_claim_id": "c1", "target_claim_id": "c2", "relation_type": "implies"}]
}
`, schema.JSON(), projectContext, contextString(context, KeyChunkText))

	return messages(context, sysPrompt, userPrompt), nil
}

func schemaFromContext(context map[string]any) (*types.Schema, error) {
	switch s := context[KeySchema].(type) {
	case *types.Schema:
		if s != nil {
			return s, nil
		}
	case types.Schema:
		return &s, nil
	}
	return nil, ErrMissingSchema
}

// NewExtractVersions creates a new ExtractVersions instance.
func NewExtractVersions() *ExtractVersions {
	return &ExtractVersions{
		extractClaimsPrompt: NewPromptVersion(extractClaimsPrompt),
	}
}
