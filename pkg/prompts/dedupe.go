package prompts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/soundprediction/claimgraph/pkg/types"
)

// ErrNoItems is returned when a dedupe prompt is built for an empty bucket.
var ErrNoItems = errors.New("prompt context has no items")

// DedupeVersions holds all versions of dedupe prompts.
type DedupeVersions struct {
	dedupeEntitiesPrompt PromptVersion
	dedupeClaimsPrompt   PromptVersion
}

func (d *DedupeVersions) DedupeEntities() PromptVersion { return d.dedupeEntitiesPrompt }
func (d *DedupeVersions) DedupeClaims() PromptVersion   { return d.dedupeClaimsPrompt }

const mergeInstructions = `
Decide which of the ITEMS above refer to the same real-world thing and should be merged.

Rules:
1. Merge only items that are clearly the same. When in doubt, leave them unmerged.
2. Each merge lists the ids of the items it combines in source_ids (at least two) and gives the combined item.
3. The combined item must reuse the id of one of its sources.
4. An item id may appear in at most one merge.
5. List the ids of every item you did not merge in unmerged.

Respond with a single JSON object and nothing else, in this shape:
{"merges": [{"source_ids": ["<id>", "<id>"], "item": %s}], "unmerged": ["<id>"]}
`

// dedupeEntitiesPrompt asks which entities of one bucket are duplicates.
func dedupeEntitiesPrompt(context map[string]any) ([]types.Message, error) {
	sysPrompt := `You are a helpful assistant that determines whether entities extracted from the same text are duplicates of each other.`

	items, ok := context[KeyItems].([]types.ExtractedEntity)
	if !ok || len(items) == 0 {
		return nil, ErrNoItems
	}

	rows := make([][]string, len(items))
	for i, e := range items {
		rows[i] = []string{e.LocalID, e.TypeID, e.Surface, e.Normalized}
	}
	itemsTSV, err := ToPromptTSV([]string{"id", "type_id", "surface", "normalized"}, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entities: %w", err)
	}

	userPrompt := fmt.Sprintf(`
<ITEMS>
%s
</ITEMS>

ITEMS are entities in TSV (tab-separated values) format with columns:
- id: identifier of the entity
- type_id: entity type
- surface: the text as it appears
- normalized: canonical form, may be empty
`+mergeInstructions, itemsTSV,
		`{"id": "<id>", "type_id": "...", "surface": "...", "normalized": "...", "char_start": 0, "char_end": 0}`)

	return messages(context, sysPrompt, userPrompt), nil
}

// dedupeClaimsPrompt asks which claims of one bucket state the same thing.
func dedupeClaimsPrompt(context map[string]any) ([]types.Message, error) {
	sysPrompt := `You are a helpful assistant that determines whether claims extracted from the same text state the same assertion.`

	items, ok := context[KeyItems].([]types.Claim)
	if !ok || len(items) == 0 {
		return nil, ErrNoItems
	}

	rows := make([][]string, len(items))
	for i, c := range items {
		rows[i] = []string{c.LocalID, c.RelationID, strings.Join(c.EntityLabels(), ","), c.Text}
	}
	itemsTSV, err := ToPromptTSV([]string{"id", "relation_id", "entity_labels", "text"}, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal claims: %w", err)
	}

	userPrompt := fmt.Sprintf(`
<ITEMS>
%s
</ITEMS>

ITEMS are claims in TSV (tab-separated values) format with columns:
- id: identifier of the claim
- relation_id: relationship type the claim asserts
- entity_labels: comma-separated entity labels
- text: the claim

Claims that differ in any number, unit or condition are NOT the same claim.
`+mergeInstructions, itemsTSV,
		`{"id": "<id>", "text": "...", "relation_id": "...", "entities": [{"role": "...", "label": "Type:identifier"}], "qualifiers": {}}`)

	return messages(context, sysPrompt, userPrompt), nil
}

// NewDedupeVersions creates a new DedupeVersions instance.
func NewDedupeVersions() *DedupeVersions {
	return &DedupeVersions{
		dedupeEntitiesPrompt: NewPromptVersion(dedupeEntitiesPrompt),
		dedupeClaimsPrompt:   NewPromptVersion(dedupeClaimsPrompt),
	}
}
