package extraction

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/soundprediction/claimgraph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient returns canned completions in order.
type scriptedClient struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
	messages  [][]types.Message
	stages    []string
}

func (s *scriptedClient) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	return s.ChatWithStructuredOutput(ctx, messages, nil)
}

func (s *scriptedClient) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, _ any) (*types.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.messages = append(s.messages, messages)
	stage, _ := ctx.Value(types.ContextKeyStage).(string)
	s.stages = append(s.stages, stage)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return &types.Response{Content: "{}"}, nil
	}
	content := s.responses[0]
	s.responses = s.responses[1:]
	return &types.Response{Content: content}, nil
}

func (s *scriptedClient) Close() error { return nil }

func testSchema() types.Schema {
	return types.Schema{
		EntityTypes:       []types.EntityType{{ID: "Drug"}, {ID: "Outcome"}},
		RelationshipTypes: []types.RelationshipType{{ID: "reports_outcome", Source: "Drug", Target: "Outcome"}},
	}
}

func testChunk() types.Chunk {
	return types.Chunk{DocumentID: "1", Index: 0, CharStart: 0, Text: "Drug X reduces mortality by 30%."}
}

const fullResponse = "```json\n" + `{
  "entities": [
    {"id": "e1", "type_id": "Drug", "surface": "Drug X", "normalized": "drug x", "char_start": 0, "char_end": 6},
    {"id": "e2", "type_id": "Outcome", "surface": "mortality", "char_start": 15, "char_end": 24},
    {"id": "e3", "type_id": "Gene", "surface": "BRCA1", "char_start": 0, "char_end": 5}
  ],
  "relationships": [
    {"id": "r1", "type_id": "reports_outcome", "source_entity_id": "e1", "target_entity_id": "e2", "evidence": "reduces mortality", "char_start": 0, "char_end": 24},
    {"id": "r2", "type_id": "invented", "source_entity_id": "e1", "target_entity_id": "e2", "char_start": 0, "char_end": 24}
  ],
  "claims": [
    {"id": "c1", "text": "Drug X reduces mortality by 30%", "relation_id": "reports_outcome", "entities": [{"role": "subject", "label": "Drug:X"}], "qualifiers": {"magnitude": "30%"}},
    {"id": "c2", "text": "Drug X is safe", "relation_id": "is_safe", "entities": []}
  ],
  "claim_edges": [
    {"source_claim_id": "c1", "target_claim_id": "c2", "relation_type": "IMPLIES"},
    {"source_claim_id": "c1", "target_claim_id": "c2", "relation_type": "supports"}
  ]
}` + "\n```"

func TestExtractConformsToSchema(t *testing.T) {
	client := &scriptedClient{responses: []string{fullResponse}}
	ex := NewExtractor(client, nil)

	res := ex.Extract(context.Background(), testChunk(), testSchema(), "trial review")
	require.NotNil(t, res)

	require.Len(t, res.Entities, 2)
	assert.Equal(t, "e1", res.Entities[0].LocalID)
	assert.Equal(t, "drug x", res.Entities[0].Normalized)

	require.Len(t, res.Relationships, 1)
	assert.Equal(t, "reduces mortality", res.Relationships[0].Evidence)

	require.Len(t, res.Claims, 1)
	assert.Equal(t, []string{"Drug:X"}, res.Claims[0].EntityLabels())
	assert.Equal(t, "30%", res.Claims[0].Qualifiers["magnitude"])

	require.Len(t, res.ClaimEdges, 1)
	assert.Equal(t, types.Implies, res.ClaimEdges[0].RelationType)

	assert.Equal(t, 4, res.Dropped)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, []string{StageExtraction}, client.stages)
}

func TestExtractPromptEmbedsSchema(t *testing.T) {
	client := &scriptedClient{}
	schema := testSchema()
	NewExtractor(client, nil).Extract(context.Background(), testChunk(), schema, "trial review")

	require.Len(t, client.messages, 1)
	user := client.messages[0][1].Content
	assert.Contains(t, user, schema.JSON())
	assert.Contains(t, user, "Drug X reduces mortality by 30%.")
	assert.Contains(t, user, "trial review")
}

func TestExtractDegrades(t *testing.T) {
	tests := []struct {
		name   string
		client *scriptedClient
	}{
		{name: "service error", client: &scriptedClient{err: errors.New("boom")}},
		{name: "prose only", client: &scriptedClient{responses: []string{"I found nothing worth extracting."}}},
		{name: "malformed", client: &scriptedClient{responses: []string{`{"entities": [{"id": "e1", "type_id": }`}}},
		{name: "wrong shape", client: &scriptedClient{responses: []string{`{"entities": "none"}`}}},
		{name: "empty object", client: &scriptedClient{responses: []string{`{}`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewExtractor(tt.client, nil).Extract(context.Background(), testChunk(), testSchema(), "")
			require.NotNil(t, res)
			assert.True(t, res.IsEmpty())
			assert.NotNil(t, res.Entities)
			assert.NotNil(t, res.Relationships)
			assert.NotNil(t, res.Claims)
			assert.NotNil(t, res.ClaimEdges)
		})
	}
}

func TestConform(t *testing.T) {
	schema := testSchema()
	raw := &types.ExtractionResult{
		Entities: []types.ExtractedEntity{
			{LocalID: "e1", TypeID: "Drug", Surface: " "},
			{LocalID: "e2", TypeID: "Drug", Normalized: "drug y"},
		},
		Claims: []types.Claim{
			{LocalID: "c1", Text: "  ", RelationID: "reports_outcome"},
			{LocalID: "c2", Text: "y helps", RelationID: "reports_outcome"},
		},
		ClaimEdges: []types.ClaimEdge{
			{SourceClaimID: "c2", TargetClaimID: "c1", RelationType: " Contradicts "},
		},
	}

	out := Conform(raw, &schema)
	require.Len(t, out.Entities, 1)
	assert.Equal(t, "e2", out.Entities[0].LocalID)
	require.Len(t, out.Claims, 1)
	assert.NotNil(t, out.Claims[0].Entities)
	require.Len(t, out.ClaimEdges, 1)
	assert.Equal(t, types.Contradicts, out.ClaimEdges[0].RelationType)
	assert.Equal(t, 2, out.Dropped)

	empty := Conform(nil, &schema)
	assert.True(t, empty.IsEmpty())
}
