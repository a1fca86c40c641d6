package types

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		wantErr error
	}{
		{name: "valid supporting", doc: Document{Title: "t", Content: "c", Kind: SupportingDocument}},
		{name: "valid main", doc: Document{Title: "t", Content: "c", Kind: MainDocument}},
		{name: "blank title", doc: Document{Title: "  ", Content: "c", Kind: MainDocument}, wantErr: ErrEmptyTitle},
		{name: "empty content", doc: Document{Title: "t", Kind: MainDocument}, wantErr: ErrEmptyContent},
		{name: "unknown kind", doc: Document{Title: "t", Content: "c", Kind: "draft"}, wantErr: ErrInvalidKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, tt.doc.Validate())
		})
	}
}

func TestEdgeTypeFor(t *testing.T) {
	tests := map[string]string{
		"treats":         "TREATS",
		"is-part-of":     "IS_PART_OF",
		"Reduces Risk":   "REDUCES_RISK",
		"  causes  ":     "CAUSES",
		"":               "RELATED_TO",
		"--":             "RELATED_TO",
		"3d_structure":   "R_3D_STRUCTURE",
		"a) DROP (n) //": "A_DROP_N",
	}
	for in, want := range tests {
		assert.Equal(t, want, EdgeTypeFor(in), "input %q", in)
	}
}

func TestClaimEntityLabels(t *testing.T) {
	c := Claim{Entities: []ClaimEntity{
		{Role: "subject", Label: "Drug:x"},
		{Label: "Outcome:mortality"},
		{Label: "Drug:x"},
		{Label: ""},
	}}
	assert.Equal(t, []string{"Drug:x", "Outcome:mortality"}, c.EntityLabels())
}

func TestExtractedEntityMatchValue(t *testing.T) {
	prop, val := ExtractedEntity{Surface: "Drug X", Normalized: "drug x"}.MatchValue()
	assert.Equal(t, "normalized", prop)
	assert.Equal(t, "drug x", val)

	prop, val = ExtractedEntity{Surface: "Drug X"}.MatchValue()
	assert.Equal(t, "surface", prop)
	assert.Equal(t, "Drug X", val)
}

func TestProvenanceProperties(t *testing.T) {
	doc := Document{ID: "42", Title: "Trial", Kind: SupportingDocument}
	chunk := Chunk{Index: 2, CharStart: 4000, Text: "Drug X reduces mortality by 5%."}
	prov := NewProvenance(doc, chunk)

	props := prov.Properties()
	for _, key := range ProvenanceKeys {
		assert.Contains(t, props, key)
	}

	// Drivers return integers as int64.
	props[PropChunkIndex] = int64(2)
	props[PropChunkStart] = int64(4000)
	assert.Equal(t, prov, ProvenanceFromProperties(props))
}

func TestParseSchema(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		s, err := ParseSchema([]byte(`
entity_types:
  - id: Drug
    description: A pharmaceutical compound
  - id: Outcome
relationship_types:
  - id: reduces
    source: Drug
    target: Outcome
`))
		require.NoError(t, err)
		assert.True(t, s.HasEntityType("Drug"))
		assert.False(t, s.HasEntityType("Disease"))
		assert.True(t, s.HasRelationshipType("reduces"))
		assert.Contains(t, s.JSON(), `"id": "reduces"`)
	})

	t.Run("json", func(t *testing.T) {
		s, err := ParseSchema([]byte(`{"entity_types":[{"id":"Drug"}],"relationship_types":[]}`))
		require.NoError(t, err)
		assert.Len(t, s.EntityTypes, 1)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseSchema([]byte(`{}`))
		assert.ErrorIs(t, err, ErrEmptySchema)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := ParseSchema([]byte(`{"entity_types":[{"description":"x"}]}`))
		assert.Error(t, err)
	})
}

func TestLoadSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entity_types:\n  - id: Drug\n"), 0o600))

	s, err := LoadSchema(path)
	require.NoError(t, err)
	assert.Equal(t, "Drug", s.EntityTypes[0].ID)

	_, err = LoadSchema(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
