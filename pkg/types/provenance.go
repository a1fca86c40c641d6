package types

import "fmt"

// Provenance property keys.
const (
	PropDocType    = "doc_type"
	PropDocID      = "doc_id"
	PropDocTitle   = "doc_title"
	PropChunkIndex = "chunk_index"
	PropChunkStart = "chunk_start"
	PropChunkText  = "chunk_text"
)

// ProvenanceKeys lists every key a persisted claim must carry.
var ProvenanceKeys = []string{PropDocType, PropDocID, PropDocTitle, PropChunkIndex, PropChunkStart, PropChunkText}

// Provenance records where a claim came from.
type Provenance struct {
	DocType    DocumentKind `json:"doc_type"`
	DocID      string       `json:"doc_id"`
	DocTitle   string       `json:"doc_title"`
	ChunkIndex int          `json:"chunk_index"`
	ChunkStart int          `json:"chunk_start"`
	ChunkText  string       `json:"chunk_text"`
}

// NewProvenance builds the provenance for a chunk of the given document.
func NewProvenance(doc Document, chunk Chunk) Provenance {
	return Provenance{
		DocType:    doc.Kind,
		DocID:      doc.ID,
		DocTitle:   doc.Title,
		ChunkIndex: chunk.Index,
		ChunkStart: chunk.CharStart,
		ChunkText:  chunk.Text,
	}
}

// Properties returns the provenance as flat node properties.
func (p Provenance) Properties() map[string]any {
	return map[string]any{
		PropDocType:    string(p.DocType),
		PropDocID:      p.DocID,
		PropDocTitle:   p.DocTitle,
		PropChunkIndex: p.ChunkIndex,
		PropChunkStart: p.ChunkStart,
		PropChunkText:  p.ChunkText,
	}
}

// ProvenanceFromProperties reads provenance back from stored node properties.
// Missing keys are left at their zero value.
func ProvenanceFromProperties(props map[string]any) Provenance {
	var p Provenance
	if v, ok := props[PropDocType]; ok {
		p.DocType = DocumentKind(fmt.Sprint(v))
	}
	if v, ok := props[PropDocID]; ok && v != nil {
		p.DocID = fmt.Sprint(v)
	}
	if v, ok := props[PropDocTitle].(string); ok {
		p.DocTitle = v
	}
	p.ChunkIndex = intProperty(props[PropChunkIndex])
	p.ChunkStart = intProperty(props[PropChunkStart])
	if v, ok := props[PropChunkText].(string); ok {
		p.ChunkText = v
	}
	return p
}

// intProperty accepts the integer representations drivers hand back.
func intProperty(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
