// Package chunker splits document content into fixed-size, non-overlapping spans.
package chunker

import (
	"errors"
	"unicode/utf8"

	"github.com/soundprediction/claimgraph/pkg/types"
)

// DefaultSize is the chunk size used when none is configured.
const DefaultSize = 2000

// ErrInvalidSize is returned for a non-positive chunk size.
var ErrInvalidSize = errors.New("chunk size must be positive")

// Split cuts content into consecutive spans of size characters. The last span
// may be shorter. Concatenating the spans reproduces content exactly, invalid
// UTF-8 included.
func Split(content string, size int) ([]string, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	if content == "" {
		return []string{}, nil
	}

	spans := make([]string, 0, utf8.RuneCountInString(content)/size+1)
	start, count := 0, 0
	for pos := 0; pos < len(content); {
		// An invalid byte decodes with width 1 and counts as one character.
		_, width := utf8.DecodeRuneInString(content[pos:])
		pos += width
		count++
		if count == size {
			spans = append(spans, content[start:pos])
			start, count = pos, 0
		}
	}
	if start < len(content) {
		spans = append(spans, content[start:])
	}
	return spans, nil
}

// Chunk splits a document into indexed chunks with character offsets.
func Chunk(doc types.Document, size int) ([]types.Chunk, error) {
	spans, err := Split(doc.Content, size)
	if err != nil {
		return nil, err
	}

	chunks := make([]types.Chunk, len(spans))
	for i, span := range spans {
		chunks[i] = types.Chunk{
			DocumentID: doc.ID,
			Index:      i,
			CharStart:  i * size,
			Text:       span,
		}
	}
	return chunks, nil
}
