package chunker

import (
	"strings"
	"testing"

	"github.com/soundprediction/claimgraph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		content string
		size    int
		want    []string
	}{
		{name: "empty", content: "", size: 4, want: []string{}},
		{name: "shorter than size", content: "abc", size: 4, want: []string{"abc"}},
		{name: "exact multiple", content: "abcdefgh", size: 4, want: []string{"abcd", "efgh"}},
		{name: "short tail", content: "abcdefghij", size: 4, want: []string{"abcd", "efgh", "ij"}},
		{name: "size one", content: "abc", size: 1, want: []string{"a", "b", "c"}},
		{name: "multibyte", content: "héllo wörld", size: 5, want: []string{"héllo", " wörl", "d"}},
		{name: "invalid utf8 kept byte for byte", content: "ab\xffcd", size: 2, want: []string{"ab", "\xffc", "d"}},
		{name: "truncated sequence", content: "a\xe2\x82", size: 2, want: []string{"a\xe2", "\x82"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.content, tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := Split("abc", size)
		assert.ErrorIs(t, err, ErrInvalidSize)
	}
}

func TestSplitReassembles(t *testing.T) {
	content := strings.Repeat("Drug X reduces mortality by 30%. ", 97)
	for _, size := range []int{1, 7, 100, 2000, len(content), len(content) + 1} {
		spans, err := Split(content, size)
		require.NoError(t, err)

		wantCount := (len([]rune(content)) + size - 1) / size
		assert.Len(t, spans, wantCount, "size %d", size)
		assert.Equal(t, content, strings.Join(spans, ""), "size %d", size)
	}
}

func TestSplitReassemblesInvalidUTF8(t *testing.T) {
	content := "Drug X \xff\xfe reduces \xc3 mortality \xe2\x82 by 30%"
	for _, size := range []int{1, 2, 3, 5, 8, len(content)} {
		spans, err := Split(content, size)
		require.NoError(t, err)
		assert.Equal(t, content, strings.Join(spans, ""), "size %d", size)
	}
}

func TestChunkOffsets(t *testing.T) {
	doc := types.Document{ID: "doc-1", Content: "abcdefghij"}
	chunks, err := Chunk(doc, 4)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for i, c := range chunks {
		assert.Equal(t, "doc-1", c.DocumentID)
		assert.Equal(t, i, c.Index)
		assert.Equal(t, i*4, c.CharStart)
		runes := []rune(doc.Content)
		end := c.CharStart + 4
		if end > len(runes) {
			end = len(runes)
		}
		assert.Equal(t, string(runes[c.CharStart:end]), c.Text)
	}
}
