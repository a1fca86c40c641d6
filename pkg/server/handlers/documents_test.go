package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/claimgraph"
	"github.com/soundprediction/claimgraph/pkg/driver"
	"github.com/soundprediction/claimgraph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngester struct {
	calls int
	err   error
}

func (f *fakeIngester) IngestSupportingDocument(context.Context, claimgraph.DocumentRequest) (int64, error) {
	f.calls++
	return 42, f.err
}

func (f *fakeIngester) IngestMainDocument(context.Context, claimgraph.DocumentRequest) error {
	f.calls++
	return f.err
}

type fakeFinder struct {
	results []types.PropositionResult
	err     error
}

func (f *fakeFinder) AnalyzeContradictions(context.Context) ([]types.PropositionResult, error) {
	return f.results, f.err
}

func documentRouter(ing *fakeIngester) *gin.Engine {
	h := NewDocumentHandler(ing, nil)
	router := gin.New()
	router.POST("/supporting", h.IngestSupporting)
	router.POST("/main", h.IngestMain)
	return router
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIngestSupportingReturnsDocumentID(t *testing.T) {
	ing := &fakeIngester{}
	w := post(documentRouter(ing), "/supporting", `{"title":"Trial","content":"text","schema":{"entity_types":[{"id":"Drug"}]}}`)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(42), body["document_id"])
	assert.Equal(t, 1, ing.calls)
}

func TestIngestRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"title":`},
		{"missing title", `{"content":"text"}`},
		{"blank title", `{"title":"  ","content":"text"}`},
		{"missing content", `{"title":"T"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ing := &fakeIngester{}
			router := documentRouter(ing)
			for _, path := range []string{"/supporting", "/main"} {
				w := post(router, path, tt.body)
				assert.Equal(t, http.StatusBadRequest, w.Code, path)
				assert.Equal(t, "invalid_request", decode(t, w)["error"])
			}
			assert.Equal(t, 0, ing.calls)
		})
	}
}

func TestIngestMapsPipelineErrors(t *testing.T) {
	invalid := &fakeIngester{err: fmt.Errorf("%w: %w", claimgraph.ErrInvalidDocument, types.ErrEmptySchema)}
	w := post(documentRouter(invalid), "/main", `{"title":"T","content":"text"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_document", decode(t, w)["error"])

	broken := &fakeIngester{err: errors.New("graph unavailable")}
	w = post(documentRouter(broken), "/supporting", `{"title":"T","content":"text"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "ingestion_failed", decode(t, w)["error"])
}

func TestAnalyze(t *testing.T) {
	finder := &fakeFinder{results: []types.PropositionResult{
		{Pairwise: []types.PairwiseContradiction{{Reason: "30% vs 5%"}}, Fallback: []types.FallbackContradiction{}},
		{Pairwise: []types.PairwiseContradiction{}, Fallback: []types.FallbackContradiction{}, FallbackUsed: true},
	}}
	router := gin.New()
	router.POST("/contradictions", NewGraphHandler(finder, &fakeExplorer{}, nil).Analyze)

	w := post(router, "/contradictions", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(2), body["propositions"])
	assert.Equal(t, float64(1), body["contradicted"])

	router = gin.New()
	router.POST("/contradictions", NewGraphHandler(&fakeFinder{err: errors.New("boom")}, &fakeExplorer{}, nil).Analyze)
	assert.Equal(t, http.StatusInternalServerError, post(router, "/contradictions", "").Code)
}

func TestWalk(t *testing.T) {
	explorer := &fakeExplorer{steps: []driver.WalkStep{{Node: &types.GraphNode{ID: "a"}}, {Node: &types.GraphNode{ID: "b"}, Depth: 1}}}
	router := gin.New()
	router.GET("/nodes/:id/walk", NewGraphHandler(&fakeFinder{}, explorer, nil).Walk)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nodes/a/walk?type=IMPLIES&max_depth=3", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"a", "IMPLIES", 3}, explorer.walkArgs)
	steps, ok := decode(t, w)["steps"].([]any)
	require.True(t, ok)
	assert.Len(t, steps, 2)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nodes/a/walk", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"a", "", -1}, explorer.walkArgs)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nodes/a/walk?max_depth=deep", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStats(t *testing.T) {
	router := gin.New()
	router.GET("/stats", NewGraphHandler(&fakeFinder{}, &fakeExplorer{}, nil).Stats)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["node_count"])

	router = gin.New()
	router.GET("/stats", NewGraphHandler(&fakeFinder{}, &fakeExplorer{err: errors.New("down")}, nil).Stats)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
