package contradiction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/soundprediction/claimgraph/pkg/driver"
	"github.com/soundprediction/claimgraph/pkg/ingest"
	"github.com/soundprediction/claimgraph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stageClient answers by request stage and records every call.
type stageClient struct {
	mu      sync.Mutex
	replies map[string]func(user string) (string, error)
	calls   map[string]int
	users   map[string][]string
}

func newStageClient() *stageClient {
	return &stageClient{
		replies: map[string]func(string) (string, error){},
		calls:   map[string]int{},
		users:   map[string][]string{},
	}
}

func (s *stageClient) on(stage string, fn func(user string) (string, error)) *stageClient {
	s.replies[stage] = fn
	return s
}

func (s *stageClient) count(stage string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[stage]
}

func (s *stageClient) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	return s.ChatWithStructuredOutput(ctx, messages, nil)
}

func (s *stageClient) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, _ any) (*types.Response, error) {
	stage, _ := ctx.Value(types.ContextKeyStage).(string)
	user := messages[len(messages)-1].Content

	s.mu.Lock()
	s.calls[stage]++
	s.users[stage] = append(s.users[stage], user)
	fn := s.replies[stage]
	s.mu.Unlock()

	if fn == nil {
		return &types.Response{Content: `{"contradictions": []}`}, nil
	}
	content, err := fn(user)
	if err != nil {
		return nil, err
	}
	return &types.Response{Content: content}, nil
}

func (s *stageClient) Close() error { return nil }

func claimNode(id, text, relation string, labels ...string) *types.GraphNode {
	props := ingest.FlattenProperties(map[string]any{
		ingest.PropText:         text,
		ingest.PropRelationID:   relation,
		ingest.PropEntityLabels: labels,
	})
	return &types.GraphNode{ID: id, Label: types.ClaimLabel, Properties: props}
}

func TestRankCandidatesScoring(t *testing.T) {
	prop := claimNode("p", "proposition", "R", "A", "B")
	claims := []*types.GraphNode{
		claimNode("c1", "one", "R", "A"),
		claimNode("c2", "two", "S", "A", "B"),
		claimNode("c3", "three", "R", "A", "B"),
		claimNode("c4", "four", "S", "C"),
	}

	got := RankCandidates(prop, claims, 5)
	require.Len(t, got, 3)
	scores := map[string]int{}
	for _, c := range got {
		scores[c.GraphID] = c.Score
	}
	assert.Equal(t, map[string]int{"c1": 1, "c2": 2, "c3": 3}, scores)
	assert.Equal(t, []string{"c3", "c2", "c1"}, []string{got[0].GraphID, got[1].GraphID, got[2].GraphID})

	assert.True(t, got[0].SharedRelation)
	assert.Equal(t, []string{"A", "B"}, got[0].SharedEntityLabels)
	assert.False(t, got[1].SharedRelation)
}

func TestRankCandidatesTiesAndTopK(t *testing.T) {
	prop := claimNode("p", "proposition", "R")
	var claims []*types.GraphNode
	for i := 0; i < 7; i++ {
		claims = append(claims, claimNode(fmt.Sprintf("c%d", i), fmt.Sprintf("claim %d", i), "R"))
	}

	got := RankCandidates(prop, claims, 0)
	require.Len(t, got, DefaultTopK)
	for i, c := range got {
		assert.Equal(t, fmt.Sprintf("c%d", i), c.GraphID)
	}

	assert.Len(t, RankCandidates(prop, claims, 2), 2)
}

func TestRankCandidatesSelfMatchGuard(t *testing.T) {
	prop := claimNode("p", "Drug X reduces mortality by 5%", "R", "Drug:X")
	claims := []*types.GraphNode{
		claimNode("same", "Drug X reduces mortality by 5%", "R", "Drug:X"),
		claimNode("other", "Drug X reduces mortality by 30%", "R", "Drug:X"),
	}

	got := RankCandidates(prop, claims, 5)
	require.Len(t, got, 1)
	assert.Equal(t, "other", got[0].GraphID)
}

func TestRankCandidatesLabelsAreSets(t *testing.T) {
	prop := claimNode("p", "x", "", "A", "A")
	claims := []*types.GraphNode{claimNode("c", "y", "", "A", "A")}
	got := RankCandidates(prop, claims, 5)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Score)
}

// seedGraph stores one supporting claim and one proposition.
func seedGraph(t *testing.T, resourceText, propositionText string) *driver.MemoryDriver {
	t.Helper()
	ctx := context.Background()
	g := driver.NewMemoryDriver()
	ing := ingest.NewIngestor(g, nil, nil)

	support := types.Provenance{DocType: types.SupportingDocument, DocID: "1", DocTitle: "Trial", ChunkText: resourceText}
	_, err := ing.IngestClaims(ctx, types.ClaimLabel, support, []types.Claim{
		{LocalID: "c1", Text: resourceText, RelationID: "reports_outcome", Entities: []types.ClaimEntity{{Label: "Drug:X"}}},
	}, nil)
	require.NoError(t, err)

	main := types.Provenance{DocType: types.MainDocument, DocID: "main-1", DocTitle: "Draft", ChunkText: propositionText}
	_, err = ing.IngestClaims(ctx, types.PropositionLabel, main, []types.Claim{
		{LocalID: "p1", Text: propositionText, RelationID: "reports_outcome", Entities: []types.ClaimEntity{{Label: "Drug:X"}}},
	}, nil)
	require.NoError(t, err)
	return g
}

func TestAnalyzePairwiseContradiction(t *testing.T) {
	g := seedGraph(t, "Drug X reduces mortality by 30%", "Drug X reduces mortality by 5%")
	claims, err := g.GetNodesByLabel(context.Background(), types.ClaimLabel)
	require.NoError(t, err)
	resourceID := claims[0].ID

	client := newStageClient().on(StagePairwise, func(string) (string, error) {
		return fmt.Sprintf("```json\n{\"contradictions\": [{\"resource_claim_id\": %q, \"reason\": \"30%% vs 5%%\"}, {\"resource_claim_id\": %q}, {\"resource_claim_id\": \"bogus\"}]}\n```", resourceID, resourceID), nil
	})

	results, err := NewAnalyzer(g, client, nil, nil).Analyze(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, "Drug X reduces mortality by 5%", res.Proposition.Text)
	assert.Equal(t, types.MainDocument, res.Proposition.Provenance.DocType)
	require.Len(t, res.Pairwise, 1)
	assert.Equal(t, resourceID, res.Pairwise[0].ResourceClaimID)
	assert.Equal(t, "30% vs 5%", res.Pairwise[0].Reason)
	assert.Equal(t, "Trial", res.Pairwise[0].ResourceProvenance.DocTitle)
	assert.Equal(t, 2, res.Pairwise[0].Score)
	assert.False(t, res.FallbackUsed)
	assert.Empty(t, res.Fallback)
	assert.Zero(t, client.count(StageFallback))
}

func TestAnalyzeFallbackRunsOnce(t *testing.T) {
	g := seedGraph(t, "Drug X reduces mortality by 30%", "Drug X reduces mortality by 5%")
	client := newStageClient().on(StageFallback, func(user string) (string, error) {
		return `{"contradictions": [{"evidence_id": "e1", "reason": "different effect size"}, {"evidence_id": "E99"}]}`, nil
	})

	results, err := NewAnalyzer(g, client, nil, nil).Analyze(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, 1, client.count(StagePairwise))
	assert.Equal(t, 1, client.count(StageFallback))

	res := results[0]
	assert.True(t, res.FallbackUsed)
	assert.Empty(t, res.Pairwise)
	require.Len(t, res.Fallback, 1)
	assert.Equal(t, "E1", res.Fallback[0].EvidenceID)
	assert.Equal(t, "Claim: Drug X reduces mortality by 30% [source: Trial, chunk 0]", res.Fallback[0].EvidenceText)
	assert.Equal(t, "different effect size", res.Fallback[0].Reason)

	user := client.users[StageFallback][0]
	assert.Contains(t, user, "E1\tClaim: Drug X reduces mortality by 30%")
	assert.NotContains(t, user, "Proposition:")
}

func TestAnalyzeFallbackEmptyResultIsReported(t *testing.T) {
	g := seedGraph(t, "Drug X reduces mortality by 30%", "Drug X reduces mortality by 5%")
	client := newStageClient()

	results, err := NewAnalyzer(g, client, nil, nil).Analyze(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].FallbackUsed)
	assert.NotNil(t, results[0].Pairwise)
	assert.NotNil(t, results[0].Fallback)
	assert.Empty(t, results[0].Fallback)
	assert.Equal(t, 1, client.count(StagePairwise))
	assert.Equal(t, 1, client.count(StageFallback))
}

func TestAnalyzeStageFailuresDegrade(t *testing.T) {
	g := seedGraph(t, "Drug X reduces mortality by 30%", "Drug X reduces mortality by 5%")
	fail := func(string) (string, error) { return "", errors.New("upstream unavailable") }
	client := newStageClient().on(StagePairwise, fail).on(StageFallback, func(string) (string, error) {
		return "I think they conflict.", nil
	})

	results, err := NewAnalyzer(g, client, nil, nil).Analyze(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Pairwise)
	assert.Empty(t, results[0].Fallback)
	assert.True(t, results[0].FallbackUsed)
	assert.Equal(t, 1, client.count(StagePairwise), "pairwise is never retried")
}

func TestAnalyzeNoCandidatesSkipsPairwise(t *testing.T) {
	g := seedGraph(t, "Aspirin thins blood", "Drug X reduces mortality by 5%")
	ctx := context.Background()
	// Give the resource claim nothing in common with the proposition.
	g2 := driver.NewMemoryDriver()
	_, err := g2.CreateNode(ctx, types.ClaimLabel, map[string]any{"text": "Aspirin thins blood", "relation_id": "other"})
	require.NoError(t, err)
	props, err := g.GetNodesByLabel(ctx, types.PropositionLabel)
	require.NoError(t, err)
	_, err = g2.CreateNode(ctx, types.PropositionLabel, props[0].Properties)
	require.NoError(t, err)

	client := newStageClient()
	results, err := NewAnalyzer(g2, client, nil, nil).Analyze(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Zero(t, client.count(StagePairwise))
	assert.Equal(t, 1, client.count(StageFallback))
}

func TestAnalyzeEmptyGraph(t *testing.T) {
	client := newStageClient()
	results, err := NewAnalyzer(driver.NewMemoryDriver(), client, nil, nil).Analyze(context.Background())
	require.NoError(t, err)
	require.NotNil(t, results)
	assert.Empty(t, results)
	assert.Zero(t, client.count(StagePairwise))
	assert.Zero(t, client.count(StageFallback))
}

// exportCounter counts graph exports.
type exportCounter struct {
	*driver.MemoryDriver
	mu      sync.Mutex
	exports int
	err     error
}

func (e *exportCounter) ExportFacts(ctx context.Context, labels ...types.NodeLabel) ([]string, error) {
	e.mu.Lock()
	e.exports++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	return e.MemoryDriver.ExportFacts(ctx, labels...)
}

func TestAnalyzeExportsOncePerRun(t *testing.T) {
	ctx := context.Background()
	g := &exportCounter{MemoryDriver: driver.NewMemoryDriver()}
	_, err := g.CreateNode(ctx, types.ClaimLabel, map[string]any{"text": "unrelated", "relation_id": "x"})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := g.CreateNode(ctx, types.PropositionLabel, map[string]any{"text": fmt.Sprintf("p%d", i), "relation_id": "y"})
		require.NoError(t, err)
	}

	client := newStageClient()
	results, err := NewAnalyzer(g, client, nil, &Options{Concurrency: 3}).Analyze(ctx)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("p%d", i), r.Proposition.Text, "results keep proposition order")
	}
	assert.Equal(t, 1, g.exports)
	assert.Equal(t, 4, client.count(StageFallback))
}

func TestAnalyzeExportFailureDegrades(t *testing.T) {
	ctx := context.Background()
	g := &exportCounter{MemoryDriver: driver.NewMemoryDriver(), err: errors.New("export failed")}
	_, err := g.CreateNode(ctx, types.PropositionLabel, map[string]any{"text": "p"})
	require.NoError(t, err)

	client := newStageClient()
	results, err := NewAnalyzer(g, client, nil, nil).Analyze(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Fallback)
	assert.Zero(t, client.count(StageFallback))
}

// failingLister cannot list nodes.
type failingLister struct {
	*driver.MemoryDriver
}

func (failingLister) GetNodesByLabel(context.Context, types.NodeLabel) ([]*types.GraphNode, error) {
	return nil, errors.New("graph unreachable")
}

func TestAnalyzeListingFailureIsHard(t *testing.T) {
	_, err := NewAnalyzer(failingLister{driver.NewMemoryDriver()}, newStageClient(), nil, nil).Analyze(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "graph unreachable")
}

func TestEvidenceFromFacts(t *testing.T) {
	got := EvidenceFromFacts([]string{"first", "", "  ", "second\nthird", " fourth "})
	var ids, texts []string
	for _, e := range got {
		ids = append(ids, e.ID)
		texts = append(texts, e.Text)
	}
	assert.Equal(t, []string{"E1", "E2", "E3", "E4"}, ids)
	assert.Equal(t, []string{"first", "second", "third", "fourth"}, texts)
	assert.Equal(t, "E1", strings.TrimSpace(got[0].ID))
}
