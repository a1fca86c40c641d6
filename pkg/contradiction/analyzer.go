// Package contradiction decides which main-document propositions are
// contradicted by claims harvested from supporting documents.
//
// Each proposition goes through two stages. The pairwise stage judges the
// best-scoring resource claims. When it finds nothing, the fallback stage
// judges the proposition against every fact exported from the resource side
// of the graph. Stage failures degrade to an empty result for that stage.
package contradiction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/soundprediction/claimgraph/pkg/driver"
	"github.com/soundprediction/claimgraph/pkg/ingest"
	"github.com/soundprediction/claimgraph/pkg/llm"
	"github.com/soundprediction/claimgraph/pkg/nlp"
	"github.com/soundprediction/claimgraph/pkg/prompts"
	"github.com/soundprediction/claimgraph/pkg/types"
	"github.com/soundprediction/claimgraph/pkg/utils"
)

// Stage names attached to completion requests.
const (
	StagePairwise = "pairwise"
	StageFallback = "fallback"
)

// Reader is the part of a graph driver the analyzer uses.
type Reader interface {
	driver.NodeReader
	driver.FactExporter
}

// Options tunes analysis.
type Options struct {
	// TopK is the number of candidates judged pairwise. Defaults to DefaultTopK.
	TopK int
	// Concurrency is the number of propositions analyzed at once. Defaults to 1.
	Concurrency int
}

// Analyzer runs contradiction analysis over the whole graph.
type Analyzer struct {
	driver  Reader
	client  nlp.Client
	prompts prompts.Library
	logger  *slog.Logger
	opts    Options
}

// NewAnalyzer creates an Analyzer. A nil logger uses slog.Default().
func NewAnalyzer(d Reader, client nlp.Client, logger *slog.Logger, opts *Options) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Analyzer{
		driver:  d,
		client:  client,
		prompts: prompts.NewLibrary(),
		logger:  logger,
		opts:    Options{TopK: DefaultTopK, Concurrency: 1},
	}
	if opts != nil {
		if opts.TopK > 0 {
			a.opts.TopK = opts.TopK
		}
		if opts.Concurrency > 0 {
			a.opts.Concurrency = opts.Concurrency
		}
	}
	return a
}

// Analyze returns one result per stored proposition, in storage order.
// Only failing to list propositions or claims is an error.
func (a *Analyzer) Analyze(ctx context.Context) ([]types.PropositionResult, error) {
	propositions, err := a.driver.GetNodesByLabel(ctx, types.PropositionLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to list propositions: %w", err)
	}
	claims, err := a.driver.GetNodesByLabel(ctx, types.ClaimLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}

	a.logger.Info("analyzing propositions", "propositions", len(propositions), "claims", len(claims))

	facts := &factCache{driver: a.driver}
	results, errs := utils.Map(ctx, a.opts.Concurrency, propositions,
		func(ctx context.Context, p *types.GraphNode) (types.PropositionResult, error) {
			return a.analyzeProposition(ctx, p, claims, facts), nil
		})
	if results == nil {
		results = []types.PropositionResult{}
	}

	contradicted := 0
	for i, err := range errs {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			var panicErr *utils.PanicError
			if !errors.As(err, &panicErr) {
				return nil, err
			}
			a.logger.Error("proposition analysis panicked", "graph_id", propositions[i].ID, "error", err)
			results[i] = emptyResult(propositions[i])
		}
		if results[i].HasContradictions() {
			contradicted++
		}
	}

	a.logger.Info("contradiction analysis complete", "propositions", len(results), "contradicted", contradicted)
	return results, nil
}

func (a *Analyzer) analyzeProposition(ctx context.Context, proposition *types.GraphNode, claims []*types.GraphNode, facts *factCache) types.PropositionResult {
	result := emptyResult(proposition)
	log := a.logger.With("graph_id", proposition.ID)
	input := prompts.PropositionInput{
		Text:         result.Proposition.Text,
		RelationID:   result.Proposition.RelationID,
		EntityLabels: ingest.EntityLabelsFromProperties(proposition.Properties),
	}

	candidates := RankCandidates(proposition, claims, a.opts.TopK)
	result.Pairwise = a.pairwise(ctx, input, candidates, log)
	if len(result.Pairwise) > 0 {
		return result
	}

	result.FallbackUsed = true
	result.Fallback = a.fallback(ctx, input, facts, log)
	return result
}

// pairwise judges the proposition against its candidates.
func (a *Analyzer) pairwise(ctx context.Context, input prompts.PropositionInput, candidates []types.ContradictionCandidate, log *slog.Logger) []types.PairwiseContradiction {
	found := []types.PairwiseContradiction{}
	if len(candidates) == 0 {
		return found
	}

	shown := make([]prompts.CandidateClaim, len(candidates))
	byID := make(map[string]types.ContradictionCandidate, len(candidates))
	for i, c := range candidates {
		shown[i] = prompts.CandidateClaim{
			ID:           c.GraphID,
			Text:         stringProperty(c.Properties, ingest.PropText),
			RelationID:   stringProperty(c.Properties, ingest.PropRelationID),
			EntityLabels: ingest.EntityLabelsFromProperties(c.Properties),
		}
		byID[c.GraphID] = c
	}

	msgs, err := a.prompts.PairwiseContradictions().Call(map[string]any{
		prompts.KeyProposition: input,
		prompts.KeyCandidates:  shown,
		prompts.KeyLogger:      a.logger,
	})
	if err != nil {
		log.Warn("failed to build pairwise prompt", "error", err)
		return found
	}

	parsed := llm.GenerateJSON[prompts.PairwiseResponse](context.WithValue(ctx, types.ContextKeyStage, StagePairwise), a.client, msgs)
	if !parsed.OK {
		log.Warn("pairwise judgment degraded to empty result", "error", parsed.Err)
		return found
	}

	seen := make(map[string]bool)
	for _, m := range parsed.Value.Contradictions {
		id := strings.TrimSpace(m.ResourceClaimID)
		c, ok := byID[id]
		if !ok {
			log.Debug("ignoring unknown resource claim id", "resource_claim_id", m.ResourceClaimID)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		found = append(found, types.PairwiseContradiction{
			ResourceClaimID:    id,
			ResourceText:       stringProperty(c.Properties, ingest.PropText),
			ResourceProvenance: types.ProvenanceFromProperties(c.Properties),
			Score:              c.Score,
			Reason:             m.Reason,
		})
	}
	log.Debug("pairwise judgment", "candidates", len(candidates), "contradictions", len(found))
	return found
}

// fallback judges the proposition against every exported resource fact.
func (a *Analyzer) fallback(ctx context.Context, input prompts.PropositionInput, facts *factCache, log *slog.Logger) []types.FallbackContradiction {
	found := []types.FallbackContradiction{}

	evidence, err := facts.get(ctx)
	if err != nil {
		log.Warn("graph export failed, fallback degraded to empty result", "error", err)
		return found
	}
	if len(evidence) == 0 {
		log.Debug("no exported facts, skipping fallback judgment")
		return found
	}

	msgs, err := a.prompts.FallbackContradictions().Call(map[string]any{
		prompts.KeyProposition: input,
		prompts.KeyEvidence:    evidence,
		prompts.KeyLogger:      a.logger,
	})
	if err != nil {
		log.Warn("failed to build fallback prompt", "error", err)
		return found
	}

	parsed := llm.GenerateJSON[prompts.FallbackResponse](context.WithValue(ctx, types.ContextKeyStage, StageFallback), a.client, msgs)
	if !parsed.OK {
		log.Warn("fallback judgment degraded to empty result", "error", parsed.Err)
		return found
	}

	byID := make(map[string]string, len(evidence))
	for _, e := range evidence {
		byID[e.ID] = e.Text
	}
	seen := make(map[string]bool)
	for _, m := range parsed.Value.Contradictions {
		id := strings.ToUpper(strings.TrimSpace(m.EvidenceID))
		text, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		found = append(found, types.FallbackContradiction{EvidenceID: id, EvidenceText: text, Reason: m.Reason})
	}
	log.Debug("fallback judgment", "evidence", len(evidence), "contradictions", len(found))
	return found
}

// factCache exports the resource side of the graph once per analysis run.
type factCache struct {
	driver   driver.FactExporter
	once     sync.Once
	evidence []prompts.EvidenceItem
	err      error
}

func (f *factCache) get(ctx context.Context) ([]prompts.EvidenceItem, error) {
	f.once.Do(func() {
		facts, err := f.driver.ExportFacts(ctx, types.EntityLabel, types.ClaimLabel)
		if err != nil {
			f.err = err
			return
		}
		f.evidence = EvidenceFromFacts(facts)
	})
	return f.evidence, f.err
}

// EvidenceFromFacts numbers every non-empty line of the exported facts E1..En.
func EvidenceFromFacts(facts []string) []prompts.EvidenceItem {
	evidence := []prompts.EvidenceItem{}
	for _, fact := range facts {
		for _, line := range strings.Split(fact, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			evidence = append(evidence, prompts.EvidenceItem{
				ID:   fmt.Sprintf("E%d", len(evidence)+1),
				Text: line,
			})
		}
	}
	return evidence
}

func emptyResult(proposition *types.GraphNode) types.PropositionResult {
	return types.PropositionResult{
		Proposition: types.PropositionSummary{
			GraphID:    proposition.ID,
			Text:       proposition.StringProperty(ingest.PropText),
			RelationID: proposition.StringProperty(ingest.PropRelationID),
			Provenance: types.ProvenanceFromProperties(proposition.Properties),
		},
		Pairwise: []types.PairwiseContradiction{},
		Fallback: []types.FallbackContradiction{},
	}
}

func stringProperty(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}
