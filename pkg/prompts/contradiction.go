package prompts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/soundprediction/claimgraph/pkg/types"
)

// ErrNoProposition is returned when a contradiction prompt has no proposition.
var ErrNoProposition = errors.New("prompt context has no proposition")

// ContradictionVersions holds all versions of contradiction prompts.
type ContradictionVersions struct {
	pairwisePrompt PromptVersion
	fallbackPrompt PromptVersion
}

func (c *ContradictionVersions) PairwiseContradictions() PromptVersion { return c.pairwisePrompt }
func (c *ContradictionVersions) FallbackContradictions() PromptVersion { return c.fallbackPrompt }

const contradictionSystemPrompt = `You are a careful scientific reviewer that decides whether statements contradict each other.
Two statements contradict only when they cannot both be true under reasonably similar conditions.
Do not flag differences that could be explained by different datasets, metrics, time periods, populations or assumptions.
If a difference is ambiguous or depends on conditions, do not flag it.`

// pairwisePrompt judges a proposition against ranked candidate claims.
func pairwisePrompt(context map[string]any) ([]types.Message, error) {
	proposition, ok := context[KeyProposition].(PropositionInput)
	if !ok {
		return nil, ErrNoProposition
	}
	candidates, _ := context[KeyCandidates].([]CandidateClaim)

	rows := make([][]string, len(candidates))
	for i, c := range candidates {
		rows[i] = []string{c.ID, c.RelationID, strings.Join(c.EntityLabels, ","), c.Text}
	}
	candidatesTSV, err := ToPromptTSV([]string{"id", "relation_id", "entity_labels", "text"}, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal candidates: %w", err)
	}

	userPrompt := fmt.Sprintf(`
<PROPOSITION>
text: %s
relation_id: %s
entity_labels: %s
</PROPOSITION>

<RESOURCE CLAIMS>
%s
</RESOURCE CLAIMS>

RESOURCE CLAIMS are provided in TSV (tab-separated values) format with columns id, relation_id, entity_labels and text.

Which RESOURCE CLAIMS contradict the PROPOSITION? For each one, give its id exactly as listed and a short reason naming the conflicting details.

Respond with a single JSON object and nothing else, in this shape:
{"contradictions": [{"resource_claim_id": "<id>", "reason": "..."}]}
If nothing contradicts the PROPOSITION, respond with {"contradictions": []}.
`, proposition.Text, proposition.RelationID, strings.Join(proposition.EntityLabels, ","), candidatesTSV)

	return messages(context, contradictionSystemPrompt, userPrompt), nil
}

// fallbackPrompt judges a proposition against every exported graph fact.
func fallbackPrompt(context map[string]any) ([]types.Message, error) {
	proposition, ok := context[KeyProposition].(PropositionInput)
	if !ok {
		return nil, ErrNoProposition
	}
	evidence, _ := context[KeyEvidence].([]EvidenceItem)

	rows := make([][]string, len(evidence))
	for i, e := range evidence {
		rows[i] = []string{e.ID, e.Text}
	}
	evidenceTSV, err := ToPromptTSV([]string{"id", "text"}, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal evidence: %w", err)
	}

	userPrompt := fmt.Sprintf(`
<PROPOSITION>
%s
</PROPOSITION>

<EVIDENCE>
%s
</EVIDENCE>

EVIDENCE lists facts from a knowledge graph in TSV (tab-separated values) format with columns id and text.

Which EVIDENCE items contradict the PROPOSITION? For each one, give its id exactly as listed and a short reason naming the conflicting details.

Respond with a single JSON object and nothing else, in this shape:
{"contradictions": [{"evidence_id": "<id>", "reason": "..."}]}
If nothing contradicts the PROPOSITION, respond with {"contradictions": []}.
`, proposition.Text, evidenceTSV)

	return messages(context, contradictionSystemPrompt, userPrompt), nil
}

// NewContradictionVersions creates a new ContradictionVersions instance.
func NewContradictionVersions() *ContradictionVersions {
	return &ContradictionVersions{
		pairwisePrompt: NewPromptVersion(pairwisePrompt),
		fallbackPrompt: NewPromptVersion(fallbackPrompt),
	}
}
