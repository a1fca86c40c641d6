package contradiction

import (
	"sort"
	"strings"

	"github.com/soundprediction/claimgraph/pkg/ingest"
	"github.com/soundprediction/claimgraph/pkg/types"
)

// DefaultTopK is the number of candidates kept per proposition.
const DefaultTopK = 5

// RankCandidates scores every claim against the proposition: one point for
// the same relation and one per shared entity label. Claims scoring zero and
// claims whose text equals the proposition's are dropped. The rest are sorted
// by score, ties in input order, and cut to the best k.
func RankCandidates(proposition *types.GraphNode, claims []*types.GraphNode, k int) []types.ContradictionCandidate {
	if k <= 0 {
		k = DefaultTopK
	}

	propText := strings.TrimSpace(proposition.StringProperty(ingest.PropText))
	propRelation := proposition.StringProperty(ingest.PropRelationID)
	propLabels := make(map[string]bool)
	for _, l := range ingest.EntityLabelsFromProperties(proposition.Properties) {
		propLabels[l] = true
	}

	candidates := []types.ContradictionCandidate{}
	for _, claim := range claims {
		if strings.TrimSpace(claim.StringProperty(ingest.PropText)) == propText {
			continue
		}

		score := 0
		sharedRelation := propRelation != "" && claim.StringProperty(ingest.PropRelationID) == propRelation
		if sharedRelation {
			score++
		}

		shared := []string{}
		seen := make(map[string]bool)
		for _, l := range ingest.EntityLabelsFromProperties(claim.Properties) {
			if propLabels[l] && !seen[l] {
				seen[l] = true
				shared = append(shared, l)
			}
		}
		sort.Strings(shared)
		score += len(shared)

		if score <= 0 {
			continue
		}
		candidates = append(candidates, types.ContradictionCandidate{
			GraphID:            claim.ID,
			Score:              score,
			SharedEntityLabels: shared,
			SharedRelation:     sharedRelation,
			Properties:         claim.Properties,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}
