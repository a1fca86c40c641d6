package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/soundprediction/claimgraph/pkg/types"
)

// WalkStep is a node visited by Walk and its distance from the start.
type WalkStep struct {
	Node  *types.GraphNode `json:"node"`
	Depth int              `json:"depth"`
}

// Walk performs a depth-first traversal from startID over outgoing edges of
// relType. Each node is visited once; neighbors are explored in edge creation
// order. A negative maxDepth means unlimited. A missing start node yields an
// empty walk.
func Walk(ctx context.Context, r WalkReader, startID, relType string, maxDepth int) ([]WalkStep, error) {
	if _, err := r.GetNodeByID(ctx, startID); err != nil {
		if errors.Is(err, ErrNodeNotFound) {
			return []WalkStep{}, nil
		}
		return nil, err
	}

	type frame struct {
		id    string
		depth int
	}

	visited := make(map[string]bool)
	steps := []WalkStep{}
	stack := []frame{{id: startID}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[cur.id] {
			continue
		}
		if maxDepth >= 0 && cur.depth > maxDepth {
			continue
		}
		visited[cur.id] = true

		node, err := r.GetNodeByID(ctx, cur.id)
		switch {
		case err == nil:
			steps = append(steps, WalkStep{Node: node, Depth: cur.depth})
		case !errors.Is(err, ErrNodeNotFound):
			return nil, fmt.Errorf("walk: failed to load node %s: %w", cur.id, err)
		}

		neighbors, err := r.OutNeighbors(ctx, cur.id, relType)
		if err != nil {
			return nil, fmt.Errorf("walk: failed to expand node %s: %w", cur.id, err)
		}
		// Push in reverse so the first neighbor is popped first.
		for i := len(neighbors) - 1; i >= 0; i-- {
			if !visited[neighbors[i]] {
				stack = append(stack, frame{id: neighbors[i], depth: cur.depth + 1})
			}
		}
	}

	return steps, nil
}
