// Package dedupe merges duplicate entities and claims extracted from one chunk.
//
// Items are grouped into buckets by a structural key. Buckets with a single
// member pass through; larger buckets are sent to the completion service,
// which proposes merges. Nothing is ever dropped: any member a valid merge
// does not consume is kept as it was.
package dedupe

import (
	"context"
	"log/slog"
	"reflect"
	"strings"

	"github.com/soundprediction/claimgraph/pkg/llm"
	"github.com/soundprediction/claimgraph/pkg/nlp"
	"github.com/soundprediction/claimgraph/pkg/prompts"
	"github.com/soundprediction/claimgraph/pkg/types"
)

// StageDedupe is the stage name attached to dedupe requests.
const StageDedupe = "dedupe"

const keySep = "\x1f"

// Result is the deduplicated list and the ids merged away.
type Result[T any] struct {
	Items []T
	// Aliases maps every merged-away id to the id that replaced it.
	Aliases map[string]string
}

// Deduplicator merges buckets through a completion client.
type Deduplicator struct {
	client  nlp.Client
	prompts prompts.Library
	logger  *slog.Logger
}

// NewDeduplicator creates a Deduplicator. A nil logger uses slog.Default().
func NewDeduplicator(client nlp.Client, logger *slog.Logger) *Deduplicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deduplicator{
		client:  client,
		prompts: prompts.NewLibrary(),
		logger:  logger,
	}
}

// EntityKey is the bucket key of an entity: its type and its lower-cased
// normalized form, or surface form when there is no normalized one.
func EntityKey(e types.ExtractedEntity) string {
	_, value := e.MatchValue()
	return e.TypeID + keySep + strings.ToLower(strings.TrimSpace(value))
}

// ClaimKey is the bucket key of a claim: its relation and sorted entity labels.
func ClaimKey(c types.Claim) string {
	return c.RelationID + keySep + strings.Join(c.EntityLabels(), keySep)
}

// Entities deduplicates entities.
func (d *Deduplicator) Entities(ctx context.Context, entities []types.ExtractedEntity) Result[types.ExtractedEntity] {
	return run(ctx, d, entities, ops[types.ExtractedEntity]{
		kind:    "entity",
		prompt:  d.prompts.DedupeEntities(),
		key:     EntityKey,
		id:      func(e types.ExtractedEntity) string { return e.LocalID },
		restore: restoreEntity,
	})
}

// Claims deduplicates claims.
func (d *Deduplicator) Claims(ctx context.Context, claims []types.Claim) Result[types.Claim] {
	return run(ctx, d, claims, ops[types.Claim]{
		kind:    "claim",
		prompt:  d.prompts.DedupeClaims(),
		key:     ClaimKey,
		id:      func(c types.Claim) string { return c.LocalID },
		restore: restoreClaim,
	})
}

// ops describes how to bucket and merge one item type.
type ops[T any] struct {
	kind   string
	prompt prompts.PromptVersion
	key    func(T) string
	id     func(T) string
	// restore gives merged the id and structural key of source.
	restore func(merged, source T) T
}

func run[T any](ctx context.Context, d *Deduplicator, items []T, o ops[T]) Result[T] {
	res := Result[T]{Items: make([]T, 0, len(items)), Aliases: map[string]string{}}

	for _, bucket := range Buckets(items, o.key) {
		if len(bucket) == 1 {
			res.Items = append(res.Items, bucket[0])
			continue
		}
		merged, aliases := mergeBucket(ctx, d, bucket, o)
		res.Items = append(res.Items, merged...)
		for from, to := range aliases {
			res.Aliases[from] = to
		}
	}

	return res
}

// Buckets groups items by key. Buckets and their members keep first-encounter order.
func Buckets[T any](items []T, key func(T) string) [][]T {
	index := make(map[string]int)
	var buckets [][]T
	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, nil)
		}
		buckets[i] = append(buckets[i], item)
	}
	return buckets
}

// mergeBucket asks the completion service to merge one bucket and applies
// the valid part of its answer. Any failure keeps the bucket as it was.
func mergeBucket[T any](ctx context.Context, d *Deduplicator, bucket []T, o ops[T]) ([]T, map[string]string) {
	log := d.logger.With("kind", o.kind, "bucket_size", len(bucket))

	msgs, err := o.prompt.Call(map[string]any{
		prompts.KeyItems:  bucket,
		prompts.KeyLogger: d.logger,
	})
	if err != nil {
		log.Warn("failed to build dedupe prompt, keeping bucket", "error", err)
		return bucket, nil
	}

	ctx = context.WithValue(ctx, types.ContextKeyStage, StageDedupe)
	parsed := llm.GenerateJSON[prompts.MergeResponse[T]](ctx, d.client, msgs)
	if !parsed.OK {
		log.Warn("dedupe degraded, keeping bucket", "error", parsed.Err)
		return bucket, nil
	}

	if dups := duplicateIDs(bucket, o.id); len(dups) > 0 {
		log.Warn("bucket has duplicate ids, later copies are not merged", "ids", dups)
	}
	items, aliases := ApplyMerges(bucket, parsed.Value.Merges, o.id, o.restore)
	log.Debug("deduplicated bucket", "kept", len(items), "merged_away", len(aliases))
	return items, aliases
}

// ApplyMerges replaces the members consumed by valid merges with the merged
// items. A merge is valid when at least two of its source ids name bucket
// members that no earlier merge consumed. The merged item takes its own id
// when that is one of the sources and the first source id otherwise, and is
// placed where that member was. Members no merge consumed are kept verbatim.
// When several members share an id only the first takes part in merges; the
// rest are kept verbatim.
func ApplyMerges[T any](bucket []T, merges []prompts.Merge[T], id func(T) string, restore func(merged, source T) T) ([]T, map[string]string) {
	members := make(map[string]int, len(bucket))
	for i, item := range bucket {
		if _, ok := members[id(item)]; !ok {
			members[id(item)] = i
		}
	}

	consumed := make(map[string]bool)
	survivors := make(map[string]T)
	aliases := make(map[string]string)

	for _, m := range merges {
		var sources []string
		seen := make(map[string]bool)
		for _, src := range m.SourceIDs {
			if _, ok := members[src]; !ok || consumed[src] || seen[src] {
				continue
			}
			seen[src] = true
			sources = append(sources, src)
		}
		if len(sources) < 2 {
			continue
		}

		keep := sources[0]
		if own := id(m.Item); seen[own] {
			keep = own
		}

		survivors[keep] = restore(m.Item, bucket[members[keep]])
		for _, src := range sources {
			consumed[src] = true
			if src != keep {
				aliases[src] = keep
			}
		}
	}

	out := make([]T, 0, len(bucket))
	handled := make(map[string]bool, len(bucket))
	for _, item := range bucket {
		itemID := id(item)
		if handled[itemID] {
			out = append(out, item)
			continue
		}
		handled[itemID] = true
		if merged, ok := survivors[itemID]; ok {
			out = append(out, merged)
			continue
		}
		if consumed[itemID] {
			continue
		}
		out = append(out, item)
	}
	return out, aliases
}

// duplicateIDs lists ids carried by more than one bucket member.
func duplicateIDs[T any](bucket []T, id func(T) string) []string {
	seen := make(map[string]int, len(bucket))
	var dups []string
	for _, item := range bucket {
		itemID := id(item)
		seen[itemID]++
		if seen[itemID] == 2 {
			dups = append(dups, itemID)
		}
	}
	return dups
}

func restoreEntity(merged, source types.ExtractedEntity) types.ExtractedEntity {
	merged.LocalID = source.LocalID
	merged.TypeID = source.TypeID
	if EntityKey(merged) != EntityKey(source) {
		merged.Surface = source.Surface
		merged.Normalized = source.Normalized
	}
	if merged.CharStart == 0 && merged.CharEnd == 0 {
		merged.CharStart, merged.CharEnd = source.CharStart, source.CharEnd
	}
	return merged
}

func restoreClaim(merged, source types.Claim) types.Claim {
	merged.LocalID = source.LocalID
	merged.RelationID = source.RelationID
	if !reflect.DeepEqual(merged.EntityLabels(), source.EntityLabels()) {
		merged.Entities = source.Entities
	}
	if strings.TrimSpace(merged.Text) == "" {
		merged.Text = source.Text
	}
	if merged.Qualifiers == nil {
		merged.Qualifiers = source.Qualifiers
	}
	return merged
}
