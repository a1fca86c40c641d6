// Package ingest persists one chunk's extraction into the property graph.
//
// Chunk-local ids are resolved to the graph ids returned at node creation and
// never stored. Edges whose endpoints were not created are skipped with a
// warning. Writes are not rolled back: a failed write leaves earlier writes
// of the same chunk in place.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soundprediction/claimgraph/pkg/driver"
	"github.com/soundprediction/claimgraph/pkg/types"
)

// ErrInvalidLabel is returned when claims are ingested under a non-claim label.
var ErrInvalidLabel = errors.New("claims must be stored as Claim or Proposition")

// Writer is the part of a graph driver the ingestor uses.
type Writer interface {
	driver.NodeWriter
	driver.EdgeWriter
}

// Options tunes ingestion.
type Options struct {
	// LinkByProperty links edge endpoints by property value instead of graph id.
	LinkByProperty bool
}

// Report counts the graph writes of one ingestion call.
type Report struct {
	NodesCreated int      `json:"nodes_created"`
	EdgesCreated int      `json:"edges_created"`
	SkippedEdges int      `json:"skipped_edges"`
	Warnings     []string `json:"warnings,omitempty"`
}

// Add accumulates other into r.
func (r *Report) Add(other *Report) {
	if other == nil {
		return
	}
	r.NodesCreated += other.NodesCreated
	r.EdgesCreated += other.EdgesCreated
	r.SkippedEdges += other.SkippedEdges
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// nodeRef is where a chunk-local id ended up.
type nodeRef struct {
	graphID string
	ref     driver.NodeRef
}

// Ingestor writes extraction results through a graph driver.
type Ingestor struct {
	driver Writer
	logger *slog.Logger
	opts   Options
}

// NewIngestor creates an Ingestor. A nil logger uses slog.Default(); nil opts
// link edges by graph id.
func NewIngestor(d Writer, logger *slog.Logger, opts *Options) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	ing := &Ingestor{driver: d, logger: logger}
	if opts != nil {
		ing.opts = *opts
	}
	return ing
}

// IngestEntities creates one Entity node per entity and one edge per
// relationship whose endpoints were both created.
func (i *Ingestor) IngestEntities(ctx context.Context, prov types.Provenance, entities []types.ExtractedEntity, relationships []types.ExtractedRelationship) (*Report, error) {
	report := &Report{}
	log := i.logger.With("doc_id", prov.DocID, "chunk_index", prov.ChunkIndex)

	refs := make(map[string]nodeRef, len(entities))
	for _, ent := range entities {
		id, err := i.driver.CreateNode(ctx, types.EntityLabel, entityProperties(ent, prov))
		if err != nil {
			return report, fmt.Errorf("failed to create entity node %q: %w", ent.Surface, err)
		}
		report.NodesCreated++

		prop, value := ent.MatchValue()
		i.record(refs, ent.LocalID, nodeRef{
			graphID: id,
			ref:     driver.NodeRef{Label: types.EntityLabel, Property: prop, Value: value},
		}, report, log)
	}

	for _, rel := range relationships {
		src, tgt, ok := i.resolve(refs, rel.SourceEntityID, rel.TargetEntityID, "relationship "+rel.LocalID, report, log)
		if !ok {
			continue
		}
		if err := i.link(ctx, src, tgt, types.EdgeTypeFor(rel.TypeID), relationshipProperties(rel), report, log); err != nil {
			return report, err
		}
	}

	log.Debug("ingested entities",
		"nodes", report.NodesCreated,
		"edges", report.EdgesCreated,
		"skipped_edges", report.SkippedEdges)
	return report, nil
}

// IngestClaims creates one node per claim under label, with provenance
// attached, and one edge per claim edge whose endpoints were both created.
func (i *Ingestor) IngestClaims(ctx context.Context, label types.NodeLabel, prov types.Provenance, claims []types.Claim, edges []types.ClaimEdge) (*Report, error) {
	if label != types.ClaimLabel && label != types.PropositionLabel {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}

	report := &Report{}
	log := i.logger.With("doc_id", prov.DocID, "chunk_index", prov.ChunkIndex, "label", label)

	refs := make(map[string]nodeRef, len(claims))
	for _, claim := range claims {
		id, err := i.driver.CreateNode(ctx, label, claimProperties(claim, prov))
		if err != nil {
			return report, fmt.Errorf("failed to create %s node: %w", label, err)
		}
		report.NodesCreated++

		i.record(refs, claim.LocalID, nodeRef{
			graphID: id,
			ref:     driver.NodeRef{Label: label, Property: PropText, Value: claim.Text},
		}, report, log)
	}

	for _, edge := range edges {
		name := fmt.Sprintf("claim edge %s->%s", edge.SourceClaimID, edge.TargetClaimID)
		src, tgt, ok := i.resolve(refs, edge.SourceClaimID, edge.TargetClaimID, name, report, log)
		if !ok {
			continue
		}
		if err := i.link(ctx, src, tgt, edge.RelationType.EdgeType(), nil, report, log); err != nil {
			return report, err
		}
	}

	log.Debug("ingested claims",
		"nodes", report.NodesCreated,
		"edges", report.EdgesCreated,
		"skipped_edges", report.SkippedEdges)
	return report, nil
}

func (i *Ingestor) record(refs map[string]nodeRef, localID string, ref nodeRef, report *Report, log *slog.Logger) {
	if localID == "" {
		return
	}
	if _, dup := refs[localID]; dup {
		msg := fmt.Sprintf("duplicate local id %q, edges use the first node", localID)
		report.Warnings = append(report.Warnings, msg)
		log.Warn(msg)
		return
	}
	refs[localID] = ref
}

func (i *Ingestor) resolve(refs map[string]nodeRef, sourceID, targetID, name string, report *Report, log *slog.Logger) (nodeRef, nodeRef, bool) {
	src, srcOK := refs[sourceID]
	tgt, tgtOK := refs[targetID]
	if srcOK && tgtOK {
		return src, tgt, true
	}

	msg := fmt.Sprintf("skipping %s: dangling endpoint (source %q found=%t, target %q found=%t)",
		name, sourceID, srcOK, targetID, tgtOK)
	report.SkippedEdges++
	report.Warnings = append(report.Warnings, msg)
	log.Warn(msg)
	return nodeRef{}, nodeRef{}, false
}

func (i *Ingestor) link(ctx context.Context, src, tgt nodeRef, relType string, props map[string]any, report *Report, log *slog.Logger) error {
	if !i.opts.LinkByProperty {
		if err := i.driver.CreateEdge(ctx, src.graphID, tgt.graphID, relType, props); err != nil {
			return fmt.Errorf("failed to create %s edge: %w", relType, err)
		}
		report.EdgesCreated++
		return nil
	}

	created, err := i.driver.CreateEdgeByMatch(ctx, src.ref, tgt.ref, relType, props)
	if errors.Is(err, driver.ErrNoMatch) {
		msg := fmt.Sprintf("skipping %s edge: no node matched %v or %v", relType, src.ref.Value, tgt.ref.Value)
		report.SkippedEdges++
		report.Warnings = append(report.Warnings, msg)
		log.Warn(msg)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create %s edge: %w", relType, err)
	}
	report.EdgesCreated += created
	return nil
}
