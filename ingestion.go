package claimgraph

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/soundprediction/claimgraph/pkg/chunker"
	"github.com/soundprediction/claimgraph/pkg/ingest"
	"github.com/soundprediction/claimgraph/pkg/types"
)

// IngestSupportingDocument validates the request, mints a document id from
// the id source, then extracts and persists entities, relationships, claims
// and claim edges chunk by chunk. Chunks persisted before a storage error stay
// in the graph.
func (c *Client) IngestSupportingDocument(ctx context.Context, req DocumentRequest) (int64, error) {
	if err := validateRequest(req, types.SupportingDocument); err != nil {
		return 0, err
	}
	if c.ids == nil {
		return 0, ErrNoIDSource
	}

	id, err := c.ids.CreateDocument(ctx, req.Title)
	if err != nil {
		return 0, fmt.Errorf("failed to create document record: %w", err)
	}

	doc := types.Document{
		ID:      strconv.FormatInt(id, 10),
		Title:   req.Title,
		Content: req.Content,
		Kind:    types.SupportingDocument,
	}
	if _, err := c.ingestDocument(ctx, doc, req); err != nil {
		return id, err
	}
	return id, nil
}

// IngestMainDocument validates the request and persists the document's claims
// and the edges between them as Proposition nodes. Entities found in a main
// document are not persisted.
func (c *Client) IngestMainDocument(ctx context.Context, req DocumentRequest) error {
	if err := validateRequest(req, types.MainDocument); err != nil {
		return err
	}

	doc := types.Document{
		ID:      uuid.New().String(),
		Title:   req.Title,
		Content: req.Content,
		Kind:    types.MainDocument,
	}
	_, err := c.ingestDocument(ctx, doc, req)
	return err
}

func validateRequest(req DocumentRequest, kind types.DocumentKind) error {
	doc := types.Document{Title: req.Title, Content: req.Content, Kind: kind}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := req.Schema.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return nil
}

// ingestDocument runs every chunk of doc through the pipeline in order.
func (c *Client) ingestDocument(ctx context.Context, doc types.Document, req DocumentRequest) (*ingest.Report, error) {
	start := time.Now()
	log := c.logger.With("doc_id", doc.ID, "doc_type", string(doc.Kind))
	ctx = context.WithValue(ctx, types.ContextKeyDocumentID, doc.ID)

	chunks, err := chunker.Chunk(doc, c.opts.ChunkSize)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk document: %w", err)
	}

	log.Info("Ingesting document", "title", doc.Title, "chunks", len(chunks))

	total := &ingest.Report{}
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		report, err := c.ingestChunk(ctx, doc, chunk, req)
		total.Add(report)
		if err != nil {
			return total, fmt.Errorf("chunk %d: %w", chunk.Index, err)
		}
	}

	log.Info("Document ingested",
		"nodes_created", total.NodesCreated,
		"edges_created", total.EdgesCreated,
		"skipped_edges", total.SkippedEdges,
		"duration", time.Since(start))
	return total, nil
}

// ingestChunk extracts, deduplicates and persists one chunk.
func (c *Client) ingestChunk(ctx context.Context, doc types.Document, chunk types.Chunk, req DocumentRequest) (*ingest.Report, error) {
	log := c.logger.With("doc_id", doc.ID, "chunk_index", chunk.Index)

	extracted := c.extractor.Extract(ctx, chunk, *req.Schema, req.ProjectContext)
	if extracted.IsEmpty() {
		log.Debug("Nothing extracted from chunk")
		return &ingest.Report{}, nil
	}

	claims := c.dedupe.Claims(ctx, extracted.Claims)
	claimEdges := remapClaimEdges(extracted.ClaimEdges, claims.Aliases)
	prov := types.NewProvenance(doc, chunk)

	log.Debug("Chunk extracted",
		"entities", len(extracted.Entities),
		"relationships", len(extracted.Relationships),
		"claims", len(claims.Items),
		"claim_edges", len(claimEdges),
		"dropped", extracted.Dropped)

	if doc.Kind == types.MainDocument {
		return c.ingestor.IngestClaims(ctx, types.PropositionLabel, prov, claims.Items, claimEdges)
	}

	entities := c.dedupe.Entities(ctx, extracted.Entities)
	relationships := remapRelationships(extracted.Relationships, entities.Aliases)

	report, err := c.ingestor.IngestEntities(ctx, prov, entities.Items, relationships)
	if err != nil {
		return report, err
	}
	claimReport, err := c.ingestor.IngestClaims(ctx, types.ClaimLabel, prov, claims.Items, claimEdges)
	report.Add(claimReport)
	return report, err
}

// remapRelationships points relationship endpoints at surviving entities and
// drops relationships that became exact duplicates.
func remapRelationships(rels []types.ExtractedRelationship, aliases map[string]string) []types.ExtractedRelationship {
	out := make([]types.ExtractedRelationship, 0, len(rels))
	seen := make(map[string]bool, len(rels))
	for _, rel := range rels {
		rel.SourceEntityID = alias(aliases, rel.SourceEntityID)
		rel.TargetEntityID = alias(aliases, rel.TargetEntityID)
		key := strings.Join([]string{rel.TypeID, rel.SourceEntityID, rel.TargetEntityID}, "\x1f")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rel)
	}
	return out
}

// remapClaimEdges points claim edge endpoints at surviving claims, dropping
// duplicates and edges whose endpoints merged into the same claim.
func remapClaimEdges(edges []types.ClaimEdge, aliases map[string]string) []types.ClaimEdge {
	out := make([]types.ClaimEdge, 0, len(edges))
	seen := make(map[types.ClaimEdge]bool, len(edges))
	for _, edge := range edges {
		edge.SourceClaimID = alias(aliases, edge.SourceClaimID)
		edge.TargetClaimID = alias(aliases, edge.TargetClaimID)
		if edge.SourceClaimID == edge.TargetClaimID || seen[edge] {
			continue
		}
		seen[edge] = true
		out = append(out, edge)
	}
	return out
}

func alias(aliases map[string]string, id string) string {
	if survivor, ok := aliases[id]; ok {
		return survivor
	}
	return id
}
