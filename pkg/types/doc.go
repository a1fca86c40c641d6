// Package types defines the core data types shared by the claimgraph pipeline.
//
// This package contains the fundamental types used throughout claimgraph:
//   - Document and Chunk: the units of ingestion
//   - Schema: the caller-supplied entity and relationship vocabulary
//   - ExtractedEntity, ExtractedRelationship, Claim, ClaimEdge: chunk-local extraction output
//   - Provenance: the origin record attached to every persisted claim
//   - GraphNode and GraphEdge: what the graph store hands back
//   - PropositionResult: the output of contradiction analysis
//
// # Identifiers
//
// Extraction output carries chunk-local identifiers ("e1", "c3"). They are only
// meaningful inside a single chunk and are never persisted; the ingestor maps them
// to the graph identifiers returned by the driver.
//
// # Validation
//
// Documents and schemas provide Validate methods for input validation:
//
//	doc := types.Document{Title: "Trial report", Content: text, Kind: types.SupportingDocument}
//	if err := doc.Validate(); err != nil {
//	    // Handle validation error
//	}
package types
