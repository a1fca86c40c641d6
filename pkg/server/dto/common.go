package dto

import (
	"errors"
	"strings"

	"github.com/soundprediction/claimgraph/pkg/driver"
	"github.com/soundprediction/claimgraph/pkg/types"
)

// Validation errors
var (
	ErrEmptyTitle     = errors.New("title cannot be empty")
	ErrEmptyContent   = errors.New("content cannot be empty")
	ErrTitleTooLong   = errors.New("title exceeds maximum length (1024)")
	ErrContentTooLong = errors.New("content exceeds maximum length (10MB)")
)

// MaxFieldLengths defines maximum lengths for fields to prevent abuse
const (
	MaxTitleLength   = 1024
	MaxContentLength = 10 * 1024 * 1024
)

// DocumentRequest is the body of both document ingestion endpoints.
type DocumentRequest struct {
	Title          string        `json:"title"`
	Content        string        `json:"content"`
	Schema         *types.Schema `json:"schema"`
	ProjectContext string        `json:"project_context,omitempty"`
}

// Validate performs validation on DocumentRequest
func (r *DocumentRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if len(r.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if r.Content == "" {
		return ErrEmptyContent
	}
	if len(r.Content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// IngestResponse reports a completed ingestion.
type IngestResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	DocumentID *int64 `json:"document_id,omitempty"`
}

// AnalysisResponse carries the contradiction analysis of every proposition.
type AnalysisResponse struct {
	Propositions int                       `json:"propositions"`
	Contradicted int                       `json:"contradicted"`
	Results      []types.PropositionResult `json:"results"`
}

// WalkResponse lists the nodes reached from a start node.
type WalkResponse struct {
	StartID string            `json:"start_id"`
	Steps   []driver.WalkStep `json:"steps"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
