package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/claimgraph"
	"github.com/soundprediction/claimgraph/pkg/server/dto"
)

// DocumentHandler handles document ingestion requests
type DocumentHandler struct {
	ingester claimgraph.DocumentIngester
	logger   *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(ingester claimgraph.DocumentIngester, logger *slog.Logger) *DocumentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentHandler{ingester: ingester, logger: logger}
}

// bind decodes and validates a document request, writing a 400 on failure.
func bind(c *gin.Context) (claimgraph.DocumentRequest, bool) {
	var req dto.DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return claimgraph.DocumentRequest{}, false
	}
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return claimgraph.DocumentRequest{}, false
	}
	return claimgraph.DocumentRequest{
		Title:          req.Title,
		Content:        req.Content,
		Schema:         req.Schema,
		ProjectContext: req.ProjectContext,
	}, true
}

// IngestSupporting handles POST /api/v1/documents/supporting
func (h *DocumentHandler) IngestSupporting(c *gin.Context) {
	req, ok := bind(c)
	if !ok {
		return
	}

	id, err := h.ingester.IngestSupportingDocument(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "supporting", err)
		return
	}

	c.JSON(http.StatusCreated, dto.IngestResponse{
		Success:    true,
		Message:    fmt.Sprintf("Ingested supporting document %q", req.Title),
		DocumentID: &id,
	})
}

// IngestMain handles POST /api/v1/documents/main
func (h *DocumentHandler) IngestMain(c *gin.Context) {
	req, ok := bind(c)
	if !ok {
		return
	}

	if err := h.ingester.IngestMainDocument(c.Request.Context(), req); err != nil {
		h.fail(c, "main", err)
		return
	}

	c.JSON(http.StatusCreated, dto.IngestResponse{
		Success: true,
		Message: fmt.Sprintf("Ingested main document %q", req.Title),
	})
}

func (h *DocumentHandler) fail(c *gin.Context, kind string, err error) {
	if errors.Is(err, claimgraph.ErrInvalidDocument) {
		writeError(c, http.StatusBadRequest, "invalid_document", err.Error())
		return
	}
	h.logger.Error("Document ingestion failed", "doc_type", kind, "error", err)
	writeError(c, http.StatusInternalServerError, "ingestion_failed", err.Error())
}
