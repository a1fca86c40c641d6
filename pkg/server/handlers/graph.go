package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/claimgraph"
	"github.com/soundprediction/claimgraph/pkg/server/dto"
)

// GraphHandler handles contradiction analysis and graph exploration
type GraphHandler struct {
	finder   claimgraph.ContradictionFinder
	explorer claimgraph.GraphExplorer
	logger   *slog.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(finder claimgraph.ContradictionFinder, explorer claimgraph.GraphExplorer, logger *slog.Logger) *GraphHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphHandler{finder: finder, explorer: explorer, logger: logger}
}

// Analyze handles POST /api/v1/contradictions
func (h *GraphHandler) Analyze(c *gin.Context) {
	results, err := h.finder.AnalyzeContradictions(c.Request.Context())
	if err != nil {
		h.logger.Error("Contradiction analysis failed", "error", err)
		writeError(c, http.StatusInternalServerError, "analysis_failed", err.Error())
		return
	}

	contradicted := 0
	for i := range results {
		if results[i].HasContradictions() {
			contradicted++
		}
	}
	c.JSON(http.StatusOK, dto.AnalysisResponse{
		Propositions: len(results),
		Contradicted: contradicted,
		Results:      results,
	})
}

// Walk handles GET /api/v1/nodes/:id/walk?type=&max_depth=
func (h *GraphHandler) Walk(c *gin.Context) {
	startID := c.Param("id")
	maxDepth := -1
	if raw := c.Query("max_depth"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid_request", "max_depth must be an integer")
			return
		}
		maxDepth = n
	}

	steps, err := h.explorer.Walk(c.Request.Context(), startID, c.Query("type"), maxDepth)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "walk_failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, dto.WalkResponse{StartID: startID, Steps: steps})
}

// Stats handles GET /api/v1/stats
func (h *GraphHandler) Stats(c *gin.Context) {
	stats, err := h.explorer.Stats(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "stats_failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, stats)
}
