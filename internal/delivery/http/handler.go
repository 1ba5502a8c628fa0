package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dealscout/backend/internal/domain"
	"github.com/dealscout/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	evaluationService *usecase.EvaluationService
}

// NewHandler creates a new HTTP handler
func NewHandler(evaluationService *usecase.EvaluationService) *Handler {
	return &Handler{evaluationService: evaluationService}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "dealscout-backend",
		"version": "1.0.0",
	})
}

// evaluateRequest carries already-extracted products for ranking
type evaluateRequest struct {
	Criteria *domain.Criteria           `json:"criteria" binding:"required"`
	Products []domain.Product           `json:"products"`
	Reviews  map[string][]domain.Review `json:"reviews"`
}

// Evaluate ranks extracted products against the buyer's criteria
func (h *Handler) Evaluate(c *gin.Context) {
	if h.evaluationService == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Evaluation service not configured",
		})
		return
	}

	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	result, err := h.evaluationService.Evaluate(c.Request.Context(), req.Products, req.Reviews, req.Criteria)
	if err != nil {
		h.respondEvaluationError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// extractRequest carries raw crawled text for the full extract-and-evaluate
// pipeline. Either a free-form request text or pre-parsed criteria must be
// provided.
type extractRequest struct {
	RequestText string           `json:"requestText"`
	Criteria    *domain.Criteria `json:"criteria"`
	ListingText string           `json:"listingText" binding:"required"`
	ReviewText  string           `json:"reviewText"`
}

// Extract runs the full pipeline on raw crawled text
func (h *Handler) Extract(c *gin.Context) {
	if h.evaluationService == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Evaluation service not configured",
		})
		return
	}

	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	criteria := req.Criteria
	if criteria == nil {
		if req.RequestText == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "either criteria or requestText is required"})
			return
		}
		parsed, _, err := h.evaluationService.ParseCriteria(c.Request.Context(), req.RequestText)
		if err != nil {
			h.respondEvaluationError(c, err)
			return
		}
		criteria = parsed
	}

	result, err := h.evaluationService.ExtractAndEvaluate(c.Request.Context(), req.ListingText, req.ReviewText, criteria)
	if err != nil {
		h.respondEvaluationError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// parseCriteriaRequest carries a free-form buyer request
type parseCriteriaRequest struct {
	Text string `json:"text" binding:"required"`
}

// ParseCriteria converts a free-form buyer request into structured criteria
func (h *Handler) ParseCriteria(c *gin.Context) {
	if h.evaluationService == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Evaluation service not configured",
		})
		return
	}

	var req parseCriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	criteria, outcome, err := h.evaluationService.ParseCriteria(c.Request.Context(), req.Text)
	if err != nil {
		h.respondEvaluationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"criteria": criteria,
		"outcome":  outcome.String(),
	})
}

// respondEvaluationError maps domain errors to HTTP status codes. An empty
// candidate list and an exhausted budget are distinct conditions: the first
// asks the buyer to broaden the search, the second to raise the budget.
func (h *Handler) respondEvaluationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid evaluation request"})
	case errors.Is(err, domain.ErrNoCandidates):
		c.JSON(http.StatusNotFound, gin.H{"error": "no products matched the search"})
	case errors.Is(err, domain.ErrNoAffordableProduct):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no product within the stated budget"})
	case errors.Is(err, domain.ErrExtractionFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "extraction temporarily unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
