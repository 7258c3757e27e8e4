package http

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/realfoodscore/backend/internal/domain"
	"github.com/realfoodscore/backend/internal/logging"
)

//go:embed static/index.html
var indexHTML []byte

const (
	unknownProduct = "Unknown Product"
	offlineMessage = "Product lookup is unavailable. Check your connection and try again."
)

// Scorer scores a raw ingredient list
type Scorer interface {
	Score(name, ingredients string) (*domain.ProductScoreReport, error)
}

// ProductService resolves and scores products from the product database
type ProductService interface {
	LookupBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	ScoreBarcode(ctx context.Context, barcode string) (*domain.BarcodeScore, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]domain.ProductMatch, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	scorer   Scorer
	products ProductService
	version  string
	logger   *charmlog.Logger
}

// NewHandler creates a new HTTP handler. products may be nil, in which case
// barcode and search endpoints answer as offline.
func NewHandler(scorer Scorer, products ProductService, version string, logger *charmlog.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		scorer:   scorer,
		products: products,
		version:  version,
		logger:   logger.WithPrefix("http"),
	}
}

// ScoreRequest is the body of POST /api/v1/score
type ScoreRequest struct {
	Name        string  `json:"name"`
	Ingredients *string `json:"ingredients"`
}

// SearchResponse wraps ranked search results
type SearchResponse struct {
	Query   string                `json:"query"`
	Count   int                   `json:"count"`
	Results []domain.ProductMatch `json:"results"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "realfood-score",
		"version": h.version,
	})
}

// Index serves the embedded scoring page
func (h *Handler) Index(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

// LegacyScore handles GET /score?name=&ingredients=
func (h *Handler) LegacyScore(c *gin.Context) {
	name := c.DefaultQuery("name", unknownProduct)
	ingredients := c.Query("ingredients")
	if strings.TrimSpace(ingredients) == "" {
		h.writeError(c, fmt.Errorf("%w: missing 'ingredients' parameter", domain.ErrInvalidRequest))
		return
	}

	report, err := h.scorer.Score(name, ingredients)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if c.Writer.Header().Get("Access-Control-Allow-Origin") == "" {
		c.Header("Access-Control-Allow-Origin", "*")
	}
	c.JSON(http.StatusOK, report)
}

// ScoreIngredients handles POST /api/v1/score
func (h *Handler) ScoreIngredients(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, fmt.Errorf("%w: invalid request body", domain.ErrInvalidRequest))
		return
	}
	if req.Ingredients == nil {
		h.writeError(c, fmt.Errorf("%w: ingredients is required", domain.ErrInvalidRequest))
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = unknownProduct
	}

	report, err := h.scorer.Score(name, *req.Ingredients)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetBarcode handles GET /api/v1/barcode/:code
func (h *Handler) GetBarcode(c *gin.Context) {
	if h.products == nil {
		h.writeError(c, domain.ErrLookupUnavailable)
		return
	}

	product, err := h.products.LookupBarcode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// ScoreBarcode handles GET /api/v1/barcode/:code/score
func (h *Handler) ScoreBarcode(c *gin.Context) {
	if h.products == nil {
		h.writeError(c, domain.ErrLookupUnavailable)
		return
	}

	result, err := h.products.ScoreBarcode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, domain.ErrNoIngredientData) && result != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "no_ingredient_data",
				"message": err.Error(),
				"product": result.Product,
			})
			return
		}
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SearchProducts handles GET /api/v1/products/search?q=&limit=
func (h *Handler) SearchProducts(c *gin.Context) {
	if h.products == nil {
		h.writeError(c, domain.ErrLookupUnavailable)
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		h.writeError(c, fmt.Errorf("%w: missing 'q' parameter", domain.ErrInvalidRequest))
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeError(c, fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidRequest))
			return
		}
		limit = n
	}

	matches, err := h.products.SearchProducts(c.Request.Context(), query, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SearchResponse{Query: query, Count: len(matches), Results: matches})
}

// writeError aborts the request with the status and JSON payload err maps to
func (h *Handler) writeError(c *gin.Context, err error) {
	status, payload := errorResponse(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		h.logger.Error("request failed", "path", c.Request.URL.Path, "err", err)
	}
	c.AbortWithStatusJSON(status, payload)
}

// errorResponse maps the sentinel errors to HTTP responses
func errorResponse(err error) (int, gin.H) {
	switch {
	case errors.Is(err, domain.ErrMalformedInput),
		errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidBarcode):
		return http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()}
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()}
	case errors.Is(err, domain.ErrNoIngredientData):
		return http.StatusUnprocessableEntity, gin.H{"error": "no_ingredient_data", "message": err.Error()}
	case errors.Is(err, domain.ErrLookupUnavailable):
		return http.StatusServiceUnavailable, gin.H{"error": "offline", "message": offlineMessage}
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, gin.H{"error": "rate_limited", "message": "Too many requests, slow down."}
	default:
		return http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "Internal server error"}
	}
}
