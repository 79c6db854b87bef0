package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/manmaru/backend/internal/domain"
	"github.com/manmaru/backend/internal/usecase"
)

// Service identity reported by the health endpoint
const (
	ServiceName = "manmaru-nutrition"
	Version     = "1.0.0"
)

// Search limits
const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
	maxMatchNames      = 100
)

// Error codes returned in ErrorResponse.Code
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeFoodNotFound       = "FOOD_NOT_FOUND"
	CodeDatasetUnavailable = "DATASET_UNAVAILABLE"
	CodeNotConfigured      = "SERVICE_NOT_CONFIGURED"
	CodeTimeout            = "TIMEOUT"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CalculateRequest is the body of POST /api/v1/nutrition/calculate
type CalculateRequest struct {
	Items            []domain.ParsedFoodItem `json:"items" binding:"required,min=1,dive"`
	Servings         float64                 `json:"servings" binding:"gte=0"`
	IncludePregnancy bool                    `json:"includePregnancy"`
	MinSimilarity    float64                 `json:"minSimilarity" binding:"omitempty,gte=0.35,lte=1"`
}

// MatchRequest is the body of POST /api/v1/foods/match
type MatchRequest struct {
	Names         []string `json:"names" binding:"required,min=1"`
	MinSimilarity float64  `json:"minSimilarity" binding:"omitempty,gte=0.35,lte=1"`
}

// MatchResponse lists one result per requested name, in request order
type MatchResponse struct {
	Results []domain.FoodMatchResult `json:"results"`
	Matched int                      `json:"matched"`
}

// SearchResponse is returned by GET /api/v1/foods/search
type SearchResponse struct {
	Query   string                   `json:"query"`
	Results []domain.FoodMatchResult `json:"results"`
}

// QuantityRequest is the body of POST /api/v1/quantity/parse
type QuantityRequest struct {
	Text     string `json:"text"`
	FoodName string `json:"foodName"`
	Category string `json:"category"`
}

// QuantityResponse pairs the parsed quantity with its gram estimate
type QuantityResponse struct {
	Parsed   domain.ParsedQuantity `json:"parsed"`
	Grams    domain.GramEstimate   `json:"grams"`
	Category domain.FoodCategory   `json:"category,omitempty"`
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	service *usecase.NutritionService
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler. A nil service makes the API
// endpoints answer 503.
func NewHandler(service *usecase.NutritionService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// HealthCheck returns the health status of the API and of the food dataset
func (h *Handler) HealthCheck(c *gin.Context) {
	status := "healthy"
	dataset := gin.H{"ready": false}

	if h.service == nil {
		status = "degraded"
	} else {
		repo := h.service.Matcher().Repository()
		dataset["source"] = repo.Describe()
		if repo.Ready() {
			dataset["ready"] = true
			if idx, err := repo.Index(c.Request.Context()); err == nil {
				dataset["foods"] = idx.Len()
			}
		} else {
			status = "starting"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  status,
		"service": ServiceName,
		"version": Version,
		"dataset": dataset,
	})
}

// CalculateNutrition matches, aggregates and standardizes a list of food items
func (h *Handler) CalculateNutrition(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	calc, err := h.service.Calculate(c.Request.Context(), req.Items, usecase.CalculateOptions{
		Servings:         req.Servings,
		IncludePregnancy: req.IncludePregnancy,
		MinSimilarity:    req.MinSimilarity,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, calc)
}

// MatchFoods resolves each name to its best dataset food
func (h *Handler) MatchFoods(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if len(req.Names) > maxMatchNames {
		h.respondError(c, domain.ErrInvalidRequest)
		return
	}

	matches, err := h.service.Matcher().MatchFoods(c.Request.Context(), req.Names, usecase.MatchOptions{
		MinSimilarity: req.MinSimilarity,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := MatchResponse{Results: make([]domain.FoodMatchResult, len(req.Names))}
	for i, name := range req.Names {
		if matches[i] == nil {
			resp.Results[i] = domain.FoodMatchResult{InputName: name}
			continue
		}
		resp.Results[i] = *matches[i]
		resp.Matched++
	}

	c.JSON(http.StatusOK, resp)
}

// SearchFoods returns ranked candidates for the q query parameter
func (h *Handler) SearchFoods(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "query parameter 'q' is required", Code: CodeInvalidRequest})
		return
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer", Code: CodeInvalidRequest})
			return
		}
		limit = min(n, maxSearchLimit)
	}

	results, err := h.service.Matcher().Search(c.Request.Context(), query, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if results == nil {
		results = []domain.FoodMatchResult{}
	}

	c.JSON(http.StatusOK, SearchResponse{Query: query, Results: results})
}

// GetFood returns one dataset food by id
func (h *Handler) GetFood(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	idx, err := h.service.Matcher().Repository().Index(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	food := idx.ByID(c.Param("id"))
	if food == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "food not found: " + c.Param("id"), Code: CodeFoodNotFound})
		return
	}

	c.JSON(http.StatusOK, food)
}

// ParseQuantity parses quantity text and estimates its mass. The category
// comes from the request or, failing that, from an exact dataset match on
// foodName.
func (h *Handler) ParseQuantity(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	var req QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	category := domain.FoodCategory("")
	if req.Category != "" {
		category = domain.ParseCategory(req.Category)
	} else if req.FoodName != "" {
		category = h.lookupCategory(c.Request.Context(), req.FoodName)
	}

	parsed, grams, err := h.service.Parser().Estimate(req.Text, req.FoodName, category)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, QuantityResponse{Parsed: parsed, Grams: grams, Category: category})
}

func (h *Handler) lookupCategory(ctx context.Context, foodName string) domain.FoodCategory {
	idx, err := h.service.Matcher().Repository().Index(ctx)
	if err != nil {
		h.logger.Debug("category lookup skipped", zap.String("food", foodName), zap.Error(err))
		return ""
	}
	if food := idx.ExactMatch(foodName); food != nil {
		return food.Category
	}
	return ""
}

func (h *Handler) configured(c *gin.Context) bool {
	if h.service != nil {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{
		Error: "nutrition service not configured",
		Code:  CodeNotConfigured,
	})
	return false
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: "invalid request body: " + err.Error(),
		Code:  CodeInvalidRequest,
	})
}

// respondError maps domain errors onto HTTP statuses
func (h *Handler) respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, domain.ErrFoodNotFound):
		return http.StatusNotFound, CodeFoodNotFound
	case errors.Is(err, domain.ErrDatasetLoad),
		errors.Is(err, domain.ErrDatasetEmpty),
		errors.Is(err, domain.ErrIndexNotLoaded):
		return http.StatusServiceUnavailable, CodeDatasetUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeTimeout
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
