package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/manmaru/backend/config"
	"github.com/manmaru/backend/internal/domain"
	"github.com/manmaru/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	// Run tests
	exitCode := m.Run()

	// Exit with the test result code
	os.Exit(exitCode)
}

func testFoods() []domain.Food {
	return []domain.Food{
		{
			ID: "01088", Name: "ご飯", Aliases: []string{"ごはん", "白米"},
			Category:         domain.CategoryGrains,
			NutrientsPer100g: domain.Nutrients{Calories: 168, Protein: 2.5, Iron: 0.1, FolicAcid: 3, Calcium: 3},
		},
		{
			ID: "04032", Name: "豆腐", Aliases: []string{"木綿豆腐", "とうふ"},
			Category:         domain.CategoryLegumes,
			NutrientsPer100g: domain.Nutrients{Calories: 72, Protein: 6.6, Iron: 0.9, FolicAcid: 12, Calcium: 86},
		},
		{
			ID: "04033", Name: "絹ごし豆腐", Aliases: []string{"きぬごし豆腐"},
			Category:         domain.CategoryLegumes,
			NutrientsPer100g: domain.Nutrients{Calories: 56, Protein: 4.9, Iron: 0.8, FolicAcid: 12, Calcium: 57},
		},
		{
			ID: "11220", Name: "鶏むね肉", Aliases: []string{"鶏胸肉"},
			Category:         domain.CategoryMeat,
			NutrientsPer100g: domain.Nutrients{Calories: 133, Protein: 21.3, Iron: 0.3, FolicAcid: 12, Calcium: 4, VitaminD: 0.1},
		},
		{
			ID: "07148", Name: "りんご", Aliases: []string{"リンゴ", "林檎"},
			Category:         domain.CategoryFruits,
			NutrientsPer100g: domain.Nutrients{Calories: 53, Protein: 0.1, Iron: 0.1, FolicAcid: 2, Calcium: 3},
		},
		{
			ID: "13003", Name: "牛乳", Aliases: []string{"普通牛乳", "ミルク"},
			Category:         domain.CategoryDairy,
			NutrientsPer100g: domain.Nutrients{Calories: 61, Protein: 3.3, Iron: 0.02, FolicAcid: 5, Calcium: 110, VitaminD: 0.3},
		},
	}
}

// failingSource is a dataset that never loads
type failingSource struct{}

func (failingSource) LoadFoods(context.Context) ([]domain.Food, error) {
	return nil, fmt.Errorf("%w: disk on fire", domain.ErrDatasetLoad)
}

func (failingSource) Describe() string { return "failing" }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"chrome-extension://*", "http://localhost:3000"},
		},
		Cache: config.CacheConfig{
			Type: config.CacheMemory,
		},
	}
}

func newTestService(repo *usecase.FoodRepository) *usecase.NutritionService {
	logger := zap.NewNop()
	parser := usecase.NewQuantityParser(nil, logger)
	matcher := usecase.NewFoodMatcher(repo, nil, usecase.MatchConfig{}, logger)
	return usecase.NewNutritionService(
		matcher,
		parser,
		usecase.NewNutritionAggregator(parser, logger),
		usecase.NutritionServiceConfig{},
		logger,
	)
}

// setupTestRouter creates a test router backed by the in-memory test foods
func setupTestRouter() *gin.Engine {
	repo := usecase.NewStaticFoodRepository(usecase.NewFoodIndex(testFoods(), zap.NewNop()))
	return SetupRouter(testConfig(), NewHandler(newTestService(repo), nil), nil)
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to unmarshal response %q: %v", w.Body.String(), err)
	}
}

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter()

		w := doJSON(router, "GET", "/health", "")
		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response struct {
			Status  string `json:"status"`
			Service string `json:"service"`
			Version string `json:"version"`
			Dataset struct {
				Ready  bool   `json:"ready"`
				Source string `json:"source"`
				Foods  int    `json:"foods"`
			} `json:"dataset"`
		}
		decode(t, w, &response)

		if response.Status != "healthy" {
			t.Errorf("status = %v, want healthy", response.Status)
		}
		if response.Service != ServiceName {
			t.Errorf("service = %v, want %s", response.Service, ServiceName)
		}
		if strings.TrimSpace(response.Version) == "" {
			t.Error("version is empty")
		}
		if !response.Dataset.Ready || response.Dataset.Foods != len(testFoods()) {
			t.Errorf("dataset = %+v, want ready with %d foods", response.Dataset, len(testFoods()))
		}
		if response.Dataset.Source != "static" {
			t.Errorf("dataset source = %q, want static", response.Dataset.Source)
		}
	})

	t.Run("reports starting before the dataset is loaded", func(t *testing.T) {
		repo := usecase.NewFoodRepository(failingSource{}, nil)
		router := SetupRouter(testConfig(), NewHandler(newTestService(repo), nil), nil)

		w := doJSON(router, "GET", "/health", "")
		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		var response map[string]any
		decode(t, w, &response)
		if response["status"] != "starting" {
			t.Errorf("status = %v, want starting", response["status"])
		}
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter()

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			w := doJSON(router, method, "/health", "")
			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

// TestCalculateEndpoint tests POST /api/v1/nutrition/calculate
func TestCalculateEndpoint(t *testing.T) {
	router := setupTestRouter()

	t.Run("calculates a meal", func(t *testing.T) {
		body := `{"items":[{"foodName":"ご飯","quantityText":"1杯"},{"foodName":"豆腐","quantityText":"150g"},{"foodName":"ステーキ","quantityText":"1枚"}]}`
		w := doJSON(router, "POST", "/api/v1/nutrition/calculate", body)
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var calc domain.NutritionCalculation
		decode(t, w, &calc)

		if calc.ID == "" {
			t.Error("id is empty")
		}
		if diff := calc.Nutrition.TotalCalories - 360; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("totalCalories = %v, want 360", calc.Nutrition.TotalCalories)
		}
		if len(calc.Nutrition.FoodItems) != 2 {
			t.Errorf("foodItems = %d, want 2", len(calc.Nutrition.FoodItems))
		}
		if len(calc.Unmatched) != 1 || calc.Unmatched[0] != "ステーキ" {
			t.Errorf("unmatched = %v, want [ステーキ]", calc.Unmatched)
		}
		if calc.Legacy.Calories != calc.Nutrition.TotalCalories {
			t.Errorf("legacy calories = %v, want %v", calc.Legacy.Calories, calc.Nutrition.TotalCalories)
		}
	})

	t.Run("adds per-serving and pregnancy views", func(t *testing.T) {
		body := `{"items":[{"foodName":"豆腐","quantityText":"200g"}],"servings":2,"includePregnancy":true}`
		w := doJSON(router, "POST", "/api/v1/nutrition/calculate", body)
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var calc domain.NutritionCalculation
		decode(t, w, &calc)
		if calc.PerServing == nil {
			t.Fatal("perServing missing")
		}
		if diff := calc.PerServing.TotalCalories - 72; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("perServing totalCalories = %v, want 72", calc.PerServing.TotalCalories)
		}
		if calc.Nutrition.PregnancySpecific == nil {
			t.Error("pregnancySpecific missing")
		}
	})

	t.Run("nothing matched returns 404", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/v1/nutrition/calculate", `{"items":[{"foodName":"ステーキ"}]}`)
		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}
		var resp ErrorResponse
		decode(t, w, &resp)
		if resp.Code != CodeFoodNotFound {
			t.Errorf("code = %q, want %q", resp.Code, CodeFoodNotFound)
		}
	})

	t.Run("invalid requests return 400", func(t *testing.T) {
		bodies := map[string]string{
			"empty items":        `{"items":[]}`,
			"missing items":      `{}`,
			"missing food name":  `{"items":[{"quantityText":"1杯"}]}`,
			"negative servings":  `{"items":[{"foodName":"ご飯"}],"servings":-1}`,
			"similarity too low": `{"items":[{"foodName":"ご飯"}],"minSimilarity":0.1}`,
			"malformed json":     `{"items":`,
		}
		for name, body := range bodies {
			t.Run(name, func(t *testing.T) {
				w := doJSON(router, "POST", "/api/v1/nutrition/calculate", body)
				if w.Code != http.StatusBadRequest {
					t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
				}
				var resp ErrorResponse
				decode(t, w, &resp)
				if resp.Code != CodeInvalidRequest {
					t.Errorf("code = %q, want %q", resp.Code, CodeInvalidRequest)
				}
			})
		}
	})

	t.Run("dataset failure returns 503", func(t *testing.T) {
		repo := usecase.NewFoodRepository(failingSource{}, nil)
		router := SetupRouter(testConfig(), NewHandler(newTestService(repo), nil), nil)

		w := doJSON(router, "POST", "/api/v1/nutrition/calculate", `{"items":[{"foodName":"ご飯"}]}`)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusServiceUnavailable)
		}
	})

	t.Run("without a service returns 503", func(t *testing.T) {
		router := SetupRouter(testConfig(), NewHandler(nil, nil), nil)

		w := doJSON(router, "POST", "/api/v1/nutrition/calculate", `{"items":[{"foodName":"ご飯"}]}`)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusServiceUnavailable)
		}
		var resp ErrorResponse
		decode(t, w, &resp)
		if !strings.Contains(resp.Error, "not configured") {
			t.Errorf("error = %q, want to contain 'not configured'", resp.Error)
		}
	})
}

// TestFoodEndpoints tests the match, search and lookup endpoints
func TestFoodEndpoints(t *testing.T) {
	router := setupTestRouter()

	t.Run("match keeps request order", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/v1/foods/match", `{"names":["ごはん","ステーキ","りんご"]}`)
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var resp MatchResponse
		decode(t, w, &resp)
		if len(resp.Results) != 3 || resp.Matched != 2 {
			t.Fatalf("results = %d matched = %d, want 3 and 2", len(resp.Results), resp.Matched)
		}
		if resp.Results[0].MatchedFood == nil || resp.Results[0].MatchedFood.ID != "01088" {
			t.Errorf("results[0] = %+v, want ご飯", resp.Results[0])
		}
		if resp.Results[1].InputName != "ステーキ" || resp.Results[1].MatchedFood != nil {
			t.Errorf("results[1] = %+v, want unmatched ステーキ", resp.Results[1])
		}
		if resp.Results[2].MatchedFood == nil || resp.Results[2].MatchedFood.ID != "07148" {
			t.Errorf("results[2] = %+v, want りんご", resp.Results[2])
		}
	})

	t.Run("match requires names", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/v1/foods/match", `{"names":[]}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("search ranks exact name first", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/v1/foods/search?q="+url.QueryEscape("豆腐")+"&limit=5", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var resp SearchResponse
		decode(t, w, &resp)
		if resp.Query != "豆腐" {
			t.Errorf("query = %q, want 豆腐", resp.Query)
		}
		if len(resp.Results) == 0 || resp.Results[0].MatchedFood.ID != "04032" {
			t.Errorf("results = %+v, want 04032 first", resp.Results)
		}
	})

	t.Run("search validates parameters", func(t *testing.T) {
		for _, path := range []string{
			"/api/v1/foods/search",
			"/api/v1/foods/search?q=%20",
			"/api/v1/foods/search?q="+url.QueryEscape("豆腐")+"&limit=abc",
			"/api/v1/foods/search?q="+url.QueryEscape("豆腐")+"&limit=0",
		} {
			w := doJSON(router, "GET", path, "")
			if w.Code != http.StatusBadRequest {
				t.Errorf("%s: Status = %d, want %d", path, w.Code, http.StatusBadRequest)
			}
		}
	})

	t.Run("get food by id", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/v1/foods/04032", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		var food domain.Food
		decode(t, w, &food)
		if food.Name != "豆腐" || food.NutrientsPer100g.Calories != 72 {
			t.Errorf("food = %+v, want 豆腐 with 72 kcal", food)
		}
	})

	t.Run("unknown food id returns 404", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/v1/foods/99999", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

// TestQuantityEndpoint tests POST /api/v1/quantity/parse
func TestQuantityEndpoint(t *testing.T) {
	router := setupTestRouter()

	tests := []struct {
		name         string
		body         string
		wantGrams    float64
		wantSource   domain.GramSource
		wantCategory domain.FoodCategory
	}{
		{
			name:       "physical unit",
			body:       `{"text":"200g"}`,
			wantGrams:  200,
			wantSource: domain.GramSourceDirect,
		},
		{
			name:         "category looked up from the dataset",
			body:         `{"text":"1杯","foodName":"ご飯"}`,
			wantGrams:    150,
			wantSource:   domain.GramSourceCategoryOverride,
			wantCategory: domain.CategoryGrains,
		},
		{
			name:         "explicit category",
			body:         `{"text":"1杯","foodName":"玄米ご飯","category":"穀類"}`,
			wantGrams:    150,
			wantSource:   domain.GramSourceCategoryOverride,
			wantCategory: domain.CategoryGrains,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, "POST", "/api/v1/quantity/parse", tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("Status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
			}

			var resp QuantityResponse
			decode(t, w, &resp)
			if resp.Grams.Grams != tt.wantGrams {
				t.Errorf("grams = %v, want %v", resp.Grams.Grams, tt.wantGrams)
			}
			if resp.Grams.Source != tt.wantSource {
				t.Errorf("source = %q, want %q", resp.Grams.Source, tt.wantSource)
			}
			if resp.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", resp.Category, tt.wantCategory)
			}
		})
	}
}

// TestCORSIntegration tests CORS headers work end-to-end with full router
func TestCORSIntegration(t *testing.T) {
	t.Run("health endpoint has CORS for Chrome extension", func(t *testing.T) {
		router := setupTestRouter()

		req := httptest.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "chrome-extension://abcdefghijklmnop")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		gotOrigin := w.Header().Get("Access-Control-Allow-Origin")
		if gotOrigin != "chrome-extension://abcdefghijklmnop" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", gotOrigin, "chrome-extension://abcdefghijklmnop")
		}

		gotCreds := w.Header().Get("Access-Control-Allow-Credentials")
		if gotCreds != "true" {
			t.Errorf("Access-Control-Allow-Credentials = %q, want %q", gotCreds, "true")
		}
	})

	t.Run("api endpoint has CORS for localhost", func(t *testing.T) {
		router := setupTestRouter()

		req := httptest.NewRequest("POST", "/api/v1/foods/match", strings.NewReader(`{"names":["ご飯"]}`))
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		gotOrigin := w.Header().Get("Access-Control-Allow-Origin")
		if gotOrigin != "http://localhost:3000" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", gotOrigin, "http://localhost:3000")
		}
	})
}

// TestRequestID tests that every response carries a request id
func TestRequestID(t *testing.T) {
	router := setupTestRouter()

	w := doJSON(router, "GET", "/health", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("X-Request-ID = %q, want req-123", got)
	}
}

// TestRateLimitIntegration tests that only API routes are rate limited
func TestRateLimitIntegration(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{PerIP: 60, Burst: 1}
	repo := usecase.NewStaticFoodRepository(usecase.NewFoodIndex(testFoods(), zap.NewNop()))
	router := SetupRouter(cfg, NewHandler(newTestService(repo), nil), nil)

	if w := doJSON(router, "GET", "/api/v1/foods/01088", ""); w.Code != http.StatusOK {
		t.Fatalf("first request: Status = %d, want %d", w.Code, http.StatusOK)
	}
	if w := doJSON(router, "GET", "/api/v1/foods/01088", ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("second request: Status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	for i := 0; i < 3; i++ {
		if w := doJSON(router, "GET", "/health", ""); w.Code != http.StatusOK {
			t.Errorf("health %d: Status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}
}

// TestRecoveryMiddleware tests panic recovery
func TestRecoveryMiddleware(t *testing.T) {
	t.Run("recovers from panic without crashing server", func(t *testing.T) {
		router := setupTestRouter()

		// Add a test route that panics
		router.GET("/panic", func(c *gin.Context) {
			panic("test panic")
		})

		w := doJSON(router, "GET", "/panic", "")

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
		var resp ErrorResponse
		decode(t, w, &resp)
		if resp.Code != CodeInternal {
			t.Errorf("code = %q, want %q", resp.Code, CodeInternal)
		}
	})
}

// TestAPIVersioning tests that API v1 routes are correctly versioned
func TestAPIVersioning(t *testing.T) {
	router := setupTestRouter()

	t.Run("v1 routes are accessible", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/v1/foods/search?q="+url.QueryEscape("りんご"), "")
		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("non-versioned routes return 404", func(t *testing.T) {
		for _, path := range []string{"/api/nutrition/calculate", "/nutrition/calculate", "/api/v1/nutrition"} {
			w := doJSON(router, "POST", path, "")
			if w.Code != http.StatusNotFound {
				t.Errorf("Path %s: Status = %d, want %d", path, w.Code, http.StatusNotFound)
			}
		}
	})
}

// TestJSONResponses tests that all responses are valid JSON
func TestJSONResponses(t *testing.T) {
	endpoints := []struct {
		method string
		path   string
		body   string
	}{
		{"GET", "/health", ""},
		{"POST", "/api/v1/nutrition/calculate", `{"items":[{"foodName":"ご飯"}]}`},
		{"POST", "/api/v1/nutrition/calculate", `{}`},
		{"POST", "/api/v1/foods/match", `{"names":["牛乳"]}`},
		{"GET", "/api/v1/foods/search?q=" + url.QueryEscape("ミルク"), ""},
		{"GET", "/api/v1/foods/13003", ""},
		{"POST", "/api/v1/quantity/parse", `{"text":"大さじ1"}`},
	}

	router := setupTestRouter()
	for _, endpoint := range endpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			w := doJSON(router, endpoint.method, endpoint.path, endpoint.body)

			gotContentType := w.Header().Get("Content-Type")
			wantContentType := "application/json; charset=utf-8"
			if gotContentType != wantContentType {
				t.Errorf("Content-Type = %q, want %q", gotContentType, wantContentType)
			}

			var response map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Errorf("Response should be valid JSON, got error: %v", err)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrInvalidRequest, http.StatusBadRequest, CodeInvalidRequest},
		{domain.ErrInvalidArgument, http.StatusBadRequest, CodeInvalidRequest},
		{domain.ErrFoodNotFound, http.StatusNotFound, CodeFoodNotFound},
		{domain.ErrDatasetLoad, http.StatusServiceUnavailable, CodeDatasetUnavailable},
		{domain.ErrDatasetEmpty, http.StatusServiceUnavailable, CodeDatasetUnavailable},
		{domain.ErrIndexNotLoaded, http.StatusServiceUnavailable, CodeDatasetUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, CodeTimeout},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, code := statusFor(tt.err)
			if status != tt.wantStatus || code != tt.wantCode {
				t.Errorf("statusFor() = %d, %s; want %d, %s", status, code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}
