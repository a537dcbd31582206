package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/breakeven/internal/domain/models"
	"github.com/mamadbah2/breakeven/internal/repository/memory"
	"github.com/mamadbah2/breakeven/internal/service/bep"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	cfg := models.DefaultBepConfig("r1")
	cfg.FixedCosts = []models.FixedCostItem{{ID: "rent-1", Label: "Rent", Amount: 2000}}
	cfg.ProductMix = models.ProductMix{
		MonthlyCoverVolume: 960,
		Categories: []models.RevenueCategory{
			{ID: "pizza", Name: "Pizza", RevenueSharePercent: 55, VolumeUnitRatio: 1,
				VariableCostFlags: models.VariableCostFlags{Packaging: true, Waste: true}},
			{ID: "drinks", Name: "Drinks", RevenueSharePercent: 37, VolumeUnitRatio: 1.4},
		},
	}
	if err := store.Save(context.Background(), cfg); err != nil {
		t.Fatalf("seed: %v", err)
	}

	roster := memory.Roster{Employees: []models.Employee{{ID: "e1", MonthlySalary: 3600, ContributionPercentage: 25}}}
	h := NewBepHandler(bep.NewService(store, roster, nil), nil)

	r := gin.New()
	api := r.Group("/api/restaurants/:restaurantID")
	api.GET("/config", h.GetConfig)
	api.PUT("/config", h.PutConfig)
	api.GET("/breakeven", h.BreakEven)
	api.GET("/mix/validation", h.MixValidation)
	api.PUT("/categories/:categoryID", h.PutCategory)
	api.POST("/pricing", h.Price)
	api.POST("/fixed-costs", h.AddFixedCost)
	api.DELETE("/fixed-costs/:id", h.RemoveFixedCost)
	return r, store
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestBreakEvenEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, http.MethodGet, "/api/restaurants/r1/breakeven", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got bep.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.FixedCosts.Total != 6500 || got.BreakEven.Unreachable {
		t.Fatalf("summary = %+v", got)
	}
	if len(got.Issues) != 1 || got.Issues[0].Code != bep.IssueConfigurationInvalid {
		t.Fatalf("issues = %+v", got.Issues)
	}
}

func TestConfigEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, http.MethodGet, "/api/restaurants/new-place/config", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var cfg models.BepConfig
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.RestaurantID != "new-place" || cfg.AverageTicket != 15 {
		t.Fatalf("defaults = %+v", cfg)
	}

	cfg.AverageTicket = 22
	cfg.FixedCosts = []models.FixedCostItem{{Label: "Rent", Amount: 900}}
	rec = do(r, http.MethodPut, "/api/restaurants/new-place/config", cfg)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var saved models.BepConfig
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if saved.AverageTicket != 22 || len(saved.FixedCosts) != 1 || saved.FixedCosts[0].ID == "" {
		t.Fatalf("saved = %+v", saved)
	}

	if saved.Version != 1 {
		t.Fatalf("version = %d, want 1", saved.Version)
	}

	cfg.VariableIncidence.WasteIncidence = 150
	if rec := do(r, http.MethodPut, "/api/restaurants/new-place/config", cfg); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid put status = %d", rec.Code)
	}

	// a second writer saves first; the first one still holds version 1
	if rec := do(r, http.MethodPut, "/api/restaurants/new-place/config", saved); rec.Code != http.StatusOK {
		t.Fatalf("second put status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec := do(r, http.MethodPut, "/api/restaurants/new-place/config", saved); rec.Code != http.StatusConflict {
		t.Fatalf("stale put status = %d, want 409", rec.Code)
	}
}

func TestMixValidationEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, http.MethodGet, "/api/restaurants/r1/mix/validation", nil)
	var got struct {
		IsValid   bool    `json:"is_valid"`
		Deviation float64 `json:"deviation"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.IsValid || got.Deviation > -7.99 || got.Deviation < -8.01 {
		t.Fatalf("validation = %+v", got)
	}
}

func TestPricingEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{name: "ok", body: models.PriceRequest{Category: "pizza", RawMaterialCost: 1, DesiredMarginPercent: 10}, status: http.StatusOK},
		{name: "margin too high", body: models.PriceRequest{Category: "pizza", RawMaterialCost: 1, DesiredMarginPercent: 95}, status: http.StatusUnprocessableEntity, code: bep.IssueMarginExceeds},
		{name: "negative cost", body: models.PriceRequest{Category: "pizza", RawMaterialCost: -1}, status: http.StatusUnprocessableEntity, code: bep.IssueInvalidInput},
		{name: "unknown category", body: models.PriceRequest{Category: "salads"}, status: http.StatusNotFound, code: bep.IssueCategoryNotFound},
		{name: "missing category", body: map[string]any{"raw_material_cost": 1}, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, http.MethodPost, "/api/restaurants/r1/pricing", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.code == "" {
				return
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] != tt.code || body["reason"] == "" {
				t.Fatalf("body = %+v, want code %s", body, tt.code)
			}
		})
	}
}

func TestFixedCostEndpoints(t *testing.T) {
	r, store := newTestRouter(t)

	rec := do(r, http.MethodPost, "/api/restaurants/r1/fixed-costs", models.FixedCostRequest{Label: "Insurance", Amount: 80})
	if rec.Code != http.StatusCreated {
		t.Fatalf("post status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var item models.FixedCostItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if rec := do(r, http.MethodDelete, "/api/restaurants/r1/fixed-costs/"+item.ID, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := do(r, http.MethodDelete, "/api/restaurants/r1/fixed-costs/nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing delete status = %d", rec.Code)
	}

	cfg, _ := store.Load(context.Background(), "r1")
	if len(cfg.FixedCosts) != 1 || cfg.FixedCosts[0].ID != "rent-1" {
		t.Fatalf("fixed costs = %+v", cfg.FixedCosts)
	}
}

func TestPutCategoryEndpoint(t *testing.T) {
	r, store := newTestRouter(t)

	rec := do(r, http.MethodPut, "/api/restaurants/r1/categories/desserts", models.RevenueCategory{Name: "Desserts", RevenueSharePercent: 8, VolumeUnitRatio: 0.3})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	cfg, err := store.Load(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.ProductMix.Categories) != 3 || cfg.ProductMix.Categories[2].ID != "desserts" {
		t.Fatalf("categories = %+v", cfg.ProductMix.Categories)
	}

	rec = do(r, http.MethodPut, "/api/restaurants/r1/categories/pizza", models.RevenueCategory{Name: "Pizza", RevenueSharePercent: 150})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid share status = %d", rec.Code)
	}
}
