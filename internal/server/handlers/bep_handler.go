package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/breakeven/internal/domain/models"
	"github.com/mamadbah2/breakeven/internal/engine"
	"github.com/mamadbah2/breakeven/internal/repository"
	"github.com/mamadbah2/breakeven/internal/service/bep"
)

// BreakEvenService is the service surface exposed over REST.
type BreakEvenService interface {
	Config(ctx context.Context, restaurantID string) (models.BepConfig, error)
	SaveConfig(ctx context.Context, cfg models.BepConfig) error
	Summary(ctx context.Context, restaurantID string) (bep.Summary, error)
	Price(ctx context.Context, restaurantID string, req models.PriceRequest) (engine.PricingResult, error)
	AddFixedCost(ctx context.Context, restaurantID string, req models.FixedCostRequest) (models.FixedCostItem, error)
	RemoveFixedCost(ctx context.Context, restaurantID, itemID string) (models.FixedCostItem, error)
	UpsertCategory(ctx context.Context, restaurantID string, category models.RevenueCategory) (models.RevenueCategory, error)
}

// BepHandler serves the break-even REST endpoints.
type BepHandler struct {
	svc    BreakEvenService
	logger *zap.Logger
}

// NewBepHandler constructs the REST handler adapter.
func NewBepHandler(svc BreakEvenService, logger *zap.Logger) *BepHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BepHandler{svc: svc, logger: logger}
}

// GetConfig returns the stored configuration, or the defaults.
func (h *BepHandler) GetConfig(c *gin.Context) {
	cfg, err := h.svc.Config(c.Request.Context(), c.Param("restaurantID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// PutConfig replaces the configuration as a whole.
func (h *BepHandler) PutConfig(c *gin.Context) {
	var cfg models.BepConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		h.logger.Warn("invalid configuration payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cfg.RestaurantID = c.Param("restaurantID")

	if err := h.svc.SaveConfig(c.Request.Context(), cfg); err != nil {
		h.fail(c, err)
		return
	}

	saved, err := h.svc.Config(c.Request.Context(), cfg.RestaurantID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// BreakEven returns fixed cost totals, break-even and mix validation.
func (h *BepHandler) BreakEven(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context(), c.Param("restaurantID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// MixValidation returns the share check of the product mix.
func (h *BepHandler) MixValidation(c *gin.Context) {
	cfg, err := h.svc.Config(c.Request.Context(), c.Param("restaurantID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, engine.ValidateProductMix(cfg.ProductMix))
}

// Price runs category pricing.
func (h *BepHandler) Price(c *gin.Context) {
	var req models.PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid pricing payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.svc.Price(c.Request.Context(), c.Param("restaurantID"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "warnings": issuesOf(result.Warnings())})
}

// AddFixedCost appends a fixed cost line.
func (h *BepHandler) AddFixedCost(c *gin.Context) {
	var req models.FixedCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid fixed cost payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.svc.AddFixedCost(c.Request.Context(), c.Param("restaurantID"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// RemoveFixedCost deletes a fixed cost line.
func (h *BepHandler) RemoveFixedCost(c *gin.Context) {
	if _, err := h.svc.RemoveFixedCost(c.Request.Context(), c.Param("restaurantID"), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PutCategory creates or replaces a product mix category. The path id wins
// over the body id.
func (h *BepHandler) PutCategory(c *gin.Context) {
	var category models.RevenueCategory
	if err := c.ShouldBindJSON(&category); err != nil {
		h.logger.Warn("invalid category payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	category.ID = c.Param("categoryID")

	saved, err := h.svc.UpsertCategory(c.Request.Context(), c.Param("restaurantID"), category)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *BepHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, bep.ErrInvalidConfig):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, bep.ErrFixedCostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, bep.ErrAmbiguousID), errors.Is(err, repository.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		issue, ok := bep.IssueFromError(err)
		if !ok {
			h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		status := http.StatusUnprocessableEntity
		if issue.Code == bep.IssueCategoryNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": issue.Code, "reason": issue.Message})
	}
}

func issuesOf(errs []error) []bep.Issue {
	out := []bep.Issue{}
	for _, err := range errs {
		if issue, ok := bep.IssueFromError(err); ok {
			out = append(out, issue)
		}
	}
	return out
}
