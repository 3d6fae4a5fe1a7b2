package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tcg-price-bot/app/services"
)

// AdminController exposes the operational surface: health, snapshot stats
// and force-refresh.
type AdminController struct {
	priceService *services.PriceService
	logger       *zap.Logger
}

// NewAdminController wires the controller.
func NewAdminController(priceService *services.PriceService, logger *zap.Logger) *AdminController {
	return &AdminController{
		priceService: priceService,
		logger:       logger,
	}
}

// HealthCheck handles GET /health.
func (ac *AdminController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// GetStats handles GET /v1/admin/stats.
func (ac *AdminController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, ac.priceService.GetStats())
}

// ForceRefresh handles POST /v1/admin/refresh. The rebuild runs to
// completion before the response is written; slow is expected here.
func (ac *AdminController) ForceRefresh(c *gin.Context) {
	start := time.Now()
	if err := ac.priceService.ForceRefresh(c.Request.Context()); err != nil {
		ac.logger.Error("Forced refresh failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "catalog refresh failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "refreshed",
		"duration": time.Since(start).String(),
		"stats":    ac.priceService.GetStats(),
	})
}
