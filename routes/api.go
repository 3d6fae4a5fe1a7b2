package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/tcg-price-bot/app/controllers"
)

// SetupAPIRoutes registers the versioned admin routes.
func SetupAPIRoutes(router *gin.Engine, adminController *controllers.AdminController) {
	v1 := router.Group("/v1")
	{
		admin := v1.Group("/admin")
		{
			admin.GET("/stats", adminController.GetStats)
			admin.POST("/refresh", adminController.ForceRefresh)
		}
	}
}

// SetupHealthRoutes registers liveness/readiness checks.
func SetupHealthRoutes(router *gin.Engine, adminController *controllers.AdminController) {
	router.GET("/health", adminController.HealthCheck)
	router.GET("/ready", adminController.HealthCheck)
	router.GET("/live", adminController.HealthCheck)
}

// SetupAllRoutes wires middleware and every route group.
func SetupAllRoutes(router *gin.Engine, adminController *controllers.AdminController) {
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	SetupHealthRoutes(router, adminController)
	SetupAPIRoutes(router, adminController)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}
