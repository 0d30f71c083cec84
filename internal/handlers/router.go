package handlers

import (
	"linktrail/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SetupRouter(rateLimiter *services.IPRateLimiter) *gin.Engine {
	r := gin.Default()

	if rateLimiter != nil {
		r.Use(h.RateLimitMiddleware(rateLimiter))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/links", h.CreateLink)
		api.GET("/links", h.ListLinks)
		api.GET("/links/:id", h.GetLink)
		api.DELETE("/links/:id", h.DeactivateLink)
		api.POST("/links/:id/visits", h.TrackVisit)
		api.GET("/links/:id/analytics", h.LinkAnalytics)
		api.GET("/links/:id/stats", h.LinkStats)
		api.GET("/links/:id/qr", h.LinkQR)
		api.GET("/analytics", h.GlobalAnalytics)
	}

	// Catch-all short link resolution
	r.GET("/:alias", h.Redirect)

	return r
}
