package handlers

import (
	"net/http"
	"time"

	"linktrail/internal/services"

	"github.com/gin-gonic/gin"
)

type CreateLinkRequest struct {
	Alias       string     `json:"alias,omitempty"`
	TargetURL   string     `json:"target_url" binding:"required"`
	Description string     `json:"description,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// CreateLink handles the API request to register a new short link
func (h *Handler) CreateLink(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := h.registry.Create(services.CreateLinkDTO{
		Alias:       req.Alias,
		TargetURL:   req.TargetURL,
		Description: req.Description,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"link":      link,
		"short_url": c.Request.Host + "/" + link.Alias,
	})
}

func (h *Handler) ListLinks(c *gin.Context) {
	links, err := h.registry.List()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

func (h *Handler) GetLink(c *gin.Context) {
	link, err := h.registry.FindByID(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"link": link})
}

func (h *Handler) DeactivateLink(c *gin.Context) {
	if err := h.registry.Deactivate(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
