package handlers

import (
	"net/http"

	"linktrail/internal/services"

	"github.com/gin-gonic/gin"
)

type TrackVisitRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

// TrackVisit records a visit against a link id, optionally with
// device-reported coordinates. NotFound and Expired map to distinct
// statuses so callers can tell them apart.
func (h *Handler) TrackVisit(c *gin.Context) {
	var req TrackVisitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	visit, err := h.recorder.Track(c.Request.Context(), services.TrackVisitDTO{
		LinkID:    c.Param("id"),
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Accuracy:  req.Accuracy,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"visit": visit})
}
