package handlers

import (
	"net/http"
	"strconv"
	"time"

	"linktrail/internal/services"

	"github.com/gin-gonic/gin"
)

// parseWindow reads start/end query params (RFC3339 or YYYY-MM-DD). The
// default window is the trailing 30 days; end is exclusive.
func parseWindow(c *gin.Context) (services.DateWindow, error) {
	now := time.Now().UTC()
	window := services.DateWindow{
		Start: now.AddDate(0, 0, -30),
		End:   now,
	}

	if raw := c.Query("start"); raw != "" {
		t, err := parseTimestamp(raw)
		if err != nil {
			return window, err
		}
		window.Start = t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := parseTimestamp(raw)
		if err != nil {
			return window, err
		}
		window.End = t
	}
	return window, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// LinkAnalytics serves the aggregated summary for one link.
func (h *Handler) LinkAnalytics(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.registry.FindByID(id); err != nil {
		h.respondError(c, err)
		return
	}

	window, err := parseWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start/end must be RFC3339 or YYYY-MM-DD"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	summary, err := h.analytics.Summarize(id, window, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GlobalAnalytics serves the aggregated summary across all links.
func (h *Handler) GlobalAnalytics(c *gin.Context) {
	window, err := parseWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start/end must be RFC3339 or YYYY-MM-DD"})
		return
	}

	summary, err := h.analytics.Summarize("", window, 0)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// LinkStats serves the storage-side aggregates (clicks, uniques, top
// countries, recent visits) without the full summary.
func (h *Handler) LinkStats(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.registry.FindByID(id); err != nil {
		h.respondError(c, err)
		return
	}

	stats, err := h.analytics.Stats(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
