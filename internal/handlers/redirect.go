package handlers

import (
	"net/http"

	"linktrail/internal/services"

	"github.com/gin-gonic/gin"
)

// Redirect resolves an alias, records the visit and forwards the client.
// Tracking runs before the redirect so the counter reflects every resolution
// immediately; a tracking rejection decides the response status.
func (h *Handler) Redirect(c *gin.Context) {
	alias := c.Param("alias")

	link, err := h.registry.FindActiveByAlias(alias)
	if err != nil {
		h.respondError(c, err)
		return
	}

	_, err = h.recorder.Track(c.Request.Context(), services.TrackVisitDTO{
		LinkID:    link.ID,
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		// A link can pass the alias lookup and still be rejected here when
		// it expires between the two steps
		h.respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, link.TargetURL)
}
