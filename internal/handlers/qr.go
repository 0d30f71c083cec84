package handlers

import (
	"net/http"
	"strconv"

	"linktrail/internal/services"

	"github.com/gin-gonic/gin"
)

// LinkQR renders a QR code pointing at the link's public short URL.
func (h *Handler) LinkQR(c *gin.Context) {
	link, err := h.registry.FindByID(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	size, _ := strconv.Atoi(c.DefaultQuery("size", "256"))
	opts := services.QROptions{
		Content: "https://" + c.Request.Host + "/" + link.Alias,
		Size:    size,
		FgColor: c.Query("fg"),
		BgColor: c.Query("bg"),
	}

	if c.Query("format") == "svg" {
		svg, err := h.qrService.SVG(opts)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "image/svg+xml", []byte(svg))
		return
	}

	png, err := h.qrService.PNG(opts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
