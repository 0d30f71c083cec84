package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"linktrail/internal/config"
	"linktrail/internal/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	cfg       config.Config
	logger    *slog.Logger
	registry  *services.LinkRegistry
	recorder  *services.VisitRecorder
	analytics *services.AnalyticsService
	qrService *services.QRService
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	registry *services.LinkRegistry,
	recorder *services.VisitRecorder,
	analytics *services.AnalyticsService,
	qrService *services.QRService,
) *Handler {
	return &Handler{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		recorder:  recorder,
		analytics: analytics,
		qrService: qrService,
	}
}

// respondError maps the service error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is logged and reported generically.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case services.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAliasConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "alias already in use"})
	case errors.Is(err, services.ErrLinkNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "link not found"})
	case errors.Is(err, services.ErrLinkExpired):
		c.JSON(http.StatusGone, gin.H{"error": "link expired"})
	default:
		h.logger.Error("Internal error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
