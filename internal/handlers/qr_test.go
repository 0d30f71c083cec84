package handlers

import (
	"net/http"
	"strings"
	"testing"

	"linktrail/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestLinkQR(t *testing.T) {
	env := setupTestEnv(t)

	link, err := env.registry.Create(services.CreateLinkDTO{Alias: "qr", TargetURL: "https://example.com"})
	assert.NoError(t, err)

	t.Run("PNG by default", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/v1/links/"+link.ID+"/qr", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(w.Body.String(), "\x89PNG"))
	})

	t.Run("SVG on request", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/v1/links/"+link.ID+"/qr?format=svg", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "<svg")
	})

	t.Run("Unknown link", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/v1/links/no-such-id/qr", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
