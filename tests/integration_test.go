package main_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"linktrail/internal/config"
	"linktrail/internal/handlers"
	"linktrail/internal/models"
	"linktrail/internal/repository"
	"linktrail/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// setupRouter wires the full stack against an in-memory database, the same
// way main.go does against a real one.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:integration%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	if err := db.AutoMigrate(&models.Link{}, &models.Visit{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	logger := slog.Default()
	cfg := config.Config{GeoAPIURL: "http://127.0.0.1:1", GeoLookupTimeoutMS: 100}

	store := repository.NewStore(db)
	registry := services.NewLinkRegistry(store, logger)
	geo := services.NewGeoService(cfg, logger, nil)
	recorder := services.NewVisitRecorder(store, geo, logger)
	analytics := services.NewAnalyticsService(store)

	h := handlers.NewHandler(cfg, logger, registry, recorder, analytics, services.NewQRService())
	return h.SetupRouter(nil)
}

func request(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "127.0.0.1:52100"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateTrackAndSummarize(t *testing.T) {
	r := setupRouter(t)

	// 1. Create a link
	w := request(r, http.MethodPost, "/api/v1/links", map[string]string{
		"alias":      "launch",
		"target_url": "https://example.com/launch",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Link models.Link `json:"link"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "launch", created.Link.Alias)
	assert.Equal(t, 0, created.Link.ClickCount)

	// 2. Track a visit carrying accurate device coordinates
	w = request(r, http.MethodPost, "/api/v1/links/"+created.Link.ID+"/visits", map[string]float64{
		"latitude":  40.0,
		"longitude": -74.0,
		"accuracy":  50,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// 3. Follow the short link
	w = request(r, http.MethodGet, "/launch", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com/launch", w.Header().Get("Location"))

	// 4. Counter reflects both visits immediately
	w = request(r, http.MethodGet, "/api/v1/links/"+created.Link.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var fetched struct {
		Link models.Link `json:"link"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, 2, fetched.Link.ClickCount)

	// 5. The summary sees both, with the loopback visit under Local
	w = request(r, http.MethodGet, "/api/v1/links/"+created.Link.ID+"/analytics", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var summary services.Summary
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.TotalClicks)
	assert.Len(t, summary.Countries, 1)
	assert.Equal(t, "Local", summary.Countries[0].Key)
}

func TestDeactivatedAliasStopsRedirecting(t *testing.T) {
	r := setupRouter(t)

	w := request(r, http.MethodPost, "/api/v1/links", map[string]string{
		"alias":      "sunset",
		"target_url": "https://example.com/old",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Link models.Link `json:"link"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = request(r, http.MethodGet, "/sunset", nil)
	assert.Equal(t, http.StatusFound, w.Code)

	w = request(r, http.MethodDelete, "/api/v1/links/"+created.Link.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = request(r, http.MethodGet, "/sunset", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The alias is free again once the old link is inactive
	w = request(r, http.MethodPost, "/api/v1/links", map[string]string{
		"alias":      "sunset",
		"target_url": "https://example.com/new",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}
