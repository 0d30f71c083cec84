package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"linktrail/internal/models"
	"linktrail/internal/repository"
)

// Device-reported coordinates are trusted up to this accuracy figure;
// anything coarser falls back to the IP-derived location for country/city.
const accuracyThreshold = 1000.0

type TrackVisitDTO struct {
	LinkID    string
	ClientIP  string
	UserAgent string
	Latitude  *float64
	Longitude *float64
	Accuracy  *float64
}

// VisitRecorder runs the tracking pipeline for one request: resolve the
// link, validate it, determine a location, classify the client, persist the
// visit and bump the counter.
type VisitRecorder struct {
	store  repository.Store
	geo    *GeoService
	logger *slog.Logger
	now    func() time.Time
}

func NewVisitRecorder(store repository.Store, geo *GeoService, logger *slog.Logger) *VisitRecorder {
	return &VisitRecorder{
		store:  store,
		geo:    geo,
		logger: logger,
		now:    time.Now,
	}
}

// Track records one visit. NotFound and Expired are the only failure exits
// before anything is written; past the persist step the operation runs to
// completion. Geolocation problems never fail the request.
func (r *VisitRecorder) Track(ctx context.Context, dto TrackVisitDTO) (*models.Visit, error) {
	link, err := r.store.GetLinkByID(dto.LinkID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	if !link.IsActive {
		return nil, ErrLinkNotFound
	}

	now := r.now()
	if link.Expired(now) {
		return nil, ErrLinkExpired
	}

	visit := &models.Visit{
		LinkID:    link.ID,
		IPAddress: dto.ClientIP,
		UserAgent: dto.UserAgent,
		VisitedAt: now,
	}

	r.applyLocation(ctx, visit, dto)
	visit.Device, visit.Browser = ClassifyUserAgent(dto.UserAgent)

	if err := r.store.RecordVisit(visit); err != nil {
		return nil, err
	}

	return visit, nil
}

// applyLocation picks the location source. Accurate device coordinates win
// outright and carry no country/city; otherwise the resolver fills whatever
// the device did not report.
func (r *VisitRecorder) applyLocation(ctx context.Context, visit *models.Visit, dto TrackVisitDTO) {
	hasCoords := dto.Latitude != nil && dto.Longitude != nil
	accurate := dto.Accuracy == nil || *dto.Accuracy <= accuracyThreshold

	if hasCoords && accurate {
		visit.Latitude = dto.Latitude
		visit.Longitude = dto.Longitude
		return
	}

	loc := r.geo.Resolve(ctx, dto.ClientIP)
	visit.Country = loc.Country
	visit.City = loc.City

	if hasCoords {
		// Inaccurate but present coordinates are kept as reported
		visit.Latitude = dto.Latitude
		visit.Longitude = dto.Longitude
		return
	}

	lat, lon := loc.Latitude, loc.Longitude
	visit.Latitude = &lat
	visit.Longitude = &lon
}
