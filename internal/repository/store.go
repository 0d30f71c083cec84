package repository

import (
	"errors"
	"time"

	"linktrail/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("record not found")

// CountStat is one entry of a grouped aggregate (country, city, device...).
type CountStat struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// LinkStats are storage-side aggregates, computed by the engine rather than
// in memory. Optionally scoped to one link.
type LinkStats struct {
	TotalClicks    int64          `json:"total_clicks"`
	UniqueVisitors int64          `json:"unique_visitors"`
	TopCountries   []CountStat    `json:"top_countries"`
	RecentVisits   []models.Visit `json:"recent_visits"`
}

// Store is the persistence boundary consumed by the services. The pipeline
// never talks to gorm directly; everything it needs is an operation here.
type Store interface {
	CreateLink(link *models.Link) error
	GetActiveLinkByAlias(alias string) (*models.Link, error)
	GetLinkByID(id string) (*models.Link, error)
	ListActiveLinks() ([]models.Link, error)
	DeactivateLink(id string) error
	// DeactivateExpired flips is_active on every active link whose expiry is
	// strictly before the given time and returns how many rows changed.
	DeactivateExpired(before time.Time) (int64, error)
	IncrementClicks(id string) error
	// RecordVisit inserts the visit and increments the owning link's counter
	// in a single transaction. The increment is evaluated by the database
	// engine, never read back and rewritten.
	RecordVisit(visit *models.Visit) error
	VisitsByLink(linkID string) ([]models.Visit, error)
	// VisitsInRange returns visits with visited_at in [start, end), oldest
	// first. An empty linkID selects visits for all links.
	VisitsInRange(linkID string, start, end time.Time) ([]models.Visit, error)
	RecentVisits(linkID string, limit int) ([]models.Visit, error)
	Stats(linkID string) (*LinkStats, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a gorm handle in the Store interface.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) CreateLink(link *models.Link) error {
	return s.db.Create(link).Error
}

func (s *gormStore) GetActiveLinkByAlias(alias string) (*models.Link, error) {
	var link models.Link
	err := s.db.Where("alias = ? AND is_active = ?", alias, true).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *gormStore) GetLinkByID(id string) (*models.Link, error) {
	var link models.Link
	err := s.db.Where("id = ?", id).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *gormStore) ListActiveLinks() ([]models.Link, error) {
	var links []models.Link
	err := s.db.Where("is_active = ?", true).Order("created_at desc").Find(&links).Error
	return links, err
}

func (s *gormStore) DeactivateLink(id string) error {
	return s.db.Model(&models.Link{}).Where("id = ?", id).Update("is_active", false).Error
}

func (s *gormStore) DeactivateExpired(before time.Time) (int64, error) {
	res := s.db.Model(&models.Link{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at < ?", true, before).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

func (s *gormStore) IncrementClicks(id string) error {
	return s.db.Model(&models.Link{}).Where("id = ?", id).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1)).Error
}

func (s *gormStore) RecordVisit(visit *models.Visit) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(visit).Error; err != nil {
			return err
		}
		return tx.Model(&models.Link{}).Where("id = ?", visit.LinkID).
			UpdateColumn("clicks", gorm.Expr("clicks + ?", 1)).Error
	})
}

func (s *gormStore) VisitsByLink(linkID string) ([]models.Visit, error) {
	var visits []models.Visit
	err := s.db.Where("link_id = ?", linkID).Order("visited_at asc").Find(&visits).Error
	return visits, err
}

func (s *gormStore) VisitsInRange(linkID string, start, end time.Time) ([]models.Visit, error) {
	q := s.db.Where("visited_at >= ? AND visited_at < ?", start, end)
	if linkID != "" {
		q = q.Where("link_id = ?", linkID)
	}
	var visits []models.Visit
	err := q.Order("visited_at asc").Find(&visits).Error
	return visits, err
}

func (s *gormStore) RecentVisits(linkID string, limit int) ([]models.Visit, error) {
	q := s.db.Order("visited_at desc").Limit(limit)
	if linkID != "" {
		q = q.Where("link_id = ?", linkID)
	}
	var visits []models.Visit
	err := q.Find(&visits).Error
	return visits, err
}

func (s *gormStore) Stats(linkID string) (*LinkStats, error) {
	stats := &LinkStats{}

	visitQ := func() *gorm.DB {
		q := s.db.Model(&models.Visit{})
		if linkID != "" {
			q = q.Where("link_id = ?", linkID)
		}
		return q
	}

	if err := visitQ().Count(&stats.TotalClicks).Error; err != nil {
		return nil, err
	}
	if err := visitQ().Distinct("ip_address").Count(&stats.UniqueVisitors).Error; err != nil {
		return nil, err
	}

	err := visitQ().Where("country <> ''").
		Select("country as key, count(*) as count").
		Group("country").Order("count desc").Limit(10).
		Scan(&stats.TopCountries).Error
	if err != nil {
		return nil, err
	}

	recent, err := s.RecentVisits(linkID, 20)
	if err != nil {
		return nil, err
	}
	stats.RecentVisits = recent

	return stats, nil
}
