package models

import (
	"time"
)

type Link struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Alias       string     `gorm:"not null;size:32;index" json:"alias"`
	TargetURL   string     `gorm:"not null;type:text" json:"target_url"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	ClickCount  int        `gorm:"column:clicks;default:0" json:"click_count"`
	IsActive    bool       `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	ExpiresAt   *time.Time `gorm:"index" json:"expires_at,omitempty"`

	Visits []Visit `gorm:"foreignKey:LinkID" json:"visits,omitempty"`
}

// TableName overrides gorm's pluralization
func (Link) TableName() string {
	return "links"
}

// Expired reports whether the link has an expiry in the past. It is
// independent of IsActive so a not-yet-swept link still rejects visits.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}
