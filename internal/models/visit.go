package models

import (
	"time"
)

// Visit is one recorded resolution of a Link. Rows are immutable once
// written and survive deactivation of the owning link.
type Visit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LinkID    string    `gorm:"not null;size:36;index" json:"link_id"`
	IPAddress string    `gorm:"size:45" json:"ip_address,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Country   string    `gorm:"size:100" json:"country,omitempty"`
	City      string    `gorm:"size:100" json:"city,omitempty"`
	Device    string    `gorm:"size:50" json:"device"`
	Browser   string    `gorm:"size:50" json:"browser"`
	UserAgent string    `gorm:"size:512" json:"user_agent,omitempty"`
	VisitedAt time.Time `gorm:"not null;index;default:CURRENT_TIMESTAMP" json:"visited_at"`
}

func (Visit) TableName() string {
	return "visits"
}
