package models

import "time"

const (
	PlanIntervalMonth = "month"
	PlanIntervalYear  = "year"
)

// Plan is a pricing tier users can subscribe to. Plans are seeded by the
// migration step (guarded by the unique slug), never from request handling.
type Plan struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Slug          string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"slug"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	AmountCents   int64     `gorm:"not null" json:"amount_cents"`
	Currency      string    `gorm:"type:varchar(3);not null;default:'usd'" json:"currency"`
	Interval      string    `gorm:"type:varchar(16);not null;default:'month'" json:"interval"`
	StripePriceID string    `gorm:"type:varchar(191);default:''" json:"-"`
	IsActive      bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
