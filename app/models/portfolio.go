package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio holds a user's tracked investments. One portfolio per user.
type Portfolio struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Name         string    `gorm:"type:varchar(150);not null;default:'My Portfolio'" json:"name"`
	BaseCurrency string    `gorm:"type:varchar(3);not null;default:'usd'" json:"base_currency"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PortfolioSnapshot records the total portfolio value at a point in time,
// building the historical value series shown to the user.
type PortfolioSnapshot struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	PortfolioID uint            `gorm:"not null;index:idx_portfolio_snapshots_portfolio_date,priority:1" json:"portfolio_id"`
	TotalValue  decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"total_value"`
	RecordedAt  time.Time       `gorm:"not null;index:idx_portfolio_snapshots_portfolio_date,priority:2" json:"recorded_at"`
	Note        string          `gorm:"type:varchar(255);default:''" json:"note"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
