package models

import "time"

const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// Payment mirrors a processor payment intent. Append-mostly: rows are created
// when a payment intent first becomes known and their status is finalized by
// reconciled webhook events.
type Payment struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"not null;index" json:"user_id"`
	StripePaymentIntentID string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"stripe_payment_intent_id"`
	AmountCents           int64      `gorm:"not null;default:0" json:"amount_cents"`
	Currency              string     `gorm:"type:varchar(3);not null;default:'usd'" json:"currency"`
	Status                string     `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	AppliedAt             *time.Time `gorm:"type:timestamp;default:null" json:"applied_at,omitempty"`
	LastEventAt           *time.Time `gorm:"type:timestamp;default:null" json:"last_event_at,omitempty"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
