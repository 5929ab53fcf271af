package models

import "time"

const (
	SubscriptionStatusIncomplete = "incomplete"
	SubscriptionStatusActive     = "active"
	SubscriptionStatusPastDue    = "past_due"
	SubscriptionStatusCanceled   = "canceled"
	SubscriptionStatusUnpaid     = "unpaid"
)

// BillingSubscription mirrors a processor subscription. Created pending by
// the intent manager; after that only the reconciler mutates it. LastEventAt
// is the last-applied event marker used to discard stale webhook deliveries.
type BillingSubscription struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uint       `gorm:"not null;index" json:"user_id"`
	PlanID               uint       `gorm:"not null;index" json:"plan_id"`
	StripeSubscriptionID string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"stripe_subscription_id"`
	Status               string     `gorm:"type:varchar(32);not null;default:'incomplete';index" json:"status"`
	ClientSecret         string     `gorm:"type:varchar(255);default:''" json:"-"`
	CancelAtPeriodEnd    bool       `gorm:"default:false" json:"cancel_at_period_end"`
	CurrentPeriodEnd     *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	LastEventAt          *time.Time `gorm:"type:timestamp;default:null" json:"last_event_at,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsOpen reports whether the subscription still represents a live or pending
// relationship with the processor, i.e. a new one must not be created.
func (s *BillingSubscription) IsOpen() bool {
	switch s.Status {
	case SubscriptionStatusIncomplete, SubscriptionStatusActive, SubscriptionStatusPastDue:
		return true
	default:
		return false
	}
}
