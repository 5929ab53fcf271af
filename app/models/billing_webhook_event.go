package models

import "time"

const (
	WebhookEventStatusPending   = "pending"
	WebhookEventStatusProcessed = "processed"
	WebhookEventStatusOrphaned  = "orphaned"
	WebhookEventStatusFailed    = "failed"
)

// BillingWebhookEvent stores processor webhook payloads with deduplication
// metadata for idempotent processing. The row doubles as the durable queue
// entry for the reconciler: inserting it records the event as seen and
// enqueues it in a single write. EventCreatedAt carries the processor-supplied
// creation timestamp used as the precedence key for out-of-order deliveries.
type BillingWebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	StripeEventID   string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"stripe_event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	EventCreatedAt  time.Time  `gorm:"not null" json:"event_created_at"`
	Status          string     `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
