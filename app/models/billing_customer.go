package models

import "time"

// BillingCustomer links a local user to a processor-side customer object.
// Created once on the first subscription attempt and immutable afterwards;
// only the subscription intent manager writes it.
type BillingCustomer struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	StripeCustomerID string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"stripe_customer_id"`
	Email            string    `gorm:"type:varchar(200);default:''" json:"email"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}
