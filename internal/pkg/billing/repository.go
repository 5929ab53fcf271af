package billing

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/FolioTrack/foliotrack/app/models"
)

// Repository provides the DB operations used by the billing engine. A single
// interface keeps the intent manager, pipeline and reconciler testable with
// one in-memory fake.
type Repository interface {
	GetCustomerByUser(userID uint) (*models.BillingCustomer, error)
	GetCustomerByStripeID(stripeCustomerID string) (*models.BillingCustomer, error)
	CreateCustomer(c *models.BillingCustomer) error

	GetOpenSubscriptionByUser(userID uint) (*models.BillingSubscription, error)
	GetSubscriptionByStripeID(stripeSubscriptionID string) (*models.BillingSubscription, error)
	CreateSubscription(sub *models.BillingSubscription) error
	SaveSubscription(sub *models.BillingSubscription) error

	GetPaymentByStripeID(stripePaymentIntentID string) (*models.Payment, error)
	CreatePayment(p *models.Payment) error
	SavePayment(p *models.Payment) error
	ListPaymentsByUser(userID uint) ([]models.Payment, error)

	CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	GetWebhookEvent(id uint) (*models.BillingWebhookEvent, error)
	ListPendingWebhookEvents(olderThan time.Time, limit int) ([]models.BillingWebhookEvent, error)
	MarkWebhookEvent(id uint, status, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetCustomerByUser(userID uint) (*models.BillingCustomer, error) {
	var c models.BillingCustomer
	if err := r.db.Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *gormRepository) GetCustomerByStripeID(stripeCustomerID string) (*models.BillingCustomer, error) {
	var c models.BillingCustomer
	if err := r.db.Where("stripe_customer_id = ?", stripeCustomerID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *gormRepository) CreateCustomer(c *models.BillingCustomer) error {
	// The unique user_id index makes a concurrent double-create fail loudly
	// instead of producing two customer links.
	return r.db.Create(c).Error
}

func (r *gormRepository) GetOpenSubscriptionByUser(userID uint) (*models.BillingSubscription, error) {
	var sub models.BillingSubscription
	err := r.db.
		Where("user_id = ? AND status IN ?", userID, []string{
			models.SubscriptionStatusIncomplete,
			models.SubscriptionStatusActive,
			models.SubscriptionStatusPastDue,
		}).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) GetSubscriptionByStripeID(stripeSubscriptionID string) (*models.BillingSubscription, error) {
	var sub models.BillingSubscription
	if err := r.db.Where("stripe_subscription_id = ?", stripeSubscriptionID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) CreateSubscription(sub *models.BillingSubscription) error {
	return r.db.Create(sub).Error
}

func (r *gormRepository) SaveSubscription(sub *models.BillingSubscription) error {
	return r.db.Save(sub).Error
}

func (r *gormRepository) GetPaymentByStripeID(stripePaymentIntentID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.Where("stripe_payment_intent_id = ?", stripePaymentIntentID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) CreatePayment(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *gormRepository) SavePayment(p *models.Payment) error {
	return r.db.Save(p).Error
}

func (r *gormRepository) ListPaymentsByUser(userID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_event_id"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := r.db.Where("stripe_event_id = ?", event.StripeEventID).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) GetWebhookEvent(id uint) (*models.BillingWebhookEvent, error) {
	var ev models.BillingWebhookEvent
	if err := r.db.First(&ev, id).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *gormRepository) ListPendingWebhookEvents(olderThan time.Time, limit int) ([]models.BillingWebhookEvent, error) {
	var events []models.BillingWebhookEvent
	err := r.db.
		Where("status = ? AND created_at < ?", models.WebhookEventStatusPending, olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *gormRepository) MarkWebhookEvent(id uint, status, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":           status,
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
