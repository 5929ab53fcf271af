package billing

import (
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/FolioTrack/foliotrack/app/models"
)

// fakeRepo is an in-memory Repository used by the engine tests. It mimics the
// constraints that matter: unique stripe IDs, ON CONFLICT DO NOTHING webhook
// insertion, and gorm.ErrRecordNotFound on misses.
type fakeRepo struct {
	mu sync.Mutex

	customers     map[uint]*models.BillingCustomer
	subscriptions map[string]*models.BillingSubscription
	payments      map[string]*models.Payment
	events        map[string]*models.BillingWebhookEvent
	nextEventID   uint
	nextSubID     uint
	nextPaymentID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		customers:     make(map[uint]*models.BillingCustomer),
		subscriptions: make(map[string]*models.BillingSubscription),
		payments:      make(map[string]*models.Payment),
		events:        make(map[string]*models.BillingWebhookEvent),
	}
}

func (r *fakeRepo) GetCustomerByUser(userID uint) (*models.BillingCustomer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.customers[userID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) GetCustomerByStripeID(stripeCustomerID string) (*models.BillingCustomer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.StripeCustomerID == stripeCustomerID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) CreateCustomer(c *models.BillingCustomer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[c.UserID]; ok {
		return gorm.ErrDuplicatedKey
	}
	cp := *c
	r.customers[c.UserID] = &cp
	return nil
}

func (r *fakeRepo) GetOpenSubscriptionByUser(userID uint) (*models.BillingSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.BillingSubscription
	for _, s := range r.subscriptions {
		if s.UserID == userID && s.IsOpen() {
			if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
				latest = s
			}
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeRepo) GetSubscriptionByStripeID(id string) (*models.BillingSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.subscriptions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) CreateSubscription(sub *models.BillingSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subscriptions[sub.StripeSubscriptionID]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.nextSubID++
	sub.ID = r.nextSubID
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	cp := *sub
	r.subscriptions[sub.StripeSubscriptionID] = &cp
	return nil
}

func (r *fakeRepo) SaveSubscription(sub *models.BillingSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *sub
	r.subscriptions[sub.StripeSubscriptionID] = &cp
	return nil
}

func (r *fakeRepo) GetPaymentByStripeID(id string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) CreatePayment(p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[p.StripePaymentIntentID]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.nextPaymentID++
	p.ID = r.nextPaymentID
	cp := *p
	r.payments[p.StripePaymentIntentID] = &cp
	return nil
}

func (r *fakeRepo) SavePayment(p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payments[p.StripePaymentIntentID] = &cp
	return nil
}

func (r *fakeRepo) ListPaymentsByUser(userID uint) ([]models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Payment
	for _, p := range r.payments {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.events[event.StripeEventID]; ok {
		cp := *existing
		return false, &cp, nil
	}
	r.nextEventID++
	event.ID = r.nextEventID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	cp := *event
	r.events[event.StripeEventID] = &cp
	out := cp
	return true, &out, nil
}

func (r *fakeRepo) GetWebhookEvent(id uint) (*models.BillingWebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.ID == id {
			cp := *ev
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) ListPendingWebhookEvents(olderThan time.Time, limit int) ([]models.BillingWebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BillingWebhookEvent
	for _, ev := range r.events {
		if ev.Status == models.WebhookEventStatusPending && ev.CreatedAt.Before(olderThan) {
			out = append(out, *ev)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeRepo) MarkWebhookEvent(id uint, status, processingError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.ID == id {
			now := time.Now()
			ev.Status = status
			ev.ProcessedAt = &now
			ev.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRepo) eventCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
