package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/FolioTrack/foliotrack/app/models"
)

// UserStore is the slice of the user repository the intent manager consumes.
type UserStore interface {
	GetByID(id uint) (*models.User, error)
}

// PlanStore is the slice of the plan catalog the intent manager consumes.
type PlanStore interface {
	GetByID(id uint) (*models.Plan, error)
}

// SubscriptionIntent is the result handed back to the client, which confirms
// the payment intent via the processor's JS SDK using ClientSecret.
type SubscriptionIntent struct {
	SubscriptionID string `json:"subscription_id"`
	ClientSecret   string `json:"client_secret"`
}

// IntentManager creates or retrieves processor-side customers and
// subscriptions for users, idempotently. It persists the customer link and a
// pending subscription record before returning; the record then belongs to
// the reconciler.
type IntentManager struct {
	repo      Repository
	users     UserStore
	plans     PlanStore
	processor ProcessorClient
	locks     *keyedMutex
}

// NewIntentManager wires an intent manager. The locks instance must be shared
// with the reconciler so a user retry and a webhook for the same subscription
// never interleave.
func NewIntentManager(repo Repository, users UserStore, plans PlanStore, processor ProcessorClient, locks *keyedMutex) *IntentManager {
	return &IntentManager{
		repo:      repo,
		users:     users,
		plans:     plans,
		processor: processor,
		locks:     locks,
	}
}

// CreateOrGetSubscription returns the user's open subscription intent,
// creating processor objects only when none exists. Calling it twice for a
// user with an open subscription returns the same subscription ID both times
// and creates nothing on the processor side.
func (m *IntentManager) CreateOrGetSubscription(ctx context.Context, userID, planID uint) (*SubscriptionIntent, error) {
	user, err := m.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user", ID: strconv.FormatUint(uint64(userID), 10)}
		}
		return nil, err
	}
	if strings.TrimSpace(user.Email) == "" {
		return nil, &ValidationError{Msg: "user has no email address on file"}
	}

	plan, err := m.plans.GetByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "plan", ID: strconv.FormatUint(uint64(planID), 10)}
		}
		return nil, err
	}
	if !plan.IsActive {
		return nil, &NotFoundError{Resource: "plan", ID: strconv.FormatUint(uint64(planID), 10)}
	}

	// Fast path: an open subscription already exists, return it without
	// touching the processor. Locked on the subscription key so a webhook
	// being applied right now cannot interleave with the read.
	if sub, err := m.repo.GetOpenSubscriptionByUser(userID); err == nil {
		unlock := m.locks.Lock(sub.StripeSubscriptionID)
		defer unlock()

		sub, err = m.repo.GetSubscriptionByStripeID(sub.StripeSubscriptionID)
		if err != nil {
			return nil, err
		}
		if sub.IsOpen() {
			return &SubscriptionIntent{SubscriptionID: sub.StripeSubscriptionID, ClientSecret: sub.ClientSecret}, nil
		}
		// Canceled between the two reads; fall through and create anew.
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Creation path: serialize per user so a double-submit cannot create two
	// processor subscriptions. A disconnected caller may have left processor
	// objects behind; the re-check under the lock reconciles that.
	unlock := m.locks.Lock(userLockKey(userID))
	defer unlock()

	if sub, err := m.repo.GetOpenSubscriptionByUser(userID); err == nil {
		return &SubscriptionIntent{SubscriptionID: sub.StripeSubscriptionID, ClientSecret: sub.ClientSecret}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer, err := m.getOrCreateCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	created, err := m.processor.CreateSubscription(ctx, customer.StripeCustomerID, plan)
	if err != nil {
		return nil, err
	}

	sub := &models.BillingSubscription{
		UserID:               userID,
		PlanID:               plan.ID,
		StripeSubscriptionID: created.ID,
		Status:               models.SubscriptionStatusIncomplete,
		ClientSecret:         created.ClientSecret,
	}
	if err := m.repo.CreateSubscription(sub); err != nil {
		return nil, err
	}

	log.Infof("[Billing] created subscription %s for user %d (plan %s)", created.ID, userID, plan.Slug)
	return &SubscriptionIntent{SubscriptionID: created.ID, ClientSecret: created.ClientSecret}, nil
}

func (m *IntentManager) getOrCreateCustomer(ctx context.Context, user *models.User) (*models.BillingCustomer, error) {
	customer, err := m.repo.GetCustomerByUser(user.ID)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	stripeCustomerID, err := m.processor.CreateCustomer(ctx, user.Email, user.Name)
	if err != nil {
		return nil, err
	}

	customer = &models.BillingCustomer{
		UserID:           user.ID,
		StripeCustomerID: stripeCustomerID,
		Email:            user.Email,
	}
	if err := m.repo.CreateCustomer(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func userLockKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}
