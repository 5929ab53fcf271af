package billing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/FolioTrack/foliotrack/app/models"
)

// Reconciler applies verified, deduplicated webhook events to local
// subscription and payment state. Per-key locks serialize the
// read-modify-write so two concurrently delivered events for the same
// subscription cannot interleave; the processor-supplied event timestamp is
// the precedence key that makes out-of-order delivery harmless.
type Reconciler struct {
	repo  Repository
	locks *keyedMutex
}

// NewReconciler wires a reconciler around the shared lock table.
func NewReconciler(repo Repository, locks *keyedMutex) *Reconciler {
	return &Reconciler{repo: repo, locks: locks}
}

// envelope is the slice of the processor's webhook envelope the reconciler
// re-reads from the persisted payload.
type envelope struct {
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Apply processes one persisted webhook event. It returns an error only for
// transient persistence failures, which the job queue retries; everything
// expected under at-least-once, out-of-order delivery (duplicates, staleness,
// orphans, terminal records) is absorbed and the row marked accordingly.
func (r *Reconciler) Apply(ctx context.Context, webhookEventID uint) error {
	_ = ctx

	row, err := r.repo.GetWebhookEvent(webhookEventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("[Billing] webhook event %d vanished before reconciliation", webhookEventID)
			return nil
		}
		return err
	}
	if row.Status != models.WebhookEventStatusPending {
		// Already handled by a competing worker or a sweeper pass.
		return nil
	}

	event, err := r.decode(row)
	if err != nil {
		// A payload that does not decode will never decode; park it as failed
		// instead of letting the queue retry forever.
		log.Errorf("[Billing] webhook event %s undecodable: %v", row.StripeEventID, err)
		return r.repo.MarkWebhookEvent(row.ID, models.WebhookEventStatusFailed, err.Error())
	}

	switch event.Type {
	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		return r.applySubscriptionEvent(row, event)
	case EventPaymentSucceeded, EventPaymentFailed:
		return r.applyPaymentEvent(row, event)
	default:
		return r.repo.MarkWebhookEvent(row.ID, models.WebhookEventStatusProcessed, "")
	}
}

func (r *Reconciler) decode(row *models.BillingWebhookEvent) (*Event, error) {
	var env envelope
	if err := json.Unmarshal([]byte(row.PayloadJSON), &env); err != nil {
		return nil, err
	}
	return DecodeEvent(row.StripeEventID, row.EventType, row.EventCreatedAt, env.Data.Object)
}

func (r *Reconciler) applySubscriptionEvent(row *models.BillingWebhookEvent, event *Event) error {
	unlock := r.locks.Lock(event.Subscription.SubscriptionID)
	defer unlock()

	sub, err := r.repo.GetSubscriptionByStripeID(event.Subscription.SubscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("[Billing] orphan event %s: unknown subscription %s", row.StripeEventID, event.Subscription.SubscriptionID)
			return r.repo.MarkWebhookEvent(row.ID, models.WebhookEventStatusOrphaned, "unknown subscription")
		}
		return err
	}

	// Cancellation is final: once canceled, no event moves the record again,
	// regardless of its timestamp.
	if sub.Status == models.SubscriptionStatusCanceled {
		return r.repo.MarkWebhookEvent(row.ID, models.WebhookEventStatusProcessed, "subscription already canceled")
	}

	if isStale(sub.LastEventAt, event.CreatedAt) {
		log.Debugf("[Billing] stale event %s for subscription %s discarded", row.StripeEventID, sub.StripeSubscriptionID)
		return r.repo.MarkWebhookEvent(row.ID, models.WebhookEventStatusProcessed, "stale")
	}

	switch event.Type {
	case EventSubscriptionDeleted:
		sub.Status = models.SubscriptionStatusCanceled
	case EventSubscriptionUpdated:
		sub.Status = normalizeSubscriptionStatus(event.Subscription.Status)
		sub.CancelAtPeriodEnd = event.Subscription.CancelAtPeriodEnd
		sub.CurrentPeriodEnd = event.Subscription.CurrentPeriodEnd
	}
	marker := event.CreatedAt
	sub.LastEventAt = &marker

	if err := r.repo.SaveSubscription(sub); err != nil {
		return err
	}

	log.Infof("[Billing] subscription %s -> %s (event %s)", sub.StripeSubscriptionID, sub.Status, row.StripeEventID)
	return r.repo.MarkWebhookEvent(row.ID, models.WebhookEventStatusProcessed, "")
}

func (r *Reconciler) applyPaymentEvent(row *models.BillingWebhookEvent, event *Event) error {
	pi := event.PaymentIntent
	unlock := r.locks.Lock("pi:" + pi.PaymentIntentID)
	defer unlock()

	status := models.PaymentStatusSucceeded
	if event.Type == EventPaymentFailed {
		status = models.PaymentStatusFailed
	}

	payment, err := r.repo.GetPaymentByStripeID(pi.PaymentIntentID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		// No local record: the creation-side write was missed. Resolve the
		// user via the customer link and create the record defensively.
		customer, err := r.repo.GetCustomerByStripeID(pi.CustomerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Warnf("[Billing] orphan event %s: unknown customer %s", row.StripeEventID, pi.CustomerID)
				return r.repo.MarkWebhookEvent(row.ID, models.WebhookEventStatusOrphaned, "unknown customer")
			}
			return err
		}

		now := time.Now()
		marker := event.CreatedAt
		payment = &models.Payment{
			UserID:                customer.UserID,
			StripePaymentIntentID: pi.PaymentIntentID,
			AmountCents:           pi.AmountCents,
			Currency:              pi.Currency,
			Status:                status,
			AppliedAt:             &now,
			LastEventAt:           &marker,
		}
		if err := r.repo.CreatePayment(payment); err != nil {
			return err
		}
		return r.repo.MarkWebhookEvent(row.ID, models.WebhookEventStatusProcessed, "")
	}

	if isStale(payment.LastEventAt, event.CreatedAt) {
		return r.repo.MarkWebhookEvent(row.ID, models.WebhookEventStatusProcessed, "stale")
	}

	now := time.Now()
	marker := event.CreatedAt
	payment.Status = status
	payment.AppliedAt = &now
	payment.LastEventAt = &marker
	if pi.AmountCents > 0 {
		payment.AmountCents = pi.AmountCents
	}
	if err := r.repo.SavePayment(payment); err != nil {
		return err
	}

	log.Infof("[Billing] payment %s -> %s (event %s)", payment.StripePaymentIntentID, payment.Status, row.StripeEventID)
	return r.repo.MarkWebhookEvent(row.ID, models.WebhookEventStatusProcessed, "")
}

// isStale reports whether an event timestamp is not newer than the record's
// last-applied marker.
func isStale(lastApplied *time.Time, eventCreatedAt time.Time) bool {
	return lastApplied != nil && !eventCreatedAt.After(*lastApplied)
}
