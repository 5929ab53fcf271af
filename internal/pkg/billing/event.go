package billing

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType enumerates the processor event variants the reconciler knows how
// to apply. Anything else decodes to EventUnknown and is acknowledged without
// effect, keeping the pipeline forward compatible with new Stripe event types.
type EventType string

const (
	EventPaymentSucceeded    EventType = "payment_intent.succeeded"
	EventPaymentFailed       EventType = "payment_intent.payment_failed"
	EventSubscriptionUpdated EventType = "customer.subscription.updated"
	EventSubscriptionDeleted EventType = "customer.subscription.deleted"
	EventUnknown             EventType = "unknown"
)

// Event is the verified, typed form of a processor notification. Exactly one
// of PaymentIntent/Subscription is set for known types. CreatedAt is the
// processor-supplied creation timestamp and serves as the precedence key when
// deliveries arrive out of order.
type Event struct {
	ID            string
	Type          EventType
	CreatedAt     time.Time
	PaymentIntent *PaymentIntentEvent
	Subscription  *SubscriptionEvent
}

// PaymentIntentEvent carries the fields of a payment_intent.* payload the
// reconciler acts on.
type PaymentIntentEvent struct {
	PaymentIntentID string
	CustomerID      string
	AmountCents     int64
	Currency        string
}

// SubscriptionEvent carries the fields of a customer.subscription.* payload
// the reconciler acts on.
type SubscriptionEvent struct {
	SubscriptionID    string
	CustomerID        string
	Status            string
	CancelAtPeriodEnd bool
	CurrentPeriodEnd  *time.Time
}

type paymentIntentPayload struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Customer string `json:"customer"`
}

type subscriptionPayload struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	Customer          string `json:"customer"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64  `json:"current_period_end"`
}

// DecodeEvent turns a verified processor event envelope into the typed union.
// Unknown event types yield an Event with Type == EventUnknown and a nil body;
// malformed bodies for known types are validation failures.
func DecodeEvent(id, eventType string, createdAt time.Time, raw json.RawMessage) (*Event, error) {
	ev := &Event{
		ID:        id,
		Type:      EventUnknown,
		CreatedAt: createdAt,
	}

	switch EventType(eventType) {
	case EventPaymentSucceeded, EventPaymentFailed:
		var p paymentIntentPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, &ValidationError{Msg: fmt.Sprintf("malformed %s payload: %v", eventType, err)}
		}
		if p.ID == "" {
			return nil, &ValidationError{Msg: fmt.Sprintf("%s payload missing payment intent id", eventType)}
		}
		ev.Type = EventType(eventType)
		ev.PaymentIntent = &PaymentIntentEvent{
			PaymentIntentID: p.ID,
			CustomerID:      p.Customer,
			AmountCents:     p.Amount,
			Currency:        p.Currency,
		}
	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var s subscriptionPayload
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &ValidationError{Msg: fmt.Sprintf("malformed %s payload: %v", eventType, err)}
		}
		if s.ID == "" {
			return nil, &ValidationError{Msg: fmt.Sprintf("%s payload missing subscription id", eventType)}
		}
		ev.Type = EventType(eventType)
		sub := &SubscriptionEvent{
			SubscriptionID:    s.ID,
			CustomerID:        s.Customer,
			Status:            s.Status,
			CancelAtPeriodEnd: s.CancelAtPeriodEnd,
		}
		if s.CurrentPeriodEnd > 0 {
			t := time.Unix(s.CurrentPeriodEnd, 0).UTC()
			sub.CurrentPeriodEnd = &t
		}
		ev.Subscription = sub
	}

	return ev, nil
}
