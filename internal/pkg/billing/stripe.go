package billing

import (
	"context"
	"time"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/FolioTrack/foliotrack/app/models"
	"github.com/FolioTrack/foliotrack/internal/pkg/env"
)

// StripeClient implements ProcessorClient and EventVerifier against the
// Stripe API.
type StripeClient struct {
	api           *client.API
	webhookSecret string
	productID     string
}

// NewStripeClient creates a Stripe-backed processor client.
func NewStripeClient(apiKey, webhookSecret, productID string) *StripeClient {
	api := &client.API{}
	api.Init(apiKey, nil)

	return &StripeClient{
		api:           api,
		webhookSecret: webhookSecret,
		productID:     productID,
	}
}

// NewStripeClientFromEnv builds the client from STRIPE_SECRET_KEY,
// STRIPE_WEBHOOK_SECRET and STRIPE_PRODUCT_ID.
func NewStripeClientFromEnv() *StripeClient {
	return NewStripeClient(
		env.GetEnv("STRIPE_SECRET_KEY", ""),
		env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		env.GetEnv("STRIPE_PRODUCT_ID", ""),
	)
}

// CreateCustomer creates a Stripe customer for the user.
func (s *StripeClient) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx

	cust, err := s.api.Customers.New(params)
	if err != nil {
		return "", &UpstreamError{Op: "customer create", Err: err}
	}
	return cust.ID, nil
}

// CreateSubscription creates an incomplete subscription priced from the plan.
// The client confirms the returned payment intent secret to activate it; the
// authoritative activation still arrives via webhook.
func (s *StripeClient) CreateSubscription(ctx context.Context, customerID string, plan *models.Plan) (*ProcessorSubscription, error) {
	item := &stripe.SubscriptionItemsParams{}
	if plan.StripePriceID != "" {
		item.Price = stripe.String(plan.StripePriceID)
	} else {
		item.PriceData = &stripe.SubscriptionItemPriceDataParams{
			Currency:   stripe.String(plan.Currency),
			Product:    stripe.String(s.productID),
			UnitAmount: stripe.Int64(plan.AmountCents),
			Recurring: &stripe.SubscriptionItemPriceDataRecurringParams{
				Interval: stripe.String(plan.Interval),
			},
		}
	}

	params := &stripe.SubscriptionParams{
		Customer:        stripe.String(customerID),
		Items:           []*stripe.SubscriptionItemsParams{item},
		PaymentBehavior: stripe.String("default_incomplete"),
		PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
		},
	}
	params.Context = ctx
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := s.api.Subscriptions.New(params)
	if err != nil {
		return nil, &UpstreamError{Op: "subscription create", Err: err}
	}

	result := &ProcessorSubscription{
		ID:         sub.ID,
		CustomerID: customerID,
		Status:     string(sub.Status),
	}
	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		result.ClientSecret = sub.LatestInvoice.PaymentIntent.ClientSecret
	}
	return result, nil
}

// VerifyEvent authenticates the payload against the Stripe-Signature header
// (HMAC-SHA256, constant-time compare inside stripe-go) and decodes it into
// the typed event union.
func (s *StripeClient) VerifyEvent(payload []byte, signatureHeader string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signatureHeader, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, &SignatureError{Msg: "invalid webhook signature"}
	}

	return DecodeEvent(ev.ID, string(ev.Type), time.Unix(ev.Created, 0).UTC(), ev.Data.Raw)
}
