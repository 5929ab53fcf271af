package billing

import (
	"context"

	"github.com/FolioTrack/foliotrack/app/models"
)

// ProcessorSubscription is the result of creating a subscription on the
// processor side. ClientSecret belongs to the payment intent the client must
// confirm to move the subscription out of its incomplete state.
type ProcessorSubscription struct {
	ID           string
	CustomerID   string
	Status       string
	ClientSecret string
}

// ProcessorClient is the payment-processor API surface the intent manager
// needs. The production implementation is Stripe (stripe.go); tests supply
// fakes.
type ProcessorClient interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	CreateSubscription(ctx context.Context, customerID string, plan *models.Plan) (*ProcessorSubscription, error)
}

// EventVerifier authenticates a raw webhook delivery and returns the typed
// event. Implementations must use a constant-time signature comparison and
// must not be fooled by replayed timestamps outside the tolerance window.
type EventVerifier interface {
	VerifyEvent(payload []byte, signatureHeader string) (*Event, error)
}
