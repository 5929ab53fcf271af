package billing

import (
	"context"

	"github.com/gofiber/fiber/v2/log"

	"github.com/FolioTrack/foliotrack/app/models"
)

// NotifyFunc wakes the reconciler worker for a persisted webhook event. The
// persisted row is the durable queue entry; the notification is only a hint
// and may be lost, the pending-event sweeper recovers anything dropped.
type NotifyFunc func(webhookEventID uint)

// IngestResult reports what the pipeline did with a delivery so the webhook
// handler can acknowledge appropriately.
type IngestResult struct {
	// Duplicate is set when the event ID was already in the processed log.
	Duplicate bool
	// Ignored is set for unknown event types (forward-compatible no-op).
	Ignored bool
	// EventID is the persisted webhook event row for newly accepted events.
	EventID uint
}

// Pipeline receives asynchronous processor notifications, verifies their
// authenticity, deduplicates them and hands them to the reconciler. The
// processor delivers at least once; the pipeline guarantees at most one
// effect per event.
type Pipeline struct {
	verifier EventVerifier
	repo     Repository
	notify   NotifyFunc
}

// NewPipeline wires an ingestion pipeline. notify may be nil (tests, or
// sweeper-only operation).
func NewPipeline(verifier EventVerifier, repo Repository, notify NotifyFunc) *Pipeline {
	return &Pipeline{
		verifier: verifier,
		repo:     repo,
		notify:   notify,
	}
}

// Ingest verifies and persists one raw webhook delivery.
//
// Signature failures return a SignatureError before anything is
// written: a delivery that fails authentication leaves no trace in the
// processed-event log. Recording the event and enqueuing it for the
// reconciler are one INSERT, so a crash can neither drop an accepted event
// silently nor apply one twice.
func (p *Pipeline) Ingest(ctx context.Context, payload []byte, signatureHeader string) (*IngestResult, error) {
	event, err := p.verifier.VerifyEvent(payload, signatureHeader)
	if err != nil {
		return nil, err
	}

	if event.Type == EventUnknown {
		log.Debugf("[Billing] ignoring unknown webhook event %s", event.ID)
		return &IngestResult{Ignored: true}, nil
	}

	row := &models.BillingWebhookEvent{
		StripeEventID:  event.ID,
		EventType:      string(event.Type),
		PayloadJSON:    string(payload),
		EventCreatedAt: event.CreatedAt,
		Status:         models.WebhookEventStatusPending,
	}
	created, stored, err := p.repo.CreateWebhookEventIfNotExists(row)
	if err != nil {
		// Surfaced as a non-2xx response; the processor redelivers, which is
		// the retry mechanism for transient persistence failures.
		return nil, err
	}
	if !created {
		log.Debugf("[Billing] duplicate webhook event %s", event.ID)
		return &IngestResult{Duplicate: true, EventID: stored.ID}, nil
	}

	if p.notify != nil {
		p.notify(stored.ID)
	}
	return &IngestResult{EventID: stored.ID}, nil
}
