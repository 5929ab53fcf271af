package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/FolioTrack/foliotrack/internal/pkg/billing"
)

// ProcessWebhookReconcileJob applies one persisted webhook event through the
// billing reconciler. Errors bubble up so the queue's retry/backoff applies;
// duplicates and already-processed rows are absorbed inside the reconciler.
func ProcessWebhookReconcileJob(ctx context.Context, job *Job) error {
	payload, err := WebhookReconcileJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid webhook reconcile payload: %w", err)
	}

	engine := billing.GetEngine()
	if engine == nil {
		return fmt.Errorf("billing engine not initialized")
	}

	return engine.Reconciler.Apply(ctx, payload.WebhookEventID)
}

// EnqueueWebhookReconcile schedules reconciliation for a persisted webhook
// event. Used as the ingestion pipeline's notify hook.
func EnqueueWebhookReconcile(webhookEventID uint) {
	queue := GetManager().GetQueue()
	payload := WebhookReconcileJobPayload{WebhookEventID: webhookEventID}
	if _, err := queue.EnqueueJob(JobTypeWebhookReconcile, payload.ToMap()); err != nil {
		// Lost hints are fine: the pending-event sweeper re-enqueues the row.
		log.Debugf("[JobQueue] Enqueue hint for webhook event %d dropped: %v", webhookEventID, err)
	}
}
