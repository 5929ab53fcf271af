package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FolioTrack/foliotrack/app/models"
)

// fakeVerifier accepts any payload signed with "valid" and returns the
// preconfigured event; anything else fails authentication.
type fakeVerifier struct {
	event *Event
}

func (v *fakeVerifier) VerifyEvent(payload []byte, signatureHeader string) (*Event, error) {
	if signatureHeader != "valid" {
		return nil, &SignatureError{Msg: "invalid webhook signature"}
	}
	return v.event, nil
}

func subscriptionEventFor(id string, createdAt time.Time) *Event {
	return &Event{
		ID:        id,
		Type:      EventSubscriptionUpdated,
		CreatedAt: createdAt,
		Subscription: &SubscriptionEvent{
			SubscriptionID: "sub_1",
			CustomerID:     "cus_1",
			Status:         "active",
		},
	}
}

func TestIngestRejectsBadSignatureWithoutTrace(t *testing.T) {
	repo := newFakeRepo()
	verifier := &fakeVerifier{event: subscriptionEventFor("evt_1", time.Now())}
	pipeline := NewPipeline(verifier, repo, nil)

	_, err := pipeline.Ingest(context.Background(), []byte(`{}`), "forged")
	var sigErr *SignatureError
	require.ErrorAs(t, err, &sigErr)
	assert.Zero(t, repo.eventCount(), "rejected delivery must leave no log entry")
}

func TestIngestDeduplicatesByEventID(t *testing.T) {
	repo := newFakeRepo()
	verifier := &fakeVerifier{event: subscriptionEventFor("evt_1", time.Now())}

	var notified []uint
	pipeline := NewPipeline(verifier, repo, func(id uint) { notified = append(notified, id) })

	payload := []byte(`{"data":{"object":{"id":"sub_1","status":"active"}}}`)

	first, err := pipeline.Ingest(context.Background(), payload, "valid")
	require.NoError(t, err)
	assert.False(t, first.Duplicate)
	require.NotZero(t, first.EventID)

	second, err := pipeline.Ingest(context.Background(), payload, "valid")
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.EventID, second.EventID)

	assert.Equal(t, 1, repo.eventCount())
	assert.Equal(t, []uint{first.EventID}, notified, "duplicates must not wake the reconciler")
}

func TestIngestIgnoresUnknownEventTypes(t *testing.T) {
	repo := newFakeRepo()
	verifier := &fakeVerifier{event: &Event{ID: "evt_x", Type: EventUnknown, CreatedAt: time.Now()}}
	pipeline := NewPipeline(verifier, repo, func(uint) { t.Error("unknown event must not be enqueued") })

	res, err := pipeline.Ingest(context.Background(), []byte(`{}`), "valid")
	require.NoError(t, err)
	assert.True(t, res.Ignored)
	assert.Zero(t, repo.eventCount())
}

func TestIngestPersistsPendingRow(t *testing.T) {
	repo := newFakeRepo()
	createdAt := time.Unix(1773500000, 0).UTC()
	verifier := &fakeVerifier{event: subscriptionEventFor("evt_7", createdAt)}
	pipeline := NewPipeline(verifier, repo, nil)

	payload := []byte(`{"data":{"object":{"id":"sub_1","status":"active"}}}`)
	res, err := pipeline.Ingest(context.Background(), payload, "valid")
	require.NoError(t, err)

	row, err := repo.GetWebhookEvent(res.EventID)
	require.NoError(t, err)
	assert.Equal(t, "evt_7", row.StripeEventID)
	assert.Equal(t, string(EventSubscriptionUpdated), row.EventType)
	assert.Equal(t, models.WebhookEventStatusPending, row.Status)
	assert.Equal(t, string(payload), row.PayloadJSON)
	assert.True(t, row.EventCreatedAt.Equal(createdAt))
}
