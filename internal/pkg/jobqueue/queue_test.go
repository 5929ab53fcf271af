package jobqueue

import (
	"context"
	"testing"
	"time"
)

func TestQueueStopReturnsWithJobInFlight(t *testing.T) {
	q := NewQueue(1)
	q.Register(JobTypeWebhookReconcile, func(ctx context.Context, job *Job) error {
		return nil
	})

	q.mu.Lock()
	q.running = true
	q.stopCh = make(chan struct{})
	q.mu.Unlock()

	// Simulate a worker that is still finishing a job when Stop is called;
	// Stop must not hold the queue mutex while waiting for it.
	job := &Job{
		ID:         "job-in-flight",
		Type:       JobTypeWebhookReconcile,
		Status:     JobStatusProcessing,
		Payload:    map[string]interface{}{"webhook_event_id": float64(1)},
		MaxRetries: DefaultMaxRetries,
	}
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		time.Sleep(200 * time.Millisecond)
		q.processJob(context.Background(), job)
	}()

	done := make(chan struct{})
	go func() {
		q.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return while a job was in flight")
	}

	if job.Status != JobStatusCompleted {
		t.Errorf("in-flight job status = %s, want %s", job.Status, JobStatusCompleted)
	}
}
