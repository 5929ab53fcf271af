package jobqueue

import (
	"fmt"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeWebhookReconcile JobType = "webhook_reconcile"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// WebhookReconcileJobPayload identifies the persisted webhook event row a
// reconcile job applies.
type WebhookReconcileJobPayload struct {
	WebhookEventID uint `json:"webhook_event_id"`
}

// ToMap converts the payload to a map for storage
func (p WebhookReconcileJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"webhook_event_id": p.WebhookEventID,
	}
}

// WebhookReconcileJobPayloadFromMap creates a payload from a stored map
func WebhookReconcileJobPayloadFromMap(data map[string]interface{}) (*WebhookReconcileJobPayload, error) {
	raw, ok := data["webhook_event_id"]
	if !ok {
		return nil, fmt.Errorf("payload missing webhook_event_id")
	}
	// JSON round-trips numbers as float64.
	f, ok := raw.(float64)
	if !ok {
		return nil, fmt.Errorf("webhook_event_id has unexpected type %T", raw)
	}
	return &WebhookReconcileJobPayload{WebhookEventID: uint(f)}, nil
}

// MarkAsProcessing marks the job as being processed
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.ProcessedAt = &now
	j.UpdatedAt = now
}

// MarkAsCompleted marks the job as completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkAsFailed marks the job as failed with an error message
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.ErrorMsg = errorMsg
	j.RetryCount++
	j.UpdatedAt = time.Now()
}

// MarkAsRetrying marks the job for retry
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}

// IsRetryable reports whether the job may be retried
func (j *Job) IsRetryable() bool {
	return j.RetryCount < j.MaxRetries
}
