package webhookqueue

import (
	"encoding/json"
	"time"

	"github.com/walleyjs/threls-billing/app/models"
)

// JobStatus defines the status of a delivery job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job is one pending delivery of an event to one webhook endpoint.
type Job struct {
	ID          string                  `json:"id"`
	WebhookID   uint                    `json:"webhook_id"`
	Event       models.WebhookEventType `json:"event"`
	Payload     json.RawMessage         `json:"payload"`
	Status      JobStatus               `json:"status"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
	ProcessedAt *time.Time              `json:"processed_at,omitempty"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
	ErrorMsg    string                  `json:"error_msg,omitempty"`
	RetryCount  int                     `json:"retry_count"`
	MaxRetries  int                     `json:"max_retries"`
}

// MarkAsProcessing transitions the job to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.ProcessedAt = &now
	j.UpdatedAt = now
}

// MarkAsCompleted transitions the job to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkAsFailed records a failed attempt
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.ErrorMsg = errorMsg
	j.RetryCount++
	j.UpdatedAt = time.Now()
}

// MarkAsRetrying transitions the job back into the retry state
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}

// IsRetryable reports whether the job has retries left
func (j *Job) IsRetryable() bool {
	return j.RetryCount <= j.MaxRetries
}

// Event is the JSON document POSTed to a webhook endpoint.
type Event struct {
	ID        string                  `json:"id"`
	Type      models.WebhookEventType `json:"type"`
	CreatedAt time.Time               `json:"createdAt"`
	Data      json.RawMessage         `json:"data"`
}
