package webhookqueue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/walleyjs/threls-billing/app/models"
	"github.com/walleyjs/threls-billing/app/repository"
	"github.com/walleyjs/threls-billing/internal/pkg/cache"
	counter "github.com/walleyjs/threls-billing/internal/pkg/metrics/counter"
)

const (
	// Redis key prefixes
	JobKeyPrefix     = "webhook_delivery:"
	JobQueueKey      = "webhook_delivery_queue"
	JobProcessingKey = "webhook_delivery_processing"
	JobStatsKey      = "webhook_delivery_stats"

	// Delivery settings
	DefaultMaxRetries = 3
	JobTTL            = 24 * time.Hour

	deliveryTimeout  = 10 * time.Second
	maxStoredBody    = 512
	disableThreshold = 10
)

// Queue delivers webhook events using Redis-backed workers
type Queue struct {
	client     *redis.Client
	httpClient *http.Client
	workers    int
	workerPool chan struct{}
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewQueue creates a new delivery queue
func NewQueue(workers int) *Queue {
	if workers <= 0 {
		workers = 3
	}

	return &Queue{
		client:     cache.GetClient(),
		httpClient: &http.Client{Timeout: deliveryTimeout},
		workers:    workers,
		workerPool: make(chan struct{}, workers),
		stopCh:     make(chan struct{}),
	}
}

// Start starts the delivery workers
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}

	q.running = true
	log.Infof("[WebhookQueue] Starting %d workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.workerPool <- struct{}{}
	}

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop stops the delivery workers
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return
	}

	log.Info("[WebhookQueue] Stopping workers...")
	close(q.stopCh)
	q.running = false
	q.wg.Wait()
	log.Info("[WebhookQueue] All workers stopped")
}

// worker processes deliveries from the queue
func (q *Queue) worker(id int) {
	defer q.wg.Done()
	log.Infof("[WebhookQueue] Worker %d started", id)

	ctx := context.Background()

	for {
		select {
		case <-q.stopCh:
			log.Infof("[WebhookQueue] Worker %d stopping", id)
			return
		default:
			<-q.workerPool

			job, err := q.dequeueJob(ctx)
			if err != nil {
				if err != redis.Nil {
					log.Errorf("[WebhookQueue] Worker %d: Error dequeuing job: %v", id, err)
				}
				q.workerPool <- struct{}{}
				time.Sleep(time.Second)
				continue
			}

			if job != nil {
				log.Infof("[WebhookQueue] Worker %d delivering job %s (Event: %s)", id, job.ID, job.Event)
				q.processJob(ctx, job)
			}

			q.workerPool <- struct{}{}
		}
	}
}

// EnqueueDelivery adds a delivery of one event to one webhook
func (q *Queue) EnqueueDelivery(webhookID uint, event models.WebhookEventType, payload json.RawMessage) (*Job, error) {
	ctx := context.Background()

	job := &Job{
		ID:         uuid.New().String(),
		WebhookID:  webhookID,
		Event:      event,
		Payload:    payload,
		Status:     JobStatusPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: DefaultMaxRetries,
	}

	jobData, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal delivery job: %w", err)
	}

	jobKey := JobKeyPrefix + job.ID

	pipe := q.client.Pipeline()
	pipe.Set(ctx, jobKey, jobData, JobTTL)
	pipe.LPush(ctx, JobQueueKey, job.ID)
	pipe.HIncrBy(ctx, JobStatsKey, string(JobStatusPending), 1)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to enqueue delivery: %w", err)
	}

	log.Infof("[WebhookQueue] Enqueued delivery %s (webhook %d, event %s)", job.ID, webhookID, event)
	return job, nil
}

// dequeueJob gets the next delivery from the queue
func (q *Queue) dequeueJob(ctx context.Context) (*Job, error) {
	// Move job from pending queue to processing queue atomically
	result, err := q.client.BRPopLPush(ctx, JobQueueKey, JobProcessingKey, time.Second).Result()
	if err != nil {
		return nil, err
	}

	jobID := result
	jobKey := JobKeyPrefix + jobID

	jobData, err := q.client.Get(ctx, jobKey).Result()
	if err != nil {
		q.client.LRem(ctx, JobProcessingKey, 1, jobID)
		return nil, fmt.Errorf("delivery data not found for ID %s", jobID)
	}

	var job Job
	if err := json.Unmarshal([]byte(jobData), &job); err != nil {
		q.client.LRem(ctx, JobProcessingKey, 1, jobID)
		return nil, fmt.Errorf("failed to unmarshal delivery %s: %w", jobID, err)
	}

	return &job, nil
}

// processJob runs one delivery attempt including retry bookkeeping
func (q *Queue) processJob(ctx context.Context, job *Job) {
	job.MarkAsProcessing()
	q.updateJob(ctx, job)

	err := q.deliver(ctx, job)
	if err != nil {
		log.Errorf("[WebhookQueue] Delivery %s failed: %v", job.ID, err)
		job.MarkAsFailed(err.Error())

		if job.IsRetryable() {
			log.Infof("[WebhookQueue] Retrying delivery %s (Attempt %d/%d)", job.ID, job.RetryCount, job.MaxRetries)
			job.MarkAsRetrying()
			q.updateJob(ctx, job)

			// Linear backoff keyed to the attempt number
			time.AfterFunc(time.Minute*time.Duration(job.RetryCount), func() {
				q.client.LPush(ctx, JobQueueKey, job.ID)
			})
		} else {
			log.Errorf("[WebhookQueue] Delivery %s permanently failed after %d retries", job.ID, job.RetryCount)
			q.updateJobStats(ctx, JobStatusFailed, 1)
		}
	} else {
		job.MarkAsCompleted()
		q.updateJobStats(ctx, JobStatusCompleted, 1)
		q.removeCompletedJob(ctx, job.ID)
	}

	if job.Status != JobStatusCompleted {
		q.updateJob(ctx, job)
	}
	q.removeFromProcessing(ctx, job.ID)
}

// deliver POSTs the signed event to the webhook endpoint and records the
// outcome on the webhook record.
func (q *Queue) deliver(ctx context.Context, job *Job) error {
	repo := repository.GetGlobalFactory().GetWebhookRepository()
	webhook, err := repo.GetByID(job.WebhookID)
	if err != nil {
		// The webhook was deleted between enqueue and delivery; drop the job.
		log.Warnf("[WebhookQueue] Webhook %d gone, dropping delivery %s", job.WebhookID, job.ID)
		return nil
	}
	if !webhook.IsActive {
		log.Infof("[WebhookQueue] Webhook %d inactive, dropping delivery %s", job.WebhookID, job.ID)
		return nil
	}

	event := Event{
		ID:        job.ID,
		Type:      job.Event,
		CreatedAt: job.CreatedAt,
		Data:      job.Payload,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Billing-Event", string(job.Event))
	req.Header.Set(SignatureHeader, Sign(body, webhook.Secret))

	resp, err := q.httpClient.Do(req)
	if err != nil {
		q.recordFailure(repo, webhook, "error", err.Error())
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxStoredBody))
	status := strconv.Itoa(resp.StatusCode)

	if resp.StatusCode >= http.StatusMultipleChoices {
		q.recordFailure(repo, webhook, status, string(respBody))
		return fmt.Errorf("endpoint returned %s", status)
	}

	webhook.LastStatus = status
	webhook.LastResponse = string(respBody)
	webhook.FailedAttempts = 0
	if err := repo.Update(webhook); err != nil {
		log.Errorf("[WebhookQueue] Failed to record delivery on webhook %d: %v", webhook.ID, err)
	}
	if err := counter.AddWebhookDelivery(webhook.ID); err != nil {
		log.Errorf("[WebhookQueue] Failed to count delivery for webhook %d: %v", webhook.ID, err)
	}
	return nil
}

// recordFailure writes the failure onto the webhook record and deactivates
// endpoints that keep failing.
func (q *Queue) recordFailure(repo repository.WebhookRepository, webhook *models.Webhook, status, response string) {
	webhook.LastStatus = status
	if len(response) > maxStoredBody {
		response = response[:maxStoredBody]
	}
	webhook.LastResponse = response
	webhook.FailedAttempts++
	if webhook.FailedAttempts >= disableThreshold {
		log.Warnf("[WebhookQueue] Disabling webhook %d after %d consecutive failures", webhook.ID, webhook.FailedAttempts)
		webhook.IsActive = false
	}
	if err := repo.Update(webhook); err != nil {
		log.Errorf("[WebhookQueue] Failed to record failure on webhook %d: %v", webhook.ID, err)
	}
}

// updateJob updates delivery data in Redis
func (q *Queue) updateJob(ctx context.Context, job *Job) {
	jobData, err := json.Marshal(job)
	if err != nil {
		log.Errorf("[WebhookQueue] Failed to marshal delivery %s: %v", job.ID, err)
		return
	}

	jobKey := JobKeyPrefix + job.ID
	if err := q.client.Set(ctx, jobKey, jobData, JobTTL).Err(); err != nil {
		log.Errorf("[WebhookQueue] Failed to update delivery %s: %v", job.ID, err)
	}
}

// removeFromProcessing removes a delivery from the processing queue
func (q *Queue) removeFromProcessing(ctx context.Context, jobID string) {
	if err := q.client.LRem(ctx, JobProcessingKey, 1, jobID).Err(); err != nil {
		log.Errorf("[WebhookQueue] Failed to remove delivery %s from processing queue: %v", jobID, err)
	}
}

// removeCompletedJob completely removes a completed delivery from Redis
func (q *Queue) removeCompletedJob(ctx context.Context, jobID string) {
	if err := q.client.Del(ctx, JobKeyPrefix+jobID).Err(); err != nil {
		log.Errorf("[WebhookQueue] Failed to remove completed delivery %s from Redis: %v", jobID, err)
	}
}

// updateJobStats updates delivery statistics
func (q *Queue) updateJobStats(ctx context.Context, status JobStatus, delta int64) {
	if err := q.client.HIncrBy(ctx, JobStatsKey, string(status), delta).Err(); err != nil {
		log.Errorf("[WebhookQueue] Failed to update delivery stats: %v", err)
	}
}

// GetQueueSize returns the number of pending deliveries
func (q *Queue) GetQueueSize(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, JobQueueKey).Result()
}

// GetProcessingSize returns the number of deliveries in flight
func (q *Queue) GetProcessingSize(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, JobProcessingKey).Result()
}
