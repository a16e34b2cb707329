package webhookqueue

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/walleyjs/threls-billing/app/models"
	"github.com/walleyjs/threls-billing/app/repository"
)

type stubWebhookRepo struct {
	mu    sync.Mutex
	items map[uint]models.Webhook
}

func newStubWebhookRepo(webhooks ...models.Webhook) *stubWebhookRepo {
	r := &stubWebhookRepo{items: map[uint]models.Webhook{}}
	for _, wh := range webhooks {
		r.items[wh.ID] = wh
	}
	return r
}

func (r *stubWebhookRepo) Create(webhook *models.Webhook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[webhook.ID] = *webhook
	return nil
}

func (r *stubWebhookRepo) GetByID(id uint) (*models.Webhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wh, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := wh
	return &found, nil
}

func (r *stubWebhookRepo) GetByUUID(uuid string) (*models.Webhook, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubWebhookRepo) GetByUUIDAndUserID(uuid string, userID uint) (*models.Webhook, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubWebhookRepo) GetByUserID(userID uint) ([]models.Webhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Webhook
	for _, wh := range r.items {
		if wh.UserID == userID {
			out = append(out, wh)
		}
	}
	return out, nil
}

func (r *stubWebhookRepo) Update(webhook *models.Webhook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[webhook.ID] = *webhook
	return nil
}

func (r *stubWebhookRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *stubWebhookRepo) CountByUserID(userID uint) (int64, error) {
	return 0, nil
}

func newTestQueue() *Queue {
	return &Queue{
		httpClient: &http.Client{Timeout: time.Second},
		workers:    1,
	}
}

func TestDeliverPostsSignedEvent(t *testing.T) {
	var gotBody []byte
	var gotSignature, gotEventHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSignature = r.Header.Get(SignatureHeader)
		gotEventHeader = r.Header.Get("X-Billing-Event")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"received":true}`))
	}))
	defer server.Close()

	repo := newStubWebhookRepo(models.Webhook{
		ID:             1,
		UserID:         1,
		URL:            server.URL,
		Secret:         "whsec_testsecret",
		Events:         models.WebhookEventSet{models.EventPaymentSucceeded},
		IsActive:       true,
		FailedAttempts: 2,
	})
	repository.SetGlobalRepositories(&repository.Repositories{Webhook: repo})

	q := newTestQueue()
	job := &Job{
		ID:        "job-1",
		WebhookID: 1,
		Event:     models.EventPaymentSucceeded,
		Payload:   json.RawMessage(`{"amount":9.99}`),
		CreatedAt: time.Now(),
	}

	require.NoError(t, q.deliver(context.Background(), job))

	assert.Equal(t, "payment.succeeded", gotEventHeader)
	assert.True(t, VerifySignature(gotBody, gotSignature, "whsec_testsecret"))

	var event Event
	require.NoError(t, json.Unmarshal(gotBody, &event))
	assert.Equal(t, "job-1", event.ID)
	assert.Equal(t, models.EventPaymentSucceeded, event.Type)
	assert.JSONEq(t, `{"amount":9.99}`, string(event.Data))

	stored, err := repo.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "200", stored.LastStatus)
	assert.Equal(t, `{"received":true}`, stored.LastResponse)
	assert.Zero(t, stored.FailedAttempts)
}

func TestDeliverRecordsEndpointFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	repo := newStubWebhookRepo(models.Webhook{
		ID:       1,
		UserID:   1,
		URL:      server.URL,
		Secret:   "whsec_testsecret",
		Events:   models.WebhookEventSet{models.EventPaymentFailed},
		IsActive: true,
	})
	repository.SetGlobalRepositories(&repository.Repositories{Webhook: repo})

	q := newTestQueue()
	job := &Job{
		ID:        "job-1",
		WebhookID: 1,
		Event:     models.EventPaymentFailed,
		Payload:   json.RawMessage(`{}`),
		CreatedAt: time.Now(),
	}

	err := q.deliver(context.Background(), job)
	require.Error(t, err)

	stored, getErr := repo.GetByID(1)
	require.NoError(t, getErr)
	assert.Equal(t, "500", stored.LastStatus)
	assert.Equal(t, "boom", stored.LastResponse)
	assert.Equal(t, 1, stored.FailedAttempts)
	assert.True(t, stored.IsActive)
}

func TestDeliverDisablesAfterRepeatedFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	repo := newStubWebhookRepo(models.Webhook{
		ID:             1,
		UserID:         1,
		URL:            server.URL,
		Secret:         "whsec_testsecret",
		Events:         models.WebhookEventSet{models.EventPaymentFailed},
		IsActive:       true,
		FailedAttempts: disableThreshold - 1,
	})
	repository.SetGlobalRepositories(&repository.Repositories{Webhook: repo})

	q := newTestQueue()
	job := &Job{ID: "job-1", WebhookID: 1, Event: models.EventPaymentFailed, Payload: json.RawMessage(`{}`), CreatedAt: time.Now()}

	require.Error(t, q.deliver(context.Background(), job))

	stored, err := repo.GetByID(1)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Equal(t, disableThreshold, stored.FailedAttempts)
}

func TestDeliverSkipsInactiveAndDeletedWebhooks(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	repo := newStubWebhookRepo(models.Webhook{
		ID:       1,
		UserID:   1,
		URL:      server.URL,
		Secret:   "whsec_testsecret",
		Events:   models.WebhookEventSet{models.EventPaymentFailed},
		IsActive: false,
	})
	repository.SetGlobalRepositories(&repository.Repositories{Webhook: repo})

	q := newTestQueue()

	// Inactive webhook: dropped without an attempt
	require.NoError(t, q.deliver(context.Background(), &Job{ID: "j1", WebhookID: 1, Event: models.EventPaymentFailed, CreatedAt: time.Now()}))
	// Deleted webhook: dropped without an attempt
	require.NoError(t, q.deliver(context.Background(), &Job{ID: "j2", WebhookID: 99, Event: models.EventPaymentFailed, CreatedAt: time.Now()}))

	assert.Zero(t, requests)
}

func TestJobLifecycleTransitions(t *testing.T) {
	job := &Job{ID: "j1", Status: JobStatusPending, MaxRetries: DefaultMaxRetries}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("connection refused")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	for i := 0; i < DefaultMaxRetries; i++ {
		job.MarkAsFailed("connection refused")
	}
	assert.False(t, job.IsRetryable())

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	require.NotNil(t, job.CompletedAt)
}
