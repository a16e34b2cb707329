package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/walleyjs/threls-billing/app/models"
	"github.com/walleyjs/threls-billing/app/repository"
	"github.com/walleyjs/threls-billing/internal/pkg/usercontext"
)

// fakeWebhookRepo is an in-memory WebhookRepository for handler tests.
type fakeWebhookRepo struct {
	mu     sync.Mutex
	nextID uint
	items  map[uint]models.Webhook
}

func newFakeWebhookRepo() *fakeWebhookRepo {
	return &fakeWebhookRepo{items: map[uint]models.Webhook{}}
}

func (r *fakeWebhookRepo) Create(webhook *models.Webhook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	webhook.ID = r.nextID
	r.items[webhook.ID] = *webhook
	return nil
}

func (r *fakeWebhookRepo) GetByID(id uint) (*models.Webhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wh, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := wh
	return &found, nil
}

func (r *fakeWebhookRepo) GetByUUID(uuid string) (*models.Webhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, wh := range r.items {
		if wh.UUID == uuid {
			found := wh
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeWebhookRepo) GetByUUIDAndUserID(uuid string, userID uint) (*models.Webhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, wh := range r.items {
		if wh.UUID == uuid && wh.UserID == userID {
			found := wh
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeWebhookRepo) GetByUserID(userID uint) ([]models.Webhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Webhook
	for _, wh := range r.items {
		if wh.UserID == userID {
			out = append(out, wh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeWebhookRepo) Update(webhook *models.Webhook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[webhook.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.items[webhook.ID] = *webhook
	return nil
}

func (r *fakeWebhookRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakeWebhookRepo) CountByUserID(userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, wh := range r.items {
		if wh.UserID == userID {
			n++
		}
	}
	return n, nil
}

func newWebhookTestApp(repo repository.WebhookRepository, uc usercontext.UserContext) *fiber.App {
	repository.SetGlobalRepositories(&repository.Repositories{Webhook: repo})

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		usercontext.SetUserContext(c, uc)
		return c.Next()
	})
	app.Get("/webhooks", HandleListWebhooks)
	app.Post("/webhooks", HandleCreateWebhook)
	app.Get("/webhooks/:id", HandleGetWebhook)
	app.Put("/webhooks/:id", HandleUpdateWebhook)
	app.Delete("/webhooks/:id", HandleDeleteWebhook)
	return app
}

type testEnvelope struct {
	StatusCode string          `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, testEnvelope) {
	t.Helper()
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env testEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func testUser() usercontext.UserContext {
	return usercontext.UserContext{UserID: 1, UserUUID: "user-1", Email: "alice@example.com", Role: models.ROLE_USER, IsLoggedIn: true}
}

func TestCreateWebhookGeneratesSecret(t *testing.T) {
	app := newWebhookTestApp(newFakeWebhookRepo(), testUser())

	resp, env := doJSON(t, app, http.MethodPost, "/webhooks", fiber.Map{
		"url":    "https://example.com/hooks",
		"events": []string{"payment.succeeded", "subscription.created", "payment.succeeded"},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "10000", env.StatusCode)
	assert.Equal(t, "Webhook created", env.Message)

	var wh models.Webhook
	require.NoError(t, json.Unmarshal(env.Data, &wh))
	assert.NotEmpty(t, wh.UUID)
	assert.True(t, strings.HasPrefix(wh.Secret, "whsec_"))
	assert.True(t, wh.IsActive)
	assert.Equal(t, models.WebhookEventSet{
		models.EventPaymentSucceeded,
		models.EventSubscriptionCreated,
	}, wh.Events)
}

func TestCreateWebhookRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body fiber.Map
	}{
		{"relative url", fiber.Map{"url": "/hooks", "events": []string{"payment.succeeded"}}},
		{"missing url", fiber.Map{"events": []string{"payment.succeeded"}}},
		{"no events", fiber.Map{"url": "https://example.com/hooks", "events": []string{}}},
		{"unknown event", fiber.Map{"url": "https://example.com/hooks", "events": []string{"invoice.created"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeWebhookRepo()
			app := newWebhookTestApp(repo, testUser())

			resp, env := doJSON(t, app, http.MethodPost, "/webhooks", tt.body)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "40000", env.StatusCode)
			n, _ := repo.CountByUserID(1)
			assert.Zero(t, n)
		})
	}
}

func TestListWebhooksReturnsOwnOnly(t *testing.T) {
	repo := newFakeWebhookRepo()
	require.NoError(t, repo.Create(&models.Webhook{UUID: "wh-1", UserID: 1, URL: "https://a.example.com", Events: models.WebhookEventSet{models.EventPaymentFailed}}))
	require.NoError(t, repo.Create(&models.Webhook{UUID: "wh-2", UserID: 2, URL: "https://b.example.com", Events: models.WebhookEventSet{models.EventPaymentFailed}}))

	app := newWebhookTestApp(repo, testUser())
	resp, env := doJSON(t, app, http.MethodGet, "/webhooks", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var payload struct {
		Data []models.Webhook `json:"data"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.Len(t, payload.Data, 1)
	assert.Equal(t, "wh-1", payload.Data[0].UUID)
}

func TestUpdateWebhookToggleKeepsRecord(t *testing.T) {
	repo := newFakeWebhookRepo()
	require.NoError(t, repo.Create(&models.Webhook{
		UUID:     "wh-1",
		UserID:   1,
		URL:      "https://example.com/hooks",
		Secret:   "whsec_existing",
		Events:   models.WebhookEventSet{models.EventPaymentSucceeded},
		IsActive: true,
	}))

	app := newWebhookTestApp(repo, testUser())
	resp, env := doJSON(t, app, http.MethodPut, "/webhooks/wh-1", fiber.Map{
		"url":      "https://example.com/hooks",
		"events":   []string{"payment.succeeded"},
		"isActive": false,
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "10000", env.StatusCode)

	stored, err := repo.GetByUUID("wh-1")
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Equal(t, "https://example.com/hooks", stored.URL)
	assert.Equal(t, "whsec_existing", stored.Secret)
	assert.Equal(t, models.WebhookEventSet{models.EventPaymentSucceeded}, stored.Events)
}

func TestUpdateWebhookRequiresFullRecord(t *testing.T) {
	repo := newFakeWebhookRepo()
	require.NoError(t, repo.Create(&models.Webhook{
		UUID:     "wh-1",
		UserID:   1,
		URL:      "https://example.com/hooks",
		Secret:   "whsec_existing",
		Events:   models.WebhookEventSet{models.EventPaymentSucceeded},
		IsActive: true,
	}))

	app := newWebhookTestApp(repo, testUser())

	// A partial body is not a merge: leaving out the url fails validation
	// and the stored record stays as it was.
	resp, env := doJSON(t, app, http.MethodPut, "/webhooks/wh-1", fiber.Map{"isActive": false})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "40000", env.StatusCode)

	stored, err := repo.GetByUUID("wh-1")
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.Equal(t, "https://example.com/hooks", stored.URL)
}

func TestUpdateWebhookRejectsInvalidReplacement(t *testing.T) {
	repo := newFakeWebhookRepo()
	require.NoError(t, repo.Create(&models.Webhook{
		UUID:     "wh-1",
		UserID:   1,
		URL:      "https://example.com/hooks",
		Secret:   "whsec_existing",
		Events:   models.WebhookEventSet{models.EventPaymentSucceeded},
		IsActive: true,
	}))

	app := newWebhookTestApp(repo, testUser())
	resp, env := doJSON(t, app, http.MethodPut, "/webhooks/wh-1", fiber.Map{"url": "not-a-url"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "40000", env.StatusCode)

	stored, err := repo.GetByUUID("wh-1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/hooks", stored.URL)
}

func TestWebhookOwnershipScoping(t *testing.T) {
	repo := newFakeWebhookRepo()
	require.NoError(t, repo.Create(&models.Webhook{
		UUID:   "wh-other",
		UserID: 2,
		URL:    "https://example.com/hooks",
		Events: models.WebhookEventSet{models.EventPaymentSucceeded},
	}))

	app := newWebhookTestApp(repo, testUser())

	resp, env := doJSON(t, app, http.MethodGet, "/webhooks/wh-other", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "40400", env.StatusCode)
	assert.Equal(t, "Webhook not found", env.Message)

	resp, _ = doJSON(t, app, http.MethodDelete, "/webhooks/wh-other", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	n, _ := repo.CountByUserID(2)
	assert.Equal(t, int64(1), n)
}

func TestDeleteWebhook(t *testing.T) {
	repo := newFakeWebhookRepo()
	require.NoError(t, repo.Create(&models.Webhook{
		UUID:   "wh-1",
		UserID: 1,
		URL:    "https://example.com/hooks",
		Events: models.WebhookEventSet{models.EventPaymentSucceeded},
	}))

	app := newWebhookTestApp(repo, testUser())
	resp, env := doJSON(t, app, http.MethodDelete, "/webhooks/wh-1", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Webhook deleted", env.Message)

	n, _ := repo.CountByUserID(1)
	assert.Zero(t, n)
}
