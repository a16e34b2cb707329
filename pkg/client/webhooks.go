package client

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/url"
	"sort"
)

// WebhookEvents lists every event type a webhook may subscribe to.
var WebhookEvents = []string{
	"subscription.created",
	"subscription.updated",
	"subscription.canceled",
	"subscription.renewed",
	"payment.succeeded",
	"payment.failed",
	"payment.refunded",
}

// WebhookSecretPrefix marks secrets generated by this client or the service.
const WebhookSecretPrefix = "whsec_"

// WebhookForm is the editable state of a webhook create or update.
type WebhookForm struct {
	URL      string   `json:"url"`
	Secret   string   `json:"secret,omitempty"`
	Events   []string `json:"events"`
	IsActive *bool    `json:"isActive,omitempty"`
}

// FieldError names a single invalid form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidateWebhookForm checks a form before it is sent. It returns one entry
// per invalid field; an empty slice means the form may be submitted.
func ValidateWebhookForm(form WebhookForm) []FieldError {
	var errs []FieldError

	if form.URL == "" {
		errs = append(errs, FieldError{Field: "url", Message: "URL is required"})
	} else if u, err := url.Parse(form.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, FieldError{Field: "url", Message: "URL must be absolute, including the scheme"})
	}

	if len(form.Events) == 0 {
		errs = append(errs, FieldError{Field: "events", Message: "select at least one event"})
	} else {
		for _, ev := range form.Events {
			if !isKnownWebhookEvent(ev) {
				errs = append(errs, FieldError{Field: "events", Message: "unknown event type: " + ev})
				break
			}
		}
	}

	return errs
}

func isKnownWebhookEvent(ev string) bool {
	for _, known := range WebhookEvents {
		if ev == known {
			return true
		}
	}
	return false
}

// GenerateWebhookSecret makes a fresh signing secret from a CSPRNG. The
// result is safe to show once and store server-side.
func GenerateWebhookSecret() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		panic("webhook secret entropy unavailable: " + err.Error())
	}
	return WebhookSecretPrefix + hex.EncodeToString(buf)
}

// NormalizeWebhookEvents deduplicates and sorts an event selection, matching
// how the service stores it.
func NormalizeWebhookEvents(events []string) []string {
	seen := make(map[string]struct{}, len(events))
	out := make([]string, 0, len(events))
	for _, ev := range events {
		if _, dup := seen[ev]; dup {
			continue
		}
		seen[ev] = struct{}{}
		out = append(out, ev)
	}
	sort.Strings(out)
	return out
}

// MaskSecret renders a secret for display: the prefix and first characters
// stay visible, the rest is blanked. The full value is shown on demand only.
func MaskSecret(secret string) string {
	if len(secret) <= len(WebhookSecretPrefix)+4 {
		return "••••••••"
	}
	return secret[:len(WebhookSecretPrefix)+4] + "••••••••"
}

type webhookList struct {
	Data []Webhook `json:"data"`
}

// ListWebhooks returns the caller's webhooks, newest first.
func (c *Client) ListWebhooks(ctx context.Context) ([]Webhook, error) {
	var list webhookList
	if err := c.get(ctx, "/webhooks", &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// GetWebhook fetches a single webhook by id.
func (c *Client) GetWebhook(ctx context.Context, id string) (*Webhook, error) {
	var wh Webhook
	if err := c.get(ctx, "/webhooks/"+id, &wh); err != nil {
		return nil, err
	}
	return &wh, nil
}

// CreateWebhook validates the form locally and creates the webhook. An
// invalid form never reaches the network.
func (c *Client) CreateWebhook(ctx context.Context, form WebhookForm) (*Webhook, error) {
	if errs := ValidateWebhookForm(form); len(errs) > 0 {
		return nil, &FormError{Fields: errs}
	}
	form.Events = NormalizeWebhookEvents(form.Events)
	var wh Webhook
	if err := c.post(ctx, "/webhooks", form, &wh); err != nil {
		return nil, err
	}
	return &wh, nil
}

// UpdateWebhook validates and replaces a webhook's editable fields.
func (c *Client) UpdateWebhook(ctx context.Context, id string, form WebhookForm) (*Webhook, error) {
	if errs := ValidateWebhookForm(form); len(errs) > 0 {
		return nil, &FormError{Fields: errs}
	}
	form.Events = NormalizeWebhookEvents(form.Events)
	var wh Webhook
	if err := c.put(ctx, "/webhooks/"+id, form, &wh); err != nil {
		return nil, err
	}
	return &wh, nil
}

// ToggleWebhook flips a webhook's active flag while leaving the rest of the
// record untouched. It resubmits the current values with the flag inverted.
func (c *Client) ToggleWebhook(ctx context.Context, wh Webhook) (*Webhook, error) {
	active := !wh.IsActive
	return c.UpdateWebhook(ctx, wh.ID, WebhookForm{
		URL:      wh.URL,
		Secret:   wh.Secret,
		Events:   wh.Events,
		IsActive: &active,
	})
}

// DeleteWebhook removes a webhook.
func (c *Client) DeleteWebhook(ctx context.Context, id string) error {
	return c.delete(ctx, "/webhooks/"+id)
}

// FormError aggregates local validation failures. The request was never
// sent when it is returned.
type FormError struct {
	Fields []FieldError
}

func (e *FormError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid form"
	}
	return e.Fields[0].Field + ": " + e.Fields[0].Message
}
