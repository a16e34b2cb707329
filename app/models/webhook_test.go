package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookEventSetNormalize(t *testing.T) {
	set := WebhookEventSet{
		EventPaymentFailed,
		EventSubscriptionCreated,
		EventPaymentFailed,
		EventSubscriptionCreated,
	}

	got := set.Normalize()
	assert.Len(t, got, 2)
	assert.True(t, got.Contains(EventPaymentFailed))
	assert.True(t, got.Contains(EventSubscriptionCreated))
}

func TestWebhookEventSetValidate(t *testing.T) {
	tests := []struct {
		name    string
		events  WebhookEventSet
		wantErr bool
	}{
		{name: "empty set", events: WebhookEventSet{}, wantErr: true},
		{name: "nil set", events: nil, wantErr: true},
		{name: "single valid", events: WebhookEventSet{EventPaymentSucceeded}, wantErr: false},
		{name: "all valid", events: WebhookEventSet(WebhookEventTypes), wantErr: false},
		{name: "unknown tag", events: WebhookEventSet{"payment.exploded"}, wantErr: true},
		{name: "mixed valid and unknown", events: WebhookEventSet{EventPaymentFailed, "nope"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.events.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWebhookEventSetRoundTrip(t *testing.T) {
	set := WebhookEventSet{EventSubscriptionRenewed, EventPaymentRefunded}

	v, err := set.Value()
	require.NoError(t, err)

	var got WebhookEventSet
	require.NoError(t, got.Scan(v))
	assert.ElementsMatch(t, set, got)
}

func TestValidateWebhookURL(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{raw: "https://example.com/webhook", wantErr: false},
		{raw: "http://localhost:8080/hooks", wantErr: false},
		{raw: "", wantErr: true},
		{raw: "not-a-url", wantErr: true},
		{raw: "/relative/path", wantErr: true},
		{raw: "example.com/webhook", wantErr: true},
	}

	for _, tt := range tests {
		err := ValidateWebhookURL(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, "url %q", tt.raw)
		} else {
			assert.NoError(t, err, "url %q", tt.raw)
		}
	}
}

func TestWebhookValidate(t *testing.T) {
	base := Webhook{
		URL:    "https://example.com/webhook",
		Secret: "whsec_abc123",
		Events: WebhookEventSet{EventSubscriptionCreated},
	}

	assert.NoError(t, base.Validate())

	noEvents := base
	noEvents.Events = nil
	assert.Error(t, noEvents.Validate())

	badURL := base
	badURL.URL = "not-a-url"
	assert.Error(t, badURL.Validate())

	noSecret := base
	noSecret.Secret = ""
	assert.Error(t, noSecret.Validate())
}

func TestGenerateWebhookSecret(t *testing.T) {
	a, err := GenerateWebhookSecret()
	require.NoError(t, err)
	b, err := GenerateWebhookSecret()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "whsec_"))
	assert.True(t, strings.HasPrefix(b, "whsec_"))
	assert.NotEqual(t, a, b)
	assert.Len(t, a, len("whsec_")+webhookSecretBytes*2)
}

func TestWebhookEnsureSecret(t *testing.T) {
	w := Webhook{}
	require.NoError(t, w.EnsureSecret())
	assert.NotEmpty(t, w.Secret)

	keep := Webhook{Secret: "whsec_custom"}
	require.NoError(t, keep.EnsureSecret())
	assert.Equal(t, "whsec_custom", keep.Secret)
}
