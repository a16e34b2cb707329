package webhookqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignAndVerify(t *testing.T) {
	payload := []byte(`{"id":"evt-1","type":"payment.succeeded"}`)
	secret := "whsec_testsecret"

	sig := Sign(payload, secret)
	assert.NotEmpty(t, sig)
	assert.True(t, VerifySignature(payload, sig, secret))
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	payload := []byte(`{"id":"evt-1"}`)
	secret := "whsec_testsecret"
	sig := Sign(payload, secret)

	assert.False(t, VerifySignature([]byte(`{"id":"evt-2"}`), sig, secret))
	assert.False(t, VerifySignature(payload, sig, "whsec_other"))
	assert.False(t, VerifySignature(payload, "", secret))
	assert.False(t, VerifySignature(payload, "zz-not-hex", secret))
	assert.False(t, VerifySignature(payload, sig, ""))
}

func TestVerifySignatureIsCaseInsensitive(t *testing.T) {
	payload := []byte(`{"id":"evt-1"}`)
	secret := "whsec_testsecret"
	sig := Sign(payload, secret)

	upper := ""
	for _, r := range sig {
		if r >= 'a' && r <= 'f' {
			upper += string(r - 32)
		} else {
			upper += string(r)
		}
	}
	assert.True(t, VerifySignature(payload, upper, secret))
}
