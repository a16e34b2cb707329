package webhookqueue

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureHeader carries the payload signature on every delivery.
const SignatureHeader = "X-Billing-Signature"

// Sign computes the hex HMAC-SHA256 of payload under the webhook secret.
// Receivers recompute it over the raw request body and compare.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a received signature header against the payload in
// constant time. Exposed for webhook consumers; the delivery side only signs.
func VerifySignature(payload []byte, signatureHeader, secret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	if sig == "" || strings.TrimSpace(secret) == "" {
		return false
	}

	decoded, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), decoded)
}
