package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/viralforge/referral-rewards/internal/domain"
)

// WebhookVerifier checks HMAC-SHA256 signatures over the exact raw request
// body bytes. The shared secret is injected once at startup; an empty secret
// makes every verification fail closed rather than silently passing.
type WebhookVerifier struct {
	secret []byte
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret)}
}

func (v *WebhookVerifier) Configured() bool { return len(v.secret) > 0 }

// Sign computes the lowercase hex digest senders are expected to transmit.
func (v *WebhookVerifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares the supplied signature against the body digest. The
// comparison runs over decoded MAC bytes through hmac.Equal so timing does
// not correlate with how many leading bytes matched. A "sha256=" prefix on
// the header value is tolerated for senders following the GitHub convention.
func (v *WebhookVerifier) Verify(body []byte, signature string) error {
	if !v.Configured() {
		return domain.ErrSecretNotConfigured
	}
	sig := strings.TrimSpace(signature)
	if strings.HasPrefix(strings.ToLower(sig), "sha256=") {
		sig = sig[len("sha256="):]
	}
	if sig == "" {
		return domain.ErrSignatureInvalid
	}
	supplied, err := hex.DecodeString(sig)
	if err != nil {
		return domain.ErrSignatureInvalid
	}
	mac := hmac.New(sha256.New, v.secret)
	_, _ = mac.Write(body)
	if !hmac.Equal(supplied, mac.Sum(nil)) {
		return domain.ErrSignatureInvalid
	}
	return nil
}
