package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/viralforge/referral-rewards/internal/domain"
)

func referenceDigest(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestSignMatchesReferenceDigest(t *testing.T) {
	secret := "s3cr3t"
	body := []byte(`{"referral_code":"ABC123XY","action_type":"signup","metadata":{"reward_value":50}}`)
	v := NewWebhookVerifier(secret)
	if got, want := v.Sign(body), referenceDigest(secret, body); got != want {
		t.Fatalf("digest mismatch: got=%s want=%s", got, want)
	}
	if err := v.Verify(body, v.Sign(body)); err != nil {
		t.Fatalf("verify own signature: %v", err)
	}
}

func TestVerifyRejectsAnySingleByteFlip(t *testing.T) {
	v := NewWebhookVerifier("s3cr3t")
	body := []byte(`{"referral_code":"ABC123XY","action_type":"signup","metadata":{"reward_value":50}}`)
	good := v.Sign(body)
	for i := 0; i < len(good); i++ {
		corrupted := []byte(good)
		if corrupted[i] == '0' {
			corrupted[i] = '1'
		} else {
			corrupted[i] = '0'
		}
		if err := v.Verify(body, string(corrupted)); !errors.Is(err, domain.ErrSignatureInvalid) {
			t.Fatalf("flipped byte %d accepted: %v", i, err)
		}
	}
}

func TestVerifyFailsClosedWithoutSecret(t *testing.T) {
	v := NewWebhookVerifier("")
	body := []byte(`{}`)
	if err := v.Verify(body, referenceDigest("", body)); !errors.Is(err, domain.ErrSecretNotConfigured) {
		t.Fatalf("expected fail-closed error, got %v", err)
	}
}

func TestVerifyToleratesSchemePrefix(t *testing.T) {
	v := NewWebhookVerifier("s3cr3t")
	body := []byte(`{"ping":true}`)
	if err := v.Verify(body, "sha256="+v.Sign(body)); err != nil {
		t.Fatalf("prefixed signature rejected: %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	v := NewWebhookVerifier("s3cr3t")
	body := []byte(`{}`)
	for _, sig := range []string{"", "deadbeef", "not-hex-at-all", "zzzz"} {
		if err := v.Verify(body, sig); !errors.Is(err, domain.ErrSignatureInvalid) {
			t.Fatalf("signature %q accepted: %v", sig, err)
		}
	}
}
