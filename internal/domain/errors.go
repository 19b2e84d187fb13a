package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404.
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	// ErrSignatureInvalid covers a missing, malformed, or mismatching webhook
	// signature. The message never reveals whether the embedded referral code
	// exists, to keep code validity unprobeable through auth failures.
	ErrSignatureInvalid = errors.New("webhook signature verification failed")
	// ErrSecretNotConfigured makes the webhook path fail closed when no shared
	// secret was provided at startup.
	ErrSecretNotConfigured = errors.New("webhook secret not configured")
	// ErrAlreadyFulfilled rejects a second fulfillment of the same reward.
	// The pending -> fulfilled transition is one-way.
	ErrAlreadyFulfilled    = errors.New("reward already fulfilled")
	ErrIdempotencyConflict = errors.New("idempotency conflict")
)
