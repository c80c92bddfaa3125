package port

import "errors"

// Sentinel errors used across ports. Provider errors separate three failure
// modes: configuration problems (never retried, fatal), transient
// availability problems (retried for embeddings only), and malformed
// responses (never retried, the provider answered but wrongly).
var (
	ErrProviderConfig      = errors.New("provider configuration missing")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrProviderResponse    = errors.New("unexpected provider response")
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
)
