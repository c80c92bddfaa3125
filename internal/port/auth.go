package port

import (
	"context"

	"github.com/mycampus/assistant/internal/domain"
)

// AuthProvider abstracts the OAuth2 identity provider. The only production
// implementation is Google (the calendar integration needs Google tokens),
// but handlers and services only see this interface.
type AuthProvider interface {
	// ProviderName returns the name of this provider (e.g. "google").
	ProviderName() string

	// AuthURL returns the full OAuth2 authorization URL for redirecting the user.
	AuthURL(state string) string

	// ExchangeCode exchanges an authorization code for an access/refresh token pair.
	ExchangeCode(ctx context.Context, code string) (*domain.TokenPair, error)

	// GetUserProfile fetches the authenticated user's profile from the provider.
	GetUserProfile(ctx context.Context, accessToken string) (*domain.User, error)
}
