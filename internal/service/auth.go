package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mycampus/assistant/internal/adapter/store"
	"github.com/mycampus/assistant/internal/domain"
	"github.com/mycampus/assistant/internal/middleware"
	"github.com/mycampus/assistant/internal/port"
	"github.com/mycampus/assistant/pkg/config"
)

// AuthService handles the authentication flow.
type AuthService struct {
	provider port.AuthProvider
	store    *store.PostgresStore
	sync     *SyncService
	jwtCfg   middleware.JWTConfig
}

// NewAuthService creates a new authentication service.
func NewAuthService(provider port.AuthProvider, store *store.PostgresStore, sync *SyncService, cfg *config.Config) *AuthService {
	return &AuthService{
		provider: provider,
		store:    store,
		sync:     sync,
		jwtCfg: middleware.JWTConfig{
			Secret:    cfg.JWTSecret,
			Issuer:    cfg.JWTIssuer,
			ExpiresIn: time.Duration(cfg.JWTExpiration) * time.Hour,
		},
	}
}

// GetAuthURL returns the OAuth2 authorization URL.
func (s *AuthService) GetAuthURL(state string) string {
	return s.provider.AuthURL(state)
}

// HandleCallback processes the OAuth2 callback: exchanges the code, upserts
// the user, syncs their profile embedding, and returns a JWT.
func (s *AuthService) HandleCallback(ctx context.Context, code string) (string, *domain.User, error) {
	tokens, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("exchange code: %w", err)
	}

	profile, err := s.provider.GetUserProfile(ctx, tokens.AccessToken)
	if err != nil {
		return "", nil, fmt.Errorf("get profile: %w", err)
	}

	// Keep the Google tokens for calendar API calls.
	profile.AccessToken = tokens.AccessToken
	profile.RefreshToken = tokens.RefreshToken

	user, err := s.store.UpsertUserByEmail(ctx, profile)
	if err != nil {
		return "", nil, fmt.Errorf("upsert user: %w", err)
	}

	s.sync.Sync(ctx, user)

	jwt, err := middleware.GenerateJWT(user, s.jwtCfg)
	if err != nil {
		return "", nil, fmt.Errorf("generate jwt: %w", err)
	}

	slog.Info("user authenticated", "user_id", user.ID, "provider", s.provider.ProviderName())
	return jwt, user, nil
}
