package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/userhive/account-api/internal/api/metrics"
	"github.com/userhive/account-api/internal/core/auth"
	"github.com/userhive/account-api/internal/core/ports"
)

// AuthService implements sign-in and token refresh on top of the credential
// verifier and the token codec.
type AuthService struct {
	verifier *auth.CredentialVerifier
	identity *auth.Identity
	log      zerolog.Logger
}

func NewAuthService(verifier *auth.CredentialVerifier, identity *auth.Identity, log zerolog.Logger) *AuthService {
	return &AuthService{verifier: verifier, identity: identity, log: log}
}

// SignIn validates credentials and returns the visitor with a fresh token
// pair. Empty credentials sign in as anonymous, with no tokens.
func (s *AuthService) SignIn(ctx context.Context, creds auth.Credentials) (*ports.SignInResult, error) {
	visitor, err := s.verifier.Verify(ctx, creds)
	if err != nil {
		metrics.SignInAttemptsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	result, err := s.tokenPair(visitor)
	if err != nil {
		return nil, err
	}

	metrics.SignInAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info().Int64("user_id", visitor.ID()).Str("role", visitor.Role().String()).Msg("sign-in")
	return result, nil
}

// Refresh verifies a refresh token and issues a new token pair. An empty
// token yields the anonymous visitor, mirroring the sign-in contract.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.SignInResult, error) {
	visitor, err := s.identity.FromToken(refreshToken, auth.TokenRefresh)
	if err != nil {
		return nil, err
	}
	return s.tokenPair(visitor)
}

func (s *AuthService) tokenPair(visitor *auth.Visitor) (*ports.SignInResult, error) {
	access, err := visitor.AccessToken()
	if err != nil {
		return nil, err
	}
	refresh, err := visitor.RefreshToken()
	if err != nil {
		return nil, err
	}
	if access != "" {
		metrics.TokensIssuedTotal.WithLabelValues(string(auth.TokenAccess)).Inc()
		metrics.TokensIssuedTotal.WithLabelValues(string(auth.TokenRefresh)).Inc()
	}
	return &ports.SignInResult{Visitor: visitor, AccessToken: access, RefreshToken: refresh}, nil
}
