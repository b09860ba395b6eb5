package ports

import (
	"context"

	"github.com/userhive/account-api/internal/core/auth"
)

// SignInResult bundles the visitor and its token pair after a successful
// sign-in or refresh. Tokens are empty for the anonymous visitor.
type SignInResult struct {
	Visitor      *auth.Visitor
	AccessToken  string
	RefreshToken string
}

// AuthService exposes credential sign-in and token refresh.
type AuthService interface {
	SignIn(ctx context.Context, creds auth.Credentials) (*SignInResult, error)
	Refresh(ctx context.Context, refreshToken string) (*SignInResult, error)
}
