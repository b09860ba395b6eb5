package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/userhive/account-api/internal/core/auth"
	"github.com/userhive/account-api/internal/core/domain"
)

const testAnonymousID = 1

func newTestIdentity() *auth.Identity {
	return auth.NewIdentity(
		auth.NewTokenCodec(
			auth.TokenConfig{Secret: "access-secret", TTL: time.Minute},
			auth.TokenConfig{Secret: "refresh-secret", TTL: time.Hour},
		),
		nil,
		auth.AnonymousConfig{ID: testAnonymousID, Name: "anonymous", Role: domain.RoleUser},
	)
}

func invoke(t *testing.T, identity *auth.Identity, authorization string) (*auth.Visitor, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var visitor *auth.Visitor
	handler := Identity(identity)(func(c echo.Context) error {
		visitor, _ = c.Get(VisitorKey).(*auth.Visitor)
		return nil
	})
	err := handler(c)
	return visitor, err
}

func TestIdentity_BearerToken(t *testing.T) {
	identity := newTestIdentity()
	token, err := identity.FromClaims(8, domain.RoleModerator).AccessToken()
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	visitor, err := invoke(t, identity, "Bearer "+token)
	if err != nil {
		t.Fatalf("bearer request: %v", err)
	}
	if visitor == nil || visitor.ID() != 8 || visitor.Role() != domain.RoleModerator {
		t.Fatalf("unexpected visitor: %+v", visitor)
	}
}

func TestIdentity_BearerInvalidToken(t *testing.T) {
	_, err := invoke(t, newTestIdentity(), "Bearer not.a.token")
	if !errors.Is(err, auth.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestIdentity_BearerRefreshTokenRejected(t *testing.T) {
	identity := newTestIdentity()
	token, err := identity.FromClaims(8, domain.RoleModerator).RefreshToken()
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	_, err = invoke(t, identity, "Bearer "+token)
	if !errors.Is(err, auth.ErrTokenTypeMismatch) {
		t.Fatalf("expected ErrTokenTypeMismatch, got %v", err)
	}
}

func TestIdentity_BasicRejected(t *testing.T) {
	_, err := invoke(t, newTestIdentity(), "Basic ZGF2ZTpvcGVuIHNlc2FtZQ==")
	if !errors.Is(err, auth.ErrMethodNotAllowed) {
		t.Fatalf("expected ErrMethodNotAllowed, got %v", err)
	}
}

func TestIdentity_MissingHeaderIsAnonymous(t *testing.T) {
	visitor, err := invoke(t, newTestIdentity(), "")
	if err != nil {
		t.Fatalf("anonymous request: %v", err)
	}
	if visitor == nil || !visitor.IsAnonymous() {
		t.Fatalf("expected anonymous visitor, got %+v", visitor)
	}
}

func TestIdentity_UnknownSchemeIsAnonymous(t *testing.T) {
	visitor, err := invoke(t, newTestIdentity(), "Digest abc")
	if err != nil {
		t.Fatalf("unknown scheme request: %v", err)
	}
	if visitor == nil || !visitor.IsAnonymous() {
		t.Fatalf("expected anonymous visitor, got %+v", visitor)
	}
}
