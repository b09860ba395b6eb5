package auth

import (
	"context"
	"sync"

	"github.com/userhive/account-api/internal/core/domain"
)

// Visitor is the caller identity for the duration of one request: an (id,
// role) pair materialized from a verified token, a credential check, or the
// anonymous default. It is immutable once constructed and is not itself a
// database row; Resolve is the one explicit escape hatch to the backing user
// record.
type Visitor struct {
	id       int64
	role     domain.Role
	identity *Identity

	resolveOnce sync.Once
	user        *domain.User
	resolveErr  error
}

func (v *Visitor) ID() int64         { return v.id }
func (v *Visitor) Role() domain.Role { return v.role }

func (v *Visitor) IsAdmin() bool     { return v.role == domain.RoleAdmin }
func (v *Visitor) IsModerator() bool { return v.role == domain.RoleModerator }
func (v *Visitor) IsUser() bool      { return v.role == domain.RoleUser }

// IsAnonymous reports whether this is the sentinel identity. The sentinel id
// always carries the anonymous role, so the id alone decides.
func (v *Visitor) IsAnonymous() bool { return v.id == v.identity.anonymous.ID }

// AccessToken issues an access token for this visitor. Anonymous visitors
// are never issued tokens: the result is empty with no error.
func (v *Visitor) AccessToken() (string, error) {
	return v.token(TokenAccess)
}

// RefreshToken issues a refresh token for this visitor, empty for anonymous.
func (v *Visitor) RefreshToken() (string, error) {
	return v.token(TokenRefresh)
}

func (v *Visitor) token(typ TokenType) (string, error) {
	if v.IsAnonymous() {
		return "", nil
	}
	return v.identity.codec.Generate(v.id, v.role, typ)
}

// Resolve fetches the user record backing this visitor. The lookup happens
// at most once per Visitor; later calls reuse the first result. A missing
// row fails with domain.ErrUserNotFound, including the anonymous row, whose
// absence is a configuration error and must not pass silently.
func (v *Visitor) Resolve(ctx context.Context) (*domain.User, error) {
	v.resolveOnce.Do(func() {
		v.user, v.resolveErr = v.identity.users.FindByID(ctx, v.id)
	})
	return v.user, v.resolveErr
}
