package auth

import (
	"context"

	"github.com/userhive/account-api/internal/core/domain"
)

// UserSource is the single store lookup the auth core depends on for visitor
// resolution. Implemented by the user repository.
type UserSource interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// AnonymousConfig is the fixed, well-known identity assigned when no valid
// credential is presented. Process-wide and read-only after startup.
type AnonymousConfig struct {
	ID   int64
	Name string
	Role domain.Role
}

// Identity constructs Visitors from verified tokens, claims, or the anonymous
// default. It owns the codec and the store indirection so that Visitors stay
// lightweight.
type Identity struct {
	codec     *TokenCodec
	users     UserSource
	anonymous AnonymousConfig
}

func NewIdentity(codec *TokenCodec, users UserSource, anonymous AnonymousConfig) *Identity {
	return &Identity{codec: codec, users: users, anonymous: anonymous}
}

// Anonymous returns a Visitor for the sentinel identity.
func (i *Identity) Anonymous() *Visitor {
	return i.FromClaims(i.anonymous.ID, i.anonymous.Role)
}

// FromClaims builds a Visitor for an already-verified (id, role) pair.
func (i *Identity) FromClaims(id int64, role domain.Role) *Visitor {
	return &Visitor{id: id, role: role, identity: i}
}

// FromToken verifies a token of the given type and returns the Visitor it
// identifies. Empty tokens yield the anonymous Visitor; verification is only
// attempted on non-empty tokens.
func (i *Identity) FromToken(token string, typ TokenType) (*Visitor, error) {
	if token == "" {
		return i.Anonymous(), nil
	}
	claims, err := i.codec.Verify(token, typ)
	if err != nil {
		return nil, err
	}
	return i.FromClaims(claims.ID, claims.Role), nil
}
