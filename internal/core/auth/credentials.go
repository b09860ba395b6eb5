package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/userhive/account-api/internal/core/domain"
)

// Credentials is the sign-in input. Exactly one identifier is used; when
// several are supplied the first recognized one wins, in the fixed order id,
// name, email. The ordering is part of the contract, not incidental.
type Credentials struct {
	ID       int64
	Name     string
	Email    string
	Password string
}

func (c Credentials) empty() bool {
	return c.ID == 0 && c.Name == "" && c.Email == "" && c.Password == ""
}

// CredentialFinder is the set of unique-field lookups credential verification
// needs. Implemented by the user repository.
type CredentialFinder interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByName(ctx context.Context, name string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// CredentialVerifier validates identifier/password combinations against
// stored credentials and produces a Visitor.
type CredentialVerifier struct {
	identity *Identity
	users    CredentialFinder
}

func NewCredentialVerifier(identity *Identity, users CredentialFinder) *CredentialVerifier {
	return &CredentialVerifier{identity: identity, users: users}
}

// Verify checks the supplied credentials. No credentials at all yields the
// anonymous Visitor. An unknown identifier and a wrong password both fail
// with ErrAuthenticationFailed; callers cannot tell which happened, which
// keeps account enumeration off the table.
func (cv *CredentialVerifier) Verify(ctx context.Context, creds Credentials) (*Visitor, error) {
	if creds.empty() {
		return cv.identity.Anonymous(), nil
	}

	var (
		user *domain.User
		err  error
	)
	switch {
	case creds.ID != 0:
		user, err = cv.users.FindByID(ctx, creds.ID)
	case creds.Name != "":
		user, err = cv.users.FindByName(ctx, creds.Name)
	case creds.Email != "":
		user, err = cv.users.FindByEmail(ctx, creds.Email)
	default:
		// Password without any identifier.
		return nil, ErrAuthenticationFailed
	}
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
		return nil, ErrAuthenticationFailed
	}

	return cv.identity.FromClaims(user.ID, user.Role), nil
}
