package ports

import (
	"context"

	"github.com/userhive/account-api/internal/core/auth"
	"github.com/userhive/account-api/internal/core/authz"
	"github.com/userhive/account-api/internal/core/domain"
)

// UserLookup selects a user by exactly one unique field. When several are
// set, precedence is fixed: id, then name, then email.
type UserLookup struct {
	ID    int64
	Name  string
	Email string
}

// Empty reports whether no identifier is set.
func (l UserLookup) Empty() bool {
	return l.ID == 0 && l.Name == "" && l.Email == ""
}

// TranslationInput is one locale's submitted name attributes.
type TranslationInput struct {
	Locale     string
	FirstName  string
	MiddleName string
	LastName   string
}

// CreateUserInput carries submitted attributes for account creation. Fields
// lists the attribute names actually present in the submission, in request
// order, for field-level authorization.
type CreateUserInput struct {
	Name         string
	Email        string
	Password     string
	Role         *domain.Role
	Translations []TranslationInput
	Fields       []authz.Field
}

// UpdateUserInput carries submitted attributes for an update. Nil pointers
// mean "not submitted"; Fields mirrors the submission for authorization.
type UpdateUserInput struct {
	Name         *string
	Email        *string
	Password     *string
	Role         *domain.Role
	Translations []TranslationInput
	Fields       []authz.Field
}

// UserService exposes the user aggregate operations. Every call takes the
// acting visitor explicitly; nothing is read from ambient state.
type UserService interface {
	Create(ctx context.Context, actor *auth.Visitor, input CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, actor *auth.Visitor, lookup UserLookup, input UpdateUserInput) (*domain.User, error)
	Destroy(ctx context.Context, actor *auth.Visitor, lookup UserLookup) error
	Get(ctx context.Context, actor *auth.Visitor, lookup UserLookup) (*domain.User, error)
	List(ctx context.Context, actor *auth.Visitor, params ListParams) ([]domain.User, int64, error)
	Versions(ctx context.Context, actor *auth.Visitor, lookup UserLookup) ([]domain.Version, error)
}

// VersionRecorder accepts audit versions for eventual persistence. The queue
// dispatcher implements it asynchronously; tests use a synchronous stub.
type VersionRecorder interface {
	Record(version domain.Version)
}
