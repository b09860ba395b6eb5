package ports

import (
	"context"

	"github.com/userhive/account-api/internal/core/domain"
)

// ListParams bounds a paginated user listing.
type ListParams struct {
	Page    int64
	PerPage int64
}

// UserRepository defines user persistence. Lookups by id, name and email hit
// unique indexes; missing records fail with domain.ErrUserNotFound and
// uniqueness violations with domain.ErrUserExists.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByName(ctx context.Context, name string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, params ListParams) ([]domain.User, int64, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

// VersionRepository persists the audit history of user records.
type VersionRepository interface {
	Insert(ctx context.Context, version *domain.Version) error
	ListByItem(ctx context.Context, itemID int64) ([]domain.Version, error)
}
