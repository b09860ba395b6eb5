package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/userhive/account-api/internal/core/domain"
	"github.com/userhive/account-api/internal/core/ports"
)

const cacheTTL = 5 * time.Minute

// UserCache is a read-through cache in front of a UserRepository. Only
// FindByID is cached: it is the visitor-resolution hot path, hit on every
// request that touches the caller's own record. Name/email lookups and
// listings pass through. Writes invalidate the cached row.
type UserCache struct {
	inner  ports.UserRepository
	client *redis.Client
}

func NewUserCache(inner ports.UserRepository, client *redis.Client) *UserCache {
	return &UserCache{inner: inner, client: client}
}

type cachedUser struct {
	ID                int64                `json:"id"`
	Name              string               `json:"name"`
	Email             string               `json:"email"`
	PasswordHash      string               `json:"password_hash"`
	RememberToken     string               `json:"remember_token,omitempty"`
	ConfirmationToken string               `json:"confirmation_token,omitempty"`
	Role              int                  `json:"role"`
	Translations      []domain.Translation `json:"translations,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

func (c *UserCache) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	if raw, err := c.client.Get(ctx, c.key(id)).Bytes(); err == nil {
		var cu cachedUser
		if json.Unmarshal(raw, &cu) == nil {
			return fromCached(cu), nil
		}
	}

	user, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(toCached(user)); err == nil {
		// Best effort; a failed cache write must not fail the lookup.
		_ = c.client.Set(ctx, c.key(id), raw, cacheTTL).Err()
	}
	return user, nil
}

func (c *UserCache) FindByName(ctx context.Context, name string) (*domain.User, error) {
	return c.inner.FindByName(ctx, name)
}

func (c *UserCache) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return c.inner.FindByEmail(ctx, email)
}

func (c *UserCache) List(ctx context.Context, params ports.ListParams) ([]domain.User, int64, error) {
	return c.inner.List(ctx, params)
}

func (c *UserCache) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	return c.inner.Create(ctx, user)
}

func (c *UserCache) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	updated, err := c.inner.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	_ = c.client.Del(ctx, c.key(user.ID)).Err()
	return updated, nil
}

func (c *UserCache) Delete(ctx context.Context, id int64) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	_ = c.client.Del(ctx, c.key(id)).Err()
	return nil
}

func (c *UserCache) key(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

func toCached(u *domain.User) cachedUser {
	return cachedUser{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		RememberToken:     u.RememberToken,
		ConfirmationToken: u.ConfirmationToken,
		Role:              int(u.Role),
		Translations:      u.Translations,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func fromCached(cu cachedUser) *domain.User {
	return &domain.User{
		ID:                cu.ID,
		Name:              cu.Name,
		Email:             cu.Email,
		PasswordHash:      cu.PasswordHash,
		RememberToken:     cu.RememberToken,
		ConfirmationToken: cu.ConfirmationToken,
		Role:              domain.Role(cu.Role),
		Translations:      cu.Translations,
		CreatedAt:         cu.CreatedAt,
		UpdatedAt:         cu.UpdatedAt,
	}
}
