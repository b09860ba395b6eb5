package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/userhive/account-api/internal/core/auth"
	"github.com/userhive/account-api/internal/core/authz"
	"github.com/userhive/account-api/internal/core/domain"
	"github.com/userhive/account-api/internal/core/ports"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)

// UserService implements the user aggregate operations. Every mutation is
// gated by the enforcer before it touches the repository, and every applied
// mutation records an audit version attributed to the acting visitor.
type UserService struct {
	repo     ports.UserRepository
	versions ports.VersionRepository
	recorder ports.VersionRecorder
	enforcer *authz.Enforcer
	log      zerolog.Logger
}

func NewUserService(
	repo ports.UserRepository,
	versions ports.VersionRepository,
	recorder ports.VersionRecorder,
	enforcer *authz.Enforcer,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		repo:     repo,
		versions: versions,
		recorder: recorder,
		enforcer: enforcer,
		log:      log,
	}
}

// Create registers a new account. Anonymous callers may self-register; the
// requested role must be within the actor's assignable set.
func (s *UserService) Create(ctx context.Context, actor *auth.Visitor, input ports.CreateUserInput) (*domain.User, error) {
	if err := s.enforcer.AuthorizeFields(actor, nil, input.Fields, authz.ActionCreate); err != nil {
		return nil, err
	}

	role := domain.DefaultRole()
	if input.Role != nil {
		if err := s.enforcer.AuthorizeRoleValue(actor, nil, *input.Role, authz.ActionCreate); err != nil {
			return nil, err
		}
		role = *input.Role
	}

	if input.Name == "" || !namePattern.MatchString(input.Name) {
		return nil, fmt.Errorf("%w: name", domain.ErrInvalidUser)
	}
	if input.Email == "" {
		return nil, fmt.Errorf("%w: email", domain.ErrInvalidUser)
	}
	if input.Password == "" {
		return nil, fmt.Errorf("%w: password", domain.ErrInvalidUser)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, tr := range input.Translations {
		if err := validateTranslation(tr); err != nil {
			return nil, err
		}
		user.SetTranslation(domain.Translation{
			Locale:     tr.Locale,
			FirstName:  tr.FirstName,
			MiddleName: tr.MiddleName,
			LastName:   tr.LastName,
		})
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.record(created, domain.VersionCreate, actor)
	s.log.Info().Int64("user_id", created.ID).Str("name", created.Name).Msg("user created")
	return created, nil
}

// Update modifies a user located by lookup, or the actor's own record when
// no lookup is given. The whole submission is rejected if any single field
// is outside the actor's permitted set.
func (s *UserService) Update(ctx context.Context, actor *auth.Visitor, lookup ports.UserLookup, input ports.UpdateUserInput) (*domain.User, error) {
	target, err := s.findOrCurrent(ctx, actor, lookup)
	if err != nil {
		return nil, err
	}

	if err := s.enforcer.AuthorizeFields(actor, target, input.Fields, authz.ActionUpdate); err != nil {
		return nil, err
	}
	if input.Role != nil {
		if err := s.enforcer.AuthorizeRoleValue(actor, target, *input.Role, authz.ActionUpdate); err != nil {
			return nil, err
		}
	}

	if input.Name != nil {
		if !namePattern.MatchString(*input.Name) {
			return nil, fmt.Errorf("%w: name", domain.ErrInvalidUser)
		}
		target.Name = *input.Name
	}
	if input.Email != nil {
		if *input.Email == "" {
			return nil, fmt.Errorf("%w: email", domain.ErrInvalidUser)
		}
		target.Email = *input.Email
	}
	if input.Role != nil {
		target.Role = *input.Role
	}
	if input.Password != nil {
		if *input.Password == "" {
			return nil, fmt.Errorf("%w: password", domain.ErrInvalidUser)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		target.PasswordHash = string(hash)
	}
	for _, tr := range input.Translations {
		if err := validateTranslation(tr); err != nil {
			return nil, err
		}
		target.SetTranslation(domain.Translation{
			Locale:     tr.Locale,
			FirstName:  tr.FirstName,
			MiddleName: tr.MiddleName,
			LastName:   tr.LastName,
		})
	}
	target.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, target)
	if err != nil {
		return nil, err
	}

	s.record(updated, domain.VersionUpdate, actor)
	s.log.Info().Int64("user_id", updated.ID).Int64("actor_id", actor.ID()).Msg("user updated")
	return updated, nil
}

// Destroy removes a user located by lookup. Unlike Get and Update there is
// no fallback to the actor's own record; an empty lookup is a not-found.
func (s *UserService) Destroy(ctx context.Context, actor *auth.Visitor, lookup ports.UserLookup) error {
	target, err := s.find(ctx, lookup)
	if err != nil {
		return err
	}

	if err := s.enforcer.AuthorizeAction(actor, target, authz.ActionDestroy); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, target.ID); err != nil {
		return err
	}

	s.record(target, domain.VersionDestroy, actor)
	s.log.Info().Int64("user_id", target.ID).Int64("actor_id", actor.ID()).Msg("user destroyed")
	return nil
}

// Get returns the user located by lookup, or the actor's own record when no
// lookup is given.
func (s *UserService) Get(ctx context.Context, actor *auth.Visitor, lookup ports.UserLookup) (*domain.User, error) {
	target, err := s.findOrCurrent(ctx, actor, lookup)
	if err != nil {
		return nil, err
	}
	if err := s.enforcer.AuthorizeAction(actor, target, authz.ActionAccess); err != nil {
		return nil, err
	}
	return target, nil
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, actor *auth.Visitor, params ports.ListParams) ([]domain.User, int64, error) {
	if err := s.enforcer.AuthorizeAction(actor, nil, authz.ActionAccess); err != nil {
		return nil, 0, err
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 {
		params.PerPage = defaultPerPage
	}
	if params.PerPage > maxPerPage {
		params.PerPage = maxPerPage
	}
	return s.repo.List(ctx, params)
}

// Versions returns the audit history of the user located by lookup, or the
// actor's own history when no lookup is given.
func (s *UserService) Versions(ctx context.Context, actor *auth.Visitor, lookup ports.UserLookup) ([]domain.Version, error) {
	target, err := s.findOrCurrent(ctx, actor, lookup)
	if err != nil {
		return nil, err
	}
	if err := s.enforcer.AuthorizeFields(actor, target, []authz.Field{authz.FieldVersions}, authz.ActionAccess); err != nil {
		return nil, err
	}
	return s.versions.ListByItem(ctx, target.ID)
}

// find resolves a lookup to a user, honoring the id > name > email
// precedence. An empty lookup is a not-found.
func (s *UserService) find(ctx context.Context, lookup ports.UserLookup) (*domain.User, error) {
	switch {
	case lookup.ID != 0:
		return s.repo.FindByID(ctx, lookup.ID)
	case lookup.Name != "":
		return s.repo.FindByName(ctx, lookup.Name)
	case lookup.Email != "":
		return s.repo.FindByEmail(ctx, lookup.Email)
	default:
		return nil, domain.ErrUserNotFound
	}
}

func (s *UserService) findOrCurrent(ctx context.Context, actor *auth.Visitor, lookup ports.UserLookup) (*domain.User, error) {
	if lookup.Empty() {
		return actor.Resolve(ctx)
	}
	return s.find(ctx, lookup)
}

func (s *UserService) record(user *domain.User, event domain.VersionEvent, actor *auth.Visitor) {
	s.recorder.Record(domain.Version{
		ItemID:    user.ID,
		Event:     event,
		Object:    user.Snapshot(),
		Whodunnit: actor.ID(),
		CreatedAt: time.Now().UTC(),
	})
}

func validateTranslation(tr ports.TranslationInput) error {
	if tr.Locale == "" || tr.FirstName == "" || tr.MiddleName == "" || tr.LastName == "" {
		return fmt.Errorf("%w: translation requires locale and all name parts", domain.ErrInvalidUser)
	}
	return nil
}
