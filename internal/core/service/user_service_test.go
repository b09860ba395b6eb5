package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/userhive/account-api/internal/core/auth"
	"github.com/userhive/account-api/internal/core/authz"
	"github.com/userhive/account-api/internal/core/domain"
	"github.com/userhive/account-api/internal/core/ports"
)

const testAnonymousID = 1

var testIdentity = auth.NewIdentity(
	auth.NewTokenCodec(
		auth.TokenConfig{Secret: "access-secret"},
		auth.TokenConfig{Secret: "refresh-secret"},
	),
	nil,
	auth.AnonymousConfig{ID: testAnonymousID, Name: "anonymous", Role: domain.RoleUser},
)

func anonymousVisitor() *auth.Visitor { return testIdentity.Anonymous() }

func visitorWith(id int64, role domain.Role) *auth.Visitor {
	return testIdentity.FromClaims(id, role)
}

// boundVisitor can Resolve itself against the stub repository, which the
// empty-lookup fallback paths require.
func boundVisitor(repo *stubUserRepo, id int64, role domain.Role) *auth.Visitor {
	idn := auth.NewIdentity(
		auth.NewTokenCodec(
			auth.TokenConfig{Secret: "access-secret"},
			auth.TokenConfig{Secret: "refresh-secret"},
		),
		repo,
		auth.AnonymousConfig{ID: testAnonymousID, Name: "anonymous", Role: domain.RoleUser},
	)
	return idn.FromClaims(id, role)
}

type stubUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
}

func newStubUserRepo(seed ...*domain.User) *stubUserRepo {
	repo := &stubUserRepo{users: make(map[int64]*domain.User), nextID: 100}
	for _, u := range seed {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByName(_ context.Context, name string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Name == name {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, params ports.ListParams) ([]domain.User, int64, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Name == user.Name || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	clone := *user
	clone.ID = r.nextID
	r.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type stubVersionRepo struct {
	versions []domain.Version
}

func (r *stubVersionRepo) Insert(_ context.Context, version *domain.Version) error {
	r.versions = append(r.versions, *version)
	return nil
}

func (r *stubVersionRepo) ListByItem(_ context.Context, itemID int64) ([]domain.Version, error) {
	var out []domain.Version
	for _, v := range r.versions {
		if v.ItemID == itemID {
			out = append(out, v)
		}
	}
	return out, nil
}

// syncRecorder persists versions inline so tests can assert on them.
type syncRecorder struct {
	repo *stubVersionRepo
}

func (r *syncRecorder) Record(version domain.Version) {
	_ = r.repo.Insert(context.Background(), &version)
}

func newTestUserService(seed ...*domain.User) (*UserService, *stubUserRepo, *stubVersionRepo) {
	repo := newStubUserRepo(seed...)
	versions := &stubVersionRepo{}
	enforcer := authz.NewEnforcer(authz.NewPolicy(testAnonymousID))
	svc := NewUserService(repo, versions, &syncRecorder{repo: versions}, enforcer, zerolog.Nop())
	return svc, repo, versions
}

func seedUser(id int64, name string, role domain.Role) *domain.User {
	return &domain.User{ID: id, Name: name, Email: name + "@example.com", Role: role}
}

func TestUserService_Create_SelfRegistration(t *testing.T) {
	svc, _, versions := newTestUserService()

	created, err := svc.Create(context.Background(), anonymousVisitor(), ports.CreateUserInput{
		Name:     "erin",
		Email:    "erin@example.com",
		Password: "hunter2hunter2",
		Fields:   []authz.Field{authz.FieldName, authz.FieldEmail, authz.FieldPassword},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.Role != domain.RoleUser {
		t.Fatalf("unexpected created user: %+v", created)
	}
	if bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("hunter2hunter2")) != nil {
		t.Fatalf("stored hash does not verify the password")
	}

	if len(versions.versions) != 1 {
		t.Fatalf("expected 1 version, got %d", len(versions.versions))
	}
	v := versions.versions[0]
	if v.Event != domain.VersionCreate || v.ItemID != created.ID || v.Whodunnit != testAnonymousID {
		t.Fatalf("unexpected version: %+v", v)
	}
}

func TestUserService_Create_AnonymousCannotClaimAdmin(t *testing.T) {
	svc, _, _ := newTestUserService()

	role := domain.RoleAdmin
	_, err := svc.Create(context.Background(), anonymousVisitor(), ports.CreateUserInput{
		Name:     "mallory",
		Email:    "mallory@example.com",
		Password: "hunter2hunter2",
		Role:     &role,
		Fields:   []authz.Field{authz.FieldName, authz.FieldEmail, authz.FieldPassword, authz.FieldRole},
	})
	if !errors.Is(err, authz.ErrNotAuthorized) {
		t.Fatalf("expected denial, got %v", err)
	}
}

func TestUserService_Create_PlainUserDenied(t *testing.T) {
	svc, _, _ := newTestUserService(seedUser(10, "alice", domain.RoleUser))

	_, err := svc.Create(context.Background(), visitorWith(10, domain.RoleUser), ports.CreateUserInput{
		Name:     "second",
		Email:    "second@example.com",
		Password: "hunter2hunter2",
		Fields:   []authz.Field{authz.FieldName, authz.FieldEmail, authz.FieldPassword},
	})
	if !errors.Is(err, authz.ErrNotAuthorized) {
		t.Fatalf("expected denial, got %v", err)
	}
}

func TestUserService_Create_AdminAssignsModerator(t *testing.T) {
	svc, _, _ := newTestUserService(seedUser(30, "root", domain.RoleAdmin))

	role := domain.RoleModerator
	created, err := svc.Create(context.Background(), visitorWith(30, domain.RoleAdmin), ports.CreateUserInput{
		Name:     "carol",
		Email:    "carol@example.com",
		Password: "hunter2hunter2",
		Role:     &role,
		Fields:   []authz.Field{authz.FieldName, authz.FieldEmail, authz.FieldPassword, authz.FieldRole},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Role != domain.RoleModerator {
		t.Fatalf("expected moderator, got %s", created.Role)
	}
}

func TestUserService_Create_Validation(t *testing.T) {
	svc, _, _ := newTestUserService()

	cases := []ports.CreateUserInput{
		{Name: "bad name!", Email: "x@example.com", Password: "hunter2hunter2"},
		{Name: "", Email: "x@example.com", Password: "hunter2hunter2"},
		{Name: "ok_name", Email: "", Password: "hunter2hunter2"},
		{Name: "ok_name", Email: "x@example.com", Password: ""},
	}
	for i, input := range cases {
		input.Fields = []authz.Field{authz.FieldName, authz.FieldEmail, authz.FieldPassword}
		if _, err := svc.Create(context.Background(), anonymousVisitor(), input); !errors.Is(err, domain.ErrInvalidUser) {
			t.Errorf("case %d: expected ErrInvalidUser, got %v", i, err)
		}
	}
}

func TestUserService_Create_DuplicateName(t *testing.T) {
	svc, _, _ := newTestUserService(seedUser(10, "alice", domain.RoleUser))

	_, err := svc.Create(context.Background(), anonymousVisitor(), ports.CreateUserInput{
		Name:     "alice",
		Email:    "other@example.com",
		Password: "hunter2hunter2",
		Fields:   []authz.Field{authz.FieldName, authz.FieldEmail, authz.FieldPassword},
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserService_Update_OwnerChangesPassword(t *testing.T) {
	svc, repo, versions := newTestUserService(seedUser(10, "alice", domain.RoleUser))

	password := "correct horse battery"
	updated, err := svc.Update(context.Background(), visitorWith(10, domain.RoleUser),
		ports.UserLookup{ID: 10},
		ports.UpdateUserInput{
			Password: &password,
			Fields:   []authz.Field{authz.FieldPassword},
		})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(password)) != nil {
		t.Fatalf("new password does not verify")
	}
	if stored := repo.users[10]; stored.PasswordHash != updated.PasswordHash {
		t.Fatalf("repository not updated")
	}
	if len(versions.versions) != 1 || versions.versions[0].Event != domain.VersionUpdate {
		t.Fatalf("expected one update version, got %+v", versions.versions)
	}
}

func TestUserService_Update_StrangerPasswordDenied(t *testing.T) {
	svc, _, _ := newTestUserService(
		seedUser(10, "alice", domain.RoleUser),
		seedUser(20, "mod", domain.RoleModerator),
	)

	password := "stolen"
	_, err := svc.Update(context.Background(), visitorWith(20, domain.RoleModerator),
		ports.UserLookup{ID: 10},
		ports.UpdateUserInput{
			Password: &password,
			Fields:   []authz.Field{authz.FieldPassword},
		})
	var denial *authz.NotAuthorizedError
	if !errors.As(err, &denial) || denial.Field != authz.FieldPassword {
		t.Fatalf("expected password field denial, got %v", err)
	}
}

func TestUserService_Update_SelfPromotionDenied(t *testing.T) {
	svc, _, _ := newTestUserService(seedUser(10, "alice", domain.RoleUser))

	role := domain.RoleAdmin
	_, err := svc.Update(context.Background(), visitorWith(10, domain.RoleUser),
		ports.UserLookup{ID: 10},
		ports.UpdateUserInput{
			Role:   &role,
			Fields: []authz.Field{authz.FieldRole},
		})
	if !errors.Is(err, authz.ErrNotAuthorized) {
		t.Fatalf("expected denial, got %v", err)
	}
}

func TestUserService_Update_AnonymousRecordImmutable(t *testing.T) {
	svc, _, _ := newTestUserService(
		seedUser(testAnonymousID, "anonymous", domain.RoleUser),
		seedUser(30, "root", domain.RoleAdmin),
	)

	name := "renamed"
	_, err := svc.Update(context.Background(), visitorWith(30, domain.RoleAdmin),
		ports.UserLookup{ID: testAnonymousID},
		ports.UpdateUserInput{
			Name:   &name,
			Fields: []authz.Field{authz.FieldName},
		})
	if !errors.Is(err, authz.ErrNotAuthorized) {
		t.Fatalf("expected denial, got %v", err)
	}
}

func TestUserService_Update_Translations(t *testing.T) {
	svc, repo, _ := newTestUserService(seedUser(10, "alice", domain.RoleUser))
	actor := boundVisitor(repo, 10, domain.RoleUser)

	updated, err := svc.Update(context.Background(), actor,
		ports.UserLookup{},
		ports.UpdateUserInput{
			Translations: []ports.TranslationInput{
				{Locale: "en", FirstName: "Alice", MiddleName: "B", LastName: "Carroll"},
			},
			Fields: []authz.Field{authz.FieldTranslations},
		})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	tr, ok := updated.TranslationFor("en")
	if !ok || tr.LastName != "Carroll" {
		t.Fatalf("translation not applied: %+v", updated.Translations)
	}

	// Incomplete translations are rejected.
	_, err = svc.Update(context.Background(), actor,
		ports.UserLookup{},
		ports.UpdateUserInput{
			Translations: []ports.TranslationInput{{Locale: "es", FirstName: "Alicia"}},
			Fields:       []authz.Field{authz.FieldTranslations},
		})
	if !errors.Is(err, domain.ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}
}

func TestUserService_Destroy(t *testing.T) {
	cases := []struct {
		label    string
		actor    *auth.Visitor
		targetID int64
		wantErr  error
	}{
		{"owner destroys self", visitorWith(10, domain.RoleUser), 10, nil},
		{"stranger denied", visitorWith(11, domain.RoleUser), 10, authz.ErrNotAuthorized},
		{"moderator destroys lower rank", visitorWith(20, domain.RoleModerator), 10, nil},
		{"moderator denied on peer", visitorWith(20, domain.RoleModerator), 21, authz.ErrNotAuthorized},
		{"moderator denied on admin", visitorWith(20, domain.RoleModerator), 30, authz.ErrNotAuthorized},
		{"admin destroys moderator", visitorWith(30, domain.RoleAdmin), 21, nil},
		{"anonymous record survives admin", visitorWith(30, domain.RoleAdmin), testAnonymousID, authz.ErrNotAuthorized},
	}
	for _, tc := range cases {
		svc, repo, versions := newTestUserService(
			seedUser(testAnonymousID, "anonymous", domain.RoleUser),
			seedUser(10, "alice", domain.RoleUser),
			seedUser(11, "bob", domain.RoleUser),
			seedUser(20, "mod", domain.RoleModerator),
			seedUser(21, "mod2", domain.RoleModerator),
			seedUser(30, "root", domain.RoleAdmin),
		)

		err := svc.Destroy(context.Background(), tc.actor, ports.UserLookup{ID: tc.targetID})
		if tc.wantErr == nil {
			if err != nil {
				t.Errorf("%s: %v", tc.label, err)
				continue
			}
			if _, ok := repo.users[tc.targetID]; ok {
				t.Errorf("%s: record still present", tc.label)
			}
			if len(versions.versions) != 1 || versions.versions[0].Event != domain.VersionDestroy {
				t.Errorf("%s: expected one destroy version, got %+v", tc.label, versions.versions)
			}
		} else {
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("%s: expected %v, got %v", tc.label, tc.wantErr, err)
			}
			if _, ok := repo.users[tc.targetID]; !ok {
				t.Errorf("%s: record removed despite denial", tc.label)
			}
		}
	}
}

func TestUserService_Destroy_EmptyLookup(t *testing.T) {
	svc, _, _ := newTestUserService(seedUser(10, "alice", domain.RoleUser))

	// No fallback to the actor's own record on destroy.
	err := svc.Destroy(context.Background(), visitorWith(10, domain.RoleUser), ports.UserLookup{})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_Get_LookupPrecedence(t *testing.T) {
	svc, _, _ := newTestUserService(
		seedUser(10, "alice", domain.RoleUser),
		seedUser(11, "bob", domain.RoleUser),
	)
	actor := visitorWith(10, domain.RoleUser)

	// Id beats name when both are given.
	got, err := svc.Get(context.Background(), actor, ports.UserLookup{ID: 11, Name: "alice"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != 11 {
		t.Fatalf("expected id lookup to win, got %d", got.ID)
	}

	got, err = svc.Get(context.Background(), actor, ports.UserLookup{Name: "bob"})
	if err != nil || got.ID != 11 {
		t.Fatalf("lookup by name: %v, %+v", err, got)
	}
}

func TestUserService_Get_FallsBackToCurrent(t *testing.T) {
	svc, repo, _ := newTestUserService(seedUser(10, "alice", domain.RoleUser))

	got, err := svc.Get(context.Background(), boundVisitor(repo, 10, domain.RoleUser), ports.UserLookup{})
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if got.ID != 10 || got.Name != "alice" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestUserService_Get_NotFound(t *testing.T) {
	svc, _, _ := newTestUserService()

	_, err := svc.Get(context.Background(), visitorWith(10, domain.RoleUser), ports.UserLookup{Name: "ghost"})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_Versions(t *testing.T) {
	svc, _, versions := newTestUserService(seedUser(10, "alice", domain.RoleUser))
	actor := visitorWith(10, domain.RoleUser)

	name := "alice2"
	if _, err := svc.Update(context.Background(), actor, ports.UserLookup{ID: 10},
		ports.UpdateUserInput{Name: &name, Fields: []authz.Field{authz.FieldName}}); err != nil {
		t.Fatalf("update: %v", err)
	}

	history, err := svc.Versions(context.Background(), actor, ports.UserLookup{ID: 10})
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if len(history) != 1 || len(versions.versions) != 1 {
		t.Fatalf("expected one version, got %d", len(history))
	}
	if history[0].Object.Name != "alice2" {
		t.Fatalf("snapshot name: %q", history[0].Object.Name)
	}
}

func TestUserService_List_ClampsParams(t *testing.T) {
	svc, _, _ := newTestUserService(seedUser(10, "alice", domain.RoleUser))

	users, total, err := svc.List(context.Background(), anonymousVisitor(), ports.ListParams{Page: 0, PerPage: 1000})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(users) != 1 {
		t.Fatalf("expected single user, got %d/%d", len(users), total)
	}
}
