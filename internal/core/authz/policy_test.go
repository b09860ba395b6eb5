package authz

import (
	"reflect"
	"testing"

	"github.com/userhive/account-api/internal/core/auth"
	"github.com/userhive/account-api/internal/core/domain"
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

func anonymous() *auth.Visitor { return testIdentity.Anonymous() }

func visitor(id int64, role domain.Role) *auth.Visitor {
	return testIdentity.FromClaims(id, role)
}

func record(id int64, role domain.Role) *domain.User {
	return &domain.User{ID: id, Role: role}
}

func TestPolicy_CanPerform_Create(t *testing.T) {
	policy := NewPolicy(testAnonymousID)

	cases := []struct {
		label string
		actor *auth.Visitor
		want  bool
	}{
		{"anonymous self-registers", anonymous(), true},
		{"plain user may not create", visitor(10, domain.RoleUser), false},
		{"moderator creates", visitor(20, domain.RoleModerator), true},
		{"admin creates", visitor(30, domain.RoleAdmin), true},
	}
	for _, tc := range cases {
		if got := policy.CanPerform(tc.actor, ActionCreate, nil); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.label, got, tc.want)
		}
	}
}

func TestPolicy_CanPerform_Update(t *testing.T) {
	policy := NewPolicy(testAnonymousID)
	target := record(10, domain.RoleUser)

	cases := []struct {
		label  string
		actor  *auth.Visitor
		target *domain.User
		want   bool
	}{
		{"owner updates self", visitor(10, domain.RoleUser), target, true},
		{"stranger may not update", visitor(11, domain.RoleUser), target, false},
		{"moderator updates anyone", visitor(20, domain.RoleModerator), record(30, domain.RoleAdmin), true},
		{"admin updates anyone", visitor(30, domain.RoleAdmin), target, true},
		{"anonymous may not update", anonymous(), target, false},
		{"anonymous record is immutable even for admin", visitor(30, domain.RoleAdmin), record(testAnonymousID, domain.RoleUser), false},
	}
	for _, tc := range cases {
		if got := policy.CanPerform(tc.actor, ActionUpdate, tc.target); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.label, got, tc.want)
		}
	}
}

func TestPolicy_CanPerform_Destroy(t *testing.T) {
	policy := NewPolicy(testAnonymousID)

	cases := []struct {
		label  string
		actor  *auth.Visitor
		target *domain.User
		want   bool
	}{
		{"owner destroys self", visitor(10, domain.RoleUser), record(10, domain.RoleUser), true},
		{"stranger may not destroy", visitor(11, domain.RoleUser), record(10, domain.RoleUser), false},
		{"moderator destroys lower rank", visitor(20, domain.RoleModerator), record(10, domain.RoleUser), true},
		{"moderator may not destroy peer", visitor(20, domain.RoleModerator), record(21, domain.RoleModerator), false},
		{"moderator destroys self", visitor(20, domain.RoleModerator), record(20, domain.RoleModerator), true},
		{"moderator may not destroy admin", visitor(20, domain.RoleModerator), record(30, domain.RoleAdmin), false},
		{"admin destroys anyone", visitor(30, domain.RoleAdmin), record(21, domain.RoleModerator), true},
		{"anonymous record survives admin", visitor(30, domain.RoleAdmin), record(testAnonymousID, domain.RoleUser), false},
		{"anonymous may not destroy", anonymous(), record(10, domain.RoleUser), false},
	}
	for _, tc := range cases {
		if got := policy.CanPerform(tc.actor, ActionDestroy, tc.target); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.label, got, tc.want)
		}
	}
}

func TestPolicy_CanPerform_Access(t *testing.T) {
	policy := NewPolicy(testAnonymousID)

	for _, actor := range []*auth.Visitor{anonymous(), visitor(10, domain.RoleUser), visitor(30, domain.RoleAdmin)} {
		if !policy.CanPerform(actor, ActionAccess, record(10, domain.RoleUser)) {
			t.Errorf("access must be open to role %s", actor.Role())
		}
	}
}

func TestPolicy_AssignableRoles(t *testing.T) {
	policy := NewPolicy(testAnonymousID)

	cases := []struct {
		label  string
		actor  *auth.Visitor
		target *domain.User
		want   []domain.Role
	}{
		{"anonymous on fresh record", anonymous(), nil, []domain.Role{domain.RoleUser}},
		{"user on self", visitor(10, domain.RoleUser), record(10, domain.RoleUser), []domain.Role{domain.RoleUser}},
		{"moderator on fresh record", visitor(20, domain.RoleModerator), nil, []domain.Role{domain.RoleUser, domain.RoleModerator}},
		{"admin on fresh record", visitor(30, domain.RoleAdmin), nil, []domain.Role{domain.RoleUser, domain.RoleModerator, domain.RoleAdmin}},
		{"moderator on admin target", visitor(20, domain.RoleModerator), record(30, domain.RoleAdmin), nil},
		{"user on moderator target", visitor(10, domain.RoleUser), record(20, domain.RoleModerator), nil},
		{"admin on moderator target", visitor(30, domain.RoleAdmin), record(21, domain.RoleModerator), []domain.Role{domain.RoleUser, domain.RoleModerator, domain.RoleAdmin}},
	}
	for _, tc := range cases {
		got := policy.AssignableRoles(tc.actor, tc.target)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.label, got, tc.want)
		}
	}
}

func TestPolicy_PermittedFields_Access(t *testing.T) {
	policy := NewPolicy(testAnonymousID)
	target := record(10, domain.RoleUser)

	public := []Field{FieldName, FieldEmail, FieldRole, FieldTranslations, FieldVersions}

	if got := policy.PermittedFields(visitor(11, domain.RoleUser), ActionAccess, target); !reflect.DeepEqual(got, public) {
		t.Errorf("stranger access fields: got %v, want %v", got, public)
	}
	// The remember token is visible only to the record's owner, admins
	// included among the strangers.
	if got := policy.PermittedFields(visitor(30, domain.RoleAdmin), ActionAccess, target); !reflect.DeepEqual(got, public) {
		t.Errorf("admin access fields: got %v, want %v", got, public)
	}

	owner := []Field{FieldName, FieldEmail, FieldRole, FieldRememberToken, FieldTranslations, FieldVersions}
	if got := policy.PermittedFields(visitor(10, domain.RoleUser), ActionAccess, target); !reflect.DeepEqual(got, owner) {
		t.Errorf("owner access fields: got %v, want %v", got, owner)
	}
}

func TestPolicy_PermittedFields_Create(t *testing.T) {
	policy := NewPolicy(testAnonymousID)

	// Anonymous self-registration: role is grantable because user rank is
	// always assignable, so the role field stays in the permitted set.
	want := []Field{FieldName, FieldEmail, FieldRole, FieldPassword, FieldConfirmationToken, FieldTranslations}
	if got := policy.PermittedFields(anonymous(), ActionCreate, nil); !reflect.DeepEqual(got, want) {
		t.Errorf("anonymous create fields: got %v, want %v", got, want)
	}
	if got := policy.PermittedFields(visitor(30, domain.RoleAdmin), ActionCreate, nil); !reflect.DeepEqual(got, want) {
		t.Errorf("admin create fields: got %v, want %v", got, want)
	}
}

func TestPolicy_PermittedFields_Update(t *testing.T) {
	policy := NewPolicy(testAnonymousID)
	target := record(10, domain.RoleUser)

	owner := []Field{FieldName, FieldEmail, FieldRole, FieldPassword, FieldTranslations}
	if got := policy.PermittedFields(visitor(10, domain.RoleUser), ActionUpdate, target); !reflect.DeepEqual(got, owner) {
		t.Errorf("owner update fields: got %v, want %v", got, owner)
	}

	// A moderator editing someone else's record may not touch the password.
	moderator := []Field{FieldName, FieldEmail, FieldRole, FieldTranslations}
	if got := policy.PermittedFields(visitor(20, domain.RoleModerator), ActionUpdate, target); !reflect.DeepEqual(got, moderator) {
		t.Errorf("moderator update fields: got %v, want %v", got, moderator)
	}

	// Against a target that outranks the actor the role field drops out.
	lesser := []Field{FieldName, FieldEmail, FieldTranslations}
	if got := policy.PermittedFields(visitor(20, domain.RoleModerator), ActionUpdate, record(30, domain.RoleAdmin)); !reflect.DeepEqual(got, lesser) {
		t.Errorf("moderator on admin update fields: got %v, want %v", got, lesser)
	}
}
