package authz

import (
	"github.com/userhive/account-api/internal/core/auth"
	"github.com/userhive/account-api/internal/core/domain"
)

// Policy is the pure decision core: given an actor, an action or field, and
// an optional target record, it answers allow or deny. It holds no mutable
// state and performs no I/O; the actor is threaded through every call, never
// read from ambient context.
type Policy struct {
	// anonymousID identifies the sentinel record, which no actor may update
	// or destroy regardless of privilege.
	anonymousID int64
}

func NewPolicy(anonymousID int64) *Policy {
	return &Policy{anonymousID: anonymousID}
}

// CanPerform decides whether actor may perform action on target. A nil
// target stands for a record that does not exist yet (create) or a
// collection-level query (access).
func (p *Policy) CanPerform(actor *auth.Visitor, action Action, target *domain.User) bool {
	switch action {
	case ActionAccess:
		return true
	case ActionCreate:
		// Self-registration: anonymous may create. An authenticated plain
		// user may not create further accounts.
		return actor.IsAnonymous() || actor.IsModerator() || actor.IsAdmin()
	case ActionUpdate:
		if p.isAnonymousRecord(target) {
			return false
		}
		return actor.IsAdmin() || actor.IsModerator() || p.owns(actor, target)
	case ActionDestroy:
		if p.isAnonymousRecord(target) {
			return false
		}
		if actor.IsAdmin() || p.owns(actor, target) {
			return true
		}
		// Moderators may remove only strictly lower-ranked accounts.
		return actor.IsModerator() && target != nil && target.Role < actor.Role()
	default:
		return false
	}
}

// PermittedFields returns, in declared order, the fields actor may touch for
// the given action on target.
func (p *Policy) PermittedFields(actor *auth.Visitor, action Action, target *domain.User) []Field {
	permitted := make([]Field, 0, len(declaredFields))
	for _, f := range declaredFields {
		if p.fieldAllowed(actor, action, f, target) {
			permitted = append(permitted, f)
		}
	}
	return permitted
}

func (p *Policy) fieldAllowed(actor *auth.Visitor, action Action, field Field, target *domain.User) bool {
	switch action {
	case ActionAccess:
		switch field {
		case FieldName, FieldEmail, FieldRole, FieldTranslations, FieldVersions:
			return true
		case FieldRememberToken:
			return p.owns(actor, target)
		}
	case ActionCreate:
		switch field {
		case FieldName, FieldEmail, FieldPassword, FieldConfirmationToken, FieldTranslations:
			return true
		case FieldRole:
			return len(p.AssignableRoles(actor, target)) > 0
		}
	case ActionUpdate:
		switch field {
		case FieldName, FieldEmail, FieldTranslations:
			return true
		case FieldPassword:
			return p.owns(actor, target)
		case FieldRole:
			return len(p.AssignableRoles(actor, target)) > 0
		}
	}
	return false
}

// AssignableRoles returns, in ascending rank order, the roles actor may
// grant on target. An actor grants only at or below its own rank, and may
// not touch the role of a target that outranks it, not even downward. A nil
// target (fresh record) bounds the list by actor rank alone.
func (p *Policy) AssignableRoles(actor *auth.Visitor, target *domain.User) []domain.Role {
	max := actor.Role()
	if target != nil && target.Role > max {
		return nil
	}
	roles := make([]domain.Role, 0, int(max)+1)
	for _, r := range domain.AllRoles() {
		if r <= max {
			roles = append(roles, r)
		}
	}
	return roles
}

// owns reports whether target is the actor's own record. The anonymous
// identity never owns anything.
func (p *Policy) owns(actor *auth.Visitor, target *domain.User) bool {
	return target != nil && actor.ID() == target.ID && !actor.IsAnonymous()
}

func (p *Policy) isAnonymousRecord(target *domain.User) bool {
	return target != nil && target.ID == p.anonymousID
}
