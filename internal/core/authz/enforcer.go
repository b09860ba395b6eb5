package authz

import (
	"errors"
	"fmt"

	"github.com/userhive/account-api/internal/core/auth"
	"github.com/userhive/account-api/internal/core/domain"
)

// ErrNotAuthorized is the sentinel every policy denial matches via errors.Is.
var ErrNotAuthorized = errors.New("authz: not authorized")

// NotAuthorizedError carries the denied action and, for field-level denials,
// the first offending field. The detail is for server-side logging; callers
// get a generic message.
type NotAuthorizedError struct {
	Action Action
	Field  Field
}

func (e *NotAuthorizedError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("authz: not authorized to %s field %q", e.Action, e.Field)
	}
	return fmt.Sprintf("authz: not authorized to %s", e.Action)
}

func (e *NotAuthorizedError) Is(target error) bool { return target == ErrNotAuthorized }

// Enforcer converts Policy decisions into failures. It is stateless; the
// actor and target are threaded through every call.
type Enforcer struct {
	policy *Policy
}

func NewEnforcer(policy *Policy) *Enforcer {
	return &Enforcer{policy: policy}
}

// AuthorizeAction fails with NotAuthorizedError unless actor may perform
// action on target.
func (e *Enforcer) AuthorizeAction(actor *auth.Visitor, target *domain.User, action Action) error {
	if !e.policy.CanPerform(actor, action, target) {
		return &NotAuthorizedError{Action: action}
	}
	return nil
}

// AuthorizeFields checks the action first, then rejects the whole submission
// the moment any field falls outside the permitted set. The failure names
// the first offending field in the submitted order; nothing is partially
// applied.
func (e *Enforcer) AuthorizeFields(actor *auth.Visitor, target *domain.User, fields []Field, action Action) error {
	if err := e.AuthorizeAction(actor, target, action); err != nil {
		return err
	}

	permitted := make(map[Field]struct{})
	for _, f := range e.policy.PermittedFields(actor, action, target) {
		permitted[f] = struct{}{}
	}
	for _, f := range fields {
		if _, ok := permitted[f]; !ok {
			return &NotAuthorizedError{Action: action, Field: f}
		}
	}
	return nil
}

// AuthorizeRoleValue fails unless actor may assign role on target. Having
// the role field permitted is not enough; the submitted value itself must be
// within the actor's assignable set.
func (e *Enforcer) AuthorizeRoleValue(actor *auth.Visitor, target *domain.User, role domain.Role, action Action) error {
	for _, r := range e.policy.AssignableRoles(actor, target) {
		if r == role {
			return nil
		}
	}
	return &NotAuthorizedError{Action: action, Field: FieldRole}
}
