package authz

// Action is an operation on the user aggregate subject to policy.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDestroy Action = "destroy"
	ActionAccess  Action = "access"
)

// Field names an attribute of the user aggregate for per-field permission
// decisions. The declared order below is the canonical iteration order used
// everywhere fields are listed or diffed.
type Field string

const (
	FieldName              Field = "name"
	FieldEmail             Field = "email"
	FieldRole              Field = "role"
	FieldPassword          Field = "password"
	FieldRememberToken     Field = "remember_token"
	FieldConfirmationToken Field = "confirmation_token"
	FieldTranslations      Field = "translations"
	FieldVersions          Field = "versions"
)

// declaredFields is the canonical field order.
var declaredFields = []Field{
	FieldName,
	FieldEmail,
	FieldRole,
	FieldPassword,
	FieldRememberToken,
	FieldConfirmationToken,
	FieldTranslations,
	FieldVersions,
}
