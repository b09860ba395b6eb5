package handler

import (
	"time"

	"github.com/userhive/account-api/internal/core/auth"
	"github.com/userhive/account-api/internal/core/authz"
	"github.com/userhive/account-api/internal/core/domain"
	"github.com/userhive/account-api/internal/core/ports"
)

// --- Request types ---

type translationRequest struct {
	Locale     string `json:"locale"      validate:"required"`
	FirstName  string `json:"first_name"  validate:"required"`
	MiddleName string `json:"middle_name" validate:"required"`
	LastName   string `json:"last_name"   validate:"required"`
}

type createUserRequest struct {
	Name         string               `json:"name"     validate:"required"`
	Email        string               `json:"email"    validate:"required,email"`
	Password     string               `json:"password" validate:"required,min=8"`
	Role         *string              `json:"role"     validate:"omitempty,oneof=user moderator admin"`
	Translations []translationRequest `json:"translations" validate:"omitempty,dive"`
}

// submittedFields lists the attribute names present in the request, in the
// canonical field order. The enforcer diffs this set against the policy; the
// order decides which offending field a denial names.
func (r createUserRequest) submittedFields() []authz.Field {
	fields := []authz.Field{authz.FieldName, authz.FieldEmail}
	if r.Role != nil {
		fields = append(fields, authz.FieldRole)
	}
	fields = append(fields, authz.FieldPassword)
	if len(r.Translations) > 0 {
		fields = append(fields, authz.FieldTranslations)
	}
	return fields
}

type updateUserRequest struct {
	Name          *string              `json:"name"`
	Email         *string              `json:"email"    validate:"omitempty,email"`
	Role          *string              `json:"role"     validate:"omitempty,oneof=user moderator admin"`
	Password      *string              `json:"password" validate:"omitempty,min=8"`
	RememberToken *string              `json:"remember_token"`
	Translations  []translationRequest `json:"translations" validate:"omitempty,dive"`
}

func (r updateUserRequest) submittedFields() []authz.Field {
	var fields []authz.Field
	if r.Name != nil {
		fields = append(fields, authz.FieldName)
	}
	if r.Email != nil {
		fields = append(fields, authz.FieldEmail)
	}
	if r.Role != nil {
		fields = append(fields, authz.FieldRole)
	}
	if r.Password != nil {
		fields = append(fields, authz.FieldPassword)
	}
	if r.RememberToken != nil {
		fields = append(fields, authz.FieldRememberToken)
	}
	if len(r.Translations) > 0 {
		fields = append(fields, authz.FieldTranslations)
	}
	return fields
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to
// internal service changes.

type translationResponse struct {
	Locale     string `json:"locale"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
}

type userResponse struct {
	ID            int64                 `json:"id"`
	Name          string                `json:"name,omitempty"`
	Email         string                `json:"email,omitempty"`
	Role          string                `json:"role,omitempty"`
	RememberToken string                `json:"remember_token,omitempty"`
	Translations  []translationResponse `json:"translations,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

type listUsersResponse struct {
	Users   []userResponse `json:"users"`
	Total   int64          `json:"total"`
	Page    int64          `json:"page"`
	PerPage int64          `json:"per_page"`
}

type versionResponse struct {
	ItemID    int64          `json:"item_id"`
	Event     string         `json:"event"`
	Object    objectResponse `json:"object"`
	Whodunnit int64          `json:"whodunnit"`
	CreatedAt time.Time      `json:"created_at"`
}

type objectResponse struct {
	Name         string                `json:"name"`
	Email        string                `json:"email"`
	Role         string                `json:"role"`
	Translations []translationResponse `json:"translations,omitempty"`
}

// newUserResponse shapes a user payload for the requesting visitor: only
// fields the access policy permits are rendered. In practice that hides
// remember_token from everyone but the record's owner.
func newUserResponse(policy *authz.Policy, actor *auth.Visitor, u *domain.User) userResponse {
	permitted := make(map[authz.Field]struct{})
	for _, f := range policy.PermittedFields(actor, authz.ActionAccess, u) {
		permitted[f] = struct{}{}
	}

	resp := userResponse{ID: u.ID, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
	if _, ok := permitted[authz.FieldName]; ok {
		resp.Name = u.Name
	}
	if _, ok := permitted[authz.FieldEmail]; ok {
		resp.Email = u.Email
	}
	if _, ok := permitted[authz.FieldRole]; ok {
		resp.Role = u.Role.String()
	}
	if _, ok := permitted[authz.FieldRememberToken]; ok {
		resp.RememberToken = u.RememberToken
	}
	if _, ok := permitted[authz.FieldTranslations]; ok {
		resp.Translations = newTranslationResponses(u.Translations)
	}
	return resp
}

func newTranslationResponses(translations []domain.Translation) []translationResponse {
	if len(translations) == 0 {
		return nil
	}
	out := make([]translationResponse, 0, len(translations))
	for _, t := range translations {
		out = append(out, translationResponse{
			Locale:     t.Locale,
			FirstName:  t.FirstName,
			MiddleName: t.MiddleName,
			LastName:   t.LastName,
		})
	}
	return out
}

func newVersionResponse(v domain.Version) versionResponse {
	return versionResponse{
		ItemID: v.ItemID,
		Event:  string(v.Event),
		Object: objectResponse{
			Name:         v.Object.Name,
			Email:        v.Object.Email,
			Role:         v.Object.Role.String(),
			Translations: newTranslationResponses(v.Object.Translations),
		},
		Whodunnit: v.Whodunnit,
		CreatedAt: v.CreatedAt,
	}
}

func translationInputs(reqs []translationRequest) []ports.TranslationInput {
	if len(reqs) == 0 {
		return nil
	}
	out := make([]ports.TranslationInput, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, ports.TranslationInput{
			Locale:     r.Locale,
			FirstName:  r.FirstName,
			MiddleName: r.MiddleName,
			LastName:   r.LastName,
		})
	}
	return out
}
