package domain

import "time"

// User models an account in the system. Name and Email are unique across the
// store; Translations carry the per-locale name variants.
type User struct {
	ID                int64         `json:"id"`
	Name              string        `json:"name"`
	Email             string        `json:"email"`
	PasswordHash      string        `json:"-"`
	RememberToken     string        `json:"-"`
	ConfirmationToken string        `json:"-"`
	Role              Role          `json:"role"`
	Translations      []Translation `json:"translations,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// Translation holds the localized name attributes of a user for one locale.
type Translation struct {
	Locale     string `json:"locale"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
}

// TranslationFor returns the translation for the given locale, if present.
func (u *User) TranslationFor(locale string) (Translation, bool) {
	for _, t := range u.Translations {
		if t.Locale == locale {
			return t, true
		}
	}
	return Translation{}, false
}

// SetTranslation inserts or replaces the translation for tr.Locale.
func (u *User) SetTranslation(tr Translation) {
	for i, t := range u.Translations {
		if t.Locale == tr.Locale {
			u.Translations[i] = tr
			return
		}
	}
	u.Translations = append(u.Translations, tr)
}
