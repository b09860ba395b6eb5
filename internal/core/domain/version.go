package domain

import "time"

// VersionEvent names the kind of change an audit version records.
type VersionEvent string

const (
	VersionCreate  VersionEvent = "create"
	VersionUpdate  VersionEvent = "update"
	VersionDestroy VersionEvent = "destroy"
)

// UserSnapshot is the audited view of a user at the moment of a change.
// Credential attributes (password hash, remember/confirmation tokens) are
// never part of a snapshot.
type UserSnapshot struct {
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Role         Role          `json:"role"`
	Translations []Translation `json:"translations,omitempty"`
}

// Version is one entry in a user's audit history.
type Version struct {
	ItemID    int64        `json:"item_id"`
	Event     VersionEvent `json:"event"`
	Object    UserSnapshot `json:"object"`
	Whodunnit int64        `json:"whodunnit"`
	CreatedAt time.Time    `json:"created_at"`
}

// Snapshot captures the auditable attributes of u.
func (u *User) Snapshot() UserSnapshot {
	translations := make([]Translation, len(u.Translations))
	copy(translations, u.Translations)
	return UserSnapshot{
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		Translations: translations,
	}
}
