package profiles

import (
	"strings"
	"time"
)

type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	FullName  string    `json:"full_name,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	UpdatedAt time.Time `json:"updated_at"`

	// EmailKey is the lower-cased email, used for case-insensitive lookups
	EmailKey string `json:"-"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// merge applies incoming on top of existing: known values are never blanked and admins stay admins.
func merge(existing Profile, incoming Profile) Profile {
	merged := existing
	merged.ID = incoming.ID
	if incoming.Email != "" {
		merged.Email = incoming.Email
	}
	if incoming.FullName != "" {
		merged.FullName = incoming.FullName
	}
	merged.IsAdmin = existing.IsAdmin || incoming.IsAdmin
	merged.UpdatedAt = incoming.UpdatedAt
	merged.EmailKey = normalizeEmail(merged.Email)
	return merged
}
