package profiles

import "context"

//go:generate mockgen -source=api.go -package profiles -destination profiles_mock.go Store
type Store interface {
	Get(c context.Context, id string) (Profile, bool, error)
	// GetByEmail matches case-insensitively; with several matches the least recently updated wins.
	GetByEmail(c context.Context, email string) (Profile, bool, error)
	Upsert(c context.Context, profile Profile) (Profile, error)
}
