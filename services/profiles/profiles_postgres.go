package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MarcGrol/courseshop/lib/mydb"
)

type postgresProfiles struct {
	db *sql.DB
}

func NewPostgresProfiles(db *sql.DB) Store {
	return &postgresProfiles{
		db: db,
	}
}

const selectProfile = `SELECT id, COALESCE(email, ''), COALESCE(full_name, ''), is_admin, updated_at FROM profiles`

func (p *postgresProfiles) Get(c context.Context, id string) (Profile, bool, error) {
	row := mydb.ExecutorFrom(c, p.db).QueryRowContext(c, selectProfile+` WHERE id = $1`, id)
	return scanProfile(row)
}

func (p *postgresProfiles) GetByEmail(c context.Context, email string) (Profile, bool, error) {
	key := normalizeEmail(email)
	if key == "" {
		return Profile{}, false, nil
	}
	row := mydb.ExecutorFrom(c, p.db).QueryRowContext(c, selectProfile+` WHERE lower(email) = $1 ORDER BY updated_at LIMIT 1`, key)
	return scanProfile(row)
}

func (p *postgresProfiles) Upsert(c context.Context, profile Profile) (Profile, error) {
	if profile.ID == "" {
		return Profile{}, fmt.Errorf("profile without id")
	}
	row := mydb.ExecutorFrom(c, p.db).QueryRowContext(c, `
		INSERT INTO profiles (id, email, full_name, is_admin, updated_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			email = COALESCE(EXCLUDED.email, profiles.email),
			full_name = COALESCE(EXCLUDED.full_name, profiles.full_name),
			is_admin = profiles.is_admin OR EXCLUDED.is_admin,
			updated_at = EXCLUDED.updated_at
		RETURNING id, COALESCE(email, ''), COALESCE(full_name, ''), is_admin, updated_at`,
		profile.ID, profile.Email, profile.FullName, profile.IsAdmin, profile.UpdatedAt)

	merged, _, err := scanProfile(row)
	if err != nil {
		return Profile{}, fmt.Errorf("error upserting profile %s: %w", profile.ID, err)
	}
	return merged, nil
}

func scanProfile(row *sql.Row) (Profile, bool, error) {
	profile := Profile{}
	err := row.Scan(&profile.ID, &profile.Email, &profile.FullName, &profile.IsAdmin, &profile.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, false, nil
	}
	if err != nil {
		return Profile{}, false, fmt.Errorf("error scanning profile: %w", err)
	}
	profile.EmailKey = normalizeEmail(profile.Email)
	return profile, true, nil
}
