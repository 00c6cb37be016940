package mydb

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed schema.sql
var schema string

// Open connects to Postgres and applies the schema. The returned cleanup closes the pool.
func Open(c context.Context, databaseURL string) (*sql.DB, func(), error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening database: %s", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	err = db.PingContext(c)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("error connecting to database: %s", err)
	}

	err = Migrate(c, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return db, func() {
		db.Close()
	}, nil
}

// Migrate creates the tables when absent; it is safe to run on every start.
func Migrate(c context.Context, db *sql.DB) error {
	_, err := db.ExecContext(c, schema)
	if err != nil {
		return fmt.Errorf("error applying schema: %s", err)
	}
	return nil
}
