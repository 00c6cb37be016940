package ledger

import "context"

//go:generate mockgen -source=api.go -package ledger -destination ledger_mock.go Ledger
type Ledger interface {
	CountForUser(c context.Context, userID string) (int, error)
	// Upsert writes all purchases atomically; rows that already exist are left untouched.
	Upsert(c context.Context, purchases []Purchase) (int, error)
	ListForUser(c context.Context, userID string) ([]Purchase, error)
}
