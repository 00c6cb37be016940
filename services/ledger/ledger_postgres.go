package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MarcGrol/courseshop/lib/mydb"
)

type postgresLedger struct {
	db *sql.DB
}

func NewPostgresLedger(db *sql.DB) Ledger {
	return &postgresLedger{
		db: db,
	}
}

func (l *postgresLedger) CountForUser(c context.Context, userID string) (int, error) {
	count := 0
	err := mydb.ExecutorFrom(c, l.db).QueryRowContext(c, `SELECT count(*) FROM purchases WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting purchases of user %s: %w", userID, err)
	}
	return count, nil
}

func (l *postgresLedger) Upsert(c context.Context, purchases []Purchase) (int, error) {
	for _, p := range purchases {
		err := p.validate()
		if err != nil {
			return 0, err
		}
	}

	inserted := 0
	err := mydb.RunInTransaction(c, l.db, func(c context.Context) error {
		inserted = 0
		tx := mydb.ExecutorFrom(c, l.db)
		for _, p := range purchases {
			result, err := tx.ExecContext(c, `
				INSERT INTO purchases (user_id, course_id, payment_reference, created_at)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (user_id, course_id, payment_reference) DO NOTHING`,
				p.UserID, p.CourseID, p.PaymentReference, p.CreatedAt)
			if err != nil {
				return fmt.Errorf("error inserting purchase %s: %w", p.key(), err)
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("error reading affected rows: %w", err)
			}
			inserted += int(affected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (l *postgresLedger) ListForUser(c context.Context, userID string) ([]Purchase, error) {
	rows, err := mydb.ExecutorFrom(c, l.db).QueryContext(c, `
		SELECT user_id, course_id, payment_reference, created_at
		FROM purchases WHERE user_id = $1 ORDER BY created_at, course_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing purchases of user %s: %w", userID, err)
	}
	defer rows.Close()

	purchases := []Purchase{}
	for rows.Next() {
		p := Purchase{}
		err := rows.Scan(&p.UserID, &p.CourseID, &p.PaymentReference, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating purchases: %w", err)
	}
	return purchases, nil
}
