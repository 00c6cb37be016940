package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/MarcGrol/courseshop/lib/mydb"
)

type postgresCatalog struct {
	db *sql.DB
}

func NewPostgresCatalog(db *sql.DB) ReadWriter {
	return &postgresCatalog{
		db: db,
	}
}

const selectCourses = `SELECT id, title, price::float8, discounted_price::float8, description, image FROM courses`

func (p *postgresCatalog) ListByIDs(c context.Context, ids []string) ([]Course, error) {
	if len(ids) == 0 {
		return []Course{}, nil
	}
	rows, err := mydb.ExecutorFrom(c, p.db).QueryContext(c, selectCourses+` WHERE id = ANY($1::text[])`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("error querying courses: %w", err)
	}
	return scanCourses(rows)
}

func (p *postgresCatalog) ListOrderedByTitle(c context.Context) ([]Course, error) {
	rows, err := mydb.ExecutorFrom(c, p.db).QueryContext(c, selectCourses+` ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("error querying courses: %w", err)
	}
	return scanCourses(rows)
}

func (p *postgresCatalog) Put(c context.Context, course Course) error {
	err := course.Validate()
	if err != nil {
		return err
	}
	_, err = mydb.ExecutorFrom(c, p.db).ExecContext(c, `
		INSERT INTO courses (id, title, price, discounted_price, description, image)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			price = EXCLUDED.price,
			discounted_price = EXCLUDED.discounted_price,
			description = EXCLUDED.description,
			image = EXCLUDED.image`,
		course.ID, course.Title, course.Price, course.DiscountedPrice, course.Description, course.Image)
	if err != nil {
		return fmt.Errorf("error storing course %s: %w", course.ID, err)
	}
	return nil
}

func scanCourses(rows *sql.Rows) ([]Course, error) {
	defer rows.Close()

	courses := []Course{}
	for rows.Next() {
		course := Course{}
		discounted := sql.NullFloat64{}
		err := rows.Scan(&course.ID, &course.Title, &course.Price, &discounted, &course.Description, &course.Image)
		if err != nil {
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		if discounted.Valid {
			course.DiscountedPrice = &discounted.Float64
		}
		courses = append(courses, course)
	}
	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}
	return courses, nil
}
