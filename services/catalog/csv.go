package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const csvFieldCount = 6

// ReadCourses parses semicolon separated lines of id;title;price;discounted_price;description;image.
// An empty discounted_price means the course has no discount. Lines starting with '#' are skipped.
func ReadCourses(r io.Reader) ([]Course, error) {
	courses := []Course{}

	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.Comment = '#'
	reader.FieldsPerRecord = csvFieldCount
	reader.TrimLeadingSpace = true

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading courses: %s", err)
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("course %s has invalid price %q: %s", record[0], record[2], err)
		}

		course := Course{
			ID:          strings.TrimSpace(record[0]),
			Title:       strings.TrimSpace(record[1]),
			Price:       price,
			Description: strings.TrimSpace(record[4]),
			Image:       strings.TrimSpace(record[5]),
		}
		if discounted := strings.TrimSpace(record[3]); discounted != "" {
			value, err := strconv.ParseFloat(discounted, 64)
			if err != nil {
				return nil, fmt.Errorf("course %s has invalid discounted price %q: %s", course.ID, discounted, err)
			}
			course.DiscountedPrice = &value
		}

		err = course.Validate()
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	return courses, nil
}

// Import stores all courses; existing courses with the same id are replaced.
func Import(c context.Context, writer ReadWriter, courses []Course) error {
	for _, course := range courses {
		err := writer.Put(c, course)
		if err != nil {
			return fmt.Errorf("error importing course %s: %s", course.ID, err)
		}
	}
	return nil
}
