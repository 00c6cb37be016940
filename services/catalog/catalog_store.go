package catalog

import (
	"context"
	"fmt"

	"github.com/MarcGrol/courseshop/lib/mystore"
)

type storeCatalog struct {
	store mystore.Store[Course]
}

func NewStoreCatalog(store mystore.Store[Course]) ReadWriter {
	return &storeCatalog{
		store: store,
	}
}

func (s *storeCatalog) ListByIDs(c context.Context, ids []string) ([]Course, error) {
	courses := []Course{}
	for _, id := range ids {
		course, found, err := s.store.Get(c, id)
		if err != nil {
			return nil, fmt.Errorf("error fetching course %s: %s", id, err)
		}
		if found {
			courses = append(courses, course)
		}
	}
	return courses, nil
}

func (s *storeCatalog) ListOrderedByTitle(c context.Context) ([]Course, error) {
	courses, err := s.store.Query(c, []mystore.Filter{}, "Title")
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %s", err)
	}
	return courses, nil
}

func (s *storeCatalog) Put(c context.Context, course Course) error {
	err := course.Validate()
	if err != nil {
		return err
	}
	return s.store.Put(c, course.ID, course)
}
