package catalog

import "context"

//go:generate mockgen -source=api.go -package catalog -destination catalog_mock.go Reader
type Reader interface {
	// ListByIDs returns the courses that exist among ids; unknown ids are silently absent.
	ListByIDs(c context.Context, ids []string) ([]Course, error)
	ListOrderedByTitle(c context.Context) ([]Course, error)
}

type ReadWriter interface {
	Reader
	Put(c context.Context, course Course) error
}
