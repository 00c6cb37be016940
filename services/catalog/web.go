package catalog

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/courseshop/lib/mycontext"
	"github.com/MarcGrol/courseshop/lib/myerrors"
	"github.com/MarcGrol/courseshop/lib/myhttp"
	"github.com/MarcGrol/courseshop/lib/mylog"
)

type webService struct {
	logger  mylog.Logger
	catalog Reader
}

func NewWebService(catalog Reader) *webService {
	return &webService{
		logger:  mylog.New("catalog"),
		catalog: catalog,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/courses", s.listCoursesPage()).Methods("GET")

	return nil
}

func (s *webService) listCoursesPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		courses, err := s.catalog.ListOrderedByTitle(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, courses)
	}
}
