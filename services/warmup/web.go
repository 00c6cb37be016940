package warmup

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/courseshop/lib/mycontext"
	"github.com/MarcGrol/courseshop/lib/myerrors"
	"github.com/MarcGrol/courseshop/lib/myhttp"
	"github.com/MarcGrol/courseshop/lib/mylog"
	"github.com/MarcGrol/courseshop/services/catalog"
)

type webService struct {
	logger  mylog.Logger
	catalog catalog.Reader
}

// Use dependency injection to isolate the infrastructure and ease testing
func NewService(catalogReader catalog.Reader) *webService {
	return &webService{
		logger:  mylog.New("warmup"),
		catalog: catalogReader,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/_ah/warmup", s.warmupPage()).Methods("GET")

	return nil
}

// warmupPage touches the catalog so the first shopper does not pay for opening connections.
func (s *webService) warmupPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		courses, err := s.catalog.ListOrderedByTitle(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewUnavailableError(err))
			return
		}
		s.logger.Log(c, "", mylog.SeverityInfo, "Warmed up with %d courses", len(courses))

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed warmup request",
		})
	}
}
