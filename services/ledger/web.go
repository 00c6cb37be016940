package ledger

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
	logger mylog.Logger
	ledger Ledger
}

func NewWebService(ledger Ledger) *webService {
	return &webService{
		logger: mylog.New("ledger"),
		ledger: ledger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/users/{userID}/purchases", s.listPurchasesPage()).Methods("GET")

	return nil
}

func (s *webService) listPurchasesPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		userID := mux.Vars(r)["userID"]

		purchases, err := s.ledger.ListForUser(c, userID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, purchases)
	}
}
