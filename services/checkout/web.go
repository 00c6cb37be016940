package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/courseshop/lib/myconfig"
	"github.com/MarcGrol/courseshop/lib/mycontext"
	"github.com/MarcGrol/courseshop/lib/myerrors"
	"github.com/MarcGrol/courseshop/lib/myhttp"
	"github.com/MarcGrol/courseshop/lib/mylog"
	"github.com/MarcGrol/courseshop/services/catalog"
	"github.com/MarcGrol/courseshop/services/ledger"
)

var corsHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

type webService struct {
	logger      mylog.Logger
	service     *service
	siteOrigin  string
	formDecoder *form.Decoder
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(config myconfig.Config, payer Payer, catalogReader catalog.Reader, purchaseLedger ledger.Ledger) *webService {
	logger := mylog.New("checkout")
	return &webService{
		logger:      logger,
		service:     newService(logger, config, payer, catalogReader, purchaseLedger),
		siteOrigin:  config.SiteOrigin,
		formDecoder: form.NewDecoder(),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/checkout", s.preflight()).Methods("OPTIONS")
	router.HandleFunc("/api/checkout", s.createCheckoutPage()).Methods("POST")

	return nil
}

func (s *webService) preflight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		myhttp.AllowAnyOrigin(w, corsHeaders...)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

func (s *webService) createCheckoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)
		myhttp.AllowAnyOrigin(w, corsHeaders...)

		req, err := s.parseRequest(r)
		if err != nil {
			checkoutSessions.WithLabelValues("invalid").Inc()
			errorWriter.WriteError(c, w, 0, err)
			return
		}

		url, err := s.service.createSession(c, req, myhttp.Origin(r, s.siteOrigin))
		if err != nil {
			checkoutSessions.WithLabelValues(resultOf(err)).Inc()
			if myerrors.IsConfigurationError(err) {
				errorWriter.WriteError(c, w, 0, err)
				return
			}
			errorWriter.WriteErrorWithStatus(c, w, http.StatusBadRequest, 0, err)
			return
		}

		checkoutSessions.WithLabelValues("created").Inc()
		errorWriter.Write(c, w, http.StatusOK, CheckoutResponse{URL: url})
	}
}

func (s *webService) parseRequest(r *http.Request) (CheckoutRequest, error) {
	req := CheckoutRequest{}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		err := r.ParseForm()
		if err != nil {
			return req, myerrors.NewInvalidInputError(fmt.Errorf("invalid form body: %s", err))
		}
		err = s.formDecoder.Decode(&req, r.PostForm)
		if err != nil {
			return req, myerrors.NewInvalidInputError(fmt.Errorf("invalid form body: %s", err))
		}
	default:
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			return req, myerrors.NewInvalidInputError(fmt.Errorf("invalid or empty request body: %s", err))
		}
	}

	return req, nil
}

func resultOf(err error) string {
	switch {
	case myerrors.IsConfigurationError(err):
		return "configuration_error"
	case myerrors.IsNotFoundError(err):
		return "not_found"
	case myerrors.GetHTTPStatus(err) == http.StatusBadRequest:
		return "invalid"
	default:
		return "error"
	}
}
