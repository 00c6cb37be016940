package fulfillment

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/courseshop/lib/myconfig"
	"github.com/MarcGrol/courseshop/lib/mycontext"
	"github.com/MarcGrol/courseshop/lib/myerrors"
	"github.com/MarcGrol/courseshop/lib/myhttp"
	"github.com/MarcGrol/courseshop/lib/mylog"
	"github.com/MarcGrol/courseshop/lib/mypublisher"
	"github.com/MarcGrol/courseshop/lib/mytime"
	"github.com/MarcGrol/courseshop/services/ledger"
	"github.com/MarcGrol/courseshop/services/profiles"
)

// Same limit the provider's own libraries apply to webhook bodies
const maxBodyBytes = int64(65536)

var corsHeaders = []string{"authorization", "x-client-info", "apikey", "content-type", "stripe-signature"}

type webService struct {
	logger  mylog.Logger
	service *service
}

type receivedResponse struct {
	Received bool `json:"received"`
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(config myconfig.Config, nower mytime.Nower, resolver GuestResolver, purchaseLedger ledger.Ledger,
	profileStore profiles.Store, publisher mypublisher.Publisher, processed ProcessedEvents) *webService {
	logger := mylog.New("fulfillment")
	return &webService{
		logger:  logger,
		service: newService(logger, config, nower, resolver, purchaseLedger, profileStore, publisher, processed),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/stripe/webhook", s.webhookPage())

	return nil
}

func (s *webService) webhookPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		switch r.Method {
		case http.MethodOptions:
			myhttp.AllowAnyOrigin(w, corsHeaders...)
			writer.WriteText(c, w, http.StatusOK, "ok")
			return
		case http.MethodPost:
		default:
			writer.WriteText(c, w, http.StatusOK, "Webhook online. Send POST requests here.")
			return
		}

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			webhookEvents.WithLabelValues(outcomeSignatureFailed).Inc()
			writer.WriteText(c, w, http.StatusBadRequest, fmt.Sprintf("Webhook Signature Error: error reading body: %s", err))
			return
		}

		event, err := s.service.verify(payload, r.Header.Get("Stripe-Signature"))
		if err != nil {
			if myerrors.IsConfigurationError(err) {
				webhookEvents.WithLabelValues(outcomeConfigurationError).Inc()
				s.logger.Log(c, "", mylog.SeverityError, "Webhook rejected: %s", err)
				writer.WriteText(c, w, http.StatusInternalServerError, "Server Configuration Error")
				return
			}
			webhookEvents.WithLabelValues(outcomeSignatureFailed).Inc()
			s.logger.Log(c, "", mylog.SeverityWarn, "Webhook signature rejected: %s", err)
			writer.WriteText(c, w, http.StatusBadRequest, fmt.Sprintf("Webhook Signature Error: %s", myerrors.Message(err)))
			return
		}

		outcome, err := s.service.processEvent(c, event)
		webhookEvents.WithLabelValues(outcome).Inc()
		if err != nil {
			writer.WriteError(c, w, 1, err)
			return
		}

		writer.Write(c, w, http.StatusOK, receivedResponse{Received: true})
	}
}
