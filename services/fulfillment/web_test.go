package fulfillment

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/courseshop/lib/myconfig"
	"github.com/MarcGrol/courseshop/lib/myevents"
	"github.com/MarcGrol/courseshop/lib/mypublisher"
	"github.com/MarcGrol/courseshop/lib/mypubsub"
	"github.com/MarcGrol/courseshop/lib/myqueue"
	"github.com/MarcGrol/courseshop/lib/mystore"
	"github.com/MarcGrol/courseshop/lib/mytime"
	"github.com/MarcGrol/courseshop/services/accounts"
	"github.com/MarcGrol/courseshop/services/identity"
	"github.com/MarcGrol/courseshop/services/ledger"
	"github.com/MarcGrol/courseshop/services/profiles"
	"github.com/MarcGrol/courseshop/services/purchaseevents"
)

const signingSecret = "whsec_test_secret"

var config = myconfig.Config{
	StripeSecretKey:            "sk_test_123",
	StripeWebhookSigningSecret: signingSecret,
	StoreURL:                   "https://project.supabase.co",
	StoreServiceKey:            "service-key",
}

type sequenceUUIDer struct {
	sync.Mutex
	n int
}

func (u *sequenceUUIDer) Create() string {
	u.Lock()
	defer u.Unlock()
	u.n++
	return fmt.Sprintf("u%d", u.n)
}

type fixture struct {
	router    *mux.Router
	ledger    ledger.Ledger
	profiles  profiles.Store
	pubsub    *mypubsub.FakePubSub
	publisher *mypublisher.TransactionalPublisher
}

type options struct {
	config    myconfig.Config
	directory accounts.Directory
	ledger    ledger.Ledger
}

func setup(t *testing.T, ctrl *gomock.Controller, opts options) fixture {
	c := context.TODO()

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	profileBackend, _, err := mystore.NewInMemoryStore[profiles.Profile](c)
	require.NoError(t, err)
	profileStore := profiles.NewStoreProfiles(profileBackend)

	purchaseLedger := opts.ledger
	if purchaseLedger == nil {
		ledgerBackend, _, err := mystore.NewInMemoryStore[ledger.Purchase](c)
		require.NoError(t, err)
		purchaseLedger = ledger.NewStoreLedger(ledgerBackend)
	}

	directory := opts.directory
	if directory == nil {
		directory = accounts.NewInMemoryDirectory(&sequenceUUIDer{}, nower, profileStore)
	}

	outbox, _, err := mystore.NewInMemoryStore[myevents.EventEnvelope](c)
	require.NoError(t, err)
	ps := mypubsub.NewFake()
	publisher := mypublisher.NewWithOutbox(outbox, ps, myqueue.NewFake(), nower)

	cfg := opts.config
	if cfg.StripeSecretKey == "" && cfg.StripeWebhookSigningSecret == "" && cfg.StoreURL == "" {
		cfg = config
	}

	sut := NewWebService(cfg, nower, identity.NewResolver(directory, profileStore), purchaseLedger, profileStore, publisher,
		NewInMemoryProcessedEvents(nower, time.Hour))
	sut.service.commitDelay = time.Millisecond

	router := mux.NewRouter()
	err = sut.RegisterEndpoints(c, router)
	require.NoError(t, err)

	return fixture{
		router:    router,
		ledger:    purchaseLedger,
		profiles:  profileStore,
		pubsub:    ps,
		publisher: publisher,
	}
}

func completedEvent(eventID string, session string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"api_version": "2023-10-16",
		"type": "checkout.session.completed",
		"data": {"object": %s}
	}`, eventID, session)
}

func sign(payload string, secret string) string {
	now := time.Now()
	signature := webhook.ComputeSignature(now, []byte(payload), secret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(signature))
}

func deliver(t *testing.T, router *mux.Router, payload string, signature string) *httptest.ResponseRecorder {
	request, err := http.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(payload))
	require.NoError(t, err)
	request.Header.Set("Stripe-Signature", signature)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

const guestSession = `{
	"id": "cs_1",
	"object": "checkout.session",
	"client_reference_id": null,
	"customer_details": {"email": "a@x.com", "name": ""},
	"payment_intent": "pi_1",
	"metadata": {"course_ids": "c1,c2", "type": "multi_course_purchase"}
}`

func TestWebhook(t *testing.T) {
	c := context.TODO()

	t.Run("Guest purchase end to end", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, ctrl, options{})

		// when
		payload := completedEvent("evt_1", guestSession)
		response := deliver(t, f.router, payload, sign(payload, signingSecret))

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.JSONEq(t, `{"received": true}`, response.Body.String())

		purchases, err := f.ledger.ListForUser(c, "u1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []ledger.Purchase{
			{UserID: "u1", CourseID: "c1", PaymentReference: "pi_1", CreatedAt: mytime.ExampleTime},
			{UserID: "u1", CourseID: "c2", PaymentReference: "pi_1", CreatedAt: mytime.ExampleTime},
		}, purchases)

		profile, found, err := f.profiles.Get(c, "u1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "a@x.com", profile.Email)
		assert.Equal(t, identity.DefaultGuestName, profile.FullName)
		assert.False(t, profile.IsAdmin)

		_, err = f.publisher.Flush(c)
		require.NoError(t, err)
		published := f.pubsub.Published(purchaseevents.TopicName)
		require.Len(t, published, 1)
		assert.Contains(t, published[0], "purchase.fulfilled")
	})

	t.Run("Redelivery and replays do not duplicate", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, ctrl, options{})

		// when: same event twice, then a new event for the same payment
		payload := completedEvent("evt_1", guestSession)
		for i := 0; i < 2; i++ {
			response := deliver(t, f.router, payload, sign(payload, signingSecret))
			assert.Equal(t, http.StatusOK, response.Code)
		}
		replay := completedEvent("evt_2", guestSession)
		response := deliver(t, f.router, replay, sign(replay, signingSecret))
		assert.Equal(t, http.StatusOK, response.Code)

		// then
		count, err := f.ledger.CountForUser(c, "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		count, err = f.ledger.CountForUser(c, "u2")
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		_, err = f.publisher.Flush(c)
		require.NoError(t, err)
		assert.Len(t, f.pubsub.Published(purchaseevents.TopicName), 1)
	})

	t.Run("Replay after relay publishes nothing new", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, ctrl, options{})

		payload := completedEvent("evt_1", guestSession)
		response := deliver(t, f.router, payload, sign(payload, signingSecret))
		assert.Equal(t, http.StatusOK, response.Code)
		_, err := f.publisher.Flush(c)
		require.NoError(t, err)

		// when
		replay := completedEvent("evt_2", guestSession)
		response = deliver(t, f.router, replay, sign(replay, signingSecret))
		assert.Equal(t, http.StatusOK, response.Code)
		_, err = f.publisher.Flush(c)
		require.NoError(t, err)

		// then
		assert.Len(t, f.pubsub.Published(purchaseevents.TopicName), 1)
	})

	t.Run("Guest without name keeps stored name", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, ctrl, options{})

		payload := completedEvent("evt_1", guestSession)
		response := deliver(t, f.router, payload, sign(payload, signingSecret))
		assert.Equal(t, http.StatusOK, response.Code)
		_, err := f.profiles.Upsert(c, profiles.Profile{ID: "u1", Email: "a@x.com", FullName: "Maria Rossi"})
		require.NoError(t, err)

		// when
		replay := completedEvent("evt_2", guestSession)
		response = deliver(t, f.router, replay, sign(replay, signingSecret))

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		profile, found, err := f.profiles.Get(c, "u1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "Maria Rossi", profile.FullName)
	})

	t.Run("Authenticated buyer keeps admin flag and name", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, ctrl, options{})

		_, err := f.profiles.Upsert(c, profiles.Profile{ID: "admin-1", Email: "boss@x.com", FullName: "Boss", IsAdmin: true})
		require.NoError(t, err)

		// when
		payload := completedEvent("evt_3", `{
			"id": "cs_3",
			"object": "checkout.session",
			"client_reference_id": "admin-1",
			"customer_details": {"email": "boss@x.com"},
			"payment_intent": {"id": "pi_3", "object": "payment_intent"},
			"metadata": {"course_id": "c7"}
		}`)
		response := deliver(t, f.router, payload, sign(payload, signingSecret))

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		purchases, err := f.ledger.ListForUser(c, "admin-1")
		require.NoError(t, err)
		require.Len(t, purchases, 1)
		assert.Equal(t, "c7", purchases[0].CourseID)
		assert.Equal(t, "pi_3", purchases[0].PaymentReference)

		profile, _, err := f.profiles.Get(c, "admin-1")
		require.NoError(t, err)
		assert.True(t, profile.IsAdmin)
		assert.Equal(t, "Boss", profile.FullName)
	})

	t.Run("Buyer reference from metadata and session id as payment reference", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, ctrl, options{})

		payload := completedEvent("evt_4", `{
			"id": "cs_4",
			"object": "checkout.session",
			"metadata": {"course_ids": "c1", "user_id": "u-meta"}
		}`)
		response := deliver(t, f.router, payload, sign(payload, signingSecret))

		assert.Equal(t, http.StatusOK, response.Code)
		purchases, err := f.ledger.ListForUser(c, "u-meta")
		require.NoError(t, err)
		require.Len(t, purchases, 1)
		assert.Equal(t, "cs_4", purchases[0].PaymentReference)
	})

	t.Run("Tampered body is rejected without writes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		purchaseLedger := ledger.NewMockLedger(ctrl)
		f := setup(t, ctrl, options{ledger: purchaseLedger})

		payload := completedEvent("evt_1", guestSession)
		signature := sign(payload, signingSecret)
		tampered := strings.Replace(payload, "c1,c2", "c1,c2,c3", 1)

		response := deliver(t, f.router, tampered, signature)

		assert.Equal(t, http.StatusBadRequest, response.Code)
		assert.True(t, strings.HasPrefix(response.Body.String(), "Webhook Signature Error: "))
	})

	t.Run("Wrong secret and missing header are rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, ctrl, options{ledger: ledger.NewMockLedger(ctrl)})

		payload := completedEvent("evt_1", guestSession)
		assert.Equal(t, http.StatusBadRequest, deliver(t, f.router, payload, sign(payload, "whsec_other")).Code)
		assert.Equal(t, http.StatusBadRequest, deliver(t, f.router, payload, "").Code)
	})

	t.Run("Missing configuration", func(t *testing.T) {
		for _, cfg := range []myconfig.Config{
			{StripeWebhookSigningSecret: signingSecret, StoreURL: "https://s", StoreServiceKey: "k"},
			{StripeSecretKey: "sk", StoreURL: "https://s", StoreServiceKey: "k"},
			{StripeSecretKey: "sk", StripeWebhookSigningSecret: signingSecret},
		} {
			ctrl := gomock.NewController(t)
			f := setup(t, ctrl, options{config: cfg, ledger: ledger.NewMockLedger(ctrl)})

			payload := completedEvent("evt_1", guestSession)
			response := deliver(t, f.router, payload, sign(payload, signingSecret))

			assert.Equal(t, http.StatusInternalServerError, response.Code)
			assert.Equal(t, "Server Configuration Error", response.Body.String())
			ctrl.Finish()
		}
	})

	t.Run("Other event types are acknowledged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, ctrl, options{ledger: ledger.NewMockLedger(ctrl)})

		payload := `{"id":"evt_9","object":"event","type":"payment_intent.created","data":{"object":{"id":"pi_9","object":"payment_intent"}}}`
		response := deliver(t, f.router, payload, sign(payload, signingSecret))

		assert.Equal(t, http.StatusOK, response.Code)
	})

	t.Run("No course ids is a no-op", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, ctrl, options{ledger: ledger.NewMockLedger(ctrl)})

		payload := completedEvent("evt_5", `{"id":"cs_5","object":"checkout.session","client_reference_id":"u1","metadata":{"course_ids":" , "}}`)
		response := deliver(t, f.router, payload, sign(payload, signingSecret))

		assert.Equal(t, http.StatusOK, response.Code)
	})

	t.Run("Guest without email is acknowledged without writes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		directory := accounts.NewMockDirectory(ctrl)
		f := setup(t, ctrl, options{ledger: ledger.NewMockLedger(ctrl), directory: directory})

		payload := completedEvent("evt_6", `{"id":"cs_6","object":"checkout.session","payment_intent":"pi_6","metadata":{"course_ids":"c1"}}`)
		response := deliver(t, f.router, payload, sign(payload, signingSecret))

		assert.Equal(t, http.StatusOK, response.Code)
	})

	t.Run("Identity resolution failure is acknowledged without writes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		directory := accounts.NewMockDirectory(ctrl)
		f := setup(t, ctrl, options{ledger: ledger.NewMockLedger(ctrl), directory: directory})

		directory.EXPECT().Invite(gomock.Any(), "a@x.com", accounts.Attributes{FullName: identity.DefaultGuestName}).
			Return(accounts.Account{}, fmt.Errorf("directory unavailable"))

		payload := completedEvent("evt_7", guestSession)
		response := deliver(t, f.router, payload, sign(payload, signingSecret))

		assert.Equal(t, http.StatusOK, response.Code)
		_, found, err := f.profiles.GetByEmail(c, "a@x.com")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Persistence failure asks for redelivery", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		purchaseLedger := ledger.NewMockLedger(ctrl)
		f := setup(t, ctrl, options{ledger: purchaseLedger})

		purchaseLedger.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(0, fmt.Errorf("connection refused")).Times(3)

		payload := completedEvent("evt_8", `{"id":"cs_8","object":"checkout.session","client_reference_id":"u1","payment_intent":"pi_8","metadata":{"course_ids":"c1"}}`)
		response := deliver(t, f.router, payload, sign(payload, signingSecret))
		assert.Equal(t, http.StatusInternalServerError, response.Code)

		// the provider retries and the store has recovered
		purchaseLedger.EXPECT().Upsert(gomock.Any(), []ledger.Purchase{{UserID: "u1", CourseID: "c1", PaymentReference: "pi_8", CreatedAt: mytime.ExampleTime}}).Return(1, nil)

		response = deliver(t, f.router, payload, sign(payload, signingSecret))
		assert.Equal(t, http.StatusOK, response.Code)
	})

	t.Run("Transient persistence failure is retried", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		purchaseLedger := ledger.NewMockLedger(ctrl)
		f := setup(t, ctrl, options{ledger: purchaseLedger})

		gomock.InOrder(
			purchaseLedger.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(0, fmt.Errorf("deadlock detected")),
			purchaseLedger.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(1, nil),
		)

		payload := completedEvent("evt_10", `{"id":"cs_10","object":"checkout.session","client_reference_id":"u1","payment_intent":"pi_10","metadata":{"course_ids":"c1"}}`)
		response := deliver(t, f.router, payload, sign(payload, signingSecret))

		assert.Equal(t, http.StatusOK, response.Code)
	})

	t.Run("Preflight and health check", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, ctrl, options{ledger: ledger.NewMockLedger(ctrl)})

		request, err := http.NewRequest(http.MethodOptions, "/api/stripe/webhook", nil)
		require.NoError(t, err)
		response := httptest.NewRecorder()
		f.router.ServeHTTP(response, request)
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Contains(t, response.Header().Get("Access-Control-Allow-Headers"), "stripe-signature")

		request, err = http.NewRequest(http.MethodGet, "/api/stripe/webhook", nil)
		require.NoError(t, err)
		response = httptest.NewRecorder()
		f.router.ServeHTTP(response, request)
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Equal(t, "Webhook online. Send POST requests here.", response.Body.String())
	})
}
