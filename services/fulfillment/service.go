package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/MarcGrol/courseshop/lib/myconfig"
	"github.com/MarcGrol/courseshop/lib/myerrors"
	"github.com/MarcGrol/courseshop/lib/mylog"
	"github.com/MarcGrol/courseshop/lib/mypublisher"
	"github.com/MarcGrol/courseshop/lib/mytime"
	"github.com/MarcGrol/courseshop/services/checkout"
	"github.com/MarcGrol/courseshop/services/identity"
	"github.com/MarcGrol/courseshop/services/ledger"
	"github.com/MarcGrol/courseshop/services/profiles"
	"github.com/MarcGrol/courseshop/services/purchaseevents"
)

const (
	tagUnassignable             = "UNASSIGNABLE"
	tagIdentityResolutionFailed = "IDENTITY_RESOLUTION_FAILED"
)

type GuestResolver interface {
	ResolveOrCreateAccount(c context.Context, email string, name string) (string, error)
}

type service struct {
	logger         mylog.Logger
	config         myconfig.Config
	nower          mytime.Nower
	resolver       GuestResolver
	ledger         ledger.Ledger
	profiles       profiles.Store
	publisher      mypublisher.Publisher
	processed      ProcessedEvents
	commitAttempts uint
	commitDelay    time.Duration
}

// completedPayment is what a completed checkout session tells us about the purchase.
type completedPayment struct {
	SessionID        string
	BuyerReference   string
	Email            string
	Name             string
	PaymentReference string
	CourseIDs        []string
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(logger mylog.Logger, config myconfig.Config, nower mytime.Nower, resolver GuestResolver, purchaseLedger ledger.Ledger,
	profileStore profiles.Store, publisher mypublisher.Publisher, processed ProcessedEvents) *service {
	return &service{
		logger:         logger,
		config:         config,
		nower:          nower,
		resolver:       resolver,
		ledger:         purchaseLedger,
		profiles:       profileStore,
		publisher:      publisher,
		processed:      processed,
		commitAttempts: 3,
		commitDelay:    100 * time.Millisecond,
	}
}

// verify checks configuration and the signature; nothing is touched before both pass.
func (s *service) verify(payload []byte, signature string) (stripe.Event, error) {
	for _, check := range []func() error{s.config.RequirePaymentProvider, s.config.RequireWebhookSecret, s.config.RequireStore} {
		err := check()
		if err != nil {
			return stripe.Event{}, err
		}
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.config.StripeWebhookSigningSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, myerrors.NewSignatureError(err)
	}

	return event, nil
}

// processEvent runs a verified notification to completion. Only persistence failures are returned as
// errors: every other problem is logged and acknowledged.
func (s *service) processEvent(c context.Context, event stripe.Event) (string, error) {
	if string(event.Type) != "checkout.session.completed" {
		s.logger.Log(c, event.ID, mylog.SeverityDebug, "Ignoring event %s of type %s", event.ID, event.Type)
		return outcomeIgnored, nil
	}

	processed, err := s.processed.IsProcessed(c, event.ID)
	if err != nil {
		s.logger.Log(c, event.ID, mylog.SeverityWarn, "Error checking whether event %s was processed: %s", event.ID, err)
	}
	if processed {
		s.logger.Log(c, event.ID, mylog.SeverityInfo, "Event %s already processed", event.ID)
		return outcomeDuplicate, nil
	}

	payment, err := extract(event)
	if err != nil {
		s.logger.Log(c, event.ID, mylog.SeverityError, "Error reading checkout session from event %s: %s", event.ID, err)
		return outcomeMalformed, nil
	}

	if len(payment.CourseIDs) == 0 {
		s.logger.Log(c, payment.SessionID, mylog.SeverityWarn, "Session %s (payment %s) carries no course ids: nothing to record", payment.SessionID, payment.PaymentReference)
		return outcomeNoCourses, nil
	}

	buyer := identity.FromEvent(payment.BuyerReference, payment.Email, payment.Name)

	userID := ""
	guest := false
	switch b := buyer.(type) {
	case identity.AuthenticatedBuyer:
		userID = b.UserID
	case identity.GuestBuyer:
		guest = true
		if !b.Assignable() {
			s.logger.Log(c, payment.PaymentReference, mylog.SeverityError, "%s: payment %s for courses %s has neither buyer reference nor email",
				tagUnassignable, payment.PaymentReference, strings.Join(payment.CourseIDs, ","))
			return outcomeUnassignable, nil
		}

		userID, err = s.resolver.ResolveOrCreateAccount(c, b.Email, b.Name)
		if err != nil {
			s.logger.Log(c, payment.PaymentReference, mylog.SeverityCritical, "%s: payment %s by %s for courses %s cannot be attached to an account: %s",
				tagIdentityResolutionFailed, payment.PaymentReference, b.Email, strings.Join(payment.CourseIDs, ","), err)
			return outcomeIdentityFailed, nil
		}
	}

	err = s.commit(c, userID, payment, payment.Name)
	if err != nil {
		s.logger.Log(c, payment.PaymentReference, mylog.SeverityError, "Error recording payment %s of user %s for courses %s: %s",
			payment.PaymentReference, userID, strings.Join(payment.CourseIDs, ","), err)
		return outcomePersistenceFailed, myerrors.NewInternalError(fmt.Errorf("error recording payment %s: %s", payment.PaymentReference, err))
	}

	err = s.publisher.Publish(c, purchaseevents.TopicName, purchaseevents.PurchaseFulfilled{
		PaymentReference: payment.PaymentReference,
		UserID:           userID,
		CourseIDs:        payment.CourseIDs,
		Email:            payment.Email,
		Guest:            guest,
	})
	if err != nil {
		s.logger.Log(c, payment.PaymentReference, mylog.SeverityError, "Error publishing fulfillment of payment %s: %s", payment.PaymentReference, err)
		return outcomePersistenceFailed, myerrors.NewInternalError(fmt.Errorf("error publishing fulfillment of payment %s: %s", payment.PaymentReference, err))
	}

	err = s.processed.MarkProcessed(c, event.ID)
	if err != nil {
		s.logger.Log(c, event.ID, mylog.SeverityWarn, "Error marking event %s as processed: %s", event.ID, err)
	}

	s.logger.Log(c, payment.PaymentReference, mylog.SeverityInfo, "Recorded payment %s of user %s for courses %s",
		payment.PaymentReference, userID, strings.Join(payment.CourseIDs, ","))

	return outcomeFulfilled, nil
}

// commit upserts the purchases and then the profile. Both writes are idempotent, so the whole
// step can be retried.
func (s *service) commit(c context.Context, userID string, payment completedPayment, name string) error {
	now := s.nower.Now()

	purchases := []ledger.Purchase{}
	for _, courseID := range payment.CourseIDs {
		purchases = append(purchases, ledger.Purchase{
			UserID:           userID,
			CourseID:         courseID,
			PaymentReference: payment.PaymentReference,
			CreatedAt:        now,
		})
	}

	return retry.Do(
		func() error {
			inserted, err := s.ledger.Upsert(c, purchases)
			if err != nil {
				return fmt.Errorf("error upserting purchases: %s", err)
			}
			if inserted < len(purchases) {
				s.logger.Log(c, payment.PaymentReference, mylog.SeverityInfo, "%d of %d purchases of payment %s were already recorded",
					len(purchases)-inserted, len(purchases), payment.PaymentReference)
			}

			_, err = s.profiles.Upsert(c, profiles.Profile{
				ID:        userID,
				Email:     payment.Email,
				FullName:  name,
				UpdatedAt: now,
			})
			if err != nil {
				return fmt.Errorf("error upserting profile: %s", err)
			}
			return nil
		},
		retry.Attempts(s.commitAttempts),
		retry.Delay(s.commitDelay),
		retry.Context(c),
		retry.LastErrorOnly(true),
	)
}

func extract(event stripe.Event) (completedPayment, error) {
	if event.Data == nil {
		return completedPayment{}, fmt.Errorf("event without data")
	}

	session := stripe.CheckoutSession{}
	err := json.Unmarshal(event.Data.Raw, &session)
	if err != nil {
		return completedPayment{}, err
	}

	payment := completedPayment{
		SessionID:        session.ID,
		BuyerReference:   strings.TrimSpace(session.ClientReferenceID),
		Email:            strings.TrimSpace(session.CustomerEmail),
		PaymentReference: session.ID,
		CourseIDs:        checkout.DecodeCourseIDs(session.Metadata),
	}
	if payment.BuyerReference == "" {
		payment.BuyerReference = strings.TrimSpace(session.Metadata[checkout.MetadataUserID])
	}
	if session.CustomerDetails != nil {
		if strings.TrimSpace(session.CustomerDetails.Email) != "" {
			payment.Email = strings.TrimSpace(session.CustomerDetails.Email)
		}
		payment.Name = strings.TrimSpace(session.CustomerDetails.Name)
	}
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		payment.PaymentReference = session.PaymentIntent.ID
	}

	return payment, nil
}
