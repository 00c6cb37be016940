package reconciliation

import (
	"context"
	"fmt"
	"strings"

	"github.com/MarcGrol/courseshop/lib/myerrors"
	"github.com/MarcGrol/courseshop/lib/myhttp"
	"github.com/MarcGrol/courseshop/lib/mylog"
	"github.com/MarcGrol/courseshop/lib/mypubsub"
	"github.com/MarcGrol/courseshop/lib/mystore"
	"github.com/MarcGrol/courseshop/lib/mytime"
	"github.com/MarcGrol/courseshop/services/purchaseevents"
)

const eventPath = "/api/reconciliation/event"

type service struct {
	logger mylog.Logger
	nower  mytime.Nower
	pubsub mypubsub.PubSub
	store  mystore.Store[Receipt]
}

func newService(logger mylog.Logger, nower mytime.Nower, pubsub mypubsub.PubSub, store mystore.Store[Receipt]) *service {
	return &service{
		logger: logger,
		nower:  nower,
		pubsub: pubsub,
		store:  store,
	}
}

func (s *service) Subscribe(c context.Context) error {
	err := s.pubsub.CreateTopic(c, purchaseevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", purchaseevents.TopicName, err)
	}

	err = s.pubsub.Subscribe(c, purchaseevents.TopicName, myhttp.GuessHostnameWithScheme()+eventPath)
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", purchaseevents.TopicName, err)
	}

	return nil
}

func (s *service) OnPurchaseFulfilled(c context.Context, topic string, event purchaseevents.PurchaseFulfilled) error {
	if event.PaymentReference == "" {
		return myerrors.NewInvalidInputErrorf("event on topic %s without payment reference", topic)
	}

	return s.store.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent
		receipt, found, err := s.store.Get(c, event.PaymentReference)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if found {
			receipt.DeliveryCount++
			s.logger.Log(c, event.PaymentReference, mylog.SeverityInfo, "Payment %s delivered %d times", event.PaymentReference, receipt.DeliveryCount)
		} else {
			receipt = Receipt{
				PaymentReference: event.PaymentReference,
				UserID:           event.UserID,
				CourseIDs:        event.CourseIDs,
				Email:            event.Email,
				Guest:            event.Guest,
				ReceivedAt:       s.nower.Now(),
				DeliveryCount:    1,
			}
			s.logger.Log(c, event.PaymentReference, mylog.SeverityInfo, "Payment %s of user %s fulfilled courses %s",
				event.PaymentReference, event.UserID, strings.Join(event.CourseIDs, ","))
		}

		err = s.store.Put(c, event.PaymentReference, receipt)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		return nil
	})
}

func (s *service) get(c context.Context, paymentReference string) (Receipt, error) {
	receipt, found, err := s.store.Get(c, paymentReference)
	if err != nil {
		return Receipt{}, myerrors.NewInternalError(err)
	}
	if !found {
		return Receipt{}, myerrors.NewNotFoundError(fmt.Errorf("no receipt for payment %s", paymentReference))
	}
	return receipt, nil
}
