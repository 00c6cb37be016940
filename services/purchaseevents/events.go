package purchaseevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/MarcGrol/courseshop/lib/myerrors"
	"github.com/MarcGrol/courseshop/lib/myevents"
)

const (
	TopicName             = "purchase"
	purchaseFulfilledName = TopicName + ".fulfilled"
)

//go:generate mockgen -source=events.go -package purchaseevents -destination purchase_event_service_mock.go PurchaseEventService
type PurchaseEventService interface {
	Subscribe(c context.Context) error
	OnPurchaseFulfilled(c context.Context, topic string, event PurchaseFulfilled) error
}

func DispatchEvent(c context.Context, reader io.Reader, service PurchaseEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case purchaseFulfilledName:
		{
			event := PurchaseFulfilled{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnPurchaseFulfilled(c, envelope.Topic, event)
		}
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("unsupported event %s", envelope.EventTypeName))
	}
}

// PurchaseFulfilled is published once the purchases of a completed payment are recorded.
// Its content depends only on the payment, so redelivery publishes the same envelope.
type PurchaseFulfilled struct {
	PaymentReference string
	UserID           string
	CourseIDs        []string
	Email            string
	Guest            bool
}

func (e PurchaseFulfilled) GetEventTypeName() string {
	return purchaseFulfilledName
}

func (e PurchaseFulfilled) GetAggregateName() string {
	return e.PaymentReference
}
