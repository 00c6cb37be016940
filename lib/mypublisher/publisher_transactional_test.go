package mypublisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/courseshop/lib/myevents"
	"github.com/MarcGrol/courseshop/lib/mypubsub"
	"github.com/MarcGrol/courseshop/lib/myqueue"
	"github.com/MarcGrol/courseshop/lib/mystore"
	"github.com/MarcGrol/courseshop/lib/mytime"
)

type courseBought struct {
	Reference string
}

func (e courseBought) GetEventTypeName() string { return "course.bought" }
func (e courseBought) GetAggregateName() string { return e.Reference }

func setup(t *testing.T, ctrl *gomock.Controller) (*TransactionalPublisher, *mypubsub.FakePubSub, *myqueue.FakeTaskQueue) {
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	outbox, _, err := mystore.NewInMemoryStore[myevents.EventEnvelope](context.TODO())
	require.NoError(t, err)

	ps := mypubsub.NewFake()
	queue := myqueue.NewFake()

	return NewWithOutbox(outbox, ps, queue, nower), ps, queue
}

func TestTransactionalPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	c := context.TODO()

	t.Run("publish enqueues trigger and flush relays once", func(t *testing.T) {
		sut, ps, queue := setup(t, ctrl)

		err := sut.Publish(c, "purchase", courseBought{Reference: "pi_1"})
		require.NoError(t, err)

		tasks := queue.Tasks()
		require.Len(t, tasks, 1)
		assert.Contains(t, tasks[0].WebhookURLPath, "/pubsub/purchase/")

		count, err := sut.Flush(c)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		count, err = sut.Flush(c)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		published := ps.Published("purchase")
		require.Len(t, published, 1)
		envelope := myevents.EventEnvelope{}
		require.NoError(t, json.Unmarshal([]byte(published[0]), &envelope))
		assert.Equal(t, "course.bought", envelope.EventTypeName)
		assert.Equal(t, "pi_1", envelope.AggregateUID)
		assert.JSONEq(t, `{"Reference":"pi_1"}`, envelope.EventPayload)
	})

	t.Run("same event twice yields one envelope", func(t *testing.T) {
		sut, ps, _ := setup(t, ctrl)

		require.NoError(t, sut.Publish(c, "purchase", courseBought{Reference: "pi_2"}))
		require.NoError(t, sut.Publish(c, "purchase", courseBought{Reference: "pi_2"}))

		_, err := sut.Flush(c)
		require.NoError(t, err)
		assert.Len(t, ps.Published("purchase"), 1)
	})

	t.Run("same event after flush is not relayed again", func(t *testing.T) {
		sut, ps, queue := setup(t, ctrl)

		require.NoError(t, sut.Publish(c, "purchase", courseBought{Reference: "pi_4"}))
		count, err := sut.Flush(c)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		require.NoError(t, sut.Publish(c, "purchase", courseBought{Reference: "pi_4"}))
		count, err = sut.Flush(c)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		assert.Len(t, ps.Published("purchase"), 1)
		assert.Len(t, queue.Tasks(), 1)
	})

	t.Run("trigger endpoint flushes", func(t *testing.T) {
		sut, ps, queue := setup(t, ctrl)
		require.NoError(t, sut.Publish(c, "purchase", courseBought{Reference: "pi_3"}))

		router := mux.NewRouter()
		sut.RegisterEndpoints(c, router)

		request, err := http.NewRequest(http.MethodPut, queue.Tasks()[0].WebhookURLPath, nil)
		require.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, http.StatusOK, response.Code)
		assert.Len(t, ps.Published("purchase"), 1)
	})
}
