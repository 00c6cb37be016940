package mypubsub

import (
	"context"
	"os"
	"sync"

	"github.com/MarcGrol/courseshop/lib/mylog"
)

// FakePubSub keeps published messages in memory, per topic.
type FakePubSub struct {
	sync.Mutex
	logger    mylog.Logger
	topics    map[string]bool
	published map[string][]string
}

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = func(c context.Context) (PubSub, func(), error) {
			return NewFake(), func() {}, nil
		}
	}
}

func NewFake() *FakePubSub {
	return &FakePubSub{
		logger:    mylog.New("pubsub"),
		topics:    map[string]bool{},
		published: map[string][]string{},
	}
}

func (ps *FakePubSub) Subscribe(c context.Context, topic string, urlToPostTo string) error {
	ps.logger.Log(c, topic, mylog.SeverityDebug, "Subscribed %s to topic %s", urlToPostTo, topic)
	return ps.CreateTopic(c, topic)
}

func (ps *FakePubSub) CreateTopic(c context.Context, topic string) error {
	ps.Lock()
	defer ps.Unlock()

	ps.topics[topic] = true
	return nil
}

func (ps *FakePubSub) Publish(c context.Context, topic string, data string) error {
	ps.Lock()
	defer ps.Unlock()

	ps.published[topic] = append(ps.published[topic], data)
	ps.logger.Log(c, topic, mylog.SeverityInfo, "Published message on topic %s", topic)

	return nil
}

func (ps *FakePubSub) Published(topic string) []string {
	ps.Lock()
	defer ps.Unlock()

	return append([]string{}, ps.published[topic]...)
}
