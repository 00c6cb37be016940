package mypubsub

import "context"

// PubSub fans messages out to push subscribers. Subscribers receive a myevents.PushRequest
// posted to the url they subscribed with.
//
//go:generate mockgen -source=pubsub_api.go -package mypubsub -destination pubsub_mock.go PubSub
type PubSub interface {
	Publish(c context.Context, topic string, data string) error
	CreateTopic(c context.Context, topic string) error
	Subscribe(c context.Context, topic string, urlToPostTo string) error
}

// New is set at init: the gcloud implementation when running in a cloud project, the in-memory fake otherwise.
var New func(c context.Context) (PubSub, func(), error)
