package myqueue

import (
	"context"
)

// Task asks the queue to PUT Payload to WebhookURLPath on this service, retrying until it succeeds.
// UID doubles as the task name, so enqueueing the same UID twice schedules one delivery.
type Task struct {
	UID            string
	WebhookURLPath string
	Payload        []byte
	IsLastAttempt  bool
}

var New func(c context.Context) (TaskQueuer, func(), error)

//go:generate mockgen -source=api.go -package myqueue -destination queuer_mock.go TaskQueuer
type TaskQueuer interface {
	Enqueue(c context.Context, task Task) error
	// IsLastAttempt returns the current and maximum number of delivery attempts of a task.
	IsLastAttempt(c context.Context, taskUID string) (int32, int32)
}
