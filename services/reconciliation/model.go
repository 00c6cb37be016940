package reconciliation

import "time"

// Receipt records a fulfilled payment as seen by downstream consumers of the purchase topic.
type Receipt struct {
	PaymentReference string
	UserID           string
	CourseIDs        []string
	Email            string
	Guest            bool
	ReceivedAt       time.Time
	DeliveryCount    int
}
