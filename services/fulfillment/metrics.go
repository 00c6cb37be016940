package fulfillment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeFulfilled          = "fulfilled"
	outcomeIgnored            = "ignored"
	outcomeDuplicate          = "duplicate"
	outcomeMalformed          = "malformed"
	outcomeNoCourses          = "no_courses"
	outcomeUnassignable       = "unassignable"
	outcomeIdentityFailed     = "identity_failed"
	outcomePersistenceFailed  = "persistence_failed"
	outcomeSignatureFailed    = "signature_failed"
	outcomeConfigurationError = "configuration_error"
)

var webhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "courseshop_webhook_events_total",
	Help: "Payment provider notifications by outcome",
}, []string{"outcome"})
