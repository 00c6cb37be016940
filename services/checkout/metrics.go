package checkout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var checkoutSessions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "courseshop_checkout_sessions_total",
	Help: "Checkout session attempts by result",
}, []string{"result"})
