package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eventhub"

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by route, method and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	TicketsPurchased = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_purchased_total",
		Help:      "Tickets sold.",
	})

	// PurchaseRejections counts refused purchases by reason: seat_taken, sold_out, not_found, invalid.
	PurchaseRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchase_rejections_total",
		Help:      "Purchases refused, by reason.",
	}, []string{"reason"})

	PublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "publish_failures_total",
		Help:      "Domain events that could not be published, by subject.",
	}, []string{"subject"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Stats cache lookups by result (hit, miss, error).",
	}, []string{"result"})

	ConsumedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "consumed_messages_total",
		Help:      "Messages handled by consumers, by subject and outcome.",
	}, []string{"subject", "outcome"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
