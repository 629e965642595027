package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bikerental"

var (
	once sync.Once

	quotesServed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Count of price estimates served.",
		},
	)

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_created_total",
			Help:      "Count of bookings created by bike kind.",
		},
		[]string{"kind"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflict_total",
			Help:      "Count of booking or extension attempts rejected for overlap.",
		},
	)

	settlements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_total",
			Help:      "Count of settled returns by outcome.",
		},
		[]string{"outcome"},
	)

	settlementAmount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_amount_paise_total",
			Help:      "Sum of refunds and additional charges issued at return, in paise.",
		},
		[]string{"direction"},
	)

	extensionHours = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extension_hours",
			Help:      "Billable hours added per extension.",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 24},
		},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Count of cron job runs by job and result.",
		},
		[]string{"job", "result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(quotesServed, bookingCreated, bookingConflicts, settlements, settlementAmount, extensionHours, jobRuns)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func IncQuote() {
	quotesServed.Inc()
}

func IncBookingCreated(kind string) {
	bookingCreated.WithLabelValues(kind).Inc()
}

func IncBookingConflict() {
	bookingConflicts.Inc()
}

// ObserveSettlement records one settled return. refund and charge are paise.
func ObserveSettlement(outcome string, refund, charge int64) {
	settlements.WithLabelValues(outcome).Inc()
	if refund > 0 {
		settlementAmount.WithLabelValues("refund").Add(float64(refund))
	}
	if charge > 0 {
		settlementAmount.WithLabelValues("charge").Add(float64(charge))
	}
}

func ObserveExtension(hours int64) {
	extensionHours.Observe(float64(hours))
}

func IncJobRun(job string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	jobRuns.WithLabelValues(job, result).Inc()
}
