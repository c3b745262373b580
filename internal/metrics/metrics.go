package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service counters. A nil *Metrics is a valid no-op
// receiver, so tests can skip wiring it.
type Metrics struct {
	registry *prometheus.Registry

	ordersCreated      prometheus.Counter
	ordersDeleted      prometheus.Counter
	allocationFailures prometheus.Counter
	allocationDays     prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ordersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders booked successfully.",
		}),
		ordersDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "orders_deleted_total",
			Help: "Orders removed by id.",
		}),
		allocationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "allocation_failures_total",
			Help: "Capacity walks aborted by ledger errors or the walk ceiling.",
		}),
		allocationDays: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "allocation_days_per_order",
			Help:    "Working days an order's quantity was spread across.",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		}),
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) OrderCreated(daysWalked int) {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
	m.allocationDays.Observe(float64(daysWalked))
}

func (m *Metrics) OrderDeleted() {
	if m == nil {
		return
	}
	m.ordersDeleted.Inc()
}

func (m *Metrics) AllocationFailed() {
	if m == nil {
		return
	}
	m.allocationFailures.Inc()
}
