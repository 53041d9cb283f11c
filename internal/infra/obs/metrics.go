package obs

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"gowaay/internal/app/middleware"
	"gowaay/internal/app/policies"
	"gowaay/internal/domain/ledger"
)

const namespace = "gowaay"

// Metrics holds the process collectors. The zero value and nil are both safe to call.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	messages     *prometheus.HistogramVec
	ledger       *prometheus.CounterVec
	gateway      *prometheus.HistogramVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics builds collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		messages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bus_message_duration_seconds",
			Help:      "Command and query handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "key", "outcome"}),
		ledger: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_ledger_transitions_total",
			Help:      "Payment ledger events by kind and resulting status.",
		}, []string{"event", "status", "outcome"}),
		gateway: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payment_gateway_call_duration_seconds",
			Help:      "Payment gateway call latency.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"operation", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.httpRequests, m.httpDuration, m.messages, m.ledger, m.gateway)
	}
	return m
}

// Default registers the process metrics with the global registry once.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

func (m *Metrics) ObserveHTTP(method, route string, status int, took time.Duration) {
	if m == nil || m.httpRequests == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

func (m *Metrics) ObserveMessage(kind, key string, took time.Duration, err error) {
	if m == nil || m.messages == nil {
		return
	}
	m.messages.WithLabelValues(kind, key, outcome(err)).Observe(took.Seconds())
}

func (m *Metrics) ObserveLedger(kind, paymentStatus string, err error) {
	if m == nil || m.ledger == nil {
		return
	}
	label := outcome(err)
	if errors.Is(err, ledger.ErrAlreadyCompleted) {
		label = "ignored"
	}
	m.ledger.WithLabelValues(kind, paymentStatus, label).Inc()
}

func (m *Metrics) ObserveGateway(operation string, took time.Duration, err error) {
	if m == nil || m.gateway == nil {
		return
	}
	m.gateway.WithLabelValues(operation, outcome(err)).Observe(took.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ middleware.Observer     = (*Metrics)(nil)
	_ policies.LedgerObserver = (*Metrics)(nil)
)
