package metrics

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once       sync.Once
	collectors []prometheus.Collector
)

// register enqueues collectors; MustRegister hands them to the default registry
func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister registers all collectors with the default Prometheus registry exactly once
func MustRegister() {
	once.Do(func() {
		if len(collectors) > 0 {
			prometheus.MustRegister(collectors...)
		}
	})
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

func init() {
	register(
		gatewayOperationsTotal,
		gatewayOperationLatency,
		gatewayErrorsTotal,
		recurringInstallmentsTotal,
		httpRequestsTotal,
	)
}

var (
	gatewayOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bluepay_gateway_operations_total",
			Help: "Payment operations by provider, operation and outcome kind.",
		},
		[]string{"provider", "operation", "outcome"},
	)

	gatewayOperationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bluepay_gateway_operation_latency_ms",
			Help:    "Payment operation latency in milliseconds.",
			Buckets: []float64{25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"provider", "operation"},
	)

	gatewayErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bluepay_gateway_errors_total",
			Help: "Payment operations that returned an error instead of an outcome.",
		},
		[]string{"provider", "operation", "kind"},
	)

	recurringInstallmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bluepay_recurring_installments_total",
			Help: "Recurring payment created events by result (recorded/skipped).",
		},
		[]string{"result"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bluepay_http_requests_total",
			Help: "HTTP API requests by route and status code class.",
		},
		[]string{"route", "code"},
	)
)

// ObserveOperation records one completed payment operation
func ObserveOperation(provider, operation, outcome string, elapsed time.Duration) {
	gatewayOperationsTotal.WithLabelValues(norm(provider), norm(operation), norm(outcome)).Inc()
	gatewayOperationLatency.WithLabelValues(norm(provider), norm(operation)).Observe(float64(elapsed.Milliseconds()))
}

// IncOperationError records a payment operation that ended in an error
func IncOperationError(provider, operation, kind string) {
	gatewayErrorsTotal.WithLabelValues(norm(provider), norm(operation), norm(kind)).Inc()
}

// IncRecurringInstallment records the result of handling a recurring payment created event
func IncRecurringInstallment(result string) {
	recurringInstallmentsTotal.WithLabelValues(norm(result)).Inc()
}

// IncHTTPRequest records one API request
func IncHTTPRequest(route string, status int) {
	httpRequestsTotal.WithLabelValues(norm(route), codeClass(status)).Inc()
}

func codeClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func norm(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return s
}
