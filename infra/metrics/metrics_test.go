package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	counter := gatewayOperationsTotal.WithLabelValues("Payments.BluePay", "capture", "captured")
	before := testutil.ToFloat64(counter)

	ObserveOperation("Payments.BluePay", "capture", "captured", 120*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestIncOperationErrorNormalizesEmptyLabels(t *testing.T) {
	counter := gatewayErrorsTotal.WithLabelValues("unknown", "refund", "unknown")
	before := testutil.ToFloat64(counter)

	IncOperationError(" ", "refund", "")

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestIncHTTPRequestCodeClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 302: "3xx", 402: "4xx", 503: "5xx"}
	for status, class := range tests {
		counter := httpRequestsTotal.WithLabelValues("/v1/payments", class)
		before := testutil.ToFloat64(counter)

		IncHTTPRequest("/v1/payments", status)

		assert.Equal(t, before+1, testutil.ToFloat64(counter), "status %d", status)
	}
}

func TestHandlerExposesRegisteredCollectors(t *testing.T) {
	MustRegister()
	MustRegister()
	IncRecurringInstallment("recorded")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bluepay_recurring_installments_total")
}
