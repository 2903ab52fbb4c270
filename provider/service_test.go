package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(method *stubMethod, txLogger TransactionLogger) (*PaymentService, *int) {
	registry := NewProviderRegistry()
	builds := 0
	registry.Register(method.name, stubFactory(method, &builds))
	return NewPaymentService(registry, nil, Services{}, txLogger), &builds
}

func TestPaymentService_ProcessPaymentRecordsTransaction(t *testing.T) {
	method := &stubMethod{
		name: "Payments.Test",
		outcome: &Outcome{
			Kind:                       OutcomeAuthorized,
			NewPaymentStatus:           StatusAuthorized,
			AuthorizationTransactionID: "A77",
		},
	}
	txLogger := &recordingTxLogger{}
	service, _ := newTestService(method, txLogger)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-123")
	outcome, err := service.ProcessPayment(ctx, "Payments.Test", ProcessPaymentRequest{
		OrderGUID:  "guid-1",
		OrderTotal: decimal.RequireFromString("12.345"),
		Card:       CardInfo{CardNumber: "4111111111111111", CVV2: "123"},
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAuthorized, outcome.Kind)

	require.Len(t, txLogger.records, 1)
	record := txLogger.records[0]
	assert.Equal(t, "Payments.Test", record.Provider)
	assert.Equal(t, "process_payment", record.Operation)
	assert.Equal(t, "req-123", record.RequestID)
	assert.Equal(t, "guid-1", record.OrderGUID)
	assert.Equal(t, "12.35", record.Amount)
	assert.Equal(t, "************1111", record.MaskedCard)
	assert.Equal(t, OutcomeAuthorized, record.Outcome)
	assert.Equal(t, StatusAuthorized, record.PaymentStatus)
	assert.Equal(t, "A77", record.TransactionID)
	assert.Empty(t, record.ErrorCode)
}

func TestPaymentService_DeclineIsNotAnError(t *testing.T) {
	method := &stubMethod{name: "Payments.Test", outcome: Failed("DECLINED")}
	txLogger := &recordingTxLogger{}
	service, _ := newTestService(method, txLogger)

	outcome, err := service.Void(context.Background(), VoidRequest{Order: Order{ID: 4, PaymentMethodSystemName: "Payments.Test"}})
	require.NoError(t, err)
	assert.False(t, outcome.Success())

	require.Len(t, txLogger.records, 1)
	assert.Equal(t, OutcomeFailed, txLogger.records[0].Outcome)
	assert.Equal(t, []string{"DECLINED"}, txLogger.records[0].Messages)
	assert.Equal(t, int64(4), txLogger.records[0].OrderID)
}

func TestPaymentService_ErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind string
	}{
		{NewConfigurationError("USD missing"), "configuration"},
		{NewPreconditionError("order", "no capture id"), "precondition"},
		{ValidationErrors{"bad month"}, "validation"},
		{&GatewayError{Operation: "cancel recurring", Message: "no"}, "declined"},
		{errors.New("connection reset"), "transport"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			txLogger := &recordingTxLogger{}
			service, _ := newTestService(&stubMethod{name: "Payments.Test", err: tt.err}, txLogger)

			_, err := service.Refund(context.Background(), RefundRequest{
				Order:          Order{PaymentMethodSystemName: "Payments.Test"},
				AmountToRefund: decimal.NewFromInt(5),
			})
			assert.ErrorIs(t, err, tt.err)

			require.Len(t, txLogger.records, 1)
			assert.Equal(t, tt.kind, txLogger.records[0].ErrorCode)
			assert.Equal(t, "5.00", txLogger.records[0].Amount)
		})
	}
}

func TestPaymentService_NilOutcomeIsError(t *testing.T) {
	service, _ := newTestService(&stubMethod{name: "Payments.Test"}, nil)

	_, err := service.Capture(context.Background(), CaptureRequest{Order: Order{PaymentMethodSystemName: "Payments.Test"}})
	assert.ErrorContains(t, err, "returned no outcome")
}

func TestPaymentService_UnknownMethod(t *testing.T) {
	txLogger := &recordingTxLogger{}
	service, _ := newTestService(&stubMethod{name: "Payments.Test"}, txLogger)

	_, err := service.ProcessRecurringPayment(context.Background(), "Payments.Other", ProcessPaymentRequest{})
	assert.ErrorContains(t, err, "is not registered")
	assert.Empty(t, txLogger.records)
}

func TestPaymentService_CancelRecurringPayment(t *testing.T) {
	cancelErr := &GatewayError{Operation: "cancel recurring", Message: "INVALID REBILL"}
	txLogger := &recordingTxLogger{}
	method := &stubMethod{name: "Payments.Test", cancelErr: cancelErr}
	service, _ := newTestService(method, txLogger)

	request := CancelRecurringRequest{Order: Order{PaymentMethodSystemName: "Payments.Test", SubscriptionTransactionID: "RB1"}}
	assert.ErrorIs(t, service.CancelRecurringPayment(context.Background(), request), cancelErr)

	method.cancelErr = nil
	assert.NoError(t, service.CancelRecurringPayment(context.Background(), request))

	require.Len(t, txLogger.records, 2)
	assert.Equal(t, "declined", txLogger.records[0].ErrorCode)
	assert.Equal(t, "RB1", txLogger.records[1].TransactionID)
}

func TestPaymentService_TransactionLoggerFailureIsIgnored(t *testing.T) {
	method := &stubMethod{name: "Payments.Test", outcome: &Outcome{Kind: OutcomeVoided, NewPaymentStatus: StatusVoided}}
	service, _ := newTestService(method, &recordingTxLogger{err: errors.New("opensearch down")})

	outcome, err := service.Void(context.Background(), VoidRequest{Order: Order{PaymentMethodSystemName: "Payments.Test"}})
	require.NoError(t, err)
	assert.Equal(t, StatusVoided, outcome.NewPaymentStatus)
}

func TestPaymentService_MethodCache(t *testing.T) {
	method := &stubMethod{name: "Payments.Test", outcome: &Outcome{Kind: OutcomeVoided}}
	service, builds := newTestService(method, nil)
	service.WithMethodCache(NewMethodCache(time.Hour))

	for i := 0; i < 3; i++ {
		_, err := service.Method(context.Background(), "Payments.Test")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, *builds)

	service.InvalidateMethod("Payments.Test")
	_, err := service.Method(context.Background(), "Payments.Test")
	require.NoError(t, err)
	assert.Equal(t, 2, *builds)
	assert.Equal(t, 1, service.CacheStats().Size)
}

func TestPaymentService_WithoutCacheBuildsEveryTime(t *testing.T) {
	service, builds := newTestService(&stubMethod{name: "Payments.Test"}, nil)

	_, _ = service.Method(context.Background(), "Payments.Test")
	_, _ = service.Method(context.Background(), "Payments.Test")
	assert.Equal(t, 2, *builds)
	assert.Equal(t, CacheStats{}, service.CacheStats())
}
