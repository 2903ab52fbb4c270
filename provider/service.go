package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mstgnz/bluepay/infra/logger"
	"github.com/mstgnz/bluepay/infra/metrics"
)

// PaymentService runs payment operations through registered payment methods.
// It measures and logs every operation but never applies outcomes to orders.
type PaymentService struct {
	registry *ProviderRegistry
	settings SettingStore
	services Services
	txLogger TransactionLogger
	cache    *MethodCache
	now      func() time.Time
}

// NewPaymentService creates a new payment service. txLogger may be nil.
func NewPaymentService(registry *ProviderRegistry, settings SettingStore, services Services, txLogger TransactionLogger) *PaymentService {
	return &PaymentService{
		registry: registry,
		settings: settings,
		services: services,
		txLogger: txLogger,
		now:      time.Now,
	}
}

// WithMethodCache makes the service reuse built payment methods until they are invalidated
func (s *PaymentService) WithMethodCache(cache *MethodCache) *PaymentService {
	s.cache = cache
	return s
}

// Method builds the named payment method from the current settings
func (s *PaymentService) Method(ctx context.Context, systemName string) (PaymentMethod, error) {
	if s.cache != nil {
		if m := s.cache.Get(systemName); m != nil {
			return m, nil
		}
	}

	m, err := s.registry.CreateProvider(ctx, systemName, s.settings)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(systemName, m)
	}
	return m, nil
}

// InvalidateMethod drops a cached payment method, typically after its settings changed
func (s *PaymentService) InvalidateMethod(systemName string) {
	if s.cache != nil {
		s.cache.Invalidate(systemName)
	}
}

// CacheStats returns method cache statistics, or zero stats when caching is off
func (s *PaymentService) CacheStats() CacheStats {
	if s.cache == nil {
		return CacheStats{}
	}
	return s.cache.Stats()
}

// Services returns the host collaborators handed to payment methods
func (s *PaymentService) Services() Services {
	return s.services
}

// ProcessPayment authorizes, or authorizes and captures, a new payment
func (s *PaymentService) ProcessPayment(ctx context.Context, systemName string, request ProcessPaymentRequest) (*Outcome, error) {
	record := TransactionRecord{
		OrderGUID:  request.OrderGUID,
		Amount:     request.OrderTotal.StringFixed(2),
		MaskedCard: request.Card.MaskedNumber(),
	}
	return s.run(ctx, systemName, "process_payment", record, func(m PaymentMethod) (*Outcome, error) {
		return m.ProcessPayment(ctx, s.services, request)
	})
}

// ProcessRecurringPayment starts a recurring schedule with its first charge
func (s *PaymentService) ProcessRecurringPayment(ctx context.Context, systemName string, request ProcessPaymentRequest) (*Outcome, error) {
	record := TransactionRecord{
		OrderGUID:  request.OrderGUID,
		Amount:     request.OrderTotal.StringFixed(2),
		MaskedCard: request.Card.MaskedNumber(),
	}
	return s.run(ctx, systemName, "process_recurring_payment", record, func(m PaymentMethod) (*Outcome, error) {
		return m.ProcessRecurringPayment(ctx, s.services, request)
	})
}

// Capture captures an authorized order
func (s *PaymentService) Capture(ctx context.Context, request CaptureRequest) (*Outcome, error) {
	record := orderRecord(request.Order)
	record.Amount = request.Order.OrderTotal.StringFixed(2)
	return s.run(ctx, request.Order.PaymentMethodSystemName, "capture", record, func(m PaymentMethod) (*Outcome, error) {
		return m.Capture(ctx, s.services, request)
	})
}

// Refund refunds a captured order
func (s *PaymentService) Refund(ctx context.Context, request RefundRequest) (*Outcome, error) {
	record := orderRecord(request.Order)
	record.Amount = request.AmountToRefund.StringFixed(2)
	return s.run(ctx, request.Order.PaymentMethodSystemName, "refund", record, func(m PaymentMethod) (*Outcome, error) {
		return m.Refund(ctx, s.services, request)
	})
}

// Void voids an order
func (s *PaymentService) Void(ctx context.Context, request VoidRequest) (*Outcome, error) {
	return s.run(ctx, request.Order.PaymentMethodSystemName, "void", orderRecord(request.Order), func(m PaymentMethod) (*Outcome, error) {
		return m.Void(ctx, s.services, request)
	})
}

// CancelRecurringPayment stops the recurring schedule of an order
func (s *PaymentService) CancelRecurringPayment(ctx context.Context, request CancelRecurringRequest) error {
	record := orderRecord(request.Order)
	record.TransactionID = request.Order.SubscriptionTransactionID
	_, err := s.run(ctx, request.Order.PaymentMethodSystemName, "cancel_recurring", record, func(m PaymentMethod) (*Outcome, error) {
		if err := m.CancelRecurringPayment(ctx, request); err != nil {
			return nil, err
		}
		return &Outcome{Kind: OutcomeVoided}, nil
	})
	return err
}

func orderRecord(order Order) TransactionRecord {
	return TransactionRecord{
		OrderID:   order.ID,
		OrderGUID: order.GUID,
	}
}

func (s *PaymentService) run(ctx context.Context, systemName, operation string, record TransactionRecord, call func(PaymentMethod) (*Outcome, error)) (*Outcome, error) {
	method, err := s.Method(ctx, systemName)
	if err != nil {
		metrics.IncOperationError(systemName, operation, errorKind(err))
		return nil, err
	}

	start := s.now()
	outcome, err := call(method)
	elapsed := s.now().Sub(start)
	if err == nil && outcome == nil {
		err = fmt.Errorf("%s: %s returned no outcome", systemName, operation)
	}

	record.Timestamp = start.UTC()
	record.Provider = systemName
	record.Operation = operation
	record.RequestID = middleware.GetReqID(ctx)
	record.ProcessingMs = elapsed.Milliseconds()

	logCtx := logger.LogContext{
		Provider:  systemName,
		RequestID: record.RequestID,
		OrderID:   record.OrderID,
		Fields: map[string]any{
			"operation":     operation,
			"processing_ms": record.ProcessingMs,
		},
	}

	if err != nil {
		kind := errorKind(err)
		record.ErrorCode = kind
		record.ErrorMessage = err.Error()
		metrics.IncOperationError(systemName, operation, kind)
		logger.Error(fmt.Sprintf("%s failed", operation), err, logCtx)
	} else {
		record.Outcome = outcome.Kind
		record.PaymentStatus = outcome.NewPaymentStatus
		record.TransactionID = firstNonEmpty(record.TransactionID, outcome.CaptureTransactionID, outcome.AuthorizationTransactionID)
		record.Messages = outcome.Errors
		metrics.ObserveOperation(systemName, operation, string(outcome.Kind), elapsed)

		logCtx.Fields["outcome"] = string(outcome.Kind)
		if outcome.Success() {
			logger.Info(fmt.Sprintf("%s succeeded", operation), logCtx)
		} else {
			logCtx.Fields["messages"] = outcome.Errors
			logger.Warn(fmt.Sprintf("%s declined", operation), logCtx)
		}
	}

	if s.txLogger != nil {
		if logErr := s.txLogger.LogTransaction(ctx, record); logErr != nil {
			logger.Warn("Failed to log payment transaction", logger.LogContext{
				Provider: systemName,
				Fields: map[string]any{
					"operation": operation,
					"error":     logErr.Error(),
				},
			})
		}
	}

	return outcome, err
}

func errorKind(err error) string {
	var validation ValidationErrors
	switch {
	case IsConfigurationError(err):
		return "configuration"
	case IsPreconditionError(err):
		return "precondition"
	case errors.As(err, &validation):
		return "validation"
	default:
		var gatewayErr *GatewayError
		if errors.As(err, &gatewayErr) {
			return "declined"
		}
		return "transport"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
