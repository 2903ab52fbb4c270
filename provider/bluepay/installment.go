package bluepay

import (
	"context"
	"fmt"
	"time"

	"github.com/mstgnz/bluepay/infra/logger"
	"github.com/mstgnz/bluepay/infra/metrics"
	"github.com/mstgnz/bluepay/provider"
)

// InstallmentRecorder records the first installment of a BluePay recurring schedule.
// BluePay charges that installment during checkout, so the host never sees it as a separate payment.
//
// Two concurrent events for the same schedule may both observe an empty history;
// the store's uniqueness constraint on the first installment rejects the second insert.
type InstallmentRecorder struct {
	orders provider.OrderService
	now    func() time.Time
}

// NewInstallmentRecorder creates a recorder. now defaults to time.Now.
func NewInstallmentRecorder(orders provider.OrderService, now func() time.Time) *InstallmentRecorder {
	if now == nil {
		now = time.Now
	}
	return &InstallmentRecorder{
		orders: orders,
		now:    now,
	}
}

// HandleRecurringPaymentCreated implements provider.RecurringPaymentCreatedHandler
func (r *InstallmentRecorder) HandleRecurringPaymentCreated(ctx context.Context, event provider.RecurringPaymentCreated) error {
	rp := event.RecurringPayment
	if rp == nil {
		return nil
	}

	count, err := r.orders.CountRecurringPaymentHistory(ctx, rp.ID)
	if err != nil {
		return fmt.Errorf("count recurring payment history: %w", err)
	}

	order, err := r.orders.GetOrderByID(ctx, rp.InitialOrderID)
	if err != nil {
		return fmt.Errorf("load initial order: %w", err)
	}
	if order == nil {
		return provider.NewPreconditionError("order", fmt.Sprintf("initial order %d cannot be loaded", rp.InitialOrderID))
	}

	if count != 0 || order.PaymentMethodSystemName != SystemName {
		metrics.IncRecurringInstallment("skipped")
		return nil
	}

	err = r.orders.InsertRecurringPaymentHistory(ctx, provider.RecurringPaymentHistory{
		RecurringPaymentID: rp.ID,
		OrderID:            rp.InitialOrderID,
		CreatedOnUTC:       r.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert recurring payment history: %w", err)
	}

	metrics.IncRecurringInstallment("recorded")
	logger.Info("Recorded first recurring installment", logger.LogContext{
		Provider: SystemName,
		OrderID:  rp.InitialOrderID,
		Fields: map[string]any{
			"recurring_payment_id": rp.ID,
		},
	})

	return nil
}
