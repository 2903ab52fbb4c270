package provider

import (
	"context"
	"net/url"
	"sync"

	"github.com/shopspring/decimal"
)

// stubMethod is a PaymentMethod whose gateway operations return a canned outcome
type stubMethod struct {
	name      string
	outcome   *Outcome
	err       error
	cancelErr error
}

func (m *stubMethod) SystemName() string         { return m.name }
func (m *stubMethod) Capabilities() Capabilities { return Capabilities{} }
func (m *stubMethod) Description(context.Context, LocaleStore) (string, error) {
	return "stub", nil
}
func (m *stubMethod) ProcessPayment(context.Context, Services, ProcessPaymentRequest) (*Outcome, error) {
	return m.outcome, m.err
}
func (m *stubMethod) PostProcessPayment(context.Context, Order) error { return nil }
func (m *stubMethod) Capture(context.Context, Services, CaptureRequest) (*Outcome, error) {
	return m.outcome, m.err
}
func (m *stubMethod) Refund(context.Context, Services, RefundRequest) (*Outcome, error) {
	return m.outcome, m.err
}
func (m *stubMethod) Void(context.Context, Services, VoidRequest) (*Outcome, error) {
	return m.outcome, m.err
}
func (m *stubMethod) ProcessRecurringPayment(context.Context, Services, ProcessPaymentRequest) (*Outcome, error) {
	return m.outcome, m.err
}
func (m *stubMethod) CancelRecurringPayment(context.Context, CancelRecurringRequest) error {
	return m.cancelErr
}
func (m *stubMethod) CanRePostProcessPayment(context.Context, Order) (bool, error) {
	return false, nil
}
func (m *stubMethod) HidePaymentMethod(context.Context, []ShoppingCartItem) (bool, error) {
	return false, nil
}
func (m *stubMethod) AdditionalHandlingFee(context.Context, Services, []ShoppingCartItem) (decimal.Decimal, error) {
	return decimal.Zero, nil
}
func (m *stubMethod) ValidatePaymentForm(context.Context, LocaleStore, url.Values) ([]string, error) {
	return nil, nil
}
func (m *stubMethod) ExtractPaymentInfo(context.Context, url.Values) (*ProcessPaymentRequest, error) {
	return &ProcessPaymentRequest{}, nil
}
func (m *stubMethod) Install(context.Context, SettingStore, LocaleStore) error   { return nil }
func (m *stubMethod) Uninstall(context.Context, SettingStore, LocaleStore) error { return nil }

// stubFactory returns m and counts how many times it was built
func stubFactory(m *stubMethod, builds *int) ProviderFactory {
	return func(context.Context, SettingStore) (PaymentMethod, error) {
		if builds != nil {
			*builds++
		}
		return m, nil
	}
}

// recordingTxLogger keeps every record it receives
type recordingTxLogger struct {
	mu      sync.Mutex
	records []TransactionRecord
	err     error
}

func (l *recordingTxLogger) LogTransaction(_ context.Context, record TransactionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return l.err
}
