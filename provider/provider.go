package provider

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"
)

// Capabilities describes what a payment method supports
type Capabilities struct {
	SupportCapture         bool                 `json:"supportCapture"`
	SupportPartiallyRefund bool                 `json:"supportPartiallyRefund"`
	SupportRefund          bool                 `json:"supportRefund"`
	SupportVoid            bool                 `json:"supportVoid"`
	RecurringPaymentType   RecurringPaymentType `json:"recurringPaymentType"`
	PaymentMethodType      PaymentMethodType    `json:"paymentMethodType"`
	SkipPaymentInfo        bool                 `json:"skipPaymentInfo"`
}

// PaymentMethod defines the contract the host platform drives during checkout and order management
type PaymentMethod interface {
	// SystemName returns the unique name the host stores on orders paid with this method
	SystemName() string

	// Capabilities returns the capability descriptor
	Capabilities() Capabilities

	// Description returns the localized description shown at checkout
	Description(ctx context.Context, locales LocaleStore) (string, error)

	// ProcessPayment authorizes, or authorizes and captures, a new payment
	ProcessPayment(ctx context.Context, services Services, request ProcessPaymentRequest) (*Outcome, error)

	// PostProcessPayment runs after the order is placed; used by redirection methods
	PostProcessPayment(ctx context.Context, order Order) error

	// Capture captures an authorized payment
	Capture(ctx context.Context, services Services, request CaptureRequest) (*Outcome, error)

	// Refund refunds a captured payment, fully or partially
	Refund(ctx context.Context, services Services, request RefundRequest) (*Outcome, error)

	// Void voids a payment
	Void(ctx context.Context, services Services, request VoidRequest) (*Outcome, error)

	// ProcessRecurringPayment starts a gateway-driven recurring schedule with its first charge
	ProcessRecurringPayment(ctx context.Context, services Services, request ProcessPaymentRequest) (*Outcome, error)

	// CancelRecurringPayment stops a recurring schedule
	CancelRecurringPayment(ctx context.Context, request CancelRecurringRequest) error

	// CanRePostProcessPayment reports whether a customer may resume an incomplete payment
	CanRePostProcessPayment(ctx context.Context, order Order) (bool, error)

	// HidePaymentMethod reports whether the method should be hidden for the cart
	HidePaymentMethod(ctx context.Context, cart []ShoppingCartItem) (bool, error)

	// AdditionalHandlingFee returns the extra fee charged for using the method
	AdditionalHandlingFee(ctx context.Context, services Services, cart []ShoppingCartItem) (decimal.Decimal, error)

	// ValidatePaymentForm checks submitted checkout fields and returns user-facing warnings
	ValidatePaymentForm(ctx context.Context, locales LocaleStore, form url.Values) ([]string, error)

	// ExtractPaymentInfo builds a process-payment request from submitted checkout fields
	ExtractPaymentInfo(ctx context.Context, form url.Values) (*ProcessPaymentRequest, error)

	// Install writes default settings and locale resources
	Install(ctx context.Context, settings SettingStore, locales LocaleStore) error

	// Uninstall removes settings and locale resources
	Uninstall(ctx context.Context, settings SettingStore, locales LocaleStore) error
}

// ProviderFactory creates a payment method from its persisted settings
type ProviderFactory func(ctx context.Context, settings SettingStore) (PaymentMethod, error)
