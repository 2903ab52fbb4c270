package bluepay

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mstgnz/bluepay/provider"
	"github.com/shopspring/decimal"
)

// SystemName identifies BluePay on orders and in the provider registry
const SystemName = "Payments.BluePay"

const defaultDescription = "Pay by credit / debit card"

// BluePayProvider implements provider.PaymentMethod for BluePay
type BluePayProvider struct {
	settings Settings
	adapter  *Adapter
}

var _ provider.PaymentMethod = (*BluePayProvider)(nil)

// NewProvider creates a BluePay payment method with the given settings and gateway
func NewProvider(settings Settings, gateway Gateway) *BluePayProvider {
	return &BluePayProvider{
		settings: settings,
		adapter:  NewAdapter(gateway, settings.Credentials()),
	}
}

// NewFactory returns a provider.ProviderFactory that loads settings on every call.
// A nil gateway means the production BluePay HTTP client.
func NewFactory(gateway Gateway) provider.ProviderFactory {
	if gateway == nil {
		gateway = NewHTTPClient("", 0)
	}
	return func(ctx context.Context, store provider.SettingStore) (provider.PaymentMethod, error) {
		settings, err := LoadSettings(ctx, store)
		if err != nil {
			return nil, err
		}
		return NewProvider(settings, gateway), nil
	}
}

// Settings returns the settings the provider was built with
func (p *BluePayProvider) Settings() Settings {
	return p.settings
}

// SystemName returns the plugin system name the host routes by
func (p *BluePayProvider) SystemName() string {
	return SystemName
}

// Capabilities reports capture, partial refund, void and automatic recurring support
func (p *BluePayProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{
		SupportCapture:         true,
		SupportPartiallyRefund: true,
		SupportRefund:          true,
		SupportVoid:            true,
		RecurringPaymentType:   provider.RecurringAutomatic,
		PaymentMethodType:      provider.MethodStandard,
		SkipPaymentInfo:        false,
	}
}

// Description returns the localized checkout description
func (p *BluePayProvider) Description(ctx context.Context, locales provider.LocaleStore) (string, error) {
	return localize(ctx, locales, resourceDescription, defaultDescription)
}

// ProcessPayment authorizes the order total, capturing it too in AuthorizeAndCapture mode
func (p *BluePayProvider) ProcessPayment(ctx context.Context, services provider.Services, request provider.ProcessPaymentRequest) (*provider.Outcome, error) {
	if err := p.settings.Validate(); err != nil {
		return nil, err
	}

	payer, err := resolvePayer(ctx, services, request)
	if err != nil {
		return nil, err
	}

	captureImmediately := p.settings.TransactMode == TransactModeAuthorizeAndCapture
	return p.adapter.Authorize(ctx, services.Currency, payer, request.OrderTotal, captureImmediately)
}

// PostProcessPayment is a no-op; BluePay never redirects the customer
func (p *BluePayProvider) PostProcessPayment(context.Context, provider.Order) error {
	return nil
}

// Capture settles a previous authorization for the order total
func (p *BluePayProvider) Capture(ctx context.Context, services provider.Services, request provider.CaptureRequest) (*provider.Outcome, error) {
	if err := p.settings.Validate(); err != nil {
		return nil, err
	}
	return p.adapter.Capture(ctx, services.Currency, request.Order, request.Order.OrderTotal)
}

// Refund returns the requested amount of a captured order
func (p *BluePayProvider) Refund(ctx context.Context, services provider.Services, request provider.RefundRequest) (*provider.Outcome, error) {
	if err := p.settings.Validate(); err != nil {
		return nil, err
	}
	return p.adapter.Refund(ctx, services.Currency, request.Order, request.AmountToRefund, request.IsPartialRefund)
}

// Void cancels an authorization that was not captured
func (p *BluePayProvider) Void(ctx context.Context, _ provider.Services, request provider.VoidRequest) (*provider.Outcome, error) {
	if err := p.settings.Validate(); err != nil {
		return nil, err
	}
	return p.adapter.Void(ctx, request.Order)
}

// ProcessRecurringPayment charges the first installment and creates the rebilling schedule
func (p *BluePayProvider) ProcessRecurringPayment(ctx context.Context, services provider.Services, request provider.ProcessPaymentRequest) (*provider.Outcome, error) {
	if err := p.settings.Validate(); err != nil {
		return nil, err
	}

	payer, err := resolvePayer(ctx, services, request)
	if err != nil {
		return nil, err
	}

	return p.adapter.AuthorizeRecurring(ctx, services.Currency, payer, request.OrderTotal, Schedule{
		CycleLength: request.RecurringCycleLength,
		CyclePeriod: request.RecurringCyclePeriod,
		TotalCycles: request.RecurringTotalCycles,
	})
}

// CancelRecurringPayment stops the rebilling schedule at the gateway
func (p *BluePayProvider) CancelRecurringPayment(ctx context.Context, request provider.CancelRecurringRequest) error {
	if err := p.settings.Validate(); err != nil {
		return err
	}
	return p.adapter.CancelRecurring(ctx, request.Order.SubscriptionTransactionID)
}

// CanRePostProcessPayment always reports false
func (p *BluePayProvider) CanRePostProcessPayment(context.Context, provider.Order) (bool, error) {
	return false, nil
}

// HidePaymentMethod never hides BluePay
func (p *BluePayProvider) HidePaymentMethod(context.Context, []provider.ShoppingCartItem) (bool, error) {
	return false, nil
}

// AdditionalHandlingFee applies the configured fee to the cart
func (p *BluePayProvider) AdditionalHandlingFee(ctx context.Context, services provider.Services, cart []provider.ShoppingCartItem) (decimal.Decimal, error) {
	fees := services.Fees
	if fees == nil {
		fees = provider.DefaultFeeCalculator{}
	}
	return fees.CalculatePaymentAdditionalFee(ctx, cart, p.settings.AdditionalFee, p.settings.AdditionalFeePercentage)
}

// ValidatePaymentForm returns localized warnings for the checkout card fields
func (p *BluePayProvider) ValidatePaymentForm(ctx context.Context, locales provider.LocaleStore, form url.Values) ([]string, error) {
	return validateForm(ctx, locales, form)
}

// ExtractPaymentInfo builds a payment request from the checkout card fields
func (p *BluePayProvider) ExtractPaymentInfo(_ context.Context, form url.Values) (*provider.ProcessPaymentRequest, error) {
	return extractPaymentInfo(form)
}

// Install saves the default settings and locale resources
func (p *BluePayProvider) Install(ctx context.Context, settings provider.SettingStore, locales provider.LocaleStore) error {
	if err := DefaultSettings().Save(ctx, settings); err != nil {
		return err
	}
	return installLocales(ctx, locales)
}

// Uninstall removes the settings and locale resources
func (p *BluePayProvider) Uninstall(ctx context.Context, settings provider.SettingStore, locales provider.LocaleStore) error {
	if err := DeleteSettings(ctx, settings); err != nil {
		return err
	}
	return uninstallLocales(ctx, locales)
}

// resolvePayer loads customer, billing address, country and state through the host services
func resolvePayer(ctx context.Context, services provider.Services, request provider.ProcessPaymentRequest) (Payer, error) {
	if services.Customers == nil || services.Addresses == nil {
		return Payer{}, provider.NewConfigurationError("customer and address services are required")
	}

	payer := Payer{
		OrderGUID:  request.OrderGUID,
		CustomerIP: request.CustomerIP,
		Card:       request.Card,
	}

	customer, err := services.Customers.GetCustomerByID(ctx, request.CustomerID)
	if err != nil {
		return Payer{}, fmt.Errorf("load customer: %w", err)
	}
	if customer == nil {
		return Payer{}, provider.NewPreconditionError("customer", "cannot be loaded")
	}
	payer.Customer = customer

	address, err := services.Addresses.GetAddressByID(ctx, customer.BillingAddressID)
	if err != nil {
		return Payer{}, fmt.Errorf("load billing address: %w", err)
	}
	if address == nil {
		return Payer{}, provider.NewPreconditionError("billing address", "cannot be loaded")
	}
	payer.BillingAddress = address

	if address.CountryID != 0 && services.Countries != nil {
		if payer.Country, err = services.Countries.GetCountryByID(ctx, address.CountryID); err != nil {
			return Payer{}, fmt.Errorf("load country: %w", err)
		}
	}
	if address.StateProvinceID != 0 && services.States != nil {
		if payer.State, err = services.States.GetStateProvinceByID(ctx, address.StateProvinceID); err != nil {
			return Payer{}, fmt.Errorf("load state: %w", err)
		}
	}

	return payer, nil
}
