package provider

import (
	"context"

	"github.com/shopspring/decimal"
)

// CurrencyService looks up store currencies and converts amounts between them
type CurrencyService interface {
	// GetCurrencyByCode returns nil without error when the currency is not configured
	GetCurrencyByCode(ctx context.Context, code string) (*Currency, error)

	// ConvertFromPrimaryStoreCurrency converts an amount in the primary store currency into target
	ConvertFromPrimaryStoreCurrency(ctx context.Context, amount decimal.Decimal, target *Currency) (decimal.Decimal, error)
}

// CustomerService resolves customers. A missing customer yields nil without error.
type CustomerService interface {
	GetCustomerByID(ctx context.Context, id int64) (*Customer, error)
}

// AddressService resolves addresses. A missing address yields nil without error.
type AddressService interface {
	GetAddressByID(ctx context.Context, id int64) (*Address, error)
}

// CountryService resolves countries. A missing country yields nil without error.
type CountryService interface {
	GetCountryByID(ctx context.Context, id int64) (*Country, error)
}

// StateProvinceService resolves states. A missing state yields nil without error.
type StateProvinceService interface {
	GetStateProvinceByID(ctx context.Context, id int64) (*StateProvince, error)
}

// FeeCalculator computes the additional handling fee of a payment method for a cart
type FeeCalculator interface {
	CalculatePaymentAdditionalFee(ctx context.Context, cart []ShoppingCartItem, fee decimal.Decimal, usePercentage bool) (decimal.Decimal, error)
}

// OrderService is the slice of order persistence the recurring installment recorder needs
type OrderService interface {
	GetOrderByID(ctx context.Context, id int64) (*Order, error)
	CountRecurringPaymentHistory(ctx context.Context, recurringPaymentID int64) (int, error)
	InsertRecurringPaymentHistory(ctx context.Context, history RecurringPaymentHistory) error
}

// SettingStore persists plugin settings as string key/value pairs
type SettingStore interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SaveSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// LocaleStore persists localized label strings
type LocaleStore interface {
	GetResource(ctx context.Context, key string) (string, error)
	AddOrUpdateResource(ctx context.Context, key, value string) error
	DeleteResource(ctx context.Context, key string) error
}

// Services groups the host collaborators handed to a payment method for one operation
type Services struct {
	Currency  CurrencyService
	Customers CustomerService
	Addresses AddressService
	Countries CountryService
	States    StateProvinceService
	Fees      FeeCalculator
	Locales   LocaleStore
}
