package provider

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	StatusPending           PaymentStatus = "pending"
	StatusAuthorized        PaymentStatus = "authorized"
	StatusPaid              PaymentStatus = "paid"
	StatusPartiallyRefunded PaymentStatus = "partially_refunded"
	StatusRefunded          PaymentStatus = "refunded"
	StatusVoided            PaymentStatus = "voided"
)

// RecurringPaymentType tells the host who drives the recurring schedule
type RecurringPaymentType string

const (
	RecurringNotSupported RecurringPaymentType = "not_supported"
	RecurringManual       RecurringPaymentType = "manual"
	RecurringAutomatic    RecurringPaymentType = "automatic"
)

// PaymentMethodType tells the host how checkout hands over to the method
type PaymentMethodType string

const (
	MethodStandard    PaymentMethodType = "standard"
	MethodRedirection PaymentMethodType = "redirection"
	MethodButton      PaymentMethodType = "button"
)

// CyclePeriod is the unit of a recurring cycle
type CyclePeriod string

const (
	PeriodDays   CyclePeriod = "Days"
	PeriodWeeks  CyclePeriod = "Weeks"
	PeriodMonths CyclePeriod = "Months"
	PeriodYears  CyclePeriod = "Years"
)

// Customer represents the buyer known to the host platform
type Customer struct {
	ID               int64  `json:"id"`
	GUID             string `json:"guid"`
	Email            string `json:"email,omitempty"`
	BillingAddressID int64  `json:"billingAddressId,omitempty"`
}

// Address represents a billing address
type Address struct {
	ID              int64  `json:"id"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Address1        string `json:"address1"`
	Address2        string `json:"address2,omitempty"`
	City            string `json:"city"`
	ZipPostalCode   string `json:"zipPostalCode"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	CountryID       int64  `json:"countryId,omitempty"`
	StateProvinceID int64  `json:"stateProvinceId,omitempty"`
}

// Country is a country reference of an address
type Country struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	ThreeLetterISOCode string `json:"threeLetterIsoCode"`
}

// StateProvince is a state or province reference of an address
type StateProvince struct {
	ID           int64  `json:"id"`
	CountryID    int64  `json:"countryId"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// Currency is a store currency with its rate against the primary store currency
type Currency struct {
	ID   int64           `json:"id"`
	Code string          `json:"code"`
	Rate decimal.Decimal `json:"rate"`
}

// Order carries the payment-related state of a placed order
type Order struct {
	ID                             int64           `json:"id"`
	GUID                           string          `json:"guid"`
	CustomerID                     int64           `json:"customerId"`
	PaymentMethodSystemName        string          `json:"paymentMethodSystemName"`
	OrderTotal                     decimal.Decimal `json:"orderTotal"`
	RefundedAmount                 decimal.Decimal `json:"refundedAmount"`
	PaymentStatus                  PaymentStatus   `json:"paymentStatus"`
	AuthorizationTransactionID     string          `json:"authorizationTransactionId,omitempty"`
	AuthorizationTransactionCode   string          `json:"authorizationTransactionCode,omitempty"`
	AuthorizationTransactionResult string          `json:"authorizationTransactionResult,omitempty"`
	CaptureTransactionID           string          `json:"captureTransactionId,omitempty"`
	CaptureTransactionResult       string          `json:"captureTransactionResult,omitempty"`
	SubscriptionTransactionID      string          `json:"subscriptionTransactionId,omitempty"`
	AVSResult                      string          `json:"avsResult,omitempty"`
}

// CardInfo holds card details for a single request. It must never be logged or stored.
type CardInfo struct {
	CardNumber  string `json:"cardNumber"`
	ExpireMonth int    `json:"expireMonth"`
	ExpireYear  int    `json:"expireYear"`
	CVV2        string `json:"cvv2"`
}

// MaskedNumber returns the card number with all but the last four digits hidden
func (c CardInfo) MaskedNumber() string {
	if len(c.CardNumber) <= 4 {
		return "****"
	}
	return "************" + c.CardNumber[len(c.CardNumber)-4:]
}

// String keeps card data out of formatted output
func (c CardInfo) String() string {
	return fmt.Sprintf("card(%s)", c.MaskedNumber())
}

// GoString keeps card data out of %#v output
func (c CardInfo) GoString() string {
	return c.String()
}

// ShoppingCartItem is a cart line used for fee calculation
type ShoppingCartItem struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// RecurringPayment is a recurring schedule created by the host after a recurring order
type RecurringPayment struct {
	ID             int64       `json:"id"`
	InitialOrderID int64       `json:"initialOrderId"`
	CycleLength    int         `json:"cycleLength"`
	CyclePeriod    CyclePeriod `json:"cyclePeriod"`
	TotalCycles    int         `json:"totalCycles"`
	CreatedOnUTC   time.Time   `json:"createdOnUtc"`
	IsActive       bool        `json:"isActive"`
}

// RecurringPaymentHistory is one charged installment of a recurring schedule
type RecurringPaymentHistory struct {
	ID                 int64     `json:"id"`
	RecurringPaymentID int64     `json:"recurringPaymentId"`
	OrderID            int64     `json:"orderId"`
	CreatedOnUTC       time.Time `json:"createdOnUtc"`
}

// ProcessPaymentRequest contains the checkout data for a new payment
type ProcessPaymentRequest struct {
	OrderGUID  string          `json:"orderGuid" validate:"required,uuid"`
	CustomerID int64           `json:"customerId" validate:"required,gt=0"`
	OrderTotal decimal.Decimal `json:"orderTotal"`
	CustomerIP string          `json:"customerIp,omitempty"`
	Card       CardInfo        `json:"card"`

	// Recurring fields, used by ProcessRecurringPayment only
	RecurringCycleLength int         `json:"recurringCycleLength,omitempty"`
	RecurringCyclePeriod CyclePeriod `json:"recurringCyclePeriod,omitempty"`
	RecurringTotalCycles int         `json:"recurringTotalCycles,omitempty"`
}

// CaptureRequest asks to capture a previously authorized order
type CaptureRequest struct {
	Order Order `json:"order"`
}

// RefundRequest asks to refund a captured order
type RefundRequest struct {
	Order           Order           `json:"order"`
	AmountToRefund  decimal.Decimal `json:"amountToRefund"`
	IsPartialRefund bool            `json:"isPartialRefund"`
}

// VoidRequest asks to void an order
type VoidRequest struct {
	Order Order `json:"order"`
}

// CancelRecurringRequest asks to stop the recurring schedule of an order
type CancelRecurringRequest struct {
	Order Order `json:"order"`
}

// OutcomeKind classifies the result of a gateway operation
type OutcomeKind string

const (
	OutcomeAuthorized        OutcomeKind = "authorized"
	OutcomeCaptured          OutcomeKind = "captured"
	OutcomeRefunded          OutcomeKind = "refunded"
	OutcomePartiallyRefunded OutcomeKind = "partially_refunded"
	OutcomeVoided            OutcomeKind = "voided"
	OutcomeFailed            OutcomeKind = "failed"
)

// Outcome is the normalized result of a payment operation.
// The caller decides whether and how to apply it to the order.
type Outcome struct {
	Kind                           OutcomeKind   `json:"kind"`
	NewPaymentStatus               PaymentStatus `json:"newPaymentStatus,omitempty"`
	AuthorizationTransactionID     string        `json:"authorizationTransactionId,omitempty"`
	AuthorizationTransactionCode   string        `json:"authorizationTransactionCode,omitempty"`
	AuthorizationTransactionResult string        `json:"authorizationTransactionResult,omitempty"`
	CaptureTransactionID           string        `json:"captureTransactionId,omitempty"`
	CaptureTransactionResult       string        `json:"captureTransactionResult,omitempty"`
	SubscriptionTransactionID      string        `json:"subscriptionTransactionId,omitempty"`
	AVSResult                      string        `json:"avsResult,omitempty"`
	Errors                         []string      `json:"errors,omitempty"`
}

// Failed builds a failed outcome carrying the given messages
func Failed(messages ...string) *Outcome {
	return &Outcome{Kind: OutcomeFailed, Errors: messages}
}

// Success reports whether the operation succeeded
func (o *Outcome) Success() bool {
	return o != nil && o.Kind != OutcomeFailed && len(o.Errors) == 0
}

// AddError marks the outcome as failed and appends a message
func (o *Outcome) AddError(message string) {
	o.Kind = OutcomeFailed
	o.NewPaymentStatus = ""
	o.Errors = append(o.Errors, message)
}

// Apply copies a successful outcome onto the order. A failed outcome leaves the order unchanged.
func (o *Outcome) Apply(order *Order) {
	if !o.Success() {
		return
	}
	if o.NewPaymentStatus != "" {
		order.PaymentStatus = o.NewPaymentStatus
	}
	if o.AuthorizationTransactionID != "" {
		order.AuthorizationTransactionID = o.AuthorizationTransactionID
	}
	if o.AuthorizationTransactionCode != "" {
		order.AuthorizationTransactionCode = o.AuthorizationTransactionCode
	}
	if o.AuthorizationTransactionResult != "" {
		order.AuthorizationTransactionResult = o.AuthorizationTransactionResult
	}
	if o.CaptureTransactionID != "" {
		order.CaptureTransactionID = o.CaptureTransactionID
	}
	if o.CaptureTransactionResult != "" {
		order.CaptureTransactionResult = o.CaptureTransactionResult
	}
	if o.SubscriptionTransactionID != "" {
		order.SubscriptionTransactionID = o.SubscriptionTransactionID
	}
	if o.AVSResult != "" {
		order.AVSResult = o.AVSResult
	}
}
