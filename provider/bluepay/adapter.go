package bluepay

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mstgnz/bluepay/provider"
	"github.com/shopspring/decimal"
)

// Adapter maps host payment operations onto BluePay requests and normalizes the results.
// It never mutates orders.
type Adapter struct {
	gateway     Gateway
	credentials Credentials
}

// NewAdapter creates an adapter sending through gateway with the given credentials
func NewAdapter(gateway Gateway, credentials Credentials) *Adapter {
	return &Adapter{
		gateway:     gateway,
		credentials: credentials,
	}
}

// Payer is the resolved checkout data of a new payment
type Payer struct {
	OrderGUID      string
	CustomerIP     string
	Customer       *provider.Customer
	BillingAddress *provider.Address
	Country        *provider.Country
	State          *provider.StateProvince
	Card           provider.CardInfo
}

// Schedule describes a recurring billing cycle
type Schedule struct {
	CycleLength int
	CyclePeriod provider.CyclePeriod
	TotalCycles int
}

// Authorize sends a SALE when captureImmediately is set and an AUTH otherwise
func (a *Adapter) Authorize(ctx context.Context, currency provider.CurrencyService, payer Payer, amount decimal.Decimal, captureImmediately bool) (*provider.Outcome, error) {
	transType := TransAuth
	if captureImmediately {
		transType = TransSale
	}

	request, err := a.saleRequest(ctx, currency, payer, amount, transType)
	if err != nil {
		return nil, err
	}

	result, err := a.gateway.Post(ctx, request)
	if err != nil {
		return nil, err
	}
	if !result.Approved() {
		return provider.Failed(result.Message), nil
	}

	outcome := &provider.Outcome{
		AVSResult:                    result.AVS,
		AuthorizationTransactionCode: result.AuthCode,
	}
	if captureImmediately {
		outcome.Kind = provider.OutcomeCaptured
		outcome.NewPaymentStatus = provider.StatusPaid
		outcome.CaptureTransactionID = result.TransactionID
		outcome.CaptureTransactionResult = result.Message
	} else {
		outcome.Kind = provider.OutcomeAuthorized
		outcome.NewPaymentStatus = provider.StatusAuthorized
		outcome.AuthorizationTransactionID = result.TransactionID
		outcome.AuthorizationTransactionResult = result.Message
	}

	return outcome, nil
}

// AuthorizeRecurring sends a SALE that also creates a rebilling schedule on the gateway
func (a *Adapter) AuthorizeRecurring(ctx context.Context, currency provider.CurrencyService, payer Payer, amount decimal.Decimal, schedule Schedule) (*provider.Outcome, error) {
	request, err := a.saleRequest(ctx, currency, payer, amount, TransSale)
	if err != nil {
		return nil, err
	}

	expression := rebillExpression(schedule.CycleLength, schedule.CyclePeriod)
	request.Rebill = &Rebill{
		Amount:     request.Amount,
		FirstDate:  expression,
		Expression: expression,
		Cycles:     rebillCycles(schedule.TotalCycles),
	}

	result, err := a.gateway.Post(ctx, request)
	if err != nil {
		return nil, err
	}
	if !result.Approved() {
		return provider.Failed(result.Message), nil
	}

	return &provider.Outcome{
		Kind:                         provider.OutcomeCaptured,
		NewPaymentStatus:             provider.StatusPaid,
		SubscriptionTransactionID:    result.RebillID,
		AuthorizationTransactionCode: result.AuthCode,
		AVSResult:                    result.AVS,
		AuthorizationTransactionID:   result.TransactionID,
		CaptureTransactionID:         result.TransactionID,
		CaptureTransactionResult:     result.Message,
	}, nil
}

// Capture captures amount against the order's authorization
func (a *Adapter) Capture(ctx context.Context, currency provider.CurrencyService, order provider.Order, amount decimal.Decimal) (*provider.Outcome, error) {
	if order.AuthorizationTransactionID == "" {
		return nil, provider.NewPreconditionError("order", "authorization transaction id is empty")
	}

	usdAmount, err := settlementAmount(ctx, currency, amount)
	if err != nil {
		return nil, err
	}

	result, err := a.gateway.Post(ctx, Request{
		Credentials: a.credentials,
		Type:        TransCapture,
		MasterID:    order.AuthorizationTransactionID,
		Amount:      usdAmount,
	})
	if err != nil {
		return nil, err
	}
	if !result.Approved() {
		return provider.Failed(result.Message), nil
	}

	return &provider.Outcome{
		Kind:                     provider.OutcomeCaptured,
		NewPaymentStatus:         provider.StatusPaid,
		CaptureTransactionID:     result.TransactionID,
		CaptureTransactionResult: result.Message,
	}, nil
}

// Refund refunds against the order's capture. A full refund sends no amount.
func (a *Adapter) Refund(ctx context.Context, currency provider.CurrencyService, order provider.Order, amountToRefund decimal.Decimal, isPartial bool) (*provider.Outcome, error) {
	if order.CaptureTransactionID == "" {
		return nil, provider.NewPreconditionError("order", "capture transaction id is empty")
	}

	request := Request{
		Credentials: a.credentials,
		Type:        TransRefund,
		MasterID:    order.CaptureTransactionID,
	}
	if isPartial {
		usdAmount, err := settlementAmount(ctx, currency, amountToRefund)
		if err != nil {
			return nil, err
		}
		request.Amount = usdAmount
	}

	result, err := a.gateway.Post(ctx, request)
	if err != nil {
		return nil, err
	}
	if !result.Approved() {
		return provider.Failed(result.Message), nil
	}

	if isPartial && order.RefundedAmount.Add(amountToRefund).LessThan(order.OrderTotal) {
		return &provider.Outcome{
			Kind:             provider.OutcomePartiallyRefunded,
			NewPaymentStatus: provider.StatusPartiallyRefunded,
		}, nil
	}

	return &provider.Outcome{
		Kind:             provider.OutcomeRefunded,
		NewPaymentStatus: provider.StatusRefunded,
	}, nil
}

// Void voids the order's authorization, or its capture when it was never authorized separately
func (a *Adapter) Void(ctx context.Context, order provider.Order) (*provider.Outcome, error) {
	masterID := order.AuthorizationTransactionID
	if masterID == "" {
		masterID = order.CaptureTransactionID
	}
	if masterID == "" {
		return nil, provider.NewPreconditionError("order", "no authorization or capture transaction id to void")
	}

	result, err := a.gateway.Post(ctx, Request{
		Credentials: a.credentials,
		Type:        TransVoid,
		MasterID:    masterID,
	})
	if err != nil {
		return nil, err
	}
	if !result.Approved() {
		return provider.Failed(result.Message), nil
	}

	return &provider.Outcome{
		Kind:             provider.OutcomeVoided,
		NewPaymentStatus: provider.StatusVoided,
	}, nil
}

// CancelRecurring stops the rebilling schedule identified by subscriptionID
func (a *Adapter) CancelRecurring(ctx context.Context, subscriptionID string) error {
	if subscriptionID == "" {
		return provider.NewPreconditionError("order", "subscription transaction id is empty")
	}

	result, err := a.gateway.CancelRebill(ctx, CancelRebillRequest{
		Credentials: a.credentials,
		RebillID:    subscriptionID,
	})
	if err != nil {
		return err
	}
	if !result.Stopped() {
		message := result.Message
		if message == "" {
			message = fmt.Sprintf("rebill status is %q", result.Status)
		}
		return &provider.GatewayError{Operation: "cancel recurring", Message: message}
	}

	return nil
}

func (a *Adapter) saleRequest(ctx context.Context, currency provider.CurrencyService, payer Payer, amount decimal.Decimal, transType TransactionType) (Request, error) {
	if payer.Customer == nil {
		return Request{}, provider.NewPreconditionError("customer", "cannot be loaded")
	}
	if payer.BillingAddress == nil {
		return Request{}, provider.NewPreconditionError("billing address", "cannot be loaded")
	}

	expire, err := cardExpire(payer.Card.ExpireMonth, payer.Card.ExpireYear)
	if err != nil {
		return Request{}, err
	}

	usdAmount, err := settlementAmount(ctx, currency, amount)
	if err != nil {
		return Request{}, err
	}

	address := payer.BillingAddress
	billing := Billing{
		FirstName: address.FirstName,
		LastName:  address.LastName,
		Email:     address.Email,
		Address1:  address.Address1,
		Address2:  address.Address2,
		City:      address.City,
		Zip:       address.ZipPostalCode,
		Phone:     address.PhoneNumber,
	}
	if payer.Country != nil {
		billing.Country = payer.Country.ThreeLetterISOCode
	}
	if payer.State != nil {
		billing.State = payer.State.Abbreviation
	}

	return Request{
		Credentials: a.credentials,
		Type:        transType,
		CustomerIP:  payer.CustomerIP,
		CustomID1:   strconv.FormatInt(payer.Customer.ID, 10),
		CustomID2:   payer.Customer.GUID,
		OrderID:     payer.OrderGUID,
		InvoiceID:   payer.OrderGUID,
		Amount:      usdAmount,
		Billing:     billing,
		Card: Card{
			Number: payer.Card.CardNumber,
			Expire: expire,
			CVV2:   payer.Card.CVV2,
		},
	}, nil
}
