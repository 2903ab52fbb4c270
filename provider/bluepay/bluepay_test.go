package bluepay

import (
	"context"
	"net/url"
	"testing"

	"github.com/mstgnz/bluepay/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func processRequest() provider.ProcessPaymentRequest {
	return provider.ProcessPaymentRequest{
		OrderGUID:  "0b9c3c4e-5d6f-4a1b-9c2d-3e4f5a6b7c8d",
		CustomerID: 7,
		OrderTotal: decimal.RequireFromString("25"),
		CustomerIP: "203.0.113.9",
		Card:       testCard(),
	}
}

func TestBluePayProvider_Metadata(t *testing.T) {
	p := NewProvider(testSettings(), &fakeGateway{})

	assert.Equal(t, "Payments.BluePay", p.SystemName())
	assert.Equal(t, provider.Capabilities{
		SupportCapture:         true,
		SupportPartiallyRefund: true,
		SupportRefund:          true,
		SupportVoid:            true,
		RecurringPaymentType:   provider.RecurringAutomatic,
		PaymentMethodType:      provider.MethodStandard,
	}, p.Capabilities())

	ctx := context.Background()
	canRepost, err := p.CanRePostProcessPayment(ctx, provider.Order{})
	require.NoError(t, err)
	assert.False(t, canRepost)

	hidden, err := p.HidePaymentMethod(ctx, nil)
	require.NoError(t, err)
	assert.False(t, hidden)

	assert.NoError(t, p.PostProcessPayment(ctx, provider.Order{}))
}

func TestBluePayProvider_Description(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(testSettings(), &fakeGateway{})

	desc, err := p.Description(ctx, newMemoryStore())
	require.NoError(t, err)
	assert.Equal(t, "Pay by credit / debit card", desc)

	locales := newMemoryStore()
	require.NoError(t, locales.AddOrUpdateResource(ctx, resourceDescription, "Kartla öde"))
	desc, err = p.Description(ctx, locales)
	require.NoError(t, err)
	assert.Equal(t, "Kartla öde", desc)
}

func TestBluePayProvider_ProcessPayment(t *testing.T) {
	tests := []struct {
		name     string
		mode     TransactMode
		wantType TransactionType
		wantKind provider.OutcomeKind
	}{
		{"authorize", TransactModeAuthorize, TransAuth, provider.OutcomeAuthorized},
		{"authorize_and_capture", TransactModeAuthorizeAndCapture, TransSale, provider.OutcomeCaptured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testSettings()
			settings.TransactMode = tt.mode
			gw := &fakeGateway{result: approved("T1")}

			outcome, err := NewProvider(settings, gw).ProcessPayment(context.Background(), newServices(usdCurrency("1")), processRequest())
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, outcome.Kind)
			assert.Equal(t, tt.wantType, gw.last().Type)
			assert.Equal(t, "25.00", gw.last().Amount)
			assert.Equal(t, "Jane", gw.last().Billing.FirstName)
		})
	}
}

func TestBluePayProvider_ProcessPaymentUnresolvedCustomer(t *testing.T) {
	gw := &fakeGateway{result: approved("T1")}
	request := processRequest()
	request.CustomerID = 999

	_, err := NewProvider(testSettings(), gw).ProcessPayment(context.Background(), newServices(usdCurrency("1")), request)
	assert.True(t, provider.IsPreconditionError(err))
	assert.Empty(t, gw.requests)
}

func TestBluePayProvider_ProcessPaymentMissingServices(t *testing.T) {
	_, err := NewProvider(testSettings(), &fakeGateway{}).ProcessPayment(context.Background(), provider.Services{}, processRequest())
	assert.True(t, provider.IsConfigurationError(err))
}

func TestBluePayProvider_InvalidSettingsRejectOperations(t *testing.T) {
	gw := &fakeGateway{result: approved("T1")}
	p := NewProvider(Settings{TransactMode: TransactModeAuthorize}, gw)
	ctx := context.Background()
	services := newServices(usdCurrency("1"))
	order := provider.Order{AuthorizationTransactionID: "A1", CaptureTransactionID: "C1", SubscriptionTransactionID: "RB1"}

	_, err := p.ProcessPayment(ctx, services, processRequest())
	assert.True(t, provider.IsConfigurationError(err))
	_, err = p.ProcessRecurringPayment(ctx, services, processRequest())
	assert.True(t, provider.IsConfigurationError(err))
	_, err = p.Capture(ctx, services, provider.CaptureRequest{Order: order})
	assert.True(t, provider.IsConfigurationError(err))
	_, err = p.Refund(ctx, services, provider.RefundRequest{Order: order})
	assert.True(t, provider.IsConfigurationError(err))
	_, err = p.Void(ctx, services, provider.VoidRequest{Order: order})
	assert.True(t, provider.IsConfigurationError(err))
	err = p.CancelRecurringPayment(ctx, provider.CancelRecurringRequest{Order: order})
	assert.True(t, provider.IsConfigurationError(err))

	assert.Empty(t, gw.requests)
	assert.Empty(t, gw.cancelRequests)
}

func TestBluePayProvider_ProcessRecurringPayment(t *testing.T) {
	gw := &fakeGateway{result: approved("T9")}
	gw.result.RebillID = "RB9"

	request := processRequest()
	request.RecurringCycleLength = 1
	request.RecurringCyclePeriod = provider.PeriodMonths
	request.RecurringTotalCycles = 12

	outcome, err := NewProvider(testSettings(), gw).ProcessRecurringPayment(context.Background(), newServices(usdCurrency("1")), request)
	require.NoError(t, err)
	assert.Equal(t, "RB9", outcome.SubscriptionTransactionID)

	values := gw.last().Values()
	assert.Equal(t, "1 MONTH", values.Get("REB_EXPR"))
	assert.Equal(t, "11", values.Get("REB_CYCLES"))
}

func TestBluePayProvider_CaptureRefundVoidCancel(t *testing.T) {
	ctx := context.Background()
	services := newServices(usdCurrency("1"))
	order := provider.Order{
		AuthorizationTransactionID: "A1",
		CaptureTransactionID:       "C1",
		SubscriptionTransactionID:  "RB1",
		OrderTotal:                 decimal.NewFromInt(80),
	}

	gw := &fakeGateway{result: approved("X1"), cancelResult: CancelResult{Status: "stopped"}}
	p := NewProvider(testSettings(), gw)

	outcome, err := p.Capture(ctx, services, provider.CaptureRequest{Order: order})
	require.NoError(t, err)
	assert.Equal(t, provider.StatusPaid, outcome.NewPaymentStatus)
	assert.Equal(t, "80.00", gw.last().Amount)

	outcome, err = p.Refund(ctx, services, provider.RefundRequest{Order: order, AmountToRefund: decimal.NewFromInt(30), IsPartialRefund: true})
	require.NoError(t, err)
	assert.Equal(t, provider.StatusPartiallyRefunded, outcome.NewPaymentStatus)

	outcome, err = p.Void(ctx, services, provider.VoidRequest{Order: order})
	require.NoError(t, err)
	assert.Equal(t, provider.StatusVoided, outcome.NewPaymentStatus)
	assert.Equal(t, "A1", gw.last().MasterID)

	require.NoError(t, p.CancelRecurringPayment(ctx, provider.CancelRecurringRequest{Order: order}))
	assert.Equal(t, "RB1", gw.cancelRequests[0].RebillID)
}

func TestBluePayProvider_AdditionalHandlingFee(t *testing.T) {
	ctx := context.Background()
	cart := []provider.ShoppingCartItem{
		{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		{ProductID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("5.50")},
	}

	settings := testSettings()
	settings.AdditionalFee = decimal.RequireFromString("1.5")
	fee, err := NewProvider(settings, &fakeGateway{}).AdditionalHandlingFee(ctx, provider.Services{}, cart)
	require.NoError(t, err)
	assert.Equal(t, "1.50", fee.StringFixed(2))

	settings.AdditionalFee = decimal.NewFromInt(10)
	settings.AdditionalFeePercentage = true
	fee, err = NewProvider(settings, &fakeGateway{}).AdditionalHandlingFee(ctx, provider.Services{}, cart)
	require.NoError(t, err)
	assert.Equal(t, "2.55", fee.StringFixed(2))
}

func TestBluePayProvider_InstallUninstall(t *testing.T) {
	ctx := context.Background()
	settings := newMemoryStore()
	locales := newMemoryStore()
	p := NewProvider(Settings{}, &fakeGateway{})

	require.NoError(t, p.Install(ctx, settings, locales))
	assert.Len(t, settings.values, 7)
	assert.Len(t, locales.values, 15)
	assert.Equal(t, "true", settings.values[keyUseSandbox])
	assert.Equal(t, "0", settings.values[keyTransactMode])
	assert.Equal(t, "Pay by credit / debit card", locales.values[resourceDescription])

	require.NoError(t, p.Uninstall(ctx, settings, locales))
	assert.Empty(t, settings.values)
	assert.Empty(t, locales.values)
}

func TestBluePayProvider_InstallStoreError(t *testing.T) {
	settings := newMemoryStore()
	settings.failOn = keySecretKey

	err := NewProvider(Settings{}, &fakeGateway{}).Install(context.Background(), settings, newMemoryStore())
	assert.ErrorIs(t, err, errStore)
}

func TestBluePayProvider_FormDelegation(t *testing.T) {
	p := NewProvider(testSettings(), &fakeGateway{})
	form := url.Values{
		FormCardNumber:  {"4111111111111111"},
		FormExpireMonth: {"3"},
		FormExpireYear:  {"2027"},
		FormCardCode:    {"12"},
	}

	warnings, err := p.ValidatePaymentForm(context.Background(), nil, form)
	require.NoError(t, err)
	assert.Equal(t, []string{"Wrong card code"}, warnings)

	request, err := p.ExtractPaymentInfo(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, "12", request.Card.CVV2)
}

func TestNewFactory_LoadsSettingsFromStore(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	require.NoError(t, testSettings().Save(ctx, store))

	registry := provider.NewProviderRegistry()
	registry.Register(SystemName, NewFactory(&fakeGateway{}))

	method, err := registry.CreateProvider(ctx, SystemName, store)
	require.NoError(t, err)

	bp, ok := method.(*BluePayProvider)
	require.True(t, ok)
	assert.Equal(t, testSettings().AccountID, bp.Settings().AccountID)

	store.failOn = keyAccountID
	_, err = registry.CreateProvider(ctx, SystemName, store)
	assert.ErrorIs(t, err, errStore)
}

func TestDefaultRegistryHasBluePay(t *testing.T) {
	assert.Contains(t, provider.GetAvailableProviders(), SystemName)
}
