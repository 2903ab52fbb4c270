package provider

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome_Apply(t *testing.T) {
	order := Order{
		PaymentStatus:              StatusPending,
		AuthorizationTransactionID: "A1",
		AVSResult:                  "N",
	}

	outcome := &Outcome{
		Kind:                     OutcomeCaptured,
		NewPaymentStatus:         StatusPaid,
		CaptureTransactionID:     "C1",
		CaptureTransactionResult: "Approved",
		AVSResult:                "Y",
	}
	outcome.Apply(&order)

	assert.Equal(t, StatusPaid, order.PaymentStatus)
	assert.Equal(t, "A1", order.AuthorizationTransactionID)
	assert.Equal(t, "C1", order.CaptureTransactionID)
	assert.Equal(t, "Approved", order.CaptureTransactionResult)
	assert.Equal(t, "Y", order.AVSResult)
}

func TestOutcome_FailedLeavesOrderUnchanged(t *testing.T) {
	order := Order{PaymentStatus: StatusAuthorized, AuthorizationTransactionID: "A1"}
	before := order

	Failed("declined").Apply(&order)
	assert.Equal(t, before, order)

	var nilOutcome *Outcome
	nilOutcome.Apply(&order)
	assert.Equal(t, before, order)
}

func TestOutcome_AddError(t *testing.T) {
	outcome := &Outcome{Kind: OutcomeAuthorized, NewPaymentStatus: StatusAuthorized}
	assert.True(t, outcome.Success())

	outcome.AddError("refund amount exceeds order total")
	assert.False(t, outcome.Success())
	assert.Equal(t, OutcomeFailed, outcome.Kind)
	assert.Empty(t, outcome.NewPaymentStatus)
	assert.Equal(t, []string{"refund amount exceeds order total"}, outcome.Errors)
}

func TestCardInfo_NeverFormatsCardData(t *testing.T) {
	card := CardInfo{CardNumber: "4111111111111111", ExpireMonth: 3, ExpireYear: 2027, CVV2: "987"}
	request := ProcessPaymentRequest{OrderGUID: "g", Card: card}

	for _, out := range []string{
		fmt.Sprint(card),
		fmt.Sprintf("%+v", card),
		fmt.Sprintf("%#v", card),
		fmt.Sprintf("%v", request),
		fmt.Sprintf("%+v", request),
	} {
		assert.NotContains(t, out, "4111111111111111")
		assert.NotContains(t, out, "987")
	}

	assert.Equal(t, "************1111", card.MaskedNumber())
	assert.Equal(t, "****", CardInfo{CardNumber: "41"}.MaskedNumber())
}

func TestOrder_JSONDecimals(t *testing.T) {
	var order Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"orderTotal":"100.10","refundedAmount":25.5}`), &order))

	assert.Equal(t, "100.1", order.OrderTotal.String())
	assert.Equal(t, "25.5", order.RefundedAmount.String())
}
