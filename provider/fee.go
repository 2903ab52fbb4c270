package provider

import (
	"context"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DefaultFeeCalculator charges either a fixed fee or a percentage of the cart subtotal
type DefaultFeeCalculator struct{}

// CalculatePaymentAdditionalFee implements FeeCalculator. The result is rounded to two decimals.
func (DefaultFeeCalculator) CalculatePaymentAdditionalFee(_ context.Context, cart []ShoppingCartItem, fee decimal.Decimal, usePercentage bool) (decimal.Decimal, error) {
	if fee.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil
	}

	if !usePercentage {
		return fee.Round(2), nil
	}

	subtotal := decimal.Zero
	for _, item := range cart {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return subtotal.Mul(fee).Div(hundred).Round(2), nil
}
