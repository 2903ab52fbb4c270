package bluepay

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mstgnz/bluepay/provider"
	"github.com/shopspring/decimal"
)

// SettlementCurrency is the only currency BluePay settles in
const SettlementCurrency = "USD"

// settlementAmount converts an amount in the primary store currency to USD
// and formats it with two fraction digits, rounding half away from zero
func settlementAmount(ctx context.Context, currency provider.CurrencyService, amount decimal.Decimal) (string, error) {
	if currency == nil {
		return "", provider.NewConfigurationError("currency service is not configured")
	}

	usd, err := currency.GetCurrencyByCode(ctx, SettlementCurrency)
	if err != nil {
		return "", fmt.Errorf("bluepay: load %s currency: %w", SettlementCurrency, err)
	}
	if usd == nil {
		return "", provider.NewConfigurationError("%s currency could not be loaded", SettlementCurrency)
	}

	converted, err := currency.ConvertFromPrimaryStoreCurrency(ctx, amount, usd)
	if err != nil {
		return "", fmt.Errorf("bluepay: convert to %s: %w", SettlementCurrency, err)
	}

	return formatAmount(converted), nil
}

func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// cardExpire formats an expiry as MMYY
func cardExpire(month, year int) (string, error) {
	if month < 1 || month > 12 {
		return "", provider.ValidationErrors{fmt.Sprintf("invalid card expiry month %d", month)}
	}
	if year < 1 {
		return "", provider.ValidationErrors{fmt.Sprintf("invalid card expiry year %d", year)}
	}
	return fmt.Sprintf("%02d%02d", month, year%100), nil
}

// rebillExpression renders "<length> <PERIOD>" with the period's plural "s" removed, e.g. "1 MONTH"
func rebillExpression(length int, period provider.CyclePeriod) string {
	unit := strings.ToUpper(strings.TrimRight(string(period), "s"))
	return strconv.Itoa(length) + " " + unit
}

// rebillCycles is the number of charges after the first one, empty when the schedule is unbounded
func rebillCycles(totalCycles int) string {
	if totalCycles <= 0 {
		return ""
	}
	return strconv.Itoa(totalCycles - 1)
}
