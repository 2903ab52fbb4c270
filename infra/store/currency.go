package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/mstgnz/bluepay/provider"
	"github.com/shopspring/decimal"
)

// GetCurrencyByCode implements provider.CurrencyService
func (s *Store) GetCurrencyByCode(ctx context.Context, code string) (*provider.Currency, error) {
	var c provider.Currency
	err := s.queryRow(ctx, `SELECT id, code, rate FROM currencies WHERE code = ?`, strings.ToUpper(code)).
		Scan(&c.ID, &c.Code, &c.Rate)
	if err != nil {
		if err = notFound(err); err != nil {
			return nil, fmt.Errorf("get currency %s: %w", code, err)
		}
		return nil, nil
	}
	return &c, nil
}

// ConvertFromPrimaryStoreCurrency implements provider.CurrencyService.
// Rates are stored relative to the primary store currency.
func (s *Store) ConvertFromPrimaryStoreCurrency(_ context.Context, amount decimal.Decimal, target *provider.Currency) (decimal.Decimal, error) {
	if target == nil {
		return decimal.Zero, provider.NewConfigurationError("target currency is required")
	}
	if target.Rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, provider.NewConfigurationError("currency %s has no positive rate", target.Code)
	}
	return amount.Mul(target.Rate), nil
}

// SaveCurrency inserts or updates a currency rate by code
func (s *Store) SaveCurrency(ctx context.Context, c *provider.Currency) error {
	c.Code = strings.ToUpper(c.Code)
	id, err := s.insertID(ctx, `INSERT INTO currencies (code, rate) VALUES (?, ?)
		ON CONFLICT(code) DO UPDATE SET rate = excluded.rate`, c.Code, c.Rate)
	if err != nil {
		return fmt.Errorf("save currency %s: %w", c.Code, err)
	}
	c.ID = id
	return nil
}
