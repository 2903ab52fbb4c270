// Package store is the reference host persistence for the BluePay payment method.
// It implements the host services of package provider over database/sql,
// on SQLite by default or PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mstgnz/bluepay/infra/conn"
	"github.com/mstgnz/bluepay/infra/logger"
	"github.com/mstgnz/bluepay/provider"
)

// Store implements the provider host services
type Store struct {
	db     *conn.DB
	events *provider.EventPublisher
	now    func() time.Time
}

var (
	_ provider.CurrencyService      = (*Store)(nil)
	_ provider.CustomerService      = (*Store)(nil)
	_ provider.AddressService       = (*Store)(nil)
	_ provider.CountryService       = (*Store)(nil)
	_ provider.StateProvinceService = (*Store)(nil)
	_ provider.OrderService         = (*Store)(nil)
	_ provider.SettingStore         = (*Store)(nil)
	_ provider.LocaleStore          = (*Store)(nil)
	_ provider.TransactionLogger    = (*Store)(nil)
)

// New creates a store on db and migrates its schema. events may be nil.
func New(ctx context.Context, db *conn.DB, events *provider.EventPublisher) (*Store, error) {
	if events == nil {
		events = provider.NewEventPublisher()
	}
	s := &Store{db: db, events: events, now: time.Now}
	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Events returns the publisher notified when recurring payments are created
func (s *Store) Events() *provider.EventPublisher {
	return s.events
}

// Services bundles the store as the host collaborators of a payment method
func (s *Store) Services() provider.Services {
	return provider.Services{
		Currency:  s,
		Customers: s,
		Addresses: s,
		Countries: s,
		States:    s,
		Fees:      provider.DefaultFeeCalculator{},
		Locales:   s,
	}
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Stats returns the connection pool statistics
func (s *Store) Stats() sql.DBStats {
	return s.db.Stats()
}

// Migrate creates missing tables
func (s *Store) Migrate(ctx context.Context) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.db.Driver == conn.DriverPostgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, strings.ReplaceAll(stmt, "{{id}}", idColumn)); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	logger.Debug("Store schema ready", logger.LogContext{Fields: map[string]any{"driver": s.db.Driver}})
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS countries (
		id {{id}},
		name TEXT NOT NULL,
		three_letter_iso_code TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS state_provinces (
		id {{id}},
		country_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		abbreviation TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id {{id}},
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		address1 TEXT NOT NULL DEFAULT '',
		address2 TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		zip_postal_code TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		country_id BIGINT NOT NULL DEFAULT 0,
		state_province_id BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id {{id}},
		guid TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		billing_address_id BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS currencies (
		id {{id}},
		code TEXT NOT NULL UNIQUE,
		rate NUMERIC(18,6) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id {{id}},
		guid TEXT NOT NULL UNIQUE,
		customer_id BIGINT NOT NULL,
		payment_method_system_name TEXT NOT NULL,
		order_total NUMERIC(18,4) NOT NULL,
		refunded_amount NUMERIC(18,4) NOT NULL DEFAULT 0,
		payment_status TEXT NOT NULL,
		authorization_transaction_id TEXT NOT NULL DEFAULT '',
		authorization_transaction_code TEXT NOT NULL DEFAULT '',
		authorization_transaction_result TEXT NOT NULL DEFAULT '',
		capture_transaction_id TEXT NOT NULL DEFAULT '',
		capture_transaction_result TEXT NOT NULL DEFAULT '',
		subscription_transaction_id TEXT NOT NULL DEFAULT '',
		avs_result TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_authorization ON orders(authorization_transaction_id, payment_method_system_name)`,
	`CREATE TABLE IF NOT EXISTS recurring_payments (
		id {{id}},
		initial_order_id BIGINT NOT NULL,
		cycle_length INTEGER NOT NULL,
		cycle_period TEXT NOT NULL,
		total_cycles INTEGER NOT NULL,
		created_on_utc TIMESTAMP NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS recurring_payment_history (
		id {{id}},
		recurring_payment_id BIGINT NOT NULL,
		order_id BIGINT NOT NULL,
		created_on_utc TIMESTAMP NOT NULL,
		UNIQUE(recurring_payment_id, order_id)
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS locale_resources (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transaction_logs (
		id {{id}},
		created_at TIMESTAMP NOT NULL,
		provider TEXT NOT NULL,
		operation TEXT NOT NULL,
		request_id TEXT NOT NULL DEFAULT '',
		order_id BIGINT NOT NULL DEFAULT 0,
		order_guid TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL DEFAULT '',
		masked_card TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL DEFAULT '',
		payment_status TEXT NOT NULL DEFAULT '',
		transaction_id TEXT NOT NULL DEFAULT '',
		messages TEXT NOT NULL DEFAULT '',
		processing_ms BIGINT NOT NULL DEFAULT 0,
		error_code TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transaction_logs_order ON transaction_logs(order_id)`,
}

// insertID runs an INSERT ... RETURNING id
func (s *Store) insertID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := s.db.QueryRowContext(ctx, s.db.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.db.Rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.db.Rebind(query), args...)
}

// notFound turns sql.ErrNoRows into a nil result, the host convention for missing entities
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
