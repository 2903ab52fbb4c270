package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/mstgnz/bluepay/provider"
)

// CreateRecurringPayment stores a recurring schedule and publishes RecurringPaymentCreated.
// The schedule stays stored when a subscriber fails; the joined subscriber errors are returned.
func (s *Store) CreateRecurringPayment(ctx context.Context, rp *provider.RecurringPayment) error {
	if rp.CreatedOnUTC.IsZero() {
		rp.CreatedOnUTC = s.now().UTC()
	}

	id, err := s.insertID(ctx, `INSERT INTO recurring_payments (initial_order_id, cycle_length, cycle_period, total_cycles, created_on_utc, is_active)
		VALUES (?, ?, ?, ?, ?, ?)`, rp.InitialOrderID, rp.CycleLength, string(rp.CyclePeriod), rp.TotalCycles, rp.CreatedOnUTC, true)
	if err != nil {
		return fmt.Errorf("create recurring payment: %w", err)
	}
	rp.ID = id
	rp.IsActive = true

	if err := s.events.PublishRecurringPaymentCreated(ctx, provider.RecurringPaymentCreated{RecurringPayment: rp}); err != nil {
		return fmt.Errorf("recurring payment %d created: %w", id, err)
	}
	return nil
}

// GetRecurringPaymentByID loads a recurring schedule
func (s *Store) GetRecurringPaymentByID(ctx context.Context, id int64) (*provider.RecurringPayment, error) {
	var rp provider.RecurringPayment
	var period string
	err := s.queryRow(ctx, `SELECT id, initial_order_id, cycle_length, cycle_period, total_cycles, created_on_utc, is_active
		FROM recurring_payments WHERE id = ?`, id).
		Scan(&rp.ID, &rp.InitialOrderID, &rp.CycleLength, &period, &rp.TotalCycles, &rp.CreatedOnUTC, &rp.IsActive)
	if err != nil {
		if err = notFound(err); err != nil {
			return nil, fmt.Errorf("get recurring payment %d: %w", id, err)
		}
		return nil, nil
	}
	rp.CyclePeriod = provider.CyclePeriod(period)
	return &rp, nil
}

// DeactivateRecurringPayments marks every schedule started by the order inactive.
// Already inactive schedules are left as they are.
func (s *Store) DeactivateRecurringPayments(ctx context.Context, initialOrderID int64) error {
	_, err := s.exec(ctx, `UPDATE recurring_payments SET is_active = ? WHERE initial_order_id = ? AND is_active = ?`,
		false, initialOrderID, true)
	if err != nil {
		return fmt.Errorf("deactivate recurring payments of order %d: %w", initialOrderID, err)
	}
	return nil
}

// CountRecurringPaymentHistory implements provider.OrderService
func (s *Store) CountRecurringPaymentHistory(ctx context.Context, recurringPaymentID int64) (int, error) {
	var n int
	err := s.queryRow(ctx, `SELECT COUNT(*) FROM recurring_payment_history WHERE recurring_payment_id = ?`, recurringPaymentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count recurring payment history %d: %w", recurringPaymentID, err)
	}
	return n, nil
}

// InsertRecurringPaymentHistory implements provider.OrderService.
// A duplicate installment for the same order is rejected by the unique constraint.
func (s *Store) InsertRecurringPaymentHistory(ctx context.Context, history provider.RecurringPaymentHistory) error {
	_, err := s.exec(ctx, `INSERT INTO recurring_payment_history (recurring_payment_id, order_id, created_on_utc) VALUES (?, ?, ?)`,
		history.RecurringPaymentID, history.OrderID, history.CreatedOnUTC.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("installment of order %d already recorded for recurring payment %d: %w",
				history.OrderID, history.RecurringPaymentID, ErrDuplicate)
		}
		return fmt.Errorf("insert recurring payment history: %w", err)
	}
	return nil
}

// ListRecurringPaymentHistory returns the installments of a schedule, oldest first
func (s *Store) ListRecurringPaymentHistory(ctx context.Context, recurringPaymentID int64) ([]provider.RecurringPaymentHistory, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`SELECT id, recurring_payment_id, order_id, created_on_utc
		FROM recurring_payment_history WHERE recurring_payment_id = ? ORDER BY id`), recurringPaymentID)
	if err != nil {
		return nil, fmt.Errorf("list recurring payment history %d: %w", recurringPaymentID, err)
	}
	defer rows.Close()

	var history []provider.RecurringPaymentHistory
	for rows.Next() {
		var h provider.RecurringPaymentHistory
		if err := rows.Scan(&h.ID, &h.RecurringPaymentID, &h.OrderID, &h.CreatedOnUTC); err != nil {
			return nil, fmt.Errorf("scan recurring payment history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// ErrDuplicate is returned when a unique constraint rejects an insert
var ErrDuplicate = errors.New("duplicate record")

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}
