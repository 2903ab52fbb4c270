package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mstgnz/bluepay/provider"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, guid, customer_id, payment_method_system_name, order_total, refunded_amount,
	payment_status, authorization_transaction_id, authorization_transaction_code,
	authorization_transaction_result, capture_transaction_id, capture_transaction_result,
	subscription_transaction_id, avs_result`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*provider.Order, error) {
	var o provider.Order
	var status string
	err := row.Scan(&o.ID, &o.GUID, &o.CustomerID, &o.PaymentMethodSystemName, &o.OrderTotal, &o.RefundedAmount,
		&status, &o.AuthorizationTransactionID, &o.AuthorizationTransactionCode,
		&o.AuthorizationTransactionResult, &o.CaptureTransactionID, &o.CaptureTransactionResult,
		&o.SubscriptionTransactionID, &o.AVSResult)
	if err != nil {
		return nil, err
	}
	o.PaymentStatus = provider.PaymentStatus(status)
	return &o, nil
}

// GetOrderByID implements provider.OrderService
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*provider.Order, error) {
	order, err := scanOrder(s.queryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if err != nil {
		if err = notFound(err); err != nil {
			return nil, fmt.Errorf("get order %d: %w", id, err)
		}
		return nil, nil
	}
	return order, nil
}

// GetOrderByGUID loads an order by its GUID
func (s *Store) GetOrderByGUID(ctx context.Context, guid string) (*provider.Order, error) {
	order, err := scanOrder(s.queryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE guid = ?`, guid))
	if err != nil {
		if err = notFound(err); err != nil {
			return nil, fmt.Errorf("get order %s: %w", guid, err)
		}
		return nil, nil
	}
	return order, nil
}

// GetOrderByAuthorizationTransactionIDAndPaymentMethod finds the order a gateway
// authorization reference belongs to
func (s *Store) GetOrderByAuthorizationTransactionIDAndPaymentMethod(ctx context.Context, authorizationTransactionID, systemName string) (*provider.Order, error) {
	if authorizationTransactionID == "" {
		return nil, nil
	}
	order, err := scanOrder(s.queryRow(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE authorization_transaction_id = ? AND payment_method_system_name = ?
		ORDER BY id DESC LIMIT 1`, authorizationTransactionID, systemName))
	if err != nil {
		if err = notFound(err); err != nil {
			return nil, fmt.Errorf("get order by authorization %s: %w", authorizationTransactionID, err)
		}
		return nil, nil
	}
	return order, nil
}

// CreateOrder inserts an order and sets its ID. An empty status becomes pending.
func (s *Store) CreateOrder(ctx context.Context, o *provider.Order) error {
	if o.PaymentStatus == "" {
		o.PaymentStatus = provider.StatusPending
	}
	id, err := s.insertID(ctx, `INSERT INTO orders (guid, customer_id, payment_method_system_name, order_total,
		refunded_amount, payment_status, authorization_transaction_id, authorization_transaction_code,
		authorization_transaction_result, capture_transaction_id, capture_transaction_result,
		subscription_transaction_id, avs_result) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.GUID, o.CustomerID, o.PaymentMethodSystemName, o.OrderTotal, o.RefundedAmount, string(o.PaymentStatus),
		o.AuthorizationTransactionID, o.AuthorizationTransactionCode, o.AuthorizationTransactionResult,
		o.CaptureTransactionID, o.CaptureTransactionResult, o.SubscriptionTransactionID, o.AVSResult)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	o.ID = id
	return nil
}

// ApplyOutcome applies a payment outcome to an order in one transaction and returns the updated order.
// refunded is added to the order's refunded amount when the outcome succeeded.
// A failed outcome leaves the order untouched.
func (s *Store) ApplyOutcome(ctx context.Context, orderID int64, outcome *provider.Outcome, refunded decimal.Decimal) (*provider.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin apply outcome: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	order, err := scanOrder(tx.QueryRowContext(ctx, s.db.Rebind(`SELECT `+orderColumns+` FROM orders WHERE id = ?`), orderID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, provider.NewPreconditionError("order", fmt.Sprintf("order %d cannot be loaded", orderID))
		}
		return nil, fmt.Errorf("load order %d: %w", orderID, err)
	}

	if !outcome.Success() {
		return order, nil
	}

	outcome.Apply(order)
	if refunded.IsPositive() {
		order.RefundedAmount = order.RefundedAmount.Add(refunded)
	}

	_, err = tx.ExecContext(ctx, s.db.Rebind(`UPDATE orders SET refunded_amount = ?, payment_status = ?,
		authorization_transaction_id = ?, authorization_transaction_code = ?, authorization_transaction_result = ?,
		capture_transaction_id = ?, capture_transaction_result = ?, subscription_transaction_id = ?, avs_result = ?
		WHERE id = ?`),
		order.RefundedAmount, string(order.PaymentStatus),
		order.AuthorizationTransactionID, order.AuthorizationTransactionCode, order.AuthorizationTransactionResult,
		order.CaptureTransactionID, order.CaptureTransactionResult, order.SubscriptionTransactionID, order.AVSResult,
		order.ID)
	if err != nil {
		return nil, fmt.Errorf("update order %d: %w", orderID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit apply outcome: %w", err)
	}
	return order, nil
}
