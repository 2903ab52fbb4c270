package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mstgnz/bluepay/provider"
)

// LogTransaction implements provider.TransactionLogger. Records carry masked card data only.
func (s *Store) LogTransaction(ctx context.Context, r provider.TransactionRecord) error {
	messages := ""
	if len(r.Messages) > 0 {
		b, err := json.Marshal(r.Messages)
		if err != nil {
			return fmt.Errorf("marshal transaction messages: %w", err)
		}
		messages = string(b)
	}

	createdAt := r.Timestamp
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	_, err := s.exec(ctx, `INSERT INTO transaction_logs (created_at, provider, operation, request_id, order_id, order_guid,
		amount, masked_card, outcome, payment_status, transaction_id, messages, processing_ms, error_code, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		createdAt.UTC(), r.Provider, r.Operation, r.RequestID, r.OrderID, r.OrderGUID,
		r.Amount, r.MaskedCard, string(r.Outcome), string(r.PaymentStatus), r.TransactionID, messages,
		r.ProcessingMs, r.ErrorCode, r.ErrorMessage)
	if err != nil {
		return fmt.Errorf("insert transaction log: %w", err)
	}
	return nil
}

// ListTransactionLogs returns the logged operations of an order, oldest first
func (s *Store) ListTransactionLogs(ctx context.Context, orderID int64) ([]provider.TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`SELECT created_at, provider, operation, request_id, order_id, order_guid,
		amount, masked_card, outcome, payment_status, transaction_id, messages, processing_ms, error_code, error_message
		FROM transaction_logs WHERE order_id = ? ORDER BY id`), orderID)
	if err != nil {
		return nil, fmt.Errorf("list transaction logs of order %d: %w", orderID, err)
	}
	defer rows.Close()

	var records []provider.TransactionRecord
	for rows.Next() {
		var (
			r                     provider.TransactionRecord
			outcome, status, msgs string
		)
		if err := rows.Scan(&r.Timestamp, &r.Provider, &r.Operation, &r.RequestID, &r.OrderID, &r.OrderGUID,
			&r.Amount, &r.MaskedCard, &outcome, &status, &r.TransactionID, &msgs,
			&r.ProcessingMs, &r.ErrorCode, &r.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan transaction log: %w", err)
		}
		r.Outcome = provider.OutcomeKind(outcome)
		r.PaymentStatus = provider.PaymentStatus(status)
		if msgs != "" {
			if err := json.Unmarshal([]byte(msgs), &r.Messages); err != nil {
				return nil, fmt.Errorf("decode transaction messages: %w", err)
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
