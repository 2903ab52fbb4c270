package provider

import (
	"context"
	"time"

	"github.com/mstgnz/bluepay/infra/opensearch"
)

// TransactionRecord is the masked trace of one payment operation.
// Card data appears only as CardInfo.MaskedNumber.
type TransactionRecord struct {
	Timestamp     time.Time     `json:"timestamp"`
	Provider      string        `json:"provider"`
	Operation     string        `json:"operation"`
	RequestID     string        `json:"requestId,omitempty"`
	OrderID       int64         `json:"orderId,omitempty"`
	OrderGUID     string        `json:"orderGuid,omitempty"`
	Amount        string        `json:"amount,omitempty"`
	MaskedCard    string        `json:"maskedCard,omitempty"`
	Outcome       OutcomeKind   `json:"outcome,omitempty"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	Messages      []string      `json:"messages,omitempty"`
	ProcessingMs  int64         `json:"processingMs"`
	ErrorCode     string        `json:"errorCode,omitempty"`
	ErrorMessage  string        `json:"errorMessage,omitempty"`
}

// TransactionLogger persists transaction records
type TransactionLogger interface {
	LogTransaction(ctx context.Context, record TransactionRecord) error
}

// OpenSearchTransactionLogger indexes transaction records into OpenSearch
type OpenSearchTransactionLogger struct {
	logger *opensearch.Logger
}

// NewOpenSearchTransactionLogger creates a TransactionLogger backed by OpenSearch
func NewOpenSearchTransactionLogger(logger *opensearch.Logger) *OpenSearchTransactionLogger {
	return &OpenSearchTransactionLogger{logger: logger}
}

// LogTransaction implements TransactionLogger
func (l *OpenSearchTransactionLogger) LogTransaction(ctx context.Context, record TransactionRecord) error {
	return l.logger.LogTransaction(ctx, opensearch.TransactionLog{
		Timestamp:        record.Timestamp,
		Provider:         record.Provider,
		Operation:        record.Operation,
		RequestID:        record.RequestID,
		OrderID:          record.OrderID,
		OrderGUID:        record.OrderGUID,
		Amount:           record.Amount,
		Card:             record.MaskedCard,
		Outcome:          string(record.Outcome),
		PaymentStatus:    string(record.PaymentStatus),
		TransactionID:    record.TransactionID,
		Messages:         record.Messages,
		ProcessingTimeMs: record.ProcessingMs,
		Error: opensearch.ErrorInfo{
			Code:    record.ErrorCode,
			Message: record.ErrorMessage,
		},
	})
}

// MultiTransactionLogger fans a record out to several loggers and returns the first error
type MultiTransactionLogger []TransactionLogger

// LogTransaction implements TransactionLogger
func (m MultiTransactionLogger) LogTransaction(ctx context.Context, record TransactionRecord) error {
	var firstErr error
	for _, l := range m {
		if l == nil {
			continue
		}
		if err := l.LogTransaction(ctx, record); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
