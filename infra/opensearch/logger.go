package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// TransactionLog is a masked record of one payment operation sent to a gateway
type TransactionLog struct {
	Timestamp        time.Time `json:"timestamp"`
	Provider         string    `json:"provider"`
	Operation        string    `json:"operation"`
	RequestID        string    `json:"request_id"`
	OrderID          int64     `json:"order_id,omitempty"`
	OrderGUID        string    `json:"order_guid,omitempty"`
	Amount           string    `json:"amount,omitempty"`
	Card             string    `json:"card,omitempty"`
	Outcome          string    `json:"outcome,omitempty"`
	PaymentStatus    string    `json:"payment_status,omitempty"`
	TransactionID    string    `json:"transaction_id,omitempty"`
	Messages         []string  `json:"messages,omitempty"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	Error            ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Logger handles OpenSearch logging operations
type Logger struct {
	client *Client
}

// NewLogger creates a new OpenSearch logger
func NewLogger(client *Client) *Logger {
	return &Logger{
		client: client,
	}
}

// LogTransaction indexes a transaction log into the provider's index
func (l *Logger) LogTransaction(ctx context.Context, entry TransactionLog) error {
	if !l.client.IsEnabled() {
		return nil
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.RequestID == "" {
		entry.RequestID = uuid.New().String()
	}

	return l.index(ctx, l.client.GetLogIndexName(entry.Provider), entry)
}

// LogSystemEvent logs a system event to OpenSearch
func (l *Logger) LogSystemEvent(ctx context.Context, event any) error {
	if !l.client.IsEnabled() {
		return nil
	}

	return l.index(ctx, l.client.SystemIndexName(), event)
}

func (l *Logger) index(ctx context.Context, indexName string, document any) error {
	body, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: indexName,
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch error: %s", res.String())
	}

	return nil
}

// SearchLogs runs a query against a provider's transaction logs, newest first
func (l *Logger) SearchLogs(ctx context.Context, provider string, query map[string]any) ([]TransactionLog, error) {
	if !l.client.IsEnabled() {
		return nil, fmt.Errorf("logging is disabled")
	}

	searchQuery := map[string]any{
		"query": query,
		"sort": []map[string]any{
			{"timestamp": map[string]string{"order": "desc"}},
		},
		"size": 100,
	}

	queryJSON, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{l.client.GetLogIndexName(provider)},
		Body:  bytes.NewReader(queryJSON),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("opensearch search error: %s", res.String())
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source TransactionLog `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	logs := make([]TransactionLog, len(searchResult.Hits.Hits))
	for i, hit := range searchResult.Hits.Hits {
		logs[i] = hit.Source
	}

	return logs, nil
}

// GetOrderLogs retrieves the transaction logs of one order
func (l *Logger) GetOrderLogs(ctx context.Context, provider string, orderID int64) ([]TransactionLog, error) {
	query := map[string]any{
		"term": map[string]any{
			"order_id": orderID,
		},
	}

	return l.SearchLogs(ctx, provider, query)
}

var sensitiveFormFields = []string{
	"PAYMENT_ACCOUNT", "CARD_CVV2", "CARD_EXPIRE", "TAMPER_PROOF_SEAL", "SECRET_KEY",
	"cardNumber", "cardCode", "cvv2", "expireMonth", "expireYear",
}

var sensitivePatterns = func() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(sensitiveFormFields)*2)
	for _, field := range sensitiveFormFields {
		patterns = append(patterns,
			regexp.MustCompile(fmt.Sprintf(`"%s"\s*:\s*"[^"]*"`, field)),
			regexp.MustCompile(fmt.Sprintf(`\b%s=[^&\s]*`, field)),
		)
	}
	return patterns
}()

// SanitizeForLog redacts card and credential fields from JSON or form-encoded text
func SanitizeForLog(data string) string {
	result := data
	for i, re := range sensitivePatterns {
		field := sensitiveFormFields[i/2]
		if i%2 == 0 {
			result = re.ReplaceAllString(result, fmt.Sprintf(`"%s":"***REDACTED***"`, field))
		} else {
			result = re.ReplaceAllString(result, field+"=***REDACTED***")
		}
	}
	return result
}
