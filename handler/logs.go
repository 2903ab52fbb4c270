package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/bluepay/infra/response"
	"github.com/mstgnz/bluepay/provider"
)

// TransactionLogReader reads the masked transaction logs of an order
type TransactionLogReader interface {
	ListTransactionLogs(ctx context.Context, orderID int64) ([]provider.TransactionRecord, error)
}

// LogsHandler serves the payment operations logged for an order
type LogsHandler struct {
	logs TransactionLogReader
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(logs TransactionLogReader) *LogsHandler {
	return &LogsHandler{logs: logs}
}

// OrderLogs is the transaction history of one order
type OrderLogs struct {
	OrderID int64                        `json:"orderId"`
	Total   int                          `json:"total"`
	Stats   map[string]int               `json:"stats"`
	Logs    []provider.TransactionRecord `json:"logs"`
}

// ListOrderLogs lists the logged operations of an order, oldest first.
// ?operation= keeps a single operation and ?errors=true keeps failed calls only.
func (h *LogsHandler) ListOrderLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil || orderID <= 0 {
		response.Error(w, http.StatusBadRequest, "Invalid order ID", nil)
		return
	}

	onlyErrors := false
	if v := r.URL.Query().Get("errors"); v != "" {
		if onlyErrors, err = strconv.ParseBool(v); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid errors parameter", err)
			return
		}
	}
	operation := strings.TrimSpace(r.URL.Query().Get("operation"))

	records, err := h.logs.ListTransactionLogs(ctx, orderID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve logs", err)
		return
	}

	result := OrderLogs{OrderID: orderID, Stats: map[string]int{}, Logs: []provider.TransactionRecord{}}
	for _, record := range records {
		if operation != "" && record.Operation != operation {
			continue
		}
		if onlyErrors && record.ErrorCode == "" && record.Outcome != provider.OutcomeFailed {
			continue
		}
		result.Logs = append(result.Logs, record)
		result.Stats[logStatsKey(record)]++
	}
	result.Total = len(result.Logs)

	response.Success(w, http.StatusOK, "Logs retrieved successfully", result)
}

func logStatsKey(record provider.TransactionRecord) string {
	if record.ErrorCode != "" {
		return "error_" + record.ErrorCode
	}
	if record.Outcome == "" {
		return "unknown"
	}
	return string(record.Outcome)
}
