package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/bluepay/infra/logger"
	"github.com/mstgnz/bluepay/infra/middle"
	"github.com/mstgnz/bluepay/infra/response"
	"github.com/mstgnz/bluepay/provider"
	"github.com/shopspring/decimal"
)

// PaymentServiceInterface defines the payment operations the handlers drive
type PaymentServiceInterface interface {
	Method(ctx context.Context, systemName string) (provider.PaymentMethod, error)
	InvalidateMethod(systemName string)
	Services() provider.Services
	ProcessPayment(ctx context.Context, systemName string, request provider.ProcessPaymentRequest) (*provider.Outcome, error)
	ProcessRecurringPayment(ctx context.Context, systemName string, request provider.ProcessPaymentRequest) (*provider.Outcome, error)
	Capture(ctx context.Context, request provider.CaptureRequest) (*provider.Outcome, error)
	Refund(ctx context.Context, request provider.RefundRequest) (*provider.Outcome, error)
	Void(ctx context.Context, request provider.VoidRequest) (*provider.Outcome, error)
	CancelRecurringPayment(ctx context.Context, request provider.CancelRecurringRequest) error
}

// OrderStore is the order persistence the payment handler needs
type OrderStore interface {
	GetOrderByID(ctx context.Context, id int64) (*provider.Order, error)
	GetOrderByGUID(ctx context.Context, guid string) (*provider.Order, error)
	GetOrderByAuthorizationTransactionIDAndPaymentMethod(ctx context.Context, authorizationTransactionID, systemName string) (*provider.Order, error)
	ApplyOutcome(ctx context.Context, orderID int64, outcome *provider.Outcome, refunded decimal.Decimal) (*provider.Order, error)
	CreateRecurringPayment(ctx context.Context, rp *provider.RecurringPayment) error
	DeactivateRecurringPayments(ctx context.Context, initialOrderID int64) error
}

// PaymentHandler handles payment and order related HTTP requests
type PaymentHandler struct {
	paymentService PaymentServiceInterface
	orders         OrderStore
	systemName     string
	validate       *validator.Validate
}

// NewPaymentHandler creates a new payment handler for the named payment method
func NewPaymentHandler(paymentService PaymentServiceInterface, orders OrderStore, systemName string, validate *validator.Validate) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		orders:         orders,
		systemName:     systemName,
		validate:       validate,
	}
}

// CardRequest carries the card of a payment request. It is never logged or echoed back.
type CardRequest struct {
	Number      string `json:"number" validate:"required,credit_card"`
	ExpireMonth int    `json:"expireMonth" validate:"required,min=1,max=12"`
	ExpireYear  int    `json:"expireYear" validate:"required,min=2000,max=2099"`
	CVV2        string `json:"cvv2" validate:"required,numeric,min=3,max=4"`
}

// PaymentRequest asks to pay a pending order
type PaymentRequest struct {
	OrderGUID string      `json:"orderGuid" validate:"required,uuid"`
	Card      CardRequest `json:"card"`
}

// RecurringPaymentRequest asks to pay a pending order and start a recurring schedule
type RecurringPaymentRequest struct {
	OrderGUID   string               `json:"orderGuid" validate:"required,uuid"`
	Card        CardRequest          `json:"card"`
	CycleLength int                  `json:"cycleLength" validate:"required,gt=0"`
	CyclePeriod provider.CyclePeriod `json:"cyclePeriod" validate:"required,oneof=Days Weeks Months Years"`
	TotalCycles int                  `json:"totalCycles" validate:"gte=0"`
}

// RefundBody optionally limits a refund. Without an amount the remaining balance is refunded.
type RefundBody struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// OperationResult is returned by every order operation
type OperationResult struct {
	Order            *provider.Order            `json:"order"`
	Outcome          *provider.Outcome          `json:"outcome,omitempty"`
	RecurringPayment *provider.RecurringPayment `json:"recurringPayment,omitempty"`
}

// ProcessPayment handles payment requests
func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req PaymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	order, ok := h.pendingOrder(ctx, w, req.OrderGUID)
	if !ok {
		return
	}

	outcome, err := h.paymentService.ProcessPayment(ctx, order.PaymentMethodSystemName, paymentRequest(r, order, req.Card))
	if err != nil {
		writeError(w, "Payment failed", err)
		return
	}

	updated, ok := h.apply(ctx, w, order, outcome, decimal.Zero)
	if !ok {
		return
	}
	response.Success(w, http.StatusOK, "Payment processed", OperationResult{Order: updated, Outcome: outcome})
}

// ProcessRecurringPayment handles recurring payment requests. The recurring
// schedule is stored once the first charge succeeds.
func (h *PaymentHandler) ProcessRecurringPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req RecurringPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	order, ok := h.pendingOrder(ctx, w, req.OrderGUID)
	if !ok {
		return
	}

	request := paymentRequest(r, order, req.Card)
	request.RecurringCycleLength = req.CycleLength
	request.RecurringCyclePeriod = req.CyclePeriod
	request.RecurringTotalCycles = req.TotalCycles

	outcome, err := h.paymentService.ProcessRecurringPayment(ctx, order.PaymentMethodSystemName, request)
	if err != nil {
		writeError(w, "Recurring payment failed", err)
		return
	}

	updated, ok := h.apply(ctx, w, order, outcome, decimal.Zero)
	if !ok {
		return
	}

	rp := &provider.RecurringPayment{
		InitialOrderID: updated.ID,
		CycleLength:    req.CycleLength,
		CyclePeriod:    req.CyclePeriod,
		TotalCycles:    req.TotalCycles,
	}
	if err := h.orders.CreateRecurringPayment(ctx, rp); err != nil {
		if rp.ID == 0 {
			writeError(w, "Failed to store recurring payment", err)
			return
		}
		// the schedule is stored; only a subscriber failed
		logger.Error("Recurring payment subscriber failed", err, logger.LogContext{
			Provider:  updated.PaymentMethodSystemName,
			RequestID: middleware.GetReqID(ctx),
			OrderID:   updated.ID,
			Fields:    map[string]any{"recurring_payment_id": rp.ID},
		})
	}

	response.Success(w, http.StatusOK, "Recurring payment processed", OperationResult{
		Order:            updated,
		Outcome:          outcome,
		RecurringPayment: rp,
	})
}

// Capture handles capture requests for an authorized order
func (h *PaymentHandler) Capture(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	order, ok := h.orderFromPath(ctx, w, r)
	if !ok {
		return
	}

	outcome, err := h.paymentService.Capture(ctx, provider.CaptureRequest{Order: *order})
	if err != nil {
		writeError(w, "Capture failed", err)
		return
	}

	updated, ok := h.apply(ctx, w, order, outcome, decimal.Zero)
	if !ok {
		return
	}
	response.Success(w, http.StatusOK, "Payment captured", OperationResult{Order: updated, Outcome: outcome})
}

// Refund handles full and partial refund requests
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var body RefundBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	order, ok := h.orderFromPath(ctx, w, r)
	if !ok {
		return
	}

	remaining := order.OrderTotal.Sub(order.RefundedAmount)
	if !remaining.IsPositive() {
		response.Error(w, http.StatusConflict, "Order has nothing left to refund", nil)
		return
	}

	amount := remaining
	if body.Amount != nil {
		amount = *body.Amount
		if !amount.IsPositive() || amount.GreaterThan(remaining) {
			response.Error(w, http.StatusBadRequest, "Validation error",
				fmt.Errorf("refund amount must be greater than 0 and at most %s", remaining.StringFixed(2)))
			return
		}
	}

	outcome, err := h.paymentService.Refund(ctx, provider.RefundRequest{
		Order:           *order,
		AmountToRefund:  amount,
		IsPartialRefund: !amount.Equal(order.OrderTotal),
	})
	if err != nil {
		writeError(w, "Refund failed", err)
		return
	}

	updated, ok := h.apply(ctx, w, order, outcome, amount)
	if !ok {
		return
	}
	response.Success(w, http.StatusOK, "Payment refunded", OperationResult{Order: updated, Outcome: outcome})
}

// Void handles void requests
func (h *PaymentHandler) Void(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	order, ok := h.orderFromPath(ctx, w, r)
	if !ok {
		return
	}

	outcome, err := h.paymentService.Void(ctx, provider.VoidRequest{Order: *order})
	if err != nil {
		writeError(w, "Void failed", err)
		return
	}

	updated, ok := h.apply(ctx, w, order, outcome, decimal.Zero)
	if !ok {
		return
	}
	response.Success(w, http.StatusOK, "Payment voided", OperationResult{Order: updated, Outcome: outcome})
}

// CancelRecurringPayment stops the gateway schedule of a recurring order and
// marks its stored recurring payments inactive
func (h *PaymentHandler) CancelRecurringPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	order, ok := h.orderFromPath(ctx, w, r)
	if !ok {
		return
	}

	if err := h.paymentService.CancelRecurringPayment(ctx, provider.CancelRecurringRequest{Order: *order}); err != nil {
		writeError(w, "Failed to cancel recurring payment", err)
		return
	}

	// the gateway schedule stays stopped when this fails
	if err := h.orders.DeactivateRecurringPayments(ctx, order.ID); err != nil {
		writeError(w, "Failed to deactivate recurring payment", err)
		return
	}

	response.Success(w, http.StatusOK, "Recurring payment cancelled", OperationResult{Order: order})
}

// FindOrder looks an order up by the gateway authorization reference
func (h *PaymentHandler) FindOrder(w http.ResponseWriter, r *http.Request) {
	authorization := strings.TrimSpace(r.URL.Query().Get("authorization"))
	if authorization == "" {
		response.Error(w, http.StatusBadRequest, "Missing authorization query parameter", nil)
		return
	}

	order, err := h.orders.GetOrderByAuthorizationTransactionIDAndPaymentMethod(r.Context(), authorization, h.systemName)
	if err != nil {
		writeError(w, "Failed to find order", err)
		return
	}
	if order == nil {
		response.Error(w, http.StatusNotFound, "Order not found", nil)
		return
	}

	response.Success(w, http.StatusOK, "Order found", order)
}

func (h *PaymentHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return false
	}
	return true
}

func (h *PaymentHandler) pendingOrder(ctx context.Context, w http.ResponseWriter, guid string) (*provider.Order, bool) {
	order, err := h.orders.GetOrderByGUID(ctx, guid)
	if err != nil {
		writeError(w, "Failed to load order", err)
		return nil, false
	}
	if order == nil {
		response.Error(w, http.StatusNotFound, "Order not found", nil)
		return nil, false
	}
	if order.PaymentStatus != provider.StatusPending {
		response.Error(w, http.StatusConflict, fmt.Sprintf("Order is already %s", order.PaymentStatus), nil)
		return nil, false
	}
	return order, hasMethod(w, order)
}

func (h *PaymentHandler) orderFromPath(ctx context.Context, w http.ResponseWriter, r *http.Request) (*provider.Order, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(w, http.StatusBadRequest, "Invalid order ID", nil)
		return nil, false
	}

	order, err := h.orders.GetOrderByID(ctx, id)
	if err != nil {
		writeError(w, "Failed to load order", err)
		return nil, false
	}
	if order == nil {
		response.Error(w, http.StatusNotFound, "Order not found", nil)
		return nil, false
	}
	return order, hasMethod(w, order)
}

// apply stores a successful outcome on the order. A declined outcome is
// answered with 402 and the gateway messages; the order is left untouched.
func (h *PaymentHandler) apply(ctx context.Context, w http.ResponseWriter, order *provider.Order, outcome *provider.Outcome, refunded decimal.Decimal) (*provider.Order, bool) {
	if !outcome.Success() {
		response.Messages(w, http.StatusPaymentRequired, "Payment declined", outcome.Errors,
			OperationResult{Order: order, Outcome: outcome})
		return nil, false
	}

	updated, err := h.orders.ApplyOutcome(ctx, order.ID, outcome, refunded)
	if err != nil {
		writeError(w, "Failed to update order", err)
		return nil, false
	}
	return updated, true
}

// hasMethod rejects orders without a payment method. Every operation routes
// by the order's own method name, which the store never fills in later.
func hasMethod(w http.ResponseWriter, order *provider.Order) bool {
	if order.PaymentMethodSystemName == "" {
		response.Error(w, http.StatusConflict, "Order has no payment method", nil)
		return false
	}
	return true
}

func paymentRequest(r *http.Request, order *provider.Order, card CardRequest) provider.ProcessPaymentRequest {
	return provider.ProcessPaymentRequest{
		OrderGUID:  order.GUID,
		CustomerID: order.CustomerID,
		OrderTotal: order.OrderTotal,
		CustomerIP: middle.GetClientIP(r),
		Card: provider.CardInfo{
			CardNumber:  strings.ReplaceAll(card.Number, " ", ""),
			ExpireMonth: card.ExpireMonth,
			ExpireYear:  card.ExpireYear,
			CVV2:        card.CVV2,
		},
	}
}

// writeError maps payment errors to HTTP statuses
func writeError(w http.ResponseWriter, message string, err error) {
	var validation provider.ValidationErrors
	var gatewayErr *provider.GatewayError
	switch {
	case errors.As(err, &validation):
		response.Messages(w, http.StatusBadRequest, message, validation, nil)
	case provider.IsPreconditionError(err):
		response.Error(w, http.StatusBadRequest, message, err)
	case errors.As(err, &gatewayErr):
		response.Messages(w, http.StatusPaymentRequired, message, []string{gatewayErr.Message}, nil)
	case errors.Is(err, context.DeadlineExceeded):
		response.Error(w, http.StatusGatewayTimeout, message, err)
	default:
		response.Error(w, http.StatusInternalServerError, message, err)
	}
}
