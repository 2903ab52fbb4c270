package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/bluepay/infra/logger"
	"github.com/mstgnz/bluepay/infra/response"
	"github.com/mstgnz/bluepay/provider"
	"github.com/mstgnz/bluepay/provider/bluepay"
	"github.com/shopspring/decimal"
)

// ConfigHandler handles payment method installation, settings and checkout helpers
type ConfigHandler struct {
	paymentService PaymentServiceInterface
	settings       provider.SettingStore
	locales        provider.LocaleStore
	systemName     string
	validate       *validator.Validate
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(paymentService PaymentServiceInterface, settings provider.SettingStore, locales provider.LocaleStore, systemName string, validate *validator.Validate) *ConfigHandler {
	return &ConfigHandler{
		paymentService: paymentService,
		settings:       settings,
		locales:        locales,
		systemName:     systemName,
		validate:       validate,
	}
}

// MethodInfo describes the payment method to checkout
type MethodInfo struct {
	SystemName   string                `json:"systemName"`
	Description  string                `json:"description"`
	Capabilities provider.Capabilities `json:"capabilities"`
}

// FormRequest carries the submitted checkout fields
type FormRequest struct {
	Fields map[string]string `json:"fields" validate:"required"`
}

// FormResult is the sanitized result of a valid checkout form
type FormResult struct {
	MaskedCard  string `json:"maskedCard"`
	ExpireMonth int    `json:"expireMonth"`
	ExpireYear  int    `json:"expireYear"`
}

// FeeRequest carries the cart the additional fee is computed for
type FeeRequest struct {
	Cart []provider.ShoppingCartItem `json:"cart" validate:"required,min=1,dive"`
}

// SettingsRequest updates the BluePay settings
type SettingsRequest struct {
	AccountID               string          `json:"accountId" validate:"required"`
	UserID                  string          `json:"userId" validate:"required"`
	SecretKey               string          `json:"secretKey" validate:"required"`
	UseSandbox              bool            `json:"useSandbox"`
	TransactMode            int             `json:"transactMode"`
	AdditionalFee           decimal.Decimal `json:"additionalFee"`
	AdditionalFeePercentage bool            `json:"additionalFeePercentage"`
}

// GetMethod returns the payment method descriptor and its localized description
func (h *ConfigHandler) GetMethod(w http.ResponseWriter, r *http.Request) {
	method, ok := h.method(r.Context(), w)
	if !ok {
		return
	}

	description, err := method.Description(r.Context(), h.locales)
	if err != nil {
		writeError(w, "Failed to load description", err)
		return
	}

	response.Success(w, http.StatusOK, "Payment method", MethodInfo{
		SystemName:   method.SystemName(),
		Description:  description,
		Capabilities: method.Capabilities(),
	})
}

// ValidateForm checks the submitted checkout fields and extracts the card
func (h *ConfigHandler) ValidateForm(w http.ResponseWriter, r *http.Request) {
	var req FormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	method, ok := h.method(r.Context(), w)
	if !ok {
		return
	}

	form := url.Values{}
	for k, v := range req.Fields {
		form.Set(k, v)
	}

	warnings, err := method.ValidatePaymentForm(r.Context(), h.locales, form)
	if err != nil {
		writeError(w, "Failed to validate payment form", err)
		return
	}
	if len(warnings) > 0 {
		response.Messages(w, http.StatusBadRequest, "Invalid payment form", warnings, nil)
		return
	}

	info, err := method.ExtractPaymentInfo(r.Context(), form)
	if err != nil {
		writeError(w, "Invalid payment form", err)
		return
	}

	response.Success(w, http.StatusOK, "Payment form is valid", FormResult{
		MaskedCard:  info.Card.MaskedNumber(),
		ExpireMonth: info.Card.ExpireMonth,
		ExpireYear:  info.Card.ExpireYear,
	})
}

// CalculateFee returns the additional handling fee for a cart
func (h *ConfigHandler) CalculateFee(w http.ResponseWriter, r *http.Request) {
	var req FeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	method, ok := h.method(r.Context(), w)
	if !ok {
		return
	}

	hidden, err := method.HidePaymentMethod(r.Context(), req.Cart)
	if err != nil {
		writeError(w, "Failed to check payment method", err)
		return
	}

	fee, err := method.AdditionalHandlingFee(r.Context(), h.paymentService.Services(), req.Cart)
	if err != nil {
		writeError(w, "Failed to calculate fee", err)
		return
	}

	response.Success(w, http.StatusOK, "Additional fee calculated", map[string]any{
		"fee":    fee.StringFixed(2),
		"hidden": hidden,
	})
}

// Install writes the default settings and locale resources
func (h *ConfigHandler) Install(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	method, ok := h.method(ctx, w)
	if !ok {
		return
	}

	if err := method.Install(ctx, h.settings, h.locales); err != nil {
		writeError(w, "Install failed", err)
		return
	}
	h.paymentService.InvalidateMethod(h.systemName)

	logger.Info("Payment method installed", logger.LogContext{Provider: h.systemName})
	response.Success(w, http.StatusOK, "Payment method installed", nil)
}

// Uninstall removes the settings and locale resources
func (h *ConfigHandler) Uninstall(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	method, ok := h.method(ctx, w)
	if !ok {
		return
	}

	if err := method.Uninstall(ctx, h.settings, h.locales); err != nil {
		writeError(w, "Uninstall failed", err)
		return
	}
	h.paymentService.InvalidateMethod(h.systemName)

	logger.Info("Payment method uninstalled", logger.LogContext{Provider: h.systemName})
	response.Success(w, http.StatusOK, "Payment method uninstalled", nil)
}

// UpdateSettings validates and stores new BluePay settings. The secret key is never echoed back.
func (h *ConfigHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	settings := bluepay.Settings{
		AccountID:               req.AccountID,
		UserID:                  req.UserID,
		SecretKey:               req.SecretKey,
		UseSandbox:              req.UseSandbox,
		TransactMode:            bluepay.TransactMode(req.TransactMode),
		AdditionalFee:           req.AdditionalFee,
		AdditionalFeePercentage: req.AdditionalFeePercentage,
	}
	if err := settings.Validate(); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid settings", err)
		return
	}

	if err := settings.Save(r.Context(), h.settings); err != nil {
		writeError(w, "Failed to save settings", err)
		return
	}
	h.paymentService.InvalidateMethod(h.systemName)

	logger.Info("Payment method settings updated", logger.LogContext{
		Provider: h.systemName,
		Fields: map[string]any{
			"sandbox":       settings.UseSandbox,
			"transact_mode": settings.TransactMode.String(),
		},
	})
	response.Success(w, http.StatusOK, "Settings updated", map[string]any{
		"accountId":    settings.AccountID,
		"useSandbox":   settings.UseSandbox,
		"transactMode": settings.TransactMode.String(),
	})
}

func (h *ConfigHandler) method(ctx context.Context, w http.ResponseWriter) (provider.PaymentMethod, bool) {
	method, err := h.paymentService.Method(ctx, h.systemName)
	if err != nil {
		writeError(w, "Payment method unavailable", err)
		return nil, false
	}
	return method, true
}
