package v1

import (
	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/bluepay/handler"
	"github.com/mstgnz/bluepay/infra/middle"
)

// Handlers are the API v1 endpoints. RateLimiter may be nil.
type Handlers struct {
	Payments    *handler.PaymentHandler
	Plugin      *handler.ConfigHandler
	Logs        *handler.LogsHandler
	RateLimiter *middle.RateLimiter
}

// Routes registers all API routes
func Routes(r chi.Router, h Handlers) {
	r.Route("/payment-method", func(r chi.Router) {
		r.Get("/", h.Plugin.GetMethod)
		r.Post("/form", h.Plugin.ValidateForm)
		r.Post("/fee", h.Plugin.CalculateFee)
	})

	// Card-carrying endpoints are rate limited per client
	r.Route("/payments", func(r chi.Router) {
		if h.RateLimiter != nil {
			r.Use(middle.RateLimitMiddleware(h.RateLimiter))
		}
		r.Post("/", h.Payments.ProcessPayment)
		r.Post("/recurring", h.Payments.ProcessRecurringPayment)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.Payments.FindOrder)
		r.Route("/{orderID}", func(r chi.Router) {
			r.Post("/capture", h.Payments.Capture)
			r.Post("/refund", h.Payments.Refund)
			r.Post("/void", h.Payments.Void)
			r.Post("/cancel-recurring", h.Payments.CancelRecurringPayment)
			r.Get("/logs", h.Logs.ListOrderLogs)
		})
	})

	r.Route("/plugin", func(r chi.Router) {
		r.Post("/install", h.Plugin.Install)
		r.Post("/uninstall", h.Plugin.Uninstall)
		r.Put("/settings", h.Plugin.UpdateSettings)
	})
}
