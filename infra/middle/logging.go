package middle

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mstgnz/bluepay/infra/logger"
	"github.com/mstgnz/bluepay/infra/metrics"
)

// RequestLoggingMiddleware logs every API request and counts it by route pattern and status class.
// Bodies are never read; they may carry card data.
func RequestLoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			metrics.IncHTTPRequest(route, status)

			ctx := logger.LogContext{
				RequestID: middleware.GetReqID(r.Context()),
				Fields: map[string]any{
					"method":        r.Method,
					"route":         route,
					"status":        status,
					"bytes":         ww.BytesWritten(),
					"processing_ms": time.Since(start).Milliseconds(),
					"client_ip":     GetClientIP(r),
				},
			}
			if status >= http.StatusInternalServerError {
				logger.Warn("Request failed", ctx)
				return
			}
			logger.Debug("Request served", ctx)
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
