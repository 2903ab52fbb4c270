package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/mstgnz/bluepay/infra/response"
	"github.com/mstgnz/bluepay/provider"
)

// DatabaseChecker is the slice of the store the health check needs
type DatabaseChecker interface {
	Ping(ctx context.Context) error
	Stats() sql.DBStats
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db                DatabaseChecker
	paymentService    *provider.PaymentService
	systemName        string
	openSearchEnabled bool
	environment       string
	startTime         time.Time
}

// HealthStatus represents overall system health
type HealthStatus struct {
	Status      string                    `json:"status"`
	Version     string                    `json:"version"`
	Timestamp   time.Time                 `json:"timestamp"`
	Uptime      string                    `json:"uptime"`
	Environment string                    `json:"environment"`
	Database    *DatabaseHealth           `json:"database"`
	System      *SystemHealth             `json:"system"`
	Services    map[string]*ServiceHealth `json:"services"`
	MethodCache *provider.CacheStats      `json:"method_cache,omitempty"`
}

// DatabaseHealth represents database health status
type DatabaseHealth struct {
	Status       string `json:"status"`
	Connected    bool   `json:"connected"`
	ResponseTime int64  `json:"response_time_ms"`
	OpenConns    int    `json:"open_connections"`
	InUseConns   int    `json:"in_use_connections"`
	IdleConns    int    `json:"idle_connections"`
	WaitCount    int64  `json:"wait_count"`
	Error        string `json:"error,omitempty"`
}

// SystemHealth represents process resource usage
type SystemHealth struct {
	Alloc      string `json:"alloc"`
	Sys        string `json:"sys"`
	GCRuns     uint32 `json:"gc_runs"`
	GoRoutines int    `json:"goroutines"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status      string `json:"status"`
	Healthy     bool   `json:"healthy"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

// NewHealthHandler creates a new health handler. db and paymentService may be nil.
func NewHealthHandler(db DatabaseChecker, paymentService *provider.PaymentService, systemName string, openSearchEnabled bool, environment string) *HealthHandler {
	if environment == "" {
		environment = "development"
	}
	return &HealthHandler{
		db:                db,
		paymentService:    paymentService,
		systemName:        systemName,
		openSearchEnabled: openSearchEnabled,
		environment:       environment,
		startTime:         time.Now(),
	}
}

// CheckHealth reports database, payment method and logging health
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := &HealthStatus{
		Version:     "1.0.0",
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Environment: h.environment,
		Database:    h.checkDatabaseHealth(ctx),
		System:      checkSystemHealth(),
		Services:    h.checkServicesHealth(),
	}
	if h.paymentService != nil {
		stats := h.paymentService.CacheStats()
		health.MethodCache = &stats
	}

	health.Status = determineOverallStatus(health)

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	_ = response.WriteJSON(w, statusCode, response.Response{
		Code:    statusCode,
		Success: health.Status != "unhealthy",
		Message: fmt.Sprintf("Service is %s", health.Status),
		Data:    health,
	})
}

func (h *HealthHandler) checkDatabaseHealth(ctx context.Context) *DatabaseHealth {
	dbHealth := &DatabaseHealth{Status: "unknown"}

	if h.db == nil {
		dbHealth.Status = "not_configured"
		dbHealth.Error = "Database not configured"
		return dbHealth
	}

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		dbHealth.Status = "unhealthy"
		dbHealth.Error = err.Error()
		dbHealth.ResponseTime = time.Since(start).Milliseconds()
		return dbHealth
	}
	elapsed := time.Since(start)

	dbHealth.Connected = true
	dbHealth.ResponseTime = elapsed.Milliseconds()

	stats := h.db.Stats()
	dbHealth.OpenConns = stats.OpenConnections
	dbHealth.InUseConns = stats.InUse
	dbHealth.IdleConns = stats.Idle
	dbHealth.WaitCount = stats.WaitCount

	if elapsed > time.Second || stats.WaitCount > 100 {
		dbHealth.Status = "degraded"
	} else {
		dbHealth.Status = "healthy"
	}

	return dbHealth
}

func (h *HealthHandler) checkServicesHealth() map[string]*ServiceHealth {
	services := make(map[string]*ServiceHealth)

	if h.paymentService != nil {
		services["payment_service"] = &ServiceHealth{Status: "healthy", Healthy: true, Description: "Payment processing service"}
	} else {
		services["payment_service"] = &ServiceHealth{Status: "unhealthy", Error: "Payment service not initialized"}
	}

	method := &ServiceHealth{Description: "Payment method " + h.systemName}
	if _, err := provider.Get(h.systemName); err != nil {
		method.Status = "not_available"
		method.Error = err.Error()
	} else {
		method.Status = "healthy"
		method.Healthy = true
	}
	services["payment_method"] = method

	if h.openSearchEnabled {
		services["opensearch_logger"] = &ServiceHealth{Status: "healthy", Healthy: true, Description: "Transaction logging to OpenSearch"}
	} else {
		services["opensearch_logger"] = &ServiceHealth{Status: "not_configured", Description: "OpenSearch logging not configured"}
	}

	return services
}

func determineOverallStatus(health *HealthStatus) string {
	if health.Database != nil && health.Database.Status != "healthy" && health.Database.Status != "degraded" {
		return "unhealthy"
	}

	for _, name := range []string{"payment_service", "payment_method"} {
		if service, ok := health.Services[name]; ok && !service.Healthy {
			return "unhealthy"
		}
	}

	if health.Database != nil && health.Database.Status == "degraded" {
		return "degraded"
	}

	return "healthy"
}

func checkSystemHealth() *SystemHealth {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &SystemHealth{
		Alloc:      formatBytes(memStats.Alloc),
		Sys:        formatBytes(memStats.Sys),
		GCRuns:     memStats.NumGC,
		GoRoutines: runtime.NumGoroutine(),
	}
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
