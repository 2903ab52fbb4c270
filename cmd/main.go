package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mstgnz/bluepay/handler"
	"github.com/mstgnz/bluepay/infra/config"
	"github.com/mstgnz/bluepay/infra/conn"
	"github.com/mstgnz/bluepay/infra/logger"
	"github.com/mstgnz/bluepay/infra/metrics"
	"github.com/mstgnz/bluepay/infra/middle"
	"github.com/mstgnz/bluepay/infra/opensearch"
	"github.com/mstgnz/bluepay/infra/store"
	"github.com/mstgnz/bluepay/provider"
	"github.com/mstgnz/bluepay/provider/bluepay"
	"github.com/mstgnz/bluepay/router"
	v1 "github.com/mstgnz/bluepay/router/v1"
	"github.com/shopspring/decimal"
)

var openSearchLogger *opensearch.Logger

func init() {
	// .env is optional; the environment wins
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Load Env Error: %v", err)
	}
	_ = config.App()

	cfg := config.GetAppConfig()
	if cfg.EnableLogging {
		osClient, err := opensearch.NewClient(cfg, bluepay.SystemName)
		if err != nil {
			log.Printf("Failed to initialize OpenSearch client: %v", err)
			log.Println("Continuing without OpenSearch logging...")
		} else {
			openSearchLogger = opensearch.NewLogger(osClient)
		}
	}

	logger.InitGlobalLogger(openSearchLogger, cfg)
}

func main() {
	cfg := config.GetAppConfig()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := conn.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("Failed to open database", err)
	}
	defer db.CloseDatabase()

	st, err := store.New(ctx, db, nil)
	if err != nil {
		logger.Fatal("Failed to migrate database", err)
	}
	st.Events().Subscribe(bluepay.NewInstallmentRecorder(st, nil))
	if err := ensurePrimaryCurrency(ctx, st, cfg.PrimaryCurrency); err != nil {
		logger.Fatal("Failed to prepare primary currency", err)
	}

	provider.Register(bluepay.SystemName, bluepay.NewFactory(bluepay.NewHTTPClient(cfg.GatewayURL, cfg.GatewayTimeout)))

	txLoggers := provider.MultiTransactionLogger{st}
	if openSearchLogger != nil {
		txLoggers = append(txLoggers, provider.NewOpenSearchTransactionLogger(openSearchLogger))
	}
	paymentService := provider.NewPaymentService(provider.DefaultRegistry, st, st.Services(), txLoggers).
		WithMethodCache(provider.NewMethodCache(10 * time.Minute))

	metrics.MustRegister()

	rateLimiter := middle.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer rateLimiter.Stop()

	validate := config.App().Validator
	r := router.New(router.Options{
		APIKey:         cfg.APIKey,
		AllowedOrigins: splitList(config.GetEnv("CORS_ALLOWED_ORIGINS", "")),
		Health:         handler.NewHealthHandler(st, paymentService, bluepay.SystemName, openSearchLogger != nil, cfg.Environment),
		Metrics:        metrics.Handler(),
		V1: v1.Handlers{
			Payments:    handler.NewPaymentHandler(paymentService, st, bluepay.SystemName, validate),
			Plugin:      handler.NewConfigHandler(paymentService, st, st, bluepay.SystemName, validate),
			Logs:        handler.NewLogsHandler(st),
			RateLimiter: rateLimiter,
		},
	})

	if cfg.APIKey == "" {
		logger.Warn("API_KEY is not set; /v1 requests will be rejected")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", err)
		}
	}()

	logger.Info("API is running", logger.LogContext{Fields: map[string]any{
		"port":        cfg.Port,
		"database":    cfg.DatabaseDriver,
		"environment": cfg.Environment,
	}})

	<-ctx.Done()

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", err)
	}
}

// ensurePrimaryCurrency stores the primary currency with rate 1 when it is missing
func ensurePrimaryCurrency(ctx context.Context, st *store.Store, code string) error {
	currency, err := st.GetCurrencyByCode(ctx, code)
	if err != nil || currency != nil {
		return err
	}
	return st.SaveCurrency(ctx, &provider.Currency{Code: strings.ToUpper(code), Rate: decimal.NewFromInt(1)})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
