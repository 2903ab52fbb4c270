// Package bluepay is a BluePay credit card payment method packaged with a
// small reference host that stores orders and exposes the method over HTTP.
//
// # Overview
//
// The payment method authorizes, captures, refunds and voids card payments
// through the BluePay 2.0 post interface (bp20post) and manages automatic
// rebilling schedules through bp20rebadmin. Gateway responses are turned into
// payment outcomes; the host decides how an outcome changes an order.
//
// # Architecture
//
//	┌─────────────────┐    ┌─────────────────┐    ┌─────────────────┐
//	│                 │    │                 │    │                 │
//	│   HTTP API      │◄──►│ PaymentService  │◄──►│    BluePay      │
//	│ (router/handler)│    │ (provider)      │    │  bp20post/rebadm│
//	│                 │    │                 │    │                 │
//	└────────┬────────┘    └────────┬────────┘    └─────────────────┘
//	         │                      │
//	         ▼                      ▼
//	┌─────────────────┐    ┌─────────────────┐
//	│  infra/store    │    │ logger, metrics │
//	│ sqlite/postgres │    │   opensearch    │
//	└─────────────────┘    └─────────────────┘
//
// # Packages
//
//   - provider: payment method contract, registry, service, errors and host interfaces
//   - provider/bluepay: the BluePay payment method, gateway client and installment recorder
//   - infra/store: SQL implementation of the host services
//   - handler, router: REST API
//   - infra/logger, infra/metrics, infra/opensearch: observability
//
// # Configuration
//
// The host reads its configuration from the environment, optionally loaded
// from a .env file:
//
//	APP_PORT=9999
//	API_KEY=change-me
//	DB_DRIVER=sqlite3
//	DB_DSN=./bluepay.db
//	PRIMARY_CURRENCY=USD
//	BLUEPAY_GATEWAY_URL=
//	BLUEPAY_TIMEOUT_SECONDS=30
//	ENABLE_OPENSEARCH_LOGGING=false
//
// BluePay credentials are plugin settings, written through PUT /v1/plugin/settings.
//
// # Security
//
// Card numbers and card codes are sent to the gateway only. Logs, transaction
// records and API responses carry the masked number.
package bluepay
