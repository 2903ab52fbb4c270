// Package handler provides the HTTP handlers of the BluePay reference host.
//
// # Core Handlers
//
//   - PaymentHandler: pays pending orders and runs capture, refund, void and
//     recurring cancellation against stored orders
//   - ConfigHandler: payment method descriptor, checkout form validation,
//     additional fee, install/uninstall and settings
//   - LogsHandler: masked transaction history of an order
//   - HealthHandler: database, payment method and cache health
//
// # Responses
//
// Every handler answers with response.Response. Declined gateway outcomes are
// answered with 402 and the gateway messages in "messages"; the order is left
// untouched. Successful outcomes are applied to the order before responding.
//
//	{
//	  "code": 402,
//	  "success": false,
//	  "message": "Payment declined",
//	  "messages": ["INVALID ACCOUNT NUMBER"]
//	}
//
// Validation errors are answered with 400, unknown orders with 404 and
// orders in the wrong state with 409.
package handler
