// Package provider defines the payment method contract and the host services
// a payment method depends on.
//
// # Core Concepts
//
//   - PaymentMethod: a payment plugin (process, capture, refund, void,
//     recurring, install, fee and checkout form)
//   - Outcome: the result of a gateway operation; a host applies it to an Order
//   - ProviderRegistry: maps system names to factories that build a method
//     from its stored settings
//   - PaymentService: resolves methods through a MethodCache, runs operations,
//     records metrics and masked TransactionRecords
//
// # Basic Usage
//
//	service := provider.NewPaymentService(provider.DefaultRegistry, settings, services, txLogger).
//		WithMethodCache(provider.NewMethodCache(10 * time.Minute))
//
//	outcome, err := service.ProcessPayment(ctx, "Payments.BluePay", provider.ProcessPaymentRequest{
//		OrderGUID:  order.GUID,
//		CustomerID: order.CustomerID,
//		OrderTotal: order.OrderTotal,
//		Card:       card,
//	})
//	if err != nil {
//		// configuration, precondition, validation or transport error
//	}
//	if outcome.Success() {
//		outcome.Apply(order)
//	}
//
// # Errors
//
// Gateway declines are outcomes, not errors. Errors are *ConfigurationError,
// *PreconditionError, ValidationErrors, *GatewayError or wrapped transport
// failures; use errors.As to tell them apart.
package provider
