package provider

import (
	"context"
	"errors"
	"sync"
)

// RecurringPaymentCreated is published by the host after it stores a new recurring schedule
type RecurringPaymentCreated struct {
	RecurringPayment *RecurringPayment
}

// RecurringPaymentCreatedHandler consumes RecurringPaymentCreated events
type RecurringPaymentCreatedHandler interface {
	HandleRecurringPaymentCreated(ctx context.Context, event RecurringPaymentCreated) error
}

// EventPublisher delivers events synchronously to its subscribers in subscription order
type EventPublisher struct {
	mu       sync.RWMutex
	handlers []RecurringPaymentCreatedHandler
}

// NewEventPublisher creates an empty publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{}
}

// Subscribe adds a handler
func (p *EventPublisher) Subscribe(handler RecurringPaymentCreatedHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, handler)
}

// PublishRecurringPaymentCreated runs every handler and joins their errors
func (p *EventPublisher) PublishRecurringPaymentCreated(ctx context.Context, event RecurringPaymentCreated) error {
	p.mu.RLock()
	handlers := append([]RecurringPaymentCreatedHandler(nil), p.handlers...)
	p.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h.HandleRecurringPaymentCreated(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
