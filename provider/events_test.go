package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type handlerFunc func(ctx context.Context, event RecurringPaymentCreated) error

func (f handlerFunc) HandleRecurringPaymentCreated(ctx context.Context, event RecurringPaymentCreated) error {
	return f(ctx, event)
}

func TestEventPublisher_DeliversInOrder(t *testing.T) {
	publisher := NewEventPublisher()
	var calls []string

	publisher.Subscribe(handlerFunc(func(_ context.Context, e RecurringPaymentCreated) error {
		calls = append(calls, "first")
		assert.Equal(t, int64(5), e.RecurringPayment.ID)
		return nil
	}))
	publisher.Subscribe(handlerFunc(func(context.Context, RecurringPaymentCreated) error {
		calls = append(calls, "second")
		return nil
	}))

	err := publisher.PublishRecurringPaymentCreated(context.Background(), RecurringPaymentCreated{RecurringPayment: &RecurringPayment{ID: 5}})
	assert.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestEventPublisher_JoinsErrors(t *testing.T) {
	publisher := NewEventPublisher()
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	reached := false

	publisher.Subscribe(handlerFunc(func(context.Context, RecurringPaymentCreated) error { return errA }))
	publisher.Subscribe(handlerFunc(func(context.Context, RecurringPaymentCreated) error {
		reached = true
		return errB
	}))

	err := publisher.PublishRecurringPaymentCreated(context.Background(), RecurringPaymentCreated{})
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.True(t, reached)
}

func TestEventPublisher_NoSubscribers(t *testing.T) {
	assert.NoError(t, NewEventPublisher().PublishRecurringPaymentCreated(context.Background(), RecurringPaymentCreated{}))
}
