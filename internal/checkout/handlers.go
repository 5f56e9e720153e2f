package checkout

import (
	"context"
	"time"

	"github.com/aims/storefront/domain"
)

type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, productID string, quantity int) (bool, error)
}

type ProductSource interface {
	Get(id string) (domain.Product, error)
}

type EventPublisher interface {
	Enqueue(ctx context.Context, event domain.OrderCompleted) error
}

type Notifier interface {
	Notify(severity domain.Severity, message string) string
}

type availabilityHandler struct {
	checker AvailabilityChecker
	timeout time.Duration
}

func (h availabilityHandler) check(ctx context.Context, productID string, quantity int) (bool, error) {
	if h.timeout <= 0 {
		return h.checker.CheckAvailability(ctx, productID, quantity)
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.checker.CheckAvailability(ctx, productID, quantity)
}

type publishHandler struct {
	publisher EventPublisher
	timeout   time.Duration
}

func (h publishHandler) publish(event domain.OrderCompleted) error {
	if h.publisher == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	return h.publisher.Enqueue(ctx, event)
}
