package checkout

import (
	"context"

	"github.com/aims/storefront/domain"
	"github.com/aims/storefront/internal/delivery"
	log "github.com/sirupsen/logrus"
)

// SubmitShipping validates the form, confirms the order and opens the payment step.
// Field errors come back as domain.FieldErrors and leave the session untouched.
func (s *Session) SubmitShipping(ctx context.Context, info domain.DeliveryInfo) (domain.Order, error) {
	s.mu.Lock()
	if err := s.inStep(domain.CheckoutStepShipping); err != nil {
		s.mu.Unlock()
		return domain.Order{}, err
	}
	s.mu.Unlock()

	if err := delivery.Validate(info); err != nil {
		return domain.Order{}, err
	}

	o, err := s.orders.SubmitDelivery(ctx, info)
	if err != nil {
		return domain.Order{}, err
	}

	s.mu.Lock()
	if err := s.inStep(domain.CheckoutStepShipping); err != nil {
		s.orders.Reset()
		s.mu.Unlock()
		return domain.Order{}, err
	}
	s.step = domain.CheckoutStepPayment
	s.mu.Unlock()

	// A failed init is retried by the first payment action.
	if _, err := s.payments.Begin(ctx, o.OrderID); err != nil {
		log.WithFields(log.Fields{"order_id": o.OrderID}).Warnf("payment init deferred: %v", err)
	}
	return o, nil
}
