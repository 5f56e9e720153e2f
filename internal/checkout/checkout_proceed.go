package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/aims/storefront/domain"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ProceedToCheckout leaves the cart (or a completed checkout) for the shipping step. It needs a non-empty selection,
// no stock issue and a positive availability answer for every selected line.
func (s *Session) ProceedToCheckout(ctx context.Context) error {
	s.mu.Lock()
	if err := s.inStep(domain.CheckoutStepCart, domain.CheckoutStepCompleted); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	selected := s.cart.SelectedItems()
	if len(selected) == 0 {
		s.notifier.Notify(domain.SeverityWarning, "Please select at least one item to proceed to checkout.")
		return ErrEmptySelection
	}
	if s.cart.HasStockIssue() {
		s.notifier.Notify(domain.SeverityWarning, "Some selected items exceed available stock. Please adjust quantities.")
		return ErrStockIssue
	}

	refused, err := s.checkAvailability(ctx, selected)
	if err != nil {
		s.notifier.Notify(domain.SeverityError, "Unable to verify stock availability. Please try again.")
		return errors.Wrap(err, "check availability")
	}
	if len(refused) > 0 {
		names := make([]string, 0, len(refused))
		for _, l := range refused {
			names = append(names, l.Product.Name)
			s.refreshStock(l.Product.ID)
		}
		s.notifier.Notify(domain.SeverityWarning,
			fmt.Sprintf("Some items are no longer available in the requested quantity: %s.", strings.Join(names, ", ")))
		return ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.inStep(domain.CheckoutStepCart, domain.CheckoutStepCompleted); err != nil {
		return err
	}
	s.orders.Reset()
	s.payments.Reset()
	s.step = domain.CheckoutStepShipping
	return nil
}

// checkAvailability asks for every line concurrently and returns the refused ones in cart order.
func (s *Session) checkAvailability(ctx context.Context, lines []domain.CartLineItem) ([]domain.CartLineItem, error) {
	ok := make([]bool, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	for i, l := range lines {
		i, l := i, l
		g.Go(func() error {
			available, err := s.availability.check(gctx, l.Product.ID, l.Quantity)
			if err != nil {
				return errors.Wrapf(err, "product %s", l.Product.ID)
			}
			ok[i] = available
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var refused []domain.CartLineItem
	for i, l := range lines {
		if !ok[i] {
			refused = append(refused, l)
		}
	}
	return refused, nil
}

func (s *Session) refreshStock(productID string) {
	if s.products == nil {
		return
	}
	p, err := s.products.Get(productID)
	if err != nil {
		log.Printf("refresh stock of %s failed: %v", productID, err)
		return
	}
	if err := s.cart.RefreshStock(productID, p.Stock); err != nil {
		log.Printf("refresh stock of %s failed: %v", productID, err)
	}
}
