package checkout

import (
	"github.com/aims/storefront/domain"
)

// Cart edits are accepted on the cart and after a completed checkout only. Once the customer
// proceeded, the lines being paid for stay as they were confirmed.

func (s *Session) AddItem(product domain.Product, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cartEditable(); err != nil {
		return err
	}
	return s.cart.AddItem(product, quantity)
}

func (s *Session) UpdateQuantity(productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cartEditable(); err != nil {
		return err
	}
	return s.cart.UpdateQuantity(productID, quantity)
}

func (s *Session) RemoveItem(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cartEditable(); err != nil {
		return err
	}
	return s.cart.RemoveItem(productID)
}

func (s *Session) ToggleSelection(lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cartEditable(); err != nil {
		return err
	}
	return s.cart.ToggleSelection(lineID)
}

func (s *Session) SelectAll(selected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cartEditable(); err != nil {
		return err
	}
	s.cart.SelectAll(selected)
	return nil
}

func (s *Session) cartEditable() error {
	err := s.inStep(domain.CheckoutStepCart, domain.CheckoutStepCompleted)
	if err == ErrWrongStep {
		s.notifier.Notify(domain.SeverityWarning, "The cart cannot be changed while checkout is in progress.")
	}
	return err
}
