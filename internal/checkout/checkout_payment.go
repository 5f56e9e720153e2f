package checkout

import (
	"context"

	"github.com/aims/storefront/domain"
	"github.com/aims/storefront/internal/payment"
	log "github.com/sirupsen/logrus"
)

func (s *Session) SelectPaymentMethod(method domain.PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.inStep(domain.CheckoutStepPayment); err != nil {
		return err
	}
	return s.payments.SelectMethod(method)
}

// ConfirmPayment is the VietQR "I have paid" action.
func (s *Session) ConfirmPayment(ctx context.Context) (domain.TransactionInfo, error) {
	if err := s.ensurePayment(ctx); err != nil {
		return domain.TransactionInfo{}, err
	}
	return s.payments.Confirm()
}

func (s *Session) PayByCard(ctx context.Context, input domain.CardInput) (domain.TransactionInfo, error) {
	if err := s.ensurePayment(ctx); err != nil {
		return domain.TransactionInfo{}, err
	}
	return s.payments.PayByCard(ctx, input)
}

// CancelPayment abandons the payment and returns to the cart.
func (s *Session) CancelPayment() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.inStep(domain.CheckoutStepPayment, domain.CheckoutStepPaymentFailed); err != nil {
		return err
	}
	if _, ok := s.payments.Transaction(); ok {
		if _, err := s.payments.Cancel(); err != nil {
			return err
		}
	}
	s.payments.Reset()
	s.orders.Reset()
	s.step = domain.CheckoutStepCart
	return nil
}

// RetryPayment reopens a failed payment with the same transaction.
func (s *Session) RetryPayment() (domain.TransactionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.inStep(domain.CheckoutStepPayment, domain.CheckoutStepPaymentFailed); err != nil {
		return domain.TransactionInfo{}, err
	}
	tx, err := s.payments.Retry()
	if err != nil {
		return tx, err
	}
	s.orders.AttachTransaction(tx)
	s.orders.SetStatus(domain.OrderStatusPending)
	s.step = domain.CheckoutStepPayment
	return tx, nil
}

// QRCode renders the VietQR payload of the current transaction as PNG.
func (s *Session) QRCode(size int) ([]byte, error) {
	tx, ok := s.payments.Transaction()
	if !ok {
		return nil, payment.ErrNoTransaction
	}
	return payment.RenderQR(tx.QRCodeString, size)
}

func (s *Session) OnPaymentSucceeded(tx domain.TransactionInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.step != domain.CheckoutStepPayment {
		return
	}
	current := s.orders.Order()
	if current.OrderID == "" || current.OrderID != tx.OrderID {
		return
	}
	method := s.payments.Snapshot().Method

	s.orders.AttachTransaction(tx)
	s.orders.SetStatus(domain.OrderStatusCompleted)
	completed := s.orders.Order()

	lineIDs := make([]string, 0, len(completed.LineItems))
	for _, l := range completed.LineItems {
		lineIDs = append(lineIDs, l.ID)
	}
	s.cart.RemoveLines(lineIDs)

	event := domain.OrderCompleted{
		OrderID:       completed.OrderID,
		TransactionID: tx.TransactionID,
		PaymentMethod: method,
		Order:         completed,
		Items:         completed.LineItems,
	}
	if err := s.events.publish(event); err != nil {
		log.WithFields(log.Fields{"order_id": completed.OrderID}).Errorf("failed to enqueue order event: %v", err)
	}

	s.lastOrder = &completed
	s.payments.Reset()
	s.orders.Reset()
	s.step = domain.CheckoutStepCompleted

	log.WithFields(log.Fields{
		"order_id":       completed.OrderID,
		"transaction_id": tx.TransactionID,
	}).Info("checkout completed")
}

func (s *Session) OnPaymentFailed(tx domain.TransactionInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.step != domain.CheckoutStepPayment {
		return
	}
	current, ok := s.payments.Transaction()
	if !ok || current.TransactionID != tx.TransactionID || !current.PaymentStatus.IsRetryable() {
		return
	}
	s.orders.AttachTransaction(current)
	s.orders.SetStatus(domain.OrderStatusFailed)
	s.step = domain.CheckoutStepPaymentFailed
}

// ensurePayment checks the step and initializes the transaction if an earlier attempt failed.
func (s *Session) ensurePayment(ctx context.Context) error {
	s.mu.Lock()
	if err := s.inStep(domain.CheckoutStepPayment); err != nil {
		s.mu.Unlock()
		return err
	}
	orderID := s.orders.Order().OrderID
	s.mu.Unlock()

	if orderID == "" {
		return ErrNoOrder
	}
	if _, ok := s.payments.Transaction(); ok {
		return nil
	}
	_, err := s.payments.Begin(ctx, orderID)
	return err
}
