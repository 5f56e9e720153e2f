package payment

import (
	"context"

	"github.com/aims/storefront/domain"
	log "github.com/sirupsen/logrus"
)

// PayByCard validates the card form and makes a single ProcessCardPayment call.
// Invalid input returns domain.FieldErrors and never touches the state machine.
func (o *Orchestrator) PayByCard(ctx context.Context, input domain.CardInput) (domain.TransactionInfo, error) {
	card, err := domain.ParseCard(input)
	if err != nil {
		return domain.TransactionInfo{}, err
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return domain.TransactionInfo{}, ErrClosed
	}
	if o.tx == nil {
		o.mu.Unlock()
		return domain.TransactionInfo{}, ErrNoTransaction
	}
	if o.method != domain.PaymentMethodCard {
		tx := *o.tx
		o.mu.Unlock()
		return tx, ErrWrongMethod
	}
	if o.inFlight {
		tx := *o.tx
		o.mu.Unlock()
		return tx, ErrPaymentInProgress
	}
	if o.tx.PaymentStatus == domain.PaymentStatusPending || o.tx.PaymentStatus == domain.PaymentStatusSuccess {
		tx := *o.tx
		o.mu.Unlock()
		return tx, ErrConfirmDisabled
	}
	if err := o.transitionLocked(domain.PaymentStatusPending); err != nil {
		tx := *o.tx
		o.mu.Unlock()
		return tx, err
	}
	o.inFlight = true
	gen := o.gen
	orderID := o.tx.OrderID
	o.mu.Unlock()

	log.WithFields(log.Fields{"order_id": orderID}).Infof("processing %s", card)

	cardCtx, cancel := context.WithTimeout(ctx, o.cfg.CardTimeout)
	ok, err := o.gateway.ProcessCardPayment(cardCtx, orderID, card)
	cancel()

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.gen != gen || o.tx == nil || o.tx.PaymentStatus != domain.PaymentStatusPending {
		if o.tx == nil {
			return domain.TransactionInfo{}, ErrSuperseded
		}
		return *o.tx, ErrSuperseded
	}

	switch {
	case err != nil:
		log.WithFields(log.Fields{"order_id": orderID}).Errorf("card payment error: %v", err)
		o.failLocked(domain.PaymentStatusError, domain.FailureGatewayError,
			"Payment processing error. Please try again.",
			"Payment error: unable to process card payment.")
	case ok:
		o.succeedLocked("Credit card payment successful!")
	default:
		o.failLocked(domain.PaymentStatusFailed, domain.FailureDeclined,
			"Payment was declined. Please check your card details or try another payment method.",
			noticePaymentFail)
	}
	return *o.tx, nil
}
