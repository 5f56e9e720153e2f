package payment

import (
	"context"
	"errors"
	"time"

	"github.com/aims/storefront/domain"
	log "github.com/sirupsen/logrus"
)

const (
	msgQRExpired       = "QR code has expired. Please try again."
	msgAttemptsUsed    = "Payment could not be verified in time. Please try again."
	msgVerifyDeclined  = "Payment failed. Please try again or choose another payment method."
	msgVerifyError     = "The payment gateway reported an error. Please try again."
	noticeQRExpired    = "QR code expired. Payment timeout."
	noticeVerified     = "VietQR payment successfully verified!"
	noticePaymentFail  = "Payment failed"
	noticeVerifyFailed = "Unable to verify payment. Retrying..."
)

// Confirm is the "I have paid" action of the VietQR tab: CREATED -> PENDING, then polling starts.
func (o *Orchestrator) Confirm() (domain.TransactionInfo, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return domain.TransactionInfo{}, ErrClosed
	}
	if o.tx == nil {
		return domain.TransactionInfo{}, ErrNoTransaction
	}
	if o.method != domain.PaymentMethodVietQR {
		return *o.tx, ErrWrongMethod
	}
	if o.inFlight || o.tx.PaymentStatus == domain.PaymentStatusPending || o.tx.PaymentStatus == domain.PaymentStatusSuccess {
		return *o.tx, ErrConfirmDisabled
	}
	if err := o.transitionLocked(domain.PaymentStatusPending); err != nil {
		return *o.tx, err
	}

	o.attempts = 0
	if o.pending == nil {
		o.startWatchLocked()
	}
	close(o.pending)
	o.pending = nil
	o.notifier.Notify(domain.SeverityInfo, "Verifying payment...")
	return *o.tx, nil
}

// startWatchLocked shows a fresh QR code: it sets the deadline and starts the watcher
// that owns both timeout mechanisms for the current generation.
func (o *Orchestrator) startWatchLocked() {
	if o.closed {
		return
	}
	ctx, cancel := context.WithCancel(o.ctx)
	o.stopWatch = cancel
	o.pending = make(chan struct{})
	o.deadline = o.now().Add(o.cfg.QRLifetime)

	o.wg.Add(1)
	go o.watch(ctx, o.gen, o.pending, time.Now().Add(o.cfg.QRLifetime))
}

// watch runs one QR display. Before confirmation it only waits for the deadline; after it,
// verification calls run one at a time on every tick. The first limit reached is the only cause.
func (o *Orchestrator) watch(ctx context.Context, gen uint64, pending <-chan struct{}, deadline time.Time) {
	defer o.wg.Done()

	expiry := time.NewTimer(time.Until(deadline))
	defer expiry.Stop()

	var ticker *time.Ticker
	var tick <-chan time.Time
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-expiry.C:
			o.expire(gen)
			return
		case <-pending:
			pending = nil
			ticker = time.NewTicker(o.cfg.PollInterval)
			tick = ticker.C
		case <-tick:
			if done := o.poll(ctx, gen, deadline); done {
				return
			}
		}
	}
}

// poll performs one verification attempt and reports whether the watcher should stop.
func (o *Orchestrator) poll(ctx context.Context, gen uint64, deadline time.Time) bool {
	o.mu.Lock()
	if o.gen != gen || o.tx == nil || o.tx.PaymentStatus != domain.PaymentStatusPending {
		o.mu.Unlock()
		return true
	}
	if !time.Now().Before(deadline) {
		o.expireLocked()
		o.mu.Unlock()
		return true
	}
	o.attempts++
	attempt := o.attempts
	txID := o.tx.TransactionID
	o.inFlight = true
	o.mu.Unlock()

	verifyCtx, cancel := context.WithDeadline(ctx, deadline)
	status, err := o.gateway.VerifyPayment(verifyCtx, txID)
	cancel()

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.gen != gen || o.tx == nil || o.tx.PaymentStatus != domain.PaymentStatusPending {
		return true
	}
	o.inFlight = false

	if err != nil {
		if !time.Now().Before(deadline) {
			o.expireLocked()
			return true
		}
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return true
		}
		log.WithFields(log.Fields{
			"transaction_id": txID,
			"attempt":        attempt,
		}).Warnf("verify payment failed: %v", err)
		if attempt >= o.cfg.MaxAttempts {
			o.failLocked(domain.PaymentStatusFailed, domain.FailureAttemptsExhausted, msgAttemptsUsed, noticePaymentFail)
			return true
		}
		o.notifier.Notify(domain.SeverityWarning, noticeVerifyFailed)
		return false
	}

	switch status {
	case domain.PaymentStatusSuccess:
		o.succeedLocked(noticeVerified)
		return true
	case domain.PaymentStatusFailed:
		o.failLocked(domain.PaymentStatusFailed, domain.FailureDeclined, msgVerifyDeclined, noticePaymentFail)
		return true
	case domain.PaymentStatusError:
		o.failLocked(domain.PaymentStatusError, domain.FailureGatewayError, msgVerifyError, noticePaymentFail)
		return true
	}

	if attempt >= o.cfg.MaxAttempts {
		o.failLocked(domain.PaymentStatusFailed, domain.FailureAttemptsExhausted, msgAttemptsUsed, noticePaymentFail)
		return true
	}
	return false
}

func (o *Orchestrator) expire(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gen != gen {
		return
	}
	o.expireLocked()
}

func (o *Orchestrator) expireLocked() {
	if o.tx == nil {
		return
	}
	switch o.tx.PaymentStatus {
	case domain.PaymentStatusCreated, domain.PaymentStatusPending:
		o.failLocked(domain.PaymentStatusFailed, domain.FailureQRExpired, msgQRExpired, noticeQRExpired)
	}
}
