package payment

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/aims/storefront/domain"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Gateway is the external payment backend.
type Gateway interface {
	InitializePayment(ctx context.Context, orderID string) (domain.TransactionInfo, error)
	VerifyPayment(ctx context.Context, transactionID string) (domain.PaymentStatus, error)
	ProcessCardPayment(ctx context.Context, orderID string, card domain.CardData) (bool, error)
}

// Listener receives the terminal outcomes of a payment.
// Calls happen on a background goroutine and never while the orchestrator holds its lock.
type Listener interface {
	OnPaymentSucceeded(tx domain.TransactionInfo)
	OnPaymentFailed(tx domain.TransactionInfo)
}

type Notifier interface {
	Notify(severity domain.Severity, message string) string
}

// State is a consistent snapshot of the orchestrator.
type State struct {
	Transaction      *domain.TransactionInfo `json:"transaction,omitempty"`
	Method           domain.PaymentMethod    `json:"method"`
	Attempts         int                     `json:"attempts"`
	MaxAttempts      int                     `json:"max_attempts"`
	InFlight         bool                    `json:"in_flight"`
	RemainingSeconds int                     `json:"remaining_seconds"`
	CanConfirm       bool                    `json:"can_confirm"`
	CanGoBack        bool                    `json:"can_go_back"`
}

// Orchestrator drives the payment state machine of a single order.
//
// Every asynchronous write carries the generation it was started in and is dropped
// when the generation moved on (cancel, retry, method switch, reset or close).
type Orchestrator struct {
	gateway  Gateway
	notifier Notifier
	listener Listener
	cfg      Config
	now      func() time.Time

	sfg singleflight.Group // one InitializePayment per order id

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	tx        *domain.TransactionInfo
	method    domain.PaymentMethod
	gen       uint64
	attempts  int
	inFlight  bool
	deadline  time.Time
	pending   chan struct{}
	stopWatch context.CancelFunc
	closed    bool
}

func NewOrchestrator(gateway Gateway, notifier Notifier, listener Listener, cfg Config) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		gateway:  gateway,
		notifier: notifier,
		listener: listener,
		cfg:      cfg.withDefaults(),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		method:   domain.PaymentMethodVietQR,
	}
}

// Begin creates the transaction of orderID. Calling it again for the same order
// returns the existing transaction without another backend call.
func (o *Orchestrator) Begin(ctx context.Context, orderID string) (domain.TransactionInfo, error) {
	if orderID == "" {
		return domain.TransactionInfo{}, errors.New("order id is required to begin payment")
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return domain.TransactionInfo{}, ErrClosed
	}
	if o.tx != nil && o.tx.OrderID == orderID {
		tx := *o.tx
		o.mu.Unlock()
		return tx, nil
	}
	o.mu.Unlock()

	v, err, _ := o.sfg.Do(orderID, func() (interface{}, error) {
		o.mu.Lock()
		if o.tx != nil && o.tx.OrderID == orderID {
			tx := *o.tx
			o.mu.Unlock()
			return tx, nil
		}
		o.mu.Unlock()

		initCtx, cancel := context.WithTimeout(ctx, o.cfg.InitTimeout)
		defer cancel()
		tx, err := o.gateway.InitializePayment(initCtx, orderID)
		if err != nil {
			o.notifier.Notify(domain.SeverityError, "Failed to initialize payment. Please try again.")
			return nil, errors.Wrap(err, "initialize payment")
		}
		if tx.PaymentStatus == "" {
			tx.PaymentStatus = domain.PaymentStatusCreated
		}
		if tx.PaymentStatus != domain.PaymentStatusCreated {
			o.notifier.Notify(domain.SeverityError, "Failed to initialize payment. Please try again.")
			return nil, errors.Wrapf(ErrUnexpectedStatus, "status %s", tx.PaymentStatus)
		}
		if tx.OrderID == "" {
			tx.OrderID = orderID
		}

		o.mu.Lock()
		defer o.mu.Unlock()
		if o.closed {
			return nil, ErrClosed
		}
		o.invalidateLocked()
		o.tx = &tx
		o.attempts = 0
		if o.method == domain.PaymentMethodVietQR {
			o.startWatchLocked()
		}
		log.WithFields(log.Fields{
			"order_id":       orderID,
			"transaction_id": tx.TransactionID,
		}).Info("payment initialized")
		return tx, nil
	})
	if err != nil {
		return domain.TransactionInfo{}, err
	}
	return v.(domain.TransactionInfo), nil
}

// SelectMethod switches the payment tab. Any polling or in-flight call of the previous
// method is invalidated and a PENDING transaction goes back to CREATED. The order id is kept.
func (o *Orchestrator) SelectMethod(method domain.PaymentMethod) error {
	if _, ok := domain.ParsePaymentMethod(string(method)); !ok {
		return ErrUnknownMethod
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if o.method == method {
		return nil
	}
	if o.tx != nil && o.tx.PaymentStatus == domain.PaymentStatusSuccess {
		return errors.Wrap(ErrIllegalTransition, "payment already succeeded")
	}

	o.invalidateLocked()
	o.attempts = 0
	o.method = method
	if o.tx == nil {
		return nil
	}
	if o.tx.PaymentStatus == domain.PaymentStatusPending {
		if err := o.transitionLocked(domain.PaymentStatusCreated); err != nil {
			return err
		}
	}
	if method == domain.PaymentMethodVietQR && o.tx.PaymentStatus == domain.PaymentStatusCreated {
		o.startWatchLocked()
	}
	return nil
}

// Cancel stops any polling and moves a non-successful transaction to CANCELLED.
func (o *Orchestrator) Cancel() (domain.TransactionInfo, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.tx == nil {
		return domain.TransactionInfo{}, ErrNoTransaction
	}
	if o.tx.PaymentStatus == domain.PaymentStatusCancelled {
		return *o.tx, nil
	}
	if !domain.CanTransitionTo(o.tx.PaymentStatus, domain.PaymentStatusCancelled) {
		return *o.tx, errors.Wrapf(ErrIllegalTransition, "%s -> %s", o.tx.PaymentStatus, domain.PaymentStatusCancelled)
	}

	o.invalidateLocked()
	if err := o.transitionLocked(domain.PaymentStatusCancelled); err != nil {
		return *o.tx, err
	}
	o.notifier.Notify(domain.SeverityInfo, "Payment cancelled.")
	return *o.tx, nil
}

// Retry resets a FAILED or ERROR transaction to CREATED, keeping its transaction id.
func (o *Orchestrator) Retry() (domain.TransactionInfo, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return domain.TransactionInfo{}, ErrClosed
	}
	if o.tx == nil {
		return domain.TransactionInfo{}, ErrNoTransaction
	}
	if !o.tx.PaymentStatus.IsRetryable() {
		return *o.tx, errors.Wrapf(ErrIllegalTransition, "cannot retry from %s", o.tx.PaymentStatus)
	}

	o.invalidateLocked()
	if err := o.transitionLocked(domain.PaymentStatusCreated); err != nil {
		return *o.tx, err
	}
	o.tx.ErrorMessage = ""
	o.tx.FailureReason = domain.FailureNone
	o.attempts = 0
	if o.method == domain.PaymentMethodVietQR {
		o.startWatchLocked()
	}
	o.notifier.Notify(domain.SeverityInfo, "Payment reset. Please try again.")
	return *o.tx, nil
}

// Reset forgets the transaction, e.g. when the customer goes back and the order is discarded.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.invalidateLocked()
	o.tx = nil
	o.attempts = 0
	o.deadline = time.Time{}
}

func (o *Orchestrator) Transaction() (domain.TransactionInfo, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.tx == nil {
		return domain.TransactionInfo{}, false
	}
	return *o.tx, true
}

func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := State{
		Method:      o.method,
		Attempts:    o.attempts,
		MaxAttempts: o.cfg.MaxAttempts,
		InFlight:    o.inFlight,
		CanConfirm:  o.canConfirmLocked(),
		CanGoBack:   o.canGoBackLocked(),
	}
	if o.tx == nil {
		return s
	}
	tx := *o.tx
	s.Transaction = &tx

	open := tx.PaymentStatus == domain.PaymentStatusCreated || tx.PaymentStatus == domain.PaymentStatusPending
	if o.method == domain.PaymentMethodVietQR && open && !o.deadline.IsZero() {
		left := o.deadline.Sub(o.now())
		if left > 0 {
			s.RemainingSeconds = int(math.Ceil(left.Seconds()))
		}
	}
	return s
}

// Close stops all timers and waits for background goroutines to return.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.invalidateLocked()
	o.cancel()
	o.mu.Unlock()

	o.wg.Wait()
}

func (o *Orchestrator) canConfirmLocked() bool {
	return o.tx != nil && !o.inFlight && o.tx.PaymentStatus == domain.PaymentStatusCreated
}

func (o *Orchestrator) canGoBackLocked() bool {
	if o.tx == nil {
		return true
	}
	if o.inFlight {
		return false
	}
	switch o.tx.PaymentStatus {
	case domain.PaymentStatusPending, domain.PaymentStatusSuccess:
		return false
	}
	return true
}

func (o *Orchestrator) transitionLocked(next domain.PaymentStatus) error {
	cur := o.tx.PaymentStatus
	if !domain.CanTransitionTo(cur, next) {
		return errors.Wrapf(ErrIllegalTransition, "%s -> %s", cur, next)
	}
	o.tx.PaymentStatus = next
	log.WithFields(log.Fields{
		"transaction_id": o.tx.TransactionID,
		"from":           cur,
		"to":             next,
	}).Info("payment status changed")
	return nil
}

// invalidateLocked moves to a new generation and stops the QR watcher of the old one.
func (o *Orchestrator) invalidateLocked() {
	o.gen++
	if o.stopWatch != nil {
		o.stopWatch()
		o.stopWatch = nil
	}
	o.pending = nil
	o.inFlight = false
}

func (o *Orchestrator) succeedLocked(message string) {
	if err := o.transitionLocked(domain.PaymentStatusSuccess); err != nil {
		log.Printf("payment success dropped: %v", err)
		return
	}
	o.tx.InvoiceStatus = true
	o.tx.ErrorMessage = ""
	o.tx.FailureReason = domain.FailureNone
	o.inFlight = false
	o.notifier.Notify(domain.SeveritySuccess, message)

	tx := *o.tx
	o.dispatchLocked(o.cfg.SuccessDelay, func(l Listener) { l.OnPaymentSucceeded(tx) })
}

func (o *Orchestrator) failLocked(status domain.PaymentStatus, reason domain.FailureReason, errorMessage, notice string) {
	if err := o.transitionLocked(status); err != nil {
		log.Printf("payment failure dropped: %v", err)
		return
	}
	o.tx.ErrorMessage = errorMessage
	o.tx.FailureReason = reason
	o.inFlight = false
	o.notifier.Notify(domain.SeverityError, notice)

	tx := *o.tx
	o.dispatchLocked(0, func(l Listener) { l.OnPaymentFailed(tx) })
}

// dispatchLocked calls the listener after delay unless the generation changed meanwhile.
func (o *Orchestrator) dispatchLocked(delay time.Duration, call func(Listener)) {
	if o.listener == nil || o.closed {
		return
	}
	gen := o.gen
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if !sleepOrDone(o.ctx, delay) {
			return
		}
		o.mu.Lock()
		stale := o.gen != gen
		o.mu.Unlock()
		if stale {
			return
		}
		call(o.listener)
	}()
}
