package checkout

import (
	"sync"
	"time"

	"github.com/aims/storefront/domain"
	"github.com/aims/storefront/internal/cart"
	"github.com/aims/storefront/internal/order"
	"github.com/aims/storefront/internal/payment"
)

type Deps struct {
	Cart         *cart.Store
	Fees         order.FeeCalculator
	Delivery     order.DeliverySubmitter
	Gateway      payment.Gateway
	Availability AvailabilityChecker
	// Products refreshes stock snapshots after a refused availability check. Optional.
	Products ProductSource
	// Events receives OrderCompleted once an order is paid. Optional.
	Events   EventPublisher
	Notifier Notifier
}

type Config struct {
	Payment             payment.Config
	AvailabilityTimeout time.Duration
	PublishTimeout      time.Duration
}

// View is what the storefront renders for the current checkout step. Loading is set while
// the shipping submission waits on the fee and delivery collaborators.
type View struct {
	Step      domain.CheckoutStep `json:"step"`
	Loading   bool                `json:"loading"`
	Order     domain.Order        `json:"order"`
	Summary   domain.OrderSummary `json:"summary"`
	Payment   payment.State       `json:"payment"`
	LastOrder *domain.Order       `json:"last_order,omitempty"`
}

// Session is the single controller of the customer's checkout. Its commands are the only
// way the cart, the order and the payment move between steps.
type Session struct {
	mu        sync.Mutex
	step      domain.CheckoutStep
	lastOrder *domain.Order
	closed    bool

	cart         *cart.Store
	orders       *order.Assembler
	payments     *payment.Orchestrator
	availability availabilityHandler
	events       publishHandler
	products     ProductSource
	notifier     Notifier
}

func NewSession(d Deps, cfg Config) *Session {
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	s := &Session{
		step:         domain.CheckoutStepCart,
		cart:         d.Cart,
		orders:       order.NewAssembler(d.Cart, d.Fees, d.Delivery, d.Notifier),
		availability: availabilityHandler{checker: d.Availability, timeout: cfg.AvailabilityTimeout},
		events:       publishHandler{publisher: d.Events, timeout: cfg.PublishTimeout},
		products:     d.Products,
		notifier:     d.Notifier,
	}
	s.payments = payment.NewOrchestrator(d.Gateway, d.Notifier, s, cfg.Payment)
	return s
}

func (s *Session) Cart() *cart.Store {
	return s.cart
}

func (s *Session) Step() domain.CheckoutStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Step:    s.step,
		Loading: s.orders.Loading(),
		Order:   s.orders.Order(),
		Summary: s.orders.Summary(),
		Payment: s.payments.Snapshot(),
	}
	if s.lastOrder != nil {
		o := *s.lastOrder
		v.LastOrder = &o
	}
	return v
}

// Summary is the price breakdown of the current order.
func (s *Session) Summary() domain.OrderSummary {
	return s.orders.Summary()
}

// Back moves one step back. It is refused while a payment is pending or once it succeeded.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.step {
	case domain.CheckoutStepShipping:
		s.step = domain.CheckoutStepCart
	case domain.CheckoutStepPayment, domain.CheckoutStepPaymentFailed:
		if !s.payments.Snapshot().CanGoBack {
			return ErrBackDisabled
		}
		s.payments.Reset()
		s.orders.Reset()
		s.step = domain.CheckoutStepShipping
	case domain.CheckoutStepCompleted:
		s.step = domain.CheckoutStepCart
	default:
		return ErrWrongStep
	}
	return nil
}

// Close stops the payment timers. It must not be called while holding the session lock.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.payments.Close()
}

func (s *Session) inStep(steps ...domain.CheckoutStep) error {
	if s.closed {
		return ErrSessionShutdown
	}
	for _, st := range steps {
		if s.step == st {
			return nil
		}
	}
	return ErrWrongStep
}
