package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aims/storefront/domain"
	"github.com/aims/storefront/internal/cart"
	"github.com/aims/storefront/internal/order"
	"github.com/aims/storefront/internal/payment"
	"github.com/shopspring/decimal"
)

type MockAvailability struct {
	mu      sync.Mutex
	Refused map[string]bool
	Err     error
	calls   int
}

func (m *MockAvailability) CheckAvailability(_ context.Context, productID string, _ int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return false, m.Err
	}
	return !m.Refused[productID], nil
}

type MockProducts struct {
	Stock map[string]int
}

func (m *MockProducts) Get(id string) (domain.Product, error) {
	stock, ok := m.Stock[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %s not found", id)
	}
	return domain.Product{ID: id, Stock: stock}, nil
}

type MockFees struct {
	Fee decimal.Decimal
	Err error
}

func (m *MockFees) CalculateFee(context.Context, float64, string, decimal.Decimal) (decimal.Decimal, error) {
	return m.Fee, m.Err
}

// MockDelivery waits on Release, when set, before answering.
type MockDelivery struct {
	mu      sync.Mutex
	Err     error
	Release chan struct{}
	calls   int
}

func (m *MockDelivery) SubmitDeliveryInfo(ctx context.Context, info domain.DeliveryInfo) (domain.DeliveryInfo, error) {
	if m.Release != nil {
		select {
		case <-m.Release:
		case <-ctx.Done():
			return domain.DeliveryInfo{}, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return domain.DeliveryInfo{}, m.Err
	}
	info.DeliveryID = fmt.Sprintf("DEL-%d", m.calls)
	return info, nil
}

// MockGateway answers verifications from Script first, then with Verify.
// Card payments answer CardOK.
type MockGateway struct {
	mu          sync.Mutex
	InitErr     error
	Script      []domain.PaymentStatus
	Verify      domain.PaymentStatus
	CardOK      bool
	initCalls   int
	verifyCalls int
}

func (m *MockGateway) InitializePayment(_ context.Context, orderID string) (domain.TransactionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initCalls++
	if m.InitErr != nil {
		return domain.TransactionInfo{}, m.InitErr
	}
	txID := fmt.Sprintf("TXN-%d", m.initCalls)
	return domain.TransactionInfo{
		TransactionID: txID,
		OrderID:       orderID,
		Content:       "Payment for Order " + orderID,
		DateTime:      time.Now(),
		PaymentStatus: domain.PaymentStatusCreated,
		QRCodeString:  "QR-" + txID + "-" + orderID,
	}, nil
}

func (m *MockGateway) VerifyPayment(context.Context, string) (domain.PaymentStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifyCalls++
	if len(m.Script) > 0 {
		next := m.Script[0]
		m.Script = m.Script[1:]
		return next, nil
	}
	if m.Verify == "" {
		return domain.PaymentStatusPending, nil
	}
	return m.Verify, nil
}

func (m *MockGateway) ProcessCardPayment(context.Context, string, domain.CardData) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CardOK, nil
}

func (m *MockGateway) SetVerify(status domain.PaymentStatus) {
	m.mu.Lock()
	m.Verify = status
	m.mu.Unlock()
}

func (m *MockGateway) SetCardOK(ok bool) {
	m.mu.Lock()
	m.CardOK = ok
	m.mu.Unlock()
}

func (m *MockGateway) SetScript(statuses ...domain.PaymentStatus) {
	m.mu.Lock()
	m.Script = statuses
	m.mu.Unlock()
}

func (m *MockGateway) VerifyCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verifyCalls
}

func (m *MockGateway) InitCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initCalls
}

func (m *MockGateway) SetInitErr(err error) {
	m.mu.Lock()
	m.InitErr = err
	m.mu.Unlock()
}

type MockEvents struct {
	mu     sync.Mutex
	Events []domain.OrderCompleted
}

func (m *MockEvents) Enqueue(_ context.Context, event domain.OrderCompleted) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockEvents) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Events)
}

type MockNotifier struct {
	mu         sync.Mutex
	Messages   []string
	Severities []domain.Severity
}

func (m *MockNotifier) Notify(severity domain.Severity, message string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, message)
	m.Severities = append(m.Severities, severity)
	return fmt.Sprintf("n-%d", len(m.Messages))
}

func (m *MockNotifier) LastSeverity() domain.Severity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Severities) == 0 {
		return ""
	}
	return m.Severities[len(m.Severities)-1]
}

func (m *MockNotifier) Has(message string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.Messages {
		if msg == message {
			return true
		}
	}
	return false
}

type fixture struct {
	session      *Session
	cart         *cart.Store
	availability *MockAvailability
	products     *MockProducts
	delivery     *MockDelivery
	gateway      *MockGateway
	events       *MockEvents
	notifier     *MockNotifier
}

func newFixture() *fixture {
	return newFixtureWithFees(&MockFees{Fee: decimal.NewFromInt(22000)})
}

func newFixtureWithFees(fees order.FeeCalculator) *fixture {
	return newFixtureWithConfig(fees, payment.Config{
		PollInterval: 10 * time.Millisecond,
		MaxAttempts:  50,
		QRLifetime:   2 * time.Second,
		SuccessDelay: 0,
	})
}

func newFixtureWithConfig(fees order.FeeCalculator, paymentCfg payment.Config) *fixture {
	f := &fixture{
		availability: &MockAvailability{Refused: map[string]bool{}},
		products:     &MockProducts{Stock: map[string]int{}},
		delivery:     &MockDelivery{},
		gateway:      &MockGateway{},
		events:       &MockEvents{},
		notifier:     &MockNotifier{},
	}
	f.cart = cart.NewStore(f.notifier)
	f.session = NewSession(Deps{
		Cart:         f.cart,
		Fees:         fees,
		Delivery:     f.delivery,
		Gateway:      f.gateway,
		Availability: f.availability,
		Products:     f.products,
		Events:       f.events,
		Notifier:     f.notifier,
	}, Config{
		Payment:             paymentCfg,
		AvailabilityTimeout: time.Second,
	})
	return f
}

func product(id string, price int64, stock int) domain.Product {
	return domain.Product{
		ID:     id,
		Name:   "Product " + id,
		Price:  decimal.NewFromInt(price),
		Stock:  stock,
		Weight: 0.5,
		Active: true,
	}
}

func shippingInfo() domain.DeliveryInfo {
	return domain.DeliveryInfo{
		FullName:       "Nguyen Van A",
		Email:          "a@example.com",
		PhoneNumber:    "0912345678",
		Address:        "1 Trang Tien, Hoan Kiem",
		Province:       "Hanoi",
		DeliveryMethod: domain.DeliveryMethodStandard,
	}
}

func validCard() domain.CardInput {
	return domain.CardInput{
		CardholderName: "NGUYEN VAN A",
		CardNumber:     "4111 1111 1111 1111",
		Expiry:         "12/30",
		CVV:            "123",
	}
}
