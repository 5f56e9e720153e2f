package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aims/storefront/domain"
)

type verifyResult struct {
	Status domain.PaymentStatus
	Err    error
}

// MockGateway implements Gateway with scripted answers
type MockGateway struct {
	mu sync.Mutex

	InitErr   error
	InitDelay time.Duration
	initCalls int

	// VerifyScript is consumed in order, then VerifyDefault is returned
	VerifyScript  []verifyResult
	VerifyDefault domain.PaymentStatus
	// VerifyBlock makes every verification wait until its context is done
	VerifyBlock bool
	verifyCalls int

	CardOK    bool
	CardErr   error
	CardBlock chan struct{}
	cardCalls int
	lastCard  domain.CardData
}

func (m *MockGateway) InitializePayment(ctx context.Context, orderID string) (domain.TransactionInfo, error) {
	m.mu.Lock()
	m.initCalls++
	n := m.initCalls
	delay := m.InitDelay
	err := m.InitErr
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return domain.TransactionInfo{}, err
	}
	txID := fmt.Sprintf("TXN-%d", n)
	return domain.TransactionInfo{
		TransactionID: txID,
		OrderID:       orderID,
		Content:       "Payment for Order " + orderID,
		DateTime:      time.Now(),
		PaymentStatus: domain.PaymentStatusCreated,
		QRCodeString:  "QR-" + txID + "-" + orderID,
	}, nil
}

func (m *MockGateway) VerifyPayment(ctx context.Context, _ string) (domain.PaymentStatus, error) {
	m.mu.Lock()
	m.verifyCalls++
	block := m.VerifyBlock
	var res verifyResult
	if len(m.VerifyScript) > 0 {
		res = m.VerifyScript[0]
		m.VerifyScript = m.VerifyScript[1:]
	} else {
		res = verifyResult{Status: m.VerifyDefault}
		if res.Status == "" {
			res.Status = domain.PaymentStatusPending
		}
	}
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return res.Status, res.Err
}

func (m *MockGateway) ProcessCardPayment(ctx context.Context, _ string, card domain.CardData) (bool, error) {
	m.mu.Lock()
	m.cardCalls++
	m.lastCard = card
	block := m.CardBlock
	ok, err := m.CardOK, m.CardErr
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return ok, err
}

func (m *MockGateway) SetVerify(script ...verifyResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VerifyScript = script
}

func (m *MockGateway) InitCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initCalls
}

func (m *MockGateway) VerifyCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verifyCalls
}

func (m *MockGateway) CardCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cardCalls
}

type MockNotifier struct {
	mu       sync.Mutex
	messages []string
	severity []domain.Severity
}

func (m *MockNotifier) Notify(severity domain.Severity, message string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	m.severity = append(m.severity, severity)
	return fmt.Sprintf("n-%d", len(m.messages))
}

func (m *MockNotifier) Has(message string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.messages {
		if v == message {
			return true
		}
	}
	return false
}

func (m *MockNotifier) CountSeverity(s domain.Severity) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, v := range m.severity {
		if v == s {
			n++
		}
	}
	return n
}

type MockListener struct {
	mu        sync.Mutex
	succeeded []domain.TransactionInfo
	failed    []domain.TransactionInfo
}

func (m *MockListener) OnPaymentSucceeded(tx domain.TransactionInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.succeeded = append(m.succeeded, tx)
}

func (m *MockListener) OnPaymentFailed(tx domain.TransactionInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, tx)
}

func (m *MockListener) Succeeded() []domain.TransactionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TransactionInfo(nil), m.succeeded...)
}

func (m *MockListener) Failed() []domain.TransactionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TransactionInfo(nil), m.failed...)
}
