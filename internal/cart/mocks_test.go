package cart

import (
	"sync"

	"github.com/aims/storefront/domain"
	"github.com/shopspring/decimal"
)

type recordedNotification struct {
	Severity domain.Severity
	Message  string
}

// MockNotifier records every notification for assertions
type MockNotifier struct {
	mu   sync.Mutex
	sent []recordedNotification
}

func (m *MockNotifier) Notify(severity domain.Severity, message string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, recordedNotification{severity, message})
	return "n"
}

func (m *MockNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *MockNotifier) Last() recordedNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return recordedNotification{}
	}
	return m.sent[len(m.sent)-1]
}

func product(id string, price int64, stock int, weight float64) domain.Product {
	return domain.Product{
		ID:     id,
		Name:   "Product " + id,
		Price:  decimal.NewFromInt(price),
		Stock:  stock,
		Weight: weight,
		Active: true,
		Details: domain.BookDetails{
			Authors:   []string{"Author " + id},
			Publisher: "Kim Dong",
		},
	}
}
