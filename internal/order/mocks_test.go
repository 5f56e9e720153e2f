package order

import (
	"context"
	"sync"

	"github.com/aims/storefront/domain"
	"github.com/shopspring/decimal"
)

type MockCart struct {
	Lines []domain.CartLineItem
}

func (m *MockCart) SelectedItems() []domain.CartLineItem {
	return append([]domain.CartLineItem(nil), m.Lines...)
}

type MockFees struct {
	Fee        decimal.Decimal
	Err        error
	Calls      int
	LastWeight float64
	LastValue  decimal.Decimal
}

func (m *MockFees) CalculateFee(_ context.Context, weight float64, _ string, orderValue decimal.Decimal) (decimal.Decimal, error) {
	m.Calls++
	m.LastWeight = weight
	m.LastValue = orderValue
	return m.Fee, m.Err
}

type MockSubmitter struct {
	DeliveryID string
	Err        error
	Calls      int
	Received   domain.DeliveryInfo
	// Block, when set, is waited on before answering
	Block chan struct{}
}

func (m *MockSubmitter) SubmitDeliveryInfo(_ context.Context, info domain.DeliveryInfo) (domain.DeliveryInfo, error) {
	m.Calls++
	m.Received = info
	if m.Block != nil {
		<-m.Block
	}
	if m.Err != nil {
		return domain.DeliveryInfo{}, m.Err
	}
	info.DeliveryID = m.DeliveryID
	return info, nil
}

type MockNotifier struct {
	mu       sync.Mutex
	Messages []string
	Severity []domain.Severity
}

func (m *MockNotifier) Notify(severity domain.Severity, message string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, message)
	m.Severity = append(m.Severity, severity)
	return "n"
}

func line(id string, price int64, qty int, weight float64) domain.CartLineItem {
	return domain.NewCartLineItem("line-"+id, domain.Product{
		ID:     id,
		Name:   "Product " + id,
		Price:  decimal.NewFromInt(price),
		Stock:  10,
		Weight: weight,
		Active: true,
	}, qty)
}

func shippingInfo() domain.DeliveryInfo {
	return domain.DeliveryInfo{
		FullName:       "Tran Thi B",
		Email:          "b@example.com",
		PhoneNumber:    "0987654321",
		Address:        "45 Nguyen Hue, District 1",
		Province:       "Ho Chi Minh City",
		DeliveryMethod: domain.DeliveryMethodExpress,
	}
}
