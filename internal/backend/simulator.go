package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aims/storefront/domain"
	"github.com/aims/storefront/internal/delivery"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrUnknownTransaction = errors.New("unknown transaction")

// StockSource is the read side of the catalog.
type StockSource interface {
	Get(id string) (domain.Product, error)
}

type Latency struct {
	Availability time.Duration
	Fee          time.Duration
	Delivery     time.Duration
	Verify       time.Duration
	Card         time.Duration
}

func DefaultLatency() Latency {
	return Latency{
		Availability: 0,
		Fee:          500 * time.Millisecond,
		Delivery:     800 * time.Millisecond,
		Verify:       500 * time.Millisecond,
		Card:         2500 * time.Millisecond,
	}
}

// Simulator is the in-process stand-in for the delivery, stock and payment backends.
type Simulator struct {
	stock   StockSource
	outcome OutcomeSource
	latency Latency
	now     func() time.Time

	mu  sync.Mutex
	txs map[string]*domain.TransactionInfo
}

func NewSimulator(stock StockSource, outcome OutcomeSource, latency Latency) *Simulator {
	if outcome == nil {
		outcome = RandomOutcome{}
	}
	return &Simulator{
		stock:   stock,
		outcome: outcome,
		latency: latency,
		now:     time.Now,
		txs:     make(map[string]*domain.TransactionInfo),
	}
}

// CheckAvailability is false for unknown or inactive products and for quantities above stock.
func (s *Simulator) CheckAvailability(ctx context.Context, productID string, quantity int) (bool, error) {
	if err := wait(ctx, s.latency.Availability); err != nil {
		return false, err
	}
	p, err := s.stock.Get(productID)
	if err != nil {
		return false, nil
	}
	return p.Active && quantity <= p.Stock, nil
}

func (s *Simulator) CalculateDeliveryFee(ctx context.Context, weight float64, province string, orderValue decimal.Decimal) (decimal.Decimal, error) {
	if err := wait(ctx, s.latency.Fee); err != nil {
		return decimal.Zero, err
	}
	return delivery.ReferenceFee(weight, province, orderValue), nil
}

func (s *Simulator) SubmitDeliveryInfo(ctx context.Context, info domain.DeliveryInfo) (domain.DeliveryInfo, error) {
	if err := wait(ctx, s.latency.Delivery); err != nil {
		return domain.DeliveryInfo{}, err
	}
	info.DeliveryID = fmt.Sprintf("DEL-%d", s.now().UnixMilli())
	return info, nil
}

func (s *Simulator) InitializePayment(_ context.Context, orderID string) (domain.TransactionInfo, error) {
	if orderID == "" {
		return domain.TransactionInfo{}, errors.New("order id is required")
	}
	txID := "TXN-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:9])
	tx := domain.TransactionInfo{
		TransactionID: txID,
		OrderID:       orderID,
		Content:       "Payment for Order " + orderID,
		DateTime:      s.now(),
		PaymentStatus: domain.PaymentStatusCreated,
		QRCodeString:  fmt.Sprintf("QR-%s-%s", txID, orderID),
	}

	s.mu.Lock()
	s.txs[txID] = &tx
	s.mu.Unlock()

	log.WithFields(log.Fields{"order_id": orderID, "transaction_id": txID}).Info("simulated payment created")
	return tx, nil
}

func (s *Simulator) VerifyPayment(ctx context.Context, transactionID string) (domain.PaymentStatus, error) {
	s.mu.Lock()
	tx, ok := s.txs[transactionID]
	s.mu.Unlock()
	if !ok {
		return "", ErrUnknownTransaction
	}
	if err := wait(ctx, s.latency.Verify); err != nil {
		return "", err
	}

	status := s.outcome.VerifyOutcome()
	s.mu.Lock()
	tx.PaymentStatus = status
	s.mu.Unlock()
	return status, nil
}

func (s *Simulator) ProcessCardPayment(ctx context.Context, orderID string, card domain.CardData) (bool, error) {
	if err := wait(ctx, s.latency.Card); err != nil {
		return false, err
	}
	approved := s.outcome.CardOutcome()
	log.WithFields(log.Fields{"order_id": orderID, "approved": approved}).Infof("simulated %s", card)
	return approved, nil
}

// Transaction returns the last status the simulator handed out for transactionID.
func (s *Simulator) Transaction(transactionID string) (domain.TransactionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[transactionID]
	if !ok {
		return domain.TransactionInfo{}, ErrUnknownTransaction
	}
	return *tx, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
