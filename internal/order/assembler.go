package order

import (
	"context"
	"sync"
	"time"

	"github.com/aims/storefront/domain"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type CartView interface {
	SelectedItems() []domain.CartLineItem
}

type FeeCalculator interface {
	CalculateFee(ctx context.Context, weight float64, province string, orderValue decimal.Decimal) (decimal.Decimal, error)
}

type DeliverySubmitter interface {
	SubmitDeliveryInfo(ctx context.Context, info domain.DeliveryInfo) (domain.DeliveryInfo, error)
}

type Notifier interface {
	Notify(severity domain.Severity, message string) string
}

// Assembler turns the selected cart lines and confirmed shipping data into a pending order.
// Once the backend confirmed an order its totals are never recomputed.
type Assembler struct {
	cart      CartView
	fees      FeeCalculator
	submitter DeliverySubmitter
	notifier  Notifier

	newOrderID func() string
	now        func() time.Time

	mu      sync.RWMutex
	order   domain.Order
	loading bool
}

func NewAssembler(cart CartView, fees FeeCalculator, submitter DeliverySubmitter, notifier Notifier) *Assembler {
	return &Assembler{
		cart:       cart,
		fees:       fees,
		submitter:  submitter,
		notifier:   notifier,
		newOrderID: func() string { return "AIMS-" + ulid.Make().String() },
		now:        time.Now,
	}
}

// SubmitDelivery quotes the fee, submits the shipping data and, on success only,
// stores the confirmed order with a fresh order id.
func (a *Assembler) SubmitDelivery(ctx context.Context, info domain.DeliveryInfo) (domain.Order, error) {
	a.mu.Lock()
	if a.loading {
		a.mu.Unlock()
		return domain.Order{}, ErrSubmitInProgress
	}
	if a.order.OrderID != "" {
		a.mu.Unlock()
		return domain.Order{}, ErrOrderConfirmed
	}
	a.loading = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.loading = false
		a.mu.Unlock()
	}()

	lines := a.cart.SelectedItems()
	if len(lines) == 0 {
		return domain.Order{}, ErrEmptySelection
	}
	totals := domain.SumLines(lines)

	fee, err := a.fees.CalculateFee(ctx, totals.TotalWeight, info.Province, totals.ProductCost)
	if err != nil {
		a.notifier.Notify(domain.SeverityError, "Failed to calculate delivery fee. Please try again.")
		return domain.Order{}, errors.Wrap(err, "calculate delivery fee")
	}
	info.DeliveryFee = fee

	confirmed, err := a.submitter.SubmitDeliveryInfo(ctx, info)
	if err != nil {
		a.notifier.Notify(domain.SeverityError, "Failed to submit delivery information. Please try again.")
		return domain.Order{}, errors.Wrap(err, "submit delivery info")
	}
	if !confirmed.Confirmed() {
		a.notifier.Notify(domain.SeverityError, "Failed to submit delivery information. Please try again.")
		return domain.Order{}, ErrDeliveryNotConfirmed
	}

	order := domain.Order{
		OrderID:      a.newOrderID(),
		LineItems:    lines,
		ProductCost:  totals.ProductCost,
		TotalWeight:  totals.TotalWeight,
		VAT:          domain.VATFor(totals.ProductCost),
		TotalAmount:  domain.TotalFor(totals.ProductCost, confirmed.DeliveryFee),
		DeliveryInfo: &confirmed,
		Status:       domain.OrderStatusPending,
		CreatedAt:    a.now(),
	}

	a.mu.Lock()
	a.order = order
	a.mu.Unlock()

	log.WithFields(log.Fields{
		"order_id":    order.OrderID,
		"delivery_id": confirmed.DeliveryID,
		"total":       order.TotalAmount.String(),
	}).Info("order confirmed")
	a.notifier.Notify(domain.SeveritySuccess, "Delivery information saved.")

	return copyOrder(order), nil
}

// Order returns the confirmed order, or an order recomputed from the current selection
// when nothing has been confirmed yet.
func (a *Assembler) Order() domain.Order {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.order.OrderID != "" {
		return copyOrder(a.order)
	}
	lines := a.cart.SelectedItems()
	totals := domain.SumLines(lines)
	return domain.Order{
		LineItems:   lines,
		ProductCost: totals.ProductCost,
		TotalWeight: totals.TotalWeight,
		VAT:         domain.VATFor(totals.ProductCost),
		TotalAmount: domain.TotalFor(totals.ProductCost, decimal.Zero),
		Status:      domain.OrderStatusPending,
	}
}

// Summary is the price breakdown for the current order.
func (a *Assembler) Summary() domain.OrderSummary {
	o := a.Order()
	fee := decimal.Zero
	if o.DeliveryInfo != nil {
		fee = o.DeliveryInfo.DeliveryFee
	}
	return domain.OrderSummary{
		ProductCost: o.ProductCost,
		VAT:         o.VAT,
		DeliveryFee: fee,
		TotalAmount: o.TotalAmount,
		TotalWeight: o.TotalWeight,
		Confirmed:   o.OrderID != "",
	}
}

func (a *Assembler) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

// AttachTransaction records the latest payment state on the confirmed order.
func (a *Assembler) AttachTransaction(tx domain.TransactionInfo) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.order.OrderID == "" || a.order.OrderID != tx.OrderID {
		return
	}
	a.order.TransactionInfo = &tx
}

func (a *Assembler) SetStatus(status domain.OrderStatus) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.order.OrderID == "" {
		return
	}
	a.order.Status = status
}

// Reset discards the order so the next submission starts from the cart again.
func (a *Assembler) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.order = domain.Order{}
}

func copyOrder(o domain.Order) domain.Order {
	o.LineItems = append([]domain.CartLineItem(nil), o.LineItems...)
	if o.DeliveryInfo != nil {
		d := *o.DeliveryInfo
		o.DeliveryInfo = &d
	}
	if o.TransactionInfo != nil {
		tx := *o.TransactionInfo
		o.TransactionInfo = &tx
	}
	return o
}
