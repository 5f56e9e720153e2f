package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// VATRate is applied to the product cost of every order.
var VATRate = decimal.NewFromFloat(0.1)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusFailed    OrderStatus = "Failed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// Order is the pending order built from the selected cart lines.
// OrderID is empty until the delivery info has been confirmed.
type Order struct {
	OrderID         string           `json:"order_id,omitempty"`
	LineItems       []CartLineItem   `json:"line_items"`
	ProductCost     decimal.Decimal  `json:"product_cost"`
	TotalWeight     float64          `json:"total_weight"`
	VAT             decimal.Decimal  `json:"vat"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	DeliveryInfo    *DeliveryInfo    `json:"delivery_info,omitempty"`
	TransactionInfo *TransactionInfo `json:"transaction_info,omitempty"`
	Status          OrderStatus      `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
}

// HasConfirmedTotals is true once the order totals came back with a confirmed delivery.
// Confirmed totals are never recomputed locally.
func (o Order) HasConfirmedTotals() bool {
	return o.DeliveryInfo != nil && o.DeliveryInfo.Confirmed() && !o.TotalAmount.IsZero()
}

// VATFor returns the VAT owed on productCost.
func VATFor(productCost decimal.Decimal) decimal.Decimal {
	return productCost.Mul(VATRate)
}

// TotalFor is productCost + VAT + delivery fee.
func TotalFor(productCost, fee decimal.Decimal) decimal.Decimal {
	return productCost.Add(VATFor(productCost)).Add(fee)
}

// OrderSummary is the price breakdown shown next to every checkout step.
type OrderSummary struct {
	ProductCost decimal.Decimal `json:"product_cost"`
	VAT         decimal.Decimal `json:"vat"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalWeight float64         `json:"total_weight"`
	Confirmed   bool            `json:"confirmed"`
}
