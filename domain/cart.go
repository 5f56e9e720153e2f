package domain

import "github.com/shopspring/decimal"

// CartLineItem is one product entry in the cart.
// Subtotal always equals Product.Price * Quantity.
type CartLineItem struct {
	ID       string          `json:"id"`
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// NewCartLineItem builds a line with its subtotal computed.
func NewCartLineItem(id string, product Product, quantity int) CartLineItem {
	return CartLineItem{
		ID:       id,
		Product:  product,
		Quantity: quantity,
		Subtotal: LineSubtotal(product.Price, quantity),
	}
}

// LineSubtotal is price * quantity.
func LineSubtotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Weight returns the line weight in kilograms.
func (l CartLineItem) Weight() float64 {
	return l.Product.Weight * float64(l.Quantity)
}

// ExceedsStock reports whether the requested quantity is above the product's stock.
func (l CartLineItem) ExceedsStock() bool {
	return l.Quantity > l.Product.Stock
}

// Totals aggregates the selected lines of a cart.
type Totals struct {
	ProductCost decimal.Decimal `json:"product_cost"`
	TotalWeight float64         `json:"total_weight"`
}

// SumLines computes Totals over the given lines.
func SumLines(lines []CartLineItem) Totals {
	t := Totals{ProductCost: decimal.Zero}
	for _, l := range lines {
		t.ProductCost = t.ProductCost.Add(l.Subtotal)
		t.TotalWeight += l.Weight()
	}
	return t
}
