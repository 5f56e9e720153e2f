package domain

type CheckoutStep string

const (
	CheckoutStepCart          CheckoutStep = "CART"
	CheckoutStepShipping      CheckoutStep = "SHIPPING"
	CheckoutStepPayment       CheckoutStep = "PAYMENT"
	CheckoutStepCompleted     CheckoutStep = "COMPLETED"
	CheckoutStepPaymentFailed CheckoutStep = "PAYMENT_FAILED"
)

// String representation (for logging)
func (s CheckoutStep) String() string {
	return string(s)
}

// OrderCompleted is published once an order has been paid.
type OrderCompleted struct {
	OrderID       string         `json:"order_id"`
	TransactionID string         `json:"transaction_id"`
	PaymentMethod PaymentMethod  `json:"payment_method"`
	Order         Order          `json:"order"`
	Items         []CartLineItem `json:"items"`
}
