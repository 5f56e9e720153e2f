package backend

import (
	"github.com/aims/storefront/domain"
	"github.com/shopspring/decimal"
)

// Request and response bodies of the /api/backend routes.

type AvailabilityRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type AvailabilityResponse struct {
	Available bool `json:"available"`
}

type FeeRequest struct {
	Weight     float64         `json:"weight"`
	Province   string          `json:"province"`
	OrderValue decimal.Decimal `json:"order_value"`
}

type FeeResponse struct {
	Fee decimal.Decimal `json:"fee"`
}

type PaymentRequest struct {
	OrderID string `json:"order_id"`
}

type StatusResponse struct {
	TransactionID string               `json:"transaction_id"`
	Status        domain.PaymentStatus `json:"status"`
}

type CardPaymentRequest struct {
	OrderID string           `json:"order_id"`
	Card    domain.CardInput `json:"card"`
}

type CardPaymentResponse struct {
	Approved bool `json:"approved"`
}
