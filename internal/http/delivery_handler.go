package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aims/storefront/domain"
	"github.com/shopspring/decimal"
)

// FeeQuoter is the cached delivery fee lookup.
type FeeQuoter interface {
	CalculateFee(ctx context.Context, weight float64, province string, orderValue decimal.Decimal) (decimal.Decimal, error)
	Invalidate(ctx context.Context, weight float64, province string, orderValue decimal.Decimal)
}

type DeliveryHandler struct {
	fees    FeeQuoter
	timeout time.Duration
}

func NewDeliveryHandler(fees FeeQuoter, timeout time.Duration) *DeliveryHandler {
	return &DeliveryHandler{fees: fees, timeout: timeout}
}

type DeliveryOptionsResponse struct {
	Provinces []string `json:"provinces"`
	Methods   []string `json:"methods"`
}

type QuoteRequestDTO struct {
	Weight     float64         `json:"weight"`
	Province   string          `json:"province"`
	OrderValue decimal.Decimal `json:"order_value"`
	// Refresh drops the cached quote first.
	Refresh bool `json:"refresh,omitempty"`
}

type QuoteResponse struct {
	Fee decimal.Decimal `json:"fee"`
}

func (h *DeliveryHandler) Options(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, DeliveryOptionsResponse{
		Provinces: domain.Provinces,
		Methods:   domain.DeliveryMethods,
	})
}

func (h *DeliveryHandler) Quote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req QuoteRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Province == "" {
		respondError(w, http.StatusBadRequest, "invalid_province", "province is required")
		return
	}
	if req.Weight < 0 || req.OrderValue.IsNegative() {
		respondError(w, http.StatusBadRequest, "invalid_quote", "weight and order_value must not be negative")
		return
	}

	if req.Refresh {
		h.fees.Invalidate(ctx, req.Weight, req.Province, req.OrderValue)
	}
	fee, err := h.fees.CalculateFee(ctx, req.Weight, req.Province, req.OrderValue)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, QuoteResponse{Fee: fee})
}
