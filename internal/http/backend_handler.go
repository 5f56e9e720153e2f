package http

import (
	"net/http"

	"github.com/aims/storefront/domain"
	"github.com/aims/storefront/internal/backend"
	"github.com/go-chi/chi/v5"
)

// BackendHandler serves the simulated backend so client.Backend can target this process.
type BackendHandler struct {
	sim *backend.Simulator
}

func NewBackendHandler(sim *backend.Simulator) *BackendHandler {
	return &BackendHandler{sim: sim}
}

func (h *BackendHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req backend.AvailabilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ok, err := h.sim.CheckAvailability(r.Context(), req.ProductID, req.Quantity)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, backend.AvailabilityResponse{Available: ok})
}

func (h *BackendHandler) CalculateDeliveryFee(w http.ResponseWriter, r *http.Request) {
	var req backend.FeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fee, err := h.sim.CalculateDeliveryFee(r.Context(), req.Weight, req.Province, req.OrderValue)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, backend.FeeResponse{Fee: fee})
}

func (h *BackendHandler) SubmitDeliveryInfo(w http.ResponseWriter, r *http.Request) {
	var info domain.DeliveryInfo
	if !decodeJSON(w, r, &info) {
		return
	}
	out, err := h.sim.SubmitDeliveryInfo(r.Context(), info)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *BackendHandler) InitializePayment(w http.ResponseWriter, r *http.Request) {
	var req backend.PaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.OrderID == "" {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id is required")
		return
	}
	tx, err := h.sim.InitializePayment(r.Context(), req.OrderID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, tx)
}

func (h *BackendHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "transaction_id")
	status, err := h.sim.VerifyPayment(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, backend.StatusResponse{TransactionID: id, Status: status})
}

// GetTransaction returns the transaction with the last status handed out for it.
func (h *BackendHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.sim.Transaction(chi.URLParam(r, "transaction_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

func (h *BackendHandler) ProcessCardPayment(w http.ResponseWriter, r *http.Request) {
	var req backend.CardPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	card, err := domain.ParseCard(req.Card)
	if err != nil {
		handleError(w, r, err)
		return
	}
	ok, err := h.sim.ProcessCardPayment(r.Context(), req.OrderID, card)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, backend.CardPaymentResponse{Approved: ok})
}
