package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/aims/storefront/domain"
	"github.com/aims/storefront/internal/checkout"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

type CheckoutHandler struct {
	session *checkout.Session
	timeout time.Duration
}

func NewCheckoutHandler(session *checkout.Session, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{session: session, timeout: timeout}
}

type PaymentMethodRequestDTO struct {
	Method string `json:"method"`
}

func (h *CheckoutHandler) GetView(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.session.View())
}

func (h *CheckoutHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.session.Summary())
}

func (h *CheckoutHandler) Proceed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.session.ProceedToCheckout(ctx); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.session.View())
}

func (h *CheckoutHandler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var info domain.DeliveryInfo
	if !decodeJSON(w, r, &info) {
		return
	}
	if _, err := h.session.SubmitShipping(ctx, info); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.session.View())
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Back(); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.session.View())
}

func (h *CheckoutHandler) SelectPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req PaymentMethodRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	method, ok := domain.ParsePaymentMethod(req.Method)
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown_method", "method must be VietQR or CreditCard")
		return
	}
	if err := h.session.SelectPaymentMethod(method); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.session.View())
}

// ConfirmPayment answers 202 once polling has started; the outcome shows up in the view.
func (h *CheckoutHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if _, err := h.session.ConfirmPayment(ctx); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusAccepted, h.session.View())
}

func (h *CheckoutHandler) PayByCard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var input domain.CardInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if _, err := h.session.PayByCard(ctx, input); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.session.View())
}

func (h *CheckoutHandler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	if err := h.session.CancelPayment(); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.session.View())
}

func (h *CheckoutHandler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	if _, err := h.session.RetryPayment(); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.session.View())
}

func (h *CheckoutHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	size := defaultQRSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 64 || n > maxQRSize {
			respondError(w, http.StatusBadRequest, "invalid_size", "size must be between 64 and 1024")
			return
		}
		size = n
	}

	png, err := h.session.QRCode(size)
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
