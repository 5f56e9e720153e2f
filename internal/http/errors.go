package http

import (
	"context"
	"net/http"

	"github.com/aims/storefront/domain"
	"github.com/aims/storefront/internal/backend"
	"github.com/aims/storefront/internal/cart"
	"github.com/aims/storefront/internal/catalog"
	"github.com/aims/storefront/internal/checkout"
	"github.com/aims/storefront/internal/client"
	"github.com/aims/storefront/internal/order"
	"github.com/aims/storefront/internal/payment"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{catalog.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{cart.ErrItemNotFound, http.StatusNotFound, "item_not_found"},
	{cart.ErrExceedsStock, http.StatusConflict, "exceeds_stock"},
	{cart.ErrQuantityBelowOne, http.StatusBadRequest, "invalid_quantity"},
	{cart.ErrProductInactive, http.StatusConflict, "product_inactive"},

	{checkout.ErrWrongStep, http.StatusConflict, "wrong_step"},
	{checkout.ErrEmptySelection, http.StatusBadRequest, "empty_selection"},
	{checkout.ErrStockIssue, http.StatusConflict, "stock_issue"},
	{checkout.ErrUnavailable, http.StatusConflict, "unavailable"},
	{checkout.ErrBackDisabled, http.StatusConflict, "back_disabled"},
	{checkout.ErrNoOrder, http.StatusConflict, "no_order"},
	{checkout.ErrSessionShutdown, http.StatusServiceUnavailable, "shutting_down"},

	{order.ErrEmptySelection, http.StatusBadRequest, "empty_selection"},
	{order.ErrSubmitInProgress, http.StatusConflict, "submit_in_progress"},
	{order.ErrOrderConfirmed, http.StatusConflict, "order_confirmed"},
	{order.ErrDeliveryNotConfirmed, http.StatusBadGateway, "delivery_not_confirmed"},

	{payment.ErrNoTransaction, http.StatusConflict, "no_transaction"},
	{payment.ErrConfirmDisabled, http.StatusConflict, "confirm_disabled"},
	{payment.ErrPaymentInProgress, http.StatusConflict, "payment_in_progress"},
	{payment.ErrWrongMethod, http.StatusConflict, "wrong_method"},
	{payment.ErrUnknownMethod, http.StatusBadRequest, "unknown_method"},
	{payment.ErrIllegalTransition, http.StatusConflict, "illegal_transition"},
	{payment.ErrSuperseded, http.StatusConflict, "superseded"},
	{payment.ErrUnexpectedStatus, http.StatusBadGateway, "unexpected_status"},
	{payment.ErrClosed, http.StatusServiceUnavailable, "shutting_down"},

	{backend.ErrUnknownTransaction, http.StatusNotFound, "not_found"},
	{gobreaker.ErrOpenState, http.StatusServiceUnavailable, "service_unavailable"},
	{gobreaker.ErrTooManyRequests, http.StatusServiceUnavailable, "service_unavailable"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
	{context.Canceled, http.StatusGatewayTimeout, "timeout"},
}

// handleError writes the status and code that belong to err.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var fields domain.FieldErrors
	if errors.As(err, &fields) {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "invalid input",
			Code:   "invalid_input",
			Fields: fields,
		})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			respondError(w, m.status, m.code, err.Error())
			return
		}
	}

	var se *client.StatusError
	if errors.As(err, &se) {
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   "backend request failed",
			Code:    "backend_error",
			Details: se.Error(),
		})
		return
	}

	log.WithFields(log.Fields{
		"request_id": getRequestID(r.Context()),
		"path":       r.URL.Path,
	}).Errorf("unhandled error: %v", err)
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
