package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aims/storefront/domain"
	"github.com/aims/storefront/internal/backend"
	"github.com/aims/storefront/internal/cart"
	"github.com/aims/storefront/internal/catalog"
	"github.com/aims/storefront/internal/checkout"
	"github.com/aims/storefront/internal/delivery"
	"github.com/aims/storefront/internal/notify"
	"github.com/aims/storefront/internal/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	session *checkout.Session
	sink    *notify.Sink
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	c := catalog.New(
		domain.Product{ID: "P1", Name: "Go Book", Price: decimal.NewFromInt(50000), Stock: 5, Weight: 0.5, Active: true,
			Details: domain.BookDetails{Authors: []string{"Rob"}, Publisher: "AW"}},
		domain.Product{ID: "P2", Name: "Jazz CD", Price: decimal.NewFromInt(120000), Stock: 1, Weight: 0.2, Active: true,
			Details: domain.CDDetails{Artist: "Miles", RecordLabel: "Columbia", Genre: "Jazz"}},
		domain.Product{ID: "P3", Name: "Retired", Price: decimal.NewFromInt(1000), Stock: 1, Active: false},
	)
	sim := backend.NewSimulator(c, backend.FixedOutcome{Verify: domain.PaymentStatusSuccess, Card: true}, backend.Latency{})
	sink := notify.NewSink(time.Minute, 0)
	fees := delivery.NewResolver(sim, nil, time.Second)

	session := checkout.NewSession(checkout.Deps{
		Cart:         cart.NewStore(sink),
		Fees:         fees,
		Delivery:     sim,
		Gateway:      sim,
		Availability: sim,
		Products:     c,
		Notifier:     sink,
	}, checkout.Config{
		Payment: payment.Config{
			PollInterval: 10 * time.Millisecond,
			MaxAttempts:  50,
			QRLifetime:   2 * time.Second,
			SuccessDelay: 0,
		},
		AvailabilityTimeout: time.Second,
	})
	t.Cleanup(func() {
		session.Close()
		sink.Close()
	})

	return &testServer{
		handler: NewRouter(Deps{
			Catalog:        c,
			Session:        session,
			Fees:           fees,
			Notifications:  sink,
			Simulator:      sim,
			RequestTimeout: 5 * time.Second,
		}),
		session: session,
		sink:    sink,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// cartDTO skips the product snapshot, whose details only marshal one way.
type cartDTO struct {
	Items []struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
		Selected bool   `json:"selected"`
	} `json:"items"`
	Totals domain.Totals `json:"totals"`
}

type viewDTO struct {
	Step    string `json:"step"`
	Loading bool   `json:"loading"`
	Payment struct {
		Transaction *struct {
			TransactionID string `json:"transaction_id"`
			PaymentStatus string `json:"payment_status"`
		} `json:"transaction"`
	} `json:"payment"`
}

func shipping() domain.DeliveryInfo {
	return domain.DeliveryInfo{
		FullName:       "Nguyen Van A",
		Email:          "a@example.com",
		PhoneNumber:    "0912345678",
		Address:        "1 Trang Tien, Hoan Kiem",
		Province:       "Hanoi",
		DeliveryMethod: domain.DeliveryMethodStandard,
	}
}

func TestHealth_SetsRequestID(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

func TestProducts_ListAndGet(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/products?type=CD", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Products []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"products"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list.Products, 1)
	assert.Equal(t, "P2", list.Products[0].ID)

	rec = s.do(t, http.MethodGet, "/api/v1/products?min_price=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/products/P1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/products/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product_not_found", decodeError(t, rec).Code)
}

func TestCart_AddUpdateRemove(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "P1", Quantity: 2})
	require.Equal(t, http.StatusCreated, rec.Code)
	var c cartDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
	require.Len(t, c.Items, 1)
	assert.True(t, c.Items[0].Selected)
	assert.True(t, c.Totals.ProductCost.Equal(decimal.NewFromInt(100000)))

	rec = s.do(t, http.MethodPut, "/api/v1/cart/items/P1", UpdateQuantityRequestDTO{Quantity: 6})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "exceeds_stock", decodeError(t, rec).Code)

	rec = s.do(t, http.MethodPut, "/api/v1/cart/items/P1", UpdateQuantityRequestDTO{Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/cart/lines/"+c.Items[0].ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
	assert.False(t, c.Items[0].Selected)
	assert.True(t, c.Totals.ProductCost.IsZero())

	rec = s.do(t, http.MethodDelete, "/api/v1/cart/items/P1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
	assert.Empty(t, c.Items)

	rec = s.do(t, http.MethodDelete, "/api/v1/cart/items/P1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "NOPE", Quantity: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "P3", Quantity: 1})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "product_inactive", decodeError(t, rec).Code)
}

func TestCart_InvalidBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeError(t, rec).Code)
}

func TestCheckout_EmptySelection(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/proceed", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty_selection", decodeError(t, rec).Code)
}

func TestCheckout_VietQRFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "P1", Quantity: 2})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/checkout/shipping", shipping())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "wrong_step", decodeError(t, rec).Code)

	rec = s.do(t, http.MethodPost, "/api/v1/checkout/proceed", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	bad := shipping()
	bad.Email = "nope"
	rec = s.do(t, http.MethodPost, "/api/v1/checkout/shipping", bad)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "invalid_input", e.Code)
	assert.Contains(t, e.Fields, "email")

	rec = s.do(t, http.MethodPost, "/api/v1/checkout/shipping", shipping())
	require.Equal(t, http.StatusOK, rec.Code)
	var v viewDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	assert.Equal(t, "PAYMENT", v.Step)
	require.NotNil(t, v.Payment.Transaction)
	assert.Equal(t, "CREATED", v.Payment.Transaction.PaymentStatus)
	assert.False(t, v.Loading)

	rec = s.do(t, http.MethodPut, "/api/v1/cart/items/P1", UpdateQuantityRequestDTO{Quantity: 3})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "wrong_step", decodeError(t, rec).Code)

	rec = s.do(t, http.MethodGet, "/api/v1/checkout/payment/qr.png?size=128", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte("\x89PNG"), rec.Body.Bytes()[:4])

	rec = s.do(t, http.MethodGet, "/api/v1/checkout/payment/qr.png?size=5", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/checkout/payment/confirm", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	assert.Eventually(t, func() bool {
		return s.session.Step() == domain.CheckoutStepCompleted
	}, 2*time.Second, 10*time.Millisecond)

	rec = s.do(t, http.MethodGet, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var done struct {
		Step      string `json:"step"`
		LastOrder *struct {
			OrderID string `json:"order_id"`
			Status  string `json:"status"`
		} `json:"last_order"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&done))
	assert.Equal(t, "COMPLETED", done.Step)
	require.NotNil(t, done.LastOrder)
	assert.Equal(t, "Completed", done.LastOrder.Status)

	rec = s.do(t, http.MethodGet, "/api/v1/cart", nil)
	var c cartDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
	assert.Empty(t, c.Items)
}

func TestCheckout_CardFlowAndMethodValidation(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "P2", Quantity: 1})
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/checkout/proceed", nil).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/checkout/shipping", shipping()).Code)

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/payment/method", PaymentMethodRequestDTO{Method: "Cash"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/checkout/payment/card", domain.CardInput{CardholderName: "A", CardNumber: "4111111111111111", Expiry: "12/30", CVV: "123"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "wrong_method", decodeError(t, rec).Code)

	rec = s.do(t, http.MethodPost, "/api/v1/checkout/payment/method", PaymentMethodRequestDTO{Method: "CreditCard"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/checkout/payment/card", domain.CardInput{CardholderName: "A", CardNumber: "123", Expiry: "12/30", CVV: "123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Fields, "card_number")

	rec = s.do(t, http.MethodPost, "/api/v1/checkout/payment/card", domain.CardInput{CardholderName: "A", CardNumber: "4111111111111111", Expiry: "12/30", CVV: "123"})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Eventually(t, func() bool {
		return s.session.Step() == domain.CheckoutStepCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCheckout_CancelReturnsToCart(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "P1", Quantity: 1})
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/checkout/proceed", nil).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/checkout/shipping", shipping()).Code)

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/payment/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var v viewDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	assert.Equal(t, "CART", v.Step)

	rec = s.do(t, http.MethodPost, "/api/v1/checkout/back", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDelivery_OptionsAndQuote(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/delivery/options", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var opts DeliveryOptionsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&opts))
	assert.Contains(t, opts.Provinces, "Hanoi")
	assert.Equal(t, domain.DeliveryMethods, opts.Methods)

	rec = s.do(t, http.MethodPost, "/api/v1/delivery/quote", QuoteRequestDTO{Weight: 2, Province: "Hanoi", OrderValue: decimal.NewFromInt(150000), Refresh: true})
	require.Equal(t, http.StatusOK, rec.Code)
	var q QuoteResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&q))
	assert.True(t, q.Fee.Equal(delivery.ReferenceFee(2, "Hanoi", decimal.NewFromInt(150000))))

	rec = s.do(t, http.MethodPost, "/api/v1/delivery/quote", QuoteRequestDTO{Weight: 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotifications_ListAndDismiss(t *testing.T) {
	s := newTestServer(t)

	id := s.sink.Notify(domain.SeverityInfo, "hello")

	rec := s.do(t, http.MethodGet, "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list NotificationsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, "hello", list.Notifications[0].Message)

	rec = s.do(t, http.MethodDelete, "/api/v1/notifications/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/notifications/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBackendRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/backend/availability", backend.AvailabilityRequest{ProductID: "P2", Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code)
	var avail backend.AvailabilityResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&avail))
	assert.False(t, avail.Available)

	rec = s.do(t, http.MethodPost, "/api/backend/payments", backend.PaymentRequest{OrderID: "AIMS-1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var tx domain.TransactionInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tx))
	assert.Equal(t, "AIMS-1", tx.OrderID)

	rec = s.do(t, http.MethodGet, "/api/backend/payments/"+tx.TransactionID+"/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st backend.StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	assert.Equal(t, domain.PaymentStatusSuccess, st.Status)

	rec = s.do(t, http.MethodGet, "/api/backend/payments/"+tx.TransactionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stored domain.TransactionInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stored))
	assert.Equal(t, tx.TransactionID, stored.TransactionID)
	assert.Equal(t, domain.PaymentStatusSuccess, stored.PaymentStatus)

	rec = s.do(t, http.MethodGet, "/api/backend/payments/TXN-NOPE", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/backend/payments/TXN-NOPE/status", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)

	rec = s.do(t, http.MethodPost, "/api/backend/payments/card", backend.CardPaymentRequest{OrderID: "AIMS-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", "http://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
