package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aims/storefront/domain"
	"github.com/aims/storefront/internal/backend"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// StatusError is a non-2xx answer of the backend.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

type Options struct {
	Timeout time.Duration
	// FailureThreshold consecutive failures open the breaker for OpenTimeout.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

func DefaultOptions() Options {
	return Options{
		Timeout:          15 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// Backend talks to the storefront backend over HTTP. It implements the availability,
// fee, delivery and payment collaborators of the checkout.
type Backend struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
}

func NewBackend(baseURL string, opts Options) *Backend {
	d := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = d.Timeout
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = d.FailureThreshold
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = d.OpenTimeout
	}

	threshold := opts.FailureThreshold
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "storefront-backend",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.StatusCode < http.StatusInternalServerError
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(log.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state changed")
		},
	})

	return &Backend{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cb: cb,
	}
}

func (b *Backend) CheckAvailability(ctx context.Context, productID string, quantity int) (bool, error) {
	var resp backend.AvailabilityResponse
	err := b.do(ctx, http.MethodPost, "/availability", backend.AvailabilityRequest{
		ProductID: productID,
		Quantity:  quantity,
	}, &resp)
	return resp.Available, err
}

func (b *Backend) CalculateDeliveryFee(ctx context.Context, weight float64, province string, orderValue decimal.Decimal) (decimal.Decimal, error) {
	var resp backend.FeeResponse
	err := b.do(ctx, http.MethodPost, "/delivery/fee", backend.FeeRequest{
		Weight:     weight,
		Province:   province,
		OrderValue: orderValue,
	}, &resp)
	if err != nil {
		return decimal.Zero, err
	}
	return resp.Fee, nil
}

func (b *Backend) SubmitDeliveryInfo(ctx context.Context, info domain.DeliveryInfo) (domain.DeliveryInfo, error) {
	var resp domain.DeliveryInfo
	if err := b.do(ctx, http.MethodPost, "/delivery", info, &resp); err != nil {
		return domain.DeliveryInfo{}, err
	}
	return resp, nil
}

func (b *Backend) InitializePayment(ctx context.Context, orderID string) (domain.TransactionInfo, error) {
	var tx domain.TransactionInfo
	if err := b.do(ctx, http.MethodPost, "/payments", backend.PaymentRequest{OrderID: orderID}, &tx); err != nil {
		return domain.TransactionInfo{}, err
	}
	return tx, nil
}

func (b *Backend) VerifyPayment(ctx context.Context, transactionID string) (domain.PaymentStatus, error) {
	var resp backend.StatusResponse
	path := "/payments/" + url.PathEscape(transactionID) + "/status"
	if err := b.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	status, ok := domain.ParsePaymentStatus(string(resp.Status))
	if !ok {
		return "", errors.Errorf("unknown payment status %q", resp.Status)
	}
	return status, nil
}

func (b *Backend) ProcessCardPayment(ctx context.Context, orderID string, card domain.CardData) (bool, error) {
	var resp backend.CardPaymentResponse
	err := b.do(ctx, http.MethodPost, "/payments/card", backend.CardPaymentRequest{
		OrderID: orderID,
		Card:    card.Input(),
	}, &resp)
	return resp.Approved, err
}

func (b *Backend) do(ctx context.Context, method, path string, in, out interface{}) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return errors.Wrap(err, "encode request")
		}
	}

	body, err := b.cb.Execute(func() ([]byte, error) {
		return b.roundTrip(ctx, method, path, payload)
	})
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "decode %s %s", method, path)
	}
	return nil
}

func (b *Backend) roundTrip(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		se := &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var e struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			se.Message, se.Code = e.Error, e.Code
		}
		return nil, se
	}
	return body, nil
}
