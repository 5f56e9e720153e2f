package domain

import "time"

type PaymentMethod string

const (
	PaymentMethodVietQR PaymentMethod = "VietQR"
	PaymentMethodCard   PaymentMethod = "CreditCard"
)

func ParsePaymentMethod(v string) (PaymentMethod, bool) {
	switch PaymentMethod(v) {
	case PaymentMethodVietQR, PaymentMethodCard:
		return PaymentMethod(v), true
	}
	return "", false
}

// FailureReason tells apart the ways a payment attempt can end without success.
type FailureReason string

const (
	FailureNone              FailureReason = ""
	FailureDeclined          FailureReason = "declined"
	FailureAttemptsExhausted FailureReason = "attempts_exhausted"
	FailureQRExpired         FailureReason = "qr_expired"
	FailureGatewayError      FailureReason = "gateway_error"
)

// TransactionInfo is the payment-side record of one order.
// Its TransactionID never changes across retries.
type TransactionInfo struct {
	TransactionID string        `json:"transaction_id"`
	OrderID       string        `json:"order_id"`
	Content       string        `json:"content"`
	DateTime      time.Time     `json:"date_time"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	FailureReason FailureReason `json:"failure_reason,omitempty"`
	InvoiceStatus bool          `json:"invoice_status"`
	QRCodeString  string        `json:"qr_code_string"`
}
