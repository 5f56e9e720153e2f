package domain

type PaymentStatus string

const (
	PaymentStatusCreated   PaymentStatus = "CREATED"
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSuccess   PaymentStatus = "SUCCESS"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusError     PaymentStatus = "ERROR"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// transitions lists every allowed move of the payment state machine.
// PENDING -> CREATED is the reset applied when the customer switches payment method mid-attempt.
var transitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusCreated: {PaymentStatusPending, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusPending: {PaymentStatusSuccess, PaymentStatusFailed, PaymentStatusError, PaymentStatusCancelled, PaymentStatusCreated},
	PaymentStatusFailed:  {PaymentStatusCreated, PaymentStatusCancelled},
	PaymentStatusError:   {PaymentStatusCreated, PaymentStatusCancelled},
	PaymentStatusSuccess: {PaymentStatusRefunded},
}

// CanTransitionTo reports whether the state machine allows moving from s to next.
func CanTransitionTo(s, next PaymentStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal is true for statuses no automatic transition leaves.
// FAILED and ERROR count as terminal even though an explicit retry may reopen them.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusSuccess, PaymentStatusCancelled, PaymentStatusRefunded,
		PaymentStatusFailed, PaymentStatusError:
		return true
	}
	return false
}

// IsRetryable is true for the terminal statuses an explicit retry may reset to CREATED.
func (s PaymentStatus) IsRetryable() bool {
	return s == PaymentStatusFailed || s == PaymentStatusError
}

// String representation (for logging)
func (s PaymentStatus) String() string {
	return string(s)
}

// ParsePaymentStatus maps a wire value to a known status.
func ParsePaymentStatus(v string) (PaymentStatus, bool) {
	s := PaymentStatus(v)
	switch s {
	case PaymentStatusCreated, PaymentStatusPending, PaymentStatusSuccess, PaymentStatusFailed,
		PaymentStatusError, PaymentStatusCancelled, PaymentStatusRefunded:
		return s, true
	}
	return "", false
}
