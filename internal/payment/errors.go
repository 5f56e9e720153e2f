package payment

import "errors"

var (
	ErrNoTransaction     = errors.New("payment has not been initialized")
	ErrConfirmDisabled   = errors.New("payment confirmation is disabled in the current state")
	ErrPaymentInProgress = errors.New("a payment call is already in flight")
	ErrWrongMethod       = errors.New("action not available for the selected payment method")
	ErrUnknownMethod     = errors.New("unknown payment method")
	ErrIllegalTransition = errors.New("illegal transition of payment status")
	ErrSuperseded        = errors.New("payment attempt was superseded")
	ErrUnexpectedStatus  = errors.New("payment initialized with unexpected status")
	ErrClosed            = errors.New("payment orchestrator is closed")
)
