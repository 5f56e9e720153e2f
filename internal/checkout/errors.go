package checkout

import "errors"

var (
	ErrWrongStep       = errors.New("action not available at the current checkout step")
	ErrEmptySelection  = errors.New("select at least one item to checkout")
	ErrStockIssue      = errors.New("selected items exceed available stock")
	ErrUnavailable     = errors.New("some items are no longer available")
	ErrBackDisabled    = errors.New("cannot go back while a payment is pending or already paid")
	ErrNoOrder         = errors.New("no confirmed order")
	ErrSessionShutdown = errors.New("checkout session is closed")
)
