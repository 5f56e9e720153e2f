package order

import "errors"

var (
	ErrEmptySelection       = errors.New("no items selected for checkout")
	ErrSubmitInProgress     = errors.New("delivery submission already in progress")
	ErrDeliveryNotConfirmed = errors.New("delivery submission returned no delivery id")
	ErrOrderConfirmed       = errors.New("order already confirmed")
)
