package cart

import "errors"

var (
	ErrExceedsStock     = errors.New("requested quantity exceeds stock")
	ErrQuantityBelowOne = errors.New("quantity cannot be less than 1")
	ErrItemNotFound     = errors.New("item not found in cart")
	ErrProductInactive  = errors.New("product is no longer sold")
)
