package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// FeeQuote identifies one delivery fee question.
type FeeQuote struct {
	Weight     float64
	Province   string
	OrderValue decimal.Decimal
}

type FeeCache interface {
	Get(ctx context.Context, q FeeQuote) (decimal.Decimal, error)
	Set(ctx context.Context, q FeeQuote, fee decimal.Decimal) error
	Delete(ctx context.Context, q FeeQuote) error
}

var ErrCacheMiss = errors.New("cache miss")

// Key is the cache key of a quote, also used to collapse identical in-flight quotes.
func (q FeeQuote) Key() string {
	return fmt.Sprintf("fee:%s:%s:%s",
		q.Province,
		strconv.FormatFloat(q.Weight, 'f', -1, 64),
		q.OrderValue.String())
}
