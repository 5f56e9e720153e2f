package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/aims/storefront/internal/cache"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const defaultQuoteTimeout = 10 * time.Second

// Resolver asks the quoter for a fee and passes it through untouched.
type Resolver struct {
	quoter  Quoter
	cache   cache.FeeCache
	timeout time.Duration
	sfg     singleflight.Group // collapses identical concurrent quotes
}

// NewResolver wires a quoter with an optional fee cache (nil disables caching).
func NewResolver(quoter Quoter, feeCache cache.FeeCache, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = defaultQuoteTimeout
	}
	return &Resolver{
		quoter:  quoter,
		cache:   feeCache,
		timeout: timeout,
	}
}

// CalculateFee returns the quoted fee. Callers asking for the same quote concurrently share one
// quoter call; that call runs detached from any single caller, so a caller that gives up only
// fails itself.
func (r *Resolver) CalculateFee(ctx context.Context, weight float64, province string, orderValue decimal.Decimal) (decimal.Decimal, error) {
	q := cache.FeeQuote{Weight: weight, Province: province, OrderValue: orderValue}
	flightCtx := context.WithoutCancel(ctx)

	ch := r.sfg.DoChan(q.Key(), func() (interface{}, error) {
		quoteCtx, cancel := context.WithTimeout(flightCtx, r.timeout)
		defer cancel()

		if r.cache != nil {
			fee, err := r.cache.Get(quoteCtx, q)
			if err == nil {
				return fee, nil
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				log.Printf("fee cache get error: %v", err)
			}
		}

		fee, err := r.quoter.CalculateDeliveryFee(quoteCtx, weight, province, orderValue)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "delivery fee quote failed")
		}

		if r.cache != nil {
			go func() {
				setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if errSet := r.cache.Set(setCtx, q, fee); errSet != nil {
					log.Printf("fee cache set error: %v", errSet)
				}
			}()
		}
		return fee, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return decimal.Zero, res.Err
		}
		return res.Val.(decimal.Decimal), nil
	case <-ctx.Done():
		return decimal.Zero, ctx.Err()
	}
}

// Invalidate drops a cached quote so the next call asks the quoter again.
func (r *Resolver) Invalidate(ctx context.Context, weight float64, province string, orderValue decimal.Decimal) {
	if r.cache == nil {
		return
	}
	q := cache.FeeQuote{Weight: weight, Province: province, OrderValue: orderValue}
	if err := r.cache.Delete(ctx, q); err != nil {
		log.Printf("fee cache invalidate error: %v", err)
	}
}
