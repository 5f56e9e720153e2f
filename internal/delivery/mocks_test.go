package delivery

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aims/storefront/internal/cache"
	"github.com/shopspring/decimal"
)

// MockQuoter returns a fixed fee and counts calls
type MockQuoter struct {
	Fee   decimal.Decimal
	Err   error
	Delay time.Duration
	calls atomic.Int32
}

func (m *MockQuoter) CalculateDeliveryFee(ctx context.Context, _ float64, _ string, _ decimal.Decimal) (decimal.Decimal, error) {
	m.calls.Add(1)
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return decimal.Zero, ctx.Err()
		}
	}
	if m.Err != nil {
		return decimal.Zero, m.Err
	}
	return m.Fee, nil
}

func (m *MockQuoter) Calls() int {
	return int(m.calls.Load())
}

// MockFeeCache is an in-memory cache.FeeCache
type MockFeeCache struct {
	m      sync.Mutex
	values map[string]decimal.Decimal
	GetErr error
	sets   int
}

func newMockFeeCache() *MockFeeCache {
	return &MockFeeCache{values: map[string]decimal.Decimal{}}
}

func (c *MockFeeCache) Get(_ context.Context, q cache.FeeQuote) (decimal.Decimal, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.GetErr != nil {
		return decimal.Zero, c.GetErr
	}
	v, ok := c.values[q.Key()]
	if !ok {
		return decimal.Zero, cache.ErrCacheMiss
	}
	return v, nil
}

func (c *MockFeeCache) Set(_ context.Context, q cache.FeeQuote, fee decimal.Decimal) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.values[q.Key()] = fee
	c.sets++
	return nil
}

func (c *MockFeeCache) Delete(_ context.Context, q cache.FeeQuote) error {
	c.m.Lock()
	defer c.m.Unlock()
	delete(c.values, q.Key())
	return nil
}

func (c *MockFeeCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.values)
}
