package cache

import (
	"context"
	"errors"
	"math/rand"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func NewRedisFeeCache(client *redis.Client, baseTTL time.Duration) *RedisFeeCache {
	if baseTTL <= 0 {
		baseTTL = 15 * time.Minute
	}
	return &RedisFeeCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

type RedisFeeCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisFeeCache) Get(ctx context.Context, q FeeQuote) (decimal.Decimal, error) {
	data, err := r.client.Get(ctx, q.Key()).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, ErrCacheMiss
	}
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(err, "redis get failed")
	}

	fee, err := decimal.NewFromString(data)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(err, "parse cached fee failed")
	}
	return fee, nil
}

func (r RedisFeeCache) Set(ctx context.Context, q FeeQuote, fee decimal.Decimal) error {
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter
	if err := r.client.Set(ctx, q.Key(), fee.String(), ttl).Err(); err != nil {
		return pkgerrors.Wrap(err, "redis set failed")
	}
	return nil
}

func (r RedisFeeCache) Delete(ctx context.Context, q FeeQuote) error {
	if err := r.client.Del(ctx, q.Key()).Err(); err != nil {
		return pkgerrors.Wrap(err, "redis delete failed")
	}
	return nil
}
