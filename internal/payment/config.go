package payment

import (
	"context"
	"time"
)

type Config struct {
	PollInterval time.Duration
	MaxAttempts  int
	QRLifetime   time.Duration
	SuccessDelay time.Duration
	InitTimeout  time.Duration
	CardTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 2 * time.Second,
		MaxAttempts:  10,
		QRLifetime:   60 * time.Second,
		SuccessDelay: 1500 * time.Millisecond,
		InitTimeout:  10 * time.Second,
		CardTimeout:  10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.QRLifetime <= 0 {
		c.QRLifetime = d.QRLifetime
	}
	if c.SuccessDelay < 0 {
		c.SuccessDelay = 0
	}
	if c.InitTimeout <= 0 {
		c.InitTimeout = d.InitTimeout
	}
	if c.CardTimeout <= 0 {
		c.CardTimeout = d.CardTimeout
	}
	return c
}

// sleepOrDone waits for d or until ctx is done. It reports whether the full wait elapsed.
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
