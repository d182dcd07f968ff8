// Package limiter bounds the rate of AWS API calls made by the
// inspector so parameter checks cannot trip account throttling.
package limiter

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/hostinit/hostinit/internal/core/ports"
)

const (
	DefaultRPS = 10
	minRPS     = 1
	maxRPS     = 50
)

type Limiter struct {
	limiter *rate.Limiter
	logger  ports.Logger
}

func New(rps int, logger ports.Logger) *Limiter {
	if rps < minRPS || rps > maxRPS {
		if rps != 0 {
			logger.Warnf(context.Background(),
				"Invalid AWS API rate limit %d, using default %d RPS (valid range %d-%d)", rps, DefaultRPS, minRPS, maxRPS)
		}
		rps = DefaultRPS
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		logger:  logger,
	}
}

func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		if ctx.Err() == nil {
			l.logger.Warnf(ctx, "AWS API rate limiter wait failed: %v", err)
		}
		return err
	}
	return nil
}
