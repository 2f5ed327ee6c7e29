package sync

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces dependent platform requests by a fixed interval. The first
// wait passes immediately; each later wait blocks until the interval since
// the previous request has elapsed. A zero interval disables pacing, which
// tests rely on.
type Pacer struct {
	lim *rate.Limiter
}

// NewPacer creates a pacer with the given minimum interval between requests.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{}
	}
	return &Pacer{lim: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request is allowed or the context is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.lim == nil {
		return ctx.Err()
	}
	return p.lim.Wait(ctx)
}
