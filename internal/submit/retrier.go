package submit

import (
	"context"
	"log"
	"time"
)

const DefaultRetryInterval = 5 * time.Minute

// Retrier drives the backup queue's retry passes: one on startup, one
// whenever connectivity comes back, and one on a fixed timer. Every trigger
// is best-effort; the client's singleflight makes overlapping triggers share
// a single pass.
type Retrier struct {
	client   *Client
	interval time.Duration
	online   chan struct{}
}

func NewRetrier(client *Client, interval time.Duration) *Retrier {
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	return &Retrier{
		client:   client,
		interval: interval,
		online:   make(chan struct{}, 1),
	}
}

// Online signals a network back-online transition. Never blocks; signals
// arriving during an active pass coalesce.
func (r *Retrier) Online() {
	select {
	case r.online <- struct{}{}:
	default:
	}
}

// Run loops until the context is cancelled.
func (r *Retrier) Run(ctx context.Context) {
	r.pass(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.pass(ctx)
		case <-r.online:
			r.pass(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Retrier) pass(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := r.client.RetryPending(ctx); err != nil {
		log.Printf("backup retry pass failed: %v", err)
	}
}
