package submit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/arbaminim/order-intake/internal/backup"
	"github.com/arbaminim/order-intake/internal/order"
)

const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
)

// Outcome distinguishes a delivered order from one parked in the backup
// queue. Both are success from the customer's point of view; only the
// follow-up message differs.
type Outcome int

const (
	OutcomeDelivered Outcome = iota
	OutcomeSavedLocally
)

type Result struct {
	Outcome Outcome
	// Ack is meaningful only when Outcome is OutcomeDelivered.
	Ack Ack
	// Entry is set when the payload went to the backup queue instead.
	Entry *backup.Entry
}

type Config struct {
	MaxRetries int
	RetryDelay time.Duration
}

// Client delivers composed orders with bounded retry and falls back to the
// local backup queue when the endpoint stays unreachable. No submitted order
// is silently lost: the worst case is an entry waiting in the queue.
type Client struct {
	transport  Transport
	queue      *backup.Queue
	maxRetries int
	retryDelay time.Duration
	sfg        singleflight.Group // collapses concurrent retry passes
}

func NewClient(transport Transport, queue *backup.Queue, cfg Config) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	return &Client{
		transport:  transport,
		queue:      queue,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
}

// Submit attempts delivery with linearly growing backoff between attempts.
// When every attempt fails on transport, the raw pre-composition payload is
// preserved in the backup queue and the caller gets a soft
// OutcomeSavedLocally result, not an error. A logical rejection from a
// readable endpoint is returned as-is: retrying or backing it up cannot fix
// input the endpoint refuses.
func (c *Client) Submit(ctx context.Context, rec *order.Record) (Result, error) {
	ack, err := c.deliverWithRetry(ctx, rec.Fields())
	if err == nil {
		return Result{Outcome: OutcomeDelivered, Ack: ack}, nil
	}

	var rejection *RejectionError
	if errors.As(err, &rejection) {
		return Result{}, err
	}

	entry, backupErr := c.queue.Append(ctx, rec.Raw())
	if backupErr != nil {
		return Result{}, fmt.Errorf("delivery failed (%v) and backup failed: %w", err, backupErr)
	}
	log.Printf("order %s saved to backup queue after %d failed attempts: %v", rec.OrderNumber, c.maxRetries, err)
	return Result{Outcome: OutcomeSavedLocally, Entry: &entry}, nil
}

func (c *Client) deliverWithRetry(ctx context.Context, fields map[string]string) (Ack, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		ack, err := c.transport.Deliver(ctx, fields)
		if err == nil {
			return ack, nil
		}

		var rejection *RejectionError
		if errors.As(err, &rejection) {
			return AckUnconfirmed, err
		}

		lastErr = err
		if attempt < c.maxRetries {
			select {
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return AckUnconfirmed, ctx.Err()
			}
		}
	}
	return AckUnconfirmed, lastErr
}

// RetryPending re-attempts every pending backup entry once per pass,
// recomposing the transport fields from the stored raw payload. Entries that
// deliver flip to sent; the rest stay pending for the next pass with no
// backoff carried between passes. Overlapping triggers collapse into a
// single pass.
func (c *Client) RetryPending(ctx context.Context) error {
	_, err, _ := c.sfg.Do("retry-pending", func() (interface{}, error) {
		pending, err := c.queue.Pending(ctx)
		if err != nil {
			return nil, fmt.Errorf("load pending backups: %w", err)
		}

		for _, entry := range pending {
			if _, err := c.transport.Deliver(ctx, order.PrepareFields(entry.Payload)); err != nil {
				log.Printf("retry of backup %s failed: %v", entry.ID, err)
				continue
			}

			if err := c.queue.MarkSent(ctx, entry.ID); err != nil {
				if errors.Is(err, backup.ErrNotPending) {
					// Another pass flipped it first; its send stands.
					continue
				}
				log.Printf("failed to mark backup %s as sent: %v", entry.ID, err)
			}
		}
		return nil, nil
	})
	return err
}
