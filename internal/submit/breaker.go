package submit

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerTransport wraps a Transport with a circuit breaker so that retry
// passes over a full backup queue stop hammering an endpoint that is plainly
// down. An open breaker surfaces as an ordinary transport failure.
type BreakerTransport struct {
	inner Transport
	cb    *gobreaker.CircuitBreaker[Ack]
}

func NewBreakerTransport(inner Transport) *BreakerTransport {
	cb := gobreaker.NewCircuitBreaker[Ack](gobreaker.Settings{
		Name:    "order-intake",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A logical rejection means the endpoint answered and refused the
		// payload. The circuit guards against an unreachable endpoint, so
		// rejections must not count toward tripping it.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var rejection *RejectionError
			return errors.As(err, &rejection)
		},
	})
	return &BreakerTransport{inner: inner, cb: cb}
}

func (b *BreakerTransport) Deliver(ctx context.Context, fields map[string]string) (Ack, error) {
	return b.cb.Execute(func() (Ack, error) {
		return b.inner.Deliver(ctx, fields)
	})
}
