package notify

import (
	"context"

	"tender-notifier/internal/circuitbreaker"
	"tender-notifier/internal/tenders"
)

// Guarded routes deliveries through a circuit breaker.
type Guarded struct {
	next    tenders.Notifier
	breaker *circuitbreaker.Breaker
}

func NewGuarded(next tenders.Notifier, breaker *circuitbreaker.Breaker) *Guarded {
	return &Guarded{next: next, breaker: breaker}
}

func (g *Guarded) Send(ctx context.Context, msg tenders.Message) error {
	return g.breaker.Execute(ctx, func() error {
		return g.next.Send(ctx, msg)
	})
}

var _ tenders.Notifier = (*Guarded)(nil)
