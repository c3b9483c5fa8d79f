package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Pointing/internal/core"
)

// Store is the durable side of the gateway. Implementations apply the
// logical effect of one mutation; failures are theirs to log, never the
// live session's problem.
type Store interface {
	Apply(ctx context.Context, oc core.Outcome) error
}

// Gateway decouples in-memory mutations from durable writes. Notify is a
// fire-and-forget enqueue; a single worker drains the queue in order.
// The live session stays the source of truth for the process lifetime.
type Gateway struct {
	store Store
	queue chan core.Outcome
}

func NewGateway(store Store, buffer int) *Gateway {
	if buffer <= 0 {
		buffer = 256
	}
	return &Gateway{store: store, queue: make(chan core.Outcome, buffer)}
}

// Notify never blocks. When the queue is full the record is dropped with
// a warning: durability is best-effort relative to the live session.
func (g *Gateway) Notify(oc core.Outcome) {
	select {
	case g.queue <- oc:
	default:
		log.Warn().Str("module", "app.gateway").Str("room", string(oc.Room.ID)).
			Str("kind", string(oc.Kind)).Msg("gateway queue full, record dropped")
	}
}

// Run consumes the queue until ctx is canceled, then drains whatever is
// already buffered.
func (g *Gateway) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			g.drain()
			return
		case oc := <-g.queue:
			g.apply(ctx, oc)
		}
	}
}

func (g *Gateway) drain() {
	for {
		select {
		case oc := <-g.queue:
			g.apply(context.Background(), oc)
		default:
			return
		}
	}
}

func (g *Gateway) apply(ctx context.Context, oc core.Outcome) {
	if err := g.store.Apply(ctx, oc); err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Str("room", string(oc.Room.ID)).
			Str("kind", string(oc.Kind)).Msg("durable write failed")
	}
}
