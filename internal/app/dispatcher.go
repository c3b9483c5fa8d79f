package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Pointing/internal/core"
)

// Dispatcher is the sink behind every room: it translates each outcome,
// fans the events out through the hub and hands the logical effect to
// the persistence gateway. It runs inside the room's critical section,
// so every step is a non-blocking enqueue.
type Dispatcher struct {
	Hub     *Hub
	Gateway *Gateway
}

func NewDispatcher(hub *Hub, gateway *Gateway) *Dispatcher {
	return &Dispatcher{Hub: hub, Gateway: gateway}
}

func (d *Dispatcher) RoomChanged(oc core.Outcome) {
	for _, ev := range Translate(oc) {
		b, err := json.Marshal(ev)
		if err != nil {
			log.Error().Err(err).Str("module", "app.dispatcher").Msg("marshal event")
			continue
		}
		d.Hub.Broadcast(oc.Room.ID, b)
	}
	if d.Gateway != nil {
		d.Gateway.Notify(oc)
	}
}
