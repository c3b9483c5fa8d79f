package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Pointing/internal/core"
	"github.com/dkeye/Pointing/internal/domain"
)

// Registry is the single source of truth for which rooms exist. The map
// lock guards lookup and insert only; room mutations run under each
// room's own lock so rooms stay independent.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]core.RoomService

	scale *domain.Scale
	sink  core.EventSink
}

func NewRegistry(scale *domain.Scale, sink core.EventSink) *Registry {
	return &Registry{
		rooms: make(map[domain.RoomID]core.RoomService),
		scale: scale,
		sink:  sink,
	}
}

// Create allocates a room and joins its owner. The room becomes visible
// to Get only after it is fully constructed.
func (r *Registry) Create(name domain.RoomName, ownerName string) (core.RoomService, domain.Participant, error) {
	room, err := domain.NewRoom(name)
	if err != nil {
		return nil, domain.Participant{}, err
	}
	svc := core.NewRoomService(room, r.scale, r.sink)
	owner, err := svc.Join(ownerName, false)
	if err != nil {
		return nil, domain.Participant{}, err
	}

	r.mu.Lock()
	r.rooms[room.ID] = svc
	r.mu.Unlock()

	log.Info().Str("module", "app.registry").Str("room", string(room.ID)).
		Str("name", string(name)).Str("owner", string(owner.ID)).Msg("room created")
	return svc, owner, nil
}

func (r *Registry) Get(id domain.RoomID) (core.RoomService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.rooms[id]
	if !ok {
		return nil, core.ErrRoomNotFound
	}
	return svc, nil
}

func (r *Registry) List() []core.RoomInfo {
	r.mu.RLock()
	services := make([]core.RoomService, 0, len(r.rooms))
	for _, svc := range r.rooms {
		services = append(services, svc)
	}
	r.mu.RUnlock()

	out := make([]core.RoomInfo, 0, len(services))
	for _, svc := range services {
		snap := svc.Snapshot()
		active := 0
		for _, p := range snap.Participants {
			if p.Status == domain.StatusActive {
				active++
			}
		}
		out = append(out, core.RoomInfo{
			ID:          snap.ID,
			Name:        snap.Name,
			ActiveCount: active,
			Phase:       snap.Phase,
		})
	}
	return out
}

// Evict removes a room. Administrative action only; rooms never expire
// on their own.
func (r *Registry) Evict(id domain.RoomID) {
	r.mu.Lock()
	delete(r.rooms, id)
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room evicted")
}

// Restore re-inserts a room rebuilt from durable storage at startup.
func (r *Registry) Restore(svc core.RoomService) {
	r.mu.Lock()
	r.rooms[svc.Room().ID] = svc
	r.mu.Unlock()
}
