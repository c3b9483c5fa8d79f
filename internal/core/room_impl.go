package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Pointing/internal/domain"
)

// roomImpl is the authoritative in-memory state of one room. A single
// mutex serializes all mutations; the sink is invoked before the lock is
// released so the fan-out order equals the mutation order.
type roomImpl struct {
	mu    sync.Mutex
	room  *domain.Room
	scale *domain.Scale
	sink  EventSink

	participants map[domain.ParticipantID]*domain.Participant
	order        []domain.ParticipantID
	votes        map[domain.ParticipantID]domain.VoteValue
	phase        domain.Phase
}

func NewRoomService(room *domain.Room, scale *domain.Scale, sink EventSink) RoomService {
	return &roomImpl{
		room:         room,
		scale:        scale,
		sink:         sink,
		participants: make(map[domain.ParticipantID]*domain.Participant),
		votes:        make(map[domain.ParticipantID]domain.VoteValue),
		phase:        domain.PhaseCollecting,
	}
}

// Restore rebuilds a room from durable state after a restart. No events
// are emitted: connected clients do not exist yet.
func Restore(
	room *domain.Room,
	scale *domain.Scale,
	sink EventSink,
	participants []domain.Participant,
	votes map[domain.ParticipantID]domain.VoteValue,
	phase domain.Phase,
) RoomService {
	r := &roomImpl{
		room:         room,
		scale:        scale,
		sink:         sink,
		participants: make(map[domain.ParticipantID]*domain.Participant, len(participants)),
		votes:        make(map[domain.ParticipantID]domain.VoteValue, len(votes)),
		phase:        phase,
	}
	for i := range participants {
		p := participants[i]
		r.participants[p.ID] = &p
		r.order = append(r.order, p.ID)
	}
	for id, v := range votes {
		if p, ok := r.participants[id]; ok && p.Active() && !p.Observer {
			r.votes[id] = v
		}
	}
	return r
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) Snapshot() RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *roomImpl) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeCountLocked()
}

func (r *roomImpl) Has(id domain.ParticipantID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.participants[id]
	return ok
}

func (r *roomImpl) Join(name string, observer bool) (domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := domain.NewParticipant(name, observer)
	if err != nil {
		return domain.Participant{}, err
	}
	if r.room.OwnerID == "" && r.activeCountLocked() == 0 {
		r.room.OwnerID = p.ID
	}
	r.participants[p.ID] = p
	r.order = append(r.order, p.ID)

	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).
		Str("participant", string(p.ID)).Bool("observer", observer).Msg("participant joined")
	r.emitLocked(Outcome{Kind: OutcomeJoined, Actor: *p})
	return *p, nil
}

func (r *roomImpl) Leave(id domain.ParticipantID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[id]
	if !ok {
		return ErrParticipantNotFound
	}
	if !p.Active() {
		return nil
	}
	p.Status = domain.StatusLeft
	if r.phase == domain.PhaseCollecting {
		delete(r.votes, id)
	}

	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).
		Str("participant", string(id)).Msg("participant left")
	r.emitLocked(Outcome{Kind: OutcomeLeft, Actor: *p})
	return nil
}

func (r *roomImpl) SubmitVote(id domain.ParticipantID, value domain.VoteValue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[id]
	if !ok || !p.Active() {
		return ErrParticipantNotFound
	}
	if p.Observer {
		return ErrObserverCannotVote
	}
	if r.phase == domain.PhaseRevealed {
		return ErrRoundRevealed
	}
	if !r.scale.Valid(value) {
		return ErrInvalidVote
	}
	r.votes[id] = value

	log.Debug().Str("module", "core.room").Str("room", string(r.room.ID)).
		Str("participant", string(id)).Msg("vote submitted")
	r.emitLocked(Outcome{Kind: OutcomeVoted, Actor: *p, Value: value})
	return nil
}

func (r *roomImpl) Reveal(requester domain.ParticipantID) (RevealResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.room.OwnerID == "" || requester != r.room.OwnerID {
		return RevealResult{}, ErrNotOwner
	}
	if len(r.votes) == 0 {
		return RevealResult{}, ErrNothingToReveal
	}
	r.phase = domain.PhaseRevealed
	result := r.revealLocked()

	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).
		Int("votes", len(result.Votes)).Msg("votes revealed")
	r.emitLocked(Outcome{Kind: OutcomeRevealed, Reveal: &result})
	return result, nil
}

func (r *roomImpl) Reset(requester domain.ParticipantID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.room.OwnerID == "" || requester != r.room.OwnerID {
		return ErrNotOwner
	}
	r.votes = make(map[domain.ParticipantID]domain.VoteValue)
	r.phase = domain.PhaseCollecting

	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Msg("votes reset")
	r.emitLocked(Outcome{Kind: OutcomeReset})
	return nil
}

// revealLocked builds the disclosure mapping restricted to active
// non-observer participants, plus the aggregates.
func (r *roomImpl) revealLocked() RevealResult {
	votes := make(map[domain.ParticipantID]domain.VoteValue, len(r.votes))
	counts := make(map[domain.VoteValue]int)
	var sum float64
	var numeric int
	for id, v := range r.votes {
		p, ok := r.participants[id]
		if !ok || !p.Active() || p.Observer {
			continue
		}
		votes[id] = v
		counts[v]++
		if n, ok := r.scale.Numeric(v); ok {
			sum += n
			numeric++
		}
	}
	res := RevealResult{Votes: votes}
	if numeric > 0 {
		avg := sum / float64(numeric)
		res.Average = &avg
	}
	best := 0
	for _, v := range r.scale.Values() {
		if counts[v] > best {
			best = counts[v]
			res.Mode = v
		}
	}
	return res
}

func (r *roomImpl) activeCountLocked() int {
	n := 0
	for _, p := range r.participants {
		if p.Active() {
			n++
		}
	}
	return n
}

func (r *roomImpl) snapshotLocked() RoomSnapshot {
	roster := make([]ParticipantView, 0, len(r.order))
	for _, id := range r.order {
		p := r.participants[id]
		_, voted := r.votes[id]
		roster = append(roster, ParticipantView{
			ID: p.ID, Name: p.Name, Observer: p.Observer, Status: p.Status, Voted: voted,
		})
	}
	return RoomSnapshot{
		ID:           r.room.ID,
		Name:         r.room.Name,
		OwnerID:      r.room.OwnerID,
		Phase:        r.phase,
		Participants: roster,
		CreatedAt:    r.room.CreatedAt,
	}
}

// emitLocked stamps the outcome with a fresh snapshot and hands it to
// the sink. Called with the mutex held; sinks must not block.
func (r *roomImpl) emitLocked(oc Outcome) {
	if r.sink == nil {
		return
	}
	oc.Room = r.snapshotLocked()
	r.sink.RoomChanged(oc)
}
