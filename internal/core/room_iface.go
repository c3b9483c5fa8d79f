package core

import (
	"time"

	"github.com/dkeye/Pointing/internal/domain"
)

// OutcomeKind names the mutation that succeeded.
type OutcomeKind string

const (
	OutcomeJoined   OutcomeKind = "joined"
	OutcomeLeft     OutcomeKind = "left"
	OutcomeVoted    OutcomeKind = "voted"
	OutcomeRevealed OutcomeKind = "revealed"
	OutcomeReset    OutcomeKind = "reset"
)

// ParticipantView is a read-only roster entry for APIs (no vote values,
// only the fact of having voted).
type ParticipantView struct {
	ID       domain.ParticipantID `json:"id"`
	Name     string               `json:"name"`
	Observer bool                 `json:"is_observer"`
	Status   domain.Status        `json:"status"`
	Voted    bool                 `json:"voted"`
}

// RoomSnapshot is a consistent read-only view of one room.
type RoomSnapshot struct {
	ID           domain.RoomID        `json:"id"`
	Name         domain.RoomName      `json:"name"`
	OwnerID      domain.ParticipantID `json:"owner_id"`
	Phase        domain.Phase         `json:"phase"`
	Participants []ParticipantView    `json:"participants"`
	CreatedAt    time.Time            `json:"created_at"`
}

// RevealResult is the full disclosure produced by a successful Reveal:
// every active non-observer's vote plus aggregates. Average covers
// numeric cards only; Mode is the most frequent card over all votes,
// ties broken by deck order.
type RevealResult struct {
	Votes   map[domain.ParticipantID]domain.VoteValue `json:"votes"`
	Average *float64                                  `json:"average,omitempty"`
	Mode    domain.VoteValue                          `json:"mode,omitempty"`
}

// Outcome is the typed result of a successful mutation, handed to the
// sink while the room's operation lock is still held. Value carries the
// submitted card for OutcomeVoted; it is for the persistence side only
// and must never reach the wire while the round is collecting.
type Outcome struct {
	Kind   OutcomeKind
	Room   RoomSnapshot
	Actor  domain.Participant
	Value  domain.VoteValue
	Reveal *RevealResult
}

// EventSink receives each mutation outcome in the order the room's
// serialized operation stream accepted it. Implementations must not
// block: they run inside the room's critical section.
type EventSink interface {
	RoomChanged(oc Outcome)
}

// RoomService is the core-facing API of one room. Every mutation
// executes as a single atomic, serialized step: validate, apply, emit.
type RoomService interface {
	Room() *domain.Room
	Snapshot() RoomSnapshot
	ActiveCount() int
	Has(id domain.ParticipantID) bool

	Join(name string, observer bool) (domain.Participant, error)
	Leave(id domain.ParticipantID) error
	SubmitVote(id domain.ParticipantID, value domain.VoteValue) error
	Reveal(requester domain.ParticipantID) (RevealResult, error)
	Reset(requester domain.ParticipantID) error
}

type RoomInfo struct {
	ID          domain.RoomID   `json:"id"`
	Name        domain.RoomName `json:"name"`
	ActiveCount int             `json:"active_count"`
	Phase       domain.Phase    `json:"phase"`
}
