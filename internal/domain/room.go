package domain

import (
	"time"

	"github.com/google/uuid"
)

const MaxRoomNameLen = 64

type (
	RoomName string
	RoomID   string
)

// Phase is the state of a room's current vote round.
type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseRevealed   Phase = "revealed"
)

type Room struct {
	ID        RoomID
	Name      RoomName
	OwnerID   ParticipantID
	CreatedAt time.Time
}

// NewRoom allocates a fresh room identity. Membership, votes and phase
// live in core; the owner is fixed by the first join.
func NewRoom(name RoomName) (*Room, error) {
	if len(name) == 0 {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxRoomNameLen {
		return nil, ErrNameTooLong
	}
	return &Room{
		ID:        RoomID(uuid.NewString()),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}, nil
}
