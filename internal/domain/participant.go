// Package domain contains entities without logic, just meta-data
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const MaxParticipantNameLen = 36

var (
	ErrNameEmpty   = errors.New("display name empty")
	ErrNameTooLong = errors.New("display name too long")
)

type ParticipantID string

// Status tracks membership. Participants are never removed from a room's
// record; they flip to left so vote history stays attributable.
type Status string

const (
	StatusActive Status = "active"
	StatusLeft   Status = "left"
)

type Participant struct {
	ID       ParticipantID `json:"id"`
	Name     string        `json:"name"`
	Observer bool          `json:"is_observer"`
	Status   Status        `json:"status"`
}

// NewParticipant is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewParticipant(name string, observer bool) (*Participant, error) {
	if len(name) == 0 {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxParticipantNameLen {
		return nil, ErrNameTooLong
	}
	return &Participant{
		ID:       ParticipantID(uuid.NewString()),
		Name:     name,
		Observer: observer,
		Status:   StatusActive,
	}, nil
}

func (p *Participant) Active() bool { return p.Status == StatusActive }
