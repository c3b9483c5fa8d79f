package app

import (
	"github.com/dkeye/Pointing/internal/core"
	"github.com/dkeye/Pointing/internal/domain"
)

// Wire events. VoteSubmitted deliberately has no value field: votes stay
// blind until the round is revealed.
const (
	EventUserJoined    = "user_joined"
	EventUserLeft      = "user_left"
	EventVoteSubmitted = "vote_submitted"
	EventVotesRevealed = "votes_revealed"
	EventVotesReset    = "votes_reset"
	EventRoomUpdated   = "room_updated"
)

type UserJoined struct {
	Type          string               `json:"type"`
	RoomID        domain.RoomID        `json:"room_id"`
	ParticipantID domain.ParticipantID `json:"participant_id"`
	DisplayName   string               `json:"display_name"`
	Observer      bool                 `json:"is_observer"`
}

type UserLeft struct {
	Type          string               `json:"type"`
	RoomID        domain.RoomID        `json:"room_id"`
	ParticipantID domain.ParticipantID `json:"participant_id"`
}

type VoteSubmitted struct {
	Type          string               `json:"type"`
	RoomID        domain.RoomID        `json:"room_id"`
	ParticipantID domain.ParticipantID `json:"participant_id"`
}

type VotesRevealed struct {
	Type    string                                    `json:"type"`
	RoomID  domain.RoomID                             `json:"room_id"`
	Votes   map[domain.ParticipantID]domain.VoteValue `json:"votes"`
	Average *float64                                  `json:"average,omitempty"`
	Mode    domain.VoteValue                          `json:"mode,omitempty"`
}

type VotesReset struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"room_id"`
}

type RoomUpdated struct {
	Type   string            `json:"type"`
	RoomID domain.RoomID     `json:"room_id"`
	Room   core.RoomSnapshot `json:"room"`
}

// Translate maps one mutation outcome onto its wire events. It is never
// called for failed operations; every state change also produces a
// trailing RoomUpdated as a catch-all consistency signal.
func Translate(oc core.Outcome) []any {
	roomID := oc.Room.ID
	events := make([]any, 0, 2)
	switch oc.Kind {
	case core.OutcomeJoined:
		events = append(events, UserJoined{
			Type:          EventUserJoined,
			RoomID:        roomID,
			ParticipantID: oc.Actor.ID,
			DisplayName:   oc.Actor.Name,
			Observer:      oc.Actor.Observer,
		})
	case core.OutcomeLeft:
		events = append(events, UserLeft{
			Type:          EventUserLeft,
			RoomID:        roomID,
			ParticipantID: oc.Actor.ID,
		})
	case core.OutcomeVoted:
		events = append(events, VoteSubmitted{
			Type:          EventVoteSubmitted,
			RoomID:        roomID,
			ParticipantID: oc.Actor.ID,
		})
	case core.OutcomeRevealed:
		events = append(events, VotesRevealed{
			Type:    EventVotesRevealed,
			RoomID:  roomID,
			Votes:   oc.Reveal.Votes,
			Average: oc.Reveal.Average,
			Mode:    oc.Reveal.Mode,
		})
	case core.OutcomeReset:
		events = append(events, VotesReset{Type: EventVotesReset, RoomID: roomID})
	}
	events = append(events, RoomUpdated{Type: EventRoomUpdated, RoomID: roomID, Room: oc.Room})
	return events
}
