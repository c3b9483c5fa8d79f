package app

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dkeye/Pointing/internal/core"
	"github.com/dkeye/Pointing/internal/domain"
)

func outcomeFixture(kind core.OutcomeKind) core.Outcome {
	return core.Outcome{
		Kind: kind,
		Room: core.RoomSnapshot{
			ID:    "room-1",
			Name:  "Sprint Planning",
			Phase: domain.PhaseCollecting,
		},
		Actor: domain.Participant{ID: "p-1", Name: "Bob", Status: domain.StatusActive},
		Value: "5",
	}
}

func TestVoteSubmittedNeverCarriesValue(t *testing.T) {
	t.Parallel()
	events := Translate(outcomeFixture(core.OutcomeVoted))
	if len(events) != 2 {
		t.Fatalf("events = %d, want vote_submitted + room_updated", len(events))
	}

	b, err := json.Marshal(events[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	payload := string(b)
	if !strings.Contains(payload, `"type":"vote_submitted"`) {
		t.Fatalf("payload = %s, want vote_submitted", payload)
	}
	if strings.Contains(payload, `"5"`) || strings.Contains(payload, "value") {
		t.Fatalf("payload = %s, the vote value must stay blind", payload)
	}

	// The catch-all snapshot must not leak it either.
	b, err = json.Marshal(events[1])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), `"5"`) {
		t.Fatalf("room_updated payload = %s, must not leak vote values", b)
	}
}

func TestVotesRevealedDisclosesEverything(t *testing.T) {
	t.Parallel()
	avg := 6.5
	oc := outcomeFixture(core.OutcomeRevealed)
	oc.Reveal = &core.RevealResult{
		Votes:   map[domain.ParticipantID]domain.VoteValue{"p-1": "5", "p-2": "8"},
		Average: &avg,
		Mode:    "5",
	}

	events := Translate(oc)
	ev, ok := events[0].(VotesRevealed)
	if !ok {
		t.Fatalf("events[0] = %T, want VotesRevealed", events[0])
	}
	if ev.Votes["p-1"] != "5" || ev.Votes["p-2"] != "8" {
		t.Fatalf("votes = %v, want full disclosure", ev.Votes)
	}
	if ev.Average == nil || *ev.Average != 6.5 {
		t.Fatalf("average = %v, want 6.5", ev.Average)
	}
	if ev.Mode != "5" {
		t.Fatalf("mode = %q, want 5", ev.Mode)
	}
}

func TestTranslateKinds(t *testing.T) {
	t.Parallel()
	cases := []struct {
		kind core.OutcomeKind
		typ  string
	}{
		{core.OutcomeJoined, EventUserJoined},
		{core.OutcomeLeft, EventUserLeft},
		{core.OutcomeVoted, EventVoteSubmitted},
		{core.OutcomeReset, EventVotesReset},
	}
	for _, tc := range cases {
		events := Translate(outcomeFixture(tc.kind))
		if len(events) != 2 {
			t.Fatalf("%s: events = %d, want primary + room_updated", tc.kind, len(events))
		}
		b, err := json.Marshal(events[0])
		if err != nil {
			t.Fatalf("%s: marshal: %v", tc.kind, err)
		}
		if !strings.Contains(string(b), `"type":"`+tc.typ+`"`) {
			t.Fatalf("%s: payload = %s, want type %q", tc.kind, b, tc.typ)
		}
		b, err = json.Marshal(events[1])
		if err != nil {
			t.Fatalf("%s: marshal: %v", tc.kind, err)
		}
		if !strings.Contains(string(b), `"type":"`+EventRoomUpdated+`"`) {
			t.Fatalf("%s: trailing event = %s, want room_updated", tc.kind, b)
		}
	}
}

func TestUserJoinedFields(t *testing.T) {
	t.Parallel()
	oc := outcomeFixture(core.OutcomeJoined)
	oc.Actor.Observer = true

	ev, ok := Translate(oc)[0].(UserJoined)
	if !ok {
		t.Fatal("expected UserJoined event")
	}
	if ev.RoomID != "room-1" || ev.ParticipantID != "p-1" || ev.DisplayName != "Bob" || !ev.Observer {
		t.Fatalf("event = %+v, fields do not match the outcome", ev)
	}
}
