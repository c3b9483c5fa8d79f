package core

import "errors"

// Operation errors. All are recoverable by the caller: the offending
// request is rejected, the room is left untouched and nothing is
// broadcast.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrNotOwner            = errors.New("only the room owner can do this")
	ErrObserverCannotVote  = errors.New("observers cannot vote")
	ErrInvalidVote         = errors.New("invalid vote value")
	ErrRoundRevealed       = errors.New("round already revealed")
	ErrNothingToReveal     = errors.New("nothing to reveal")
)
