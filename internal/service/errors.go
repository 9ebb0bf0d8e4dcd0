package service

import "errors"

var (
	// ErrNoPuzzles is returned when a challenge is requested with an empty puzzle set
	ErrNoPuzzles = errors.New("no puzzles configured")

	// ErrChallengePending is returned when the user already has a pending challenge in the chat
	ErrChallengePending = errors.New("challenge already pending for user")

	// ErrProvocationNotFound is returned for lookups of unknown provocation ids
	ErrProvocationNotFound = errors.New("provocation not found")

	// ErrInvalidTransition is returned when a status change violates the transition table
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNoModlog is returned when a moderated chat has no linked escalation channel
	ErrNoModlog = errors.New("no linked modlog channel")
)
