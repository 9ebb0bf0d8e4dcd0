package domain

import "time"

// Status represents the lifecycle state of a provocation
type Status string

const (
	StatusPending        Status = "pending"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
	StatusExpired        Status = "expired"
	StatusManuallyKicked Status = "manually_kicked"
	StatusDismissed      Status = "dismissed"
)

// transitions is the full set of legal status moves.
// pending -> completed/failed/expired on user response or sweep;
// failed/expired -> manually_kicked/dismissed on moderator action.
var transitions = map[Status][]Status{
	StatusPending: {StatusCompleted, StatusFailed, StatusExpired},
	StatusFailed:  {StatusManuallyKicked, StatusDismissed},
	StatusExpired: {StatusManuallyKicked, StatusDismissed},
}

// CanTransition reports whether moving from one status to another is legal
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is modeled from s
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Provocation is a time-boxed verification challenge issued to a lurker
type Provocation struct {
	ID          int64
	ChatID      int64
	UserID      int64
	PuzzleID    string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	MessageID   int
	Status      Status
	RespondedAt *time.Time
}

// IsExpired reports whether the provocation's TTL has elapsed at the given time
func (p *Provocation) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
