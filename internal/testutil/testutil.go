package testutil

import (
	"time"

	"antilurk/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestUser creates a test user with the given last interaction time.
// Fixture timestamps are fixed so users built separately compare equal.
func NewTestUser(userID int64, lastInteraction *time.Time) domain.User {
	seen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return domain.User{
		ID:                userID,
		FirstSeen:         seen,
		LastSeen:          seen,
		LastInteractionAt: lastInteraction,
	}
}

// NewProtectedUser creates a test user exempt from moderation
func NewProtectedUser(userID int64, role string) domain.User {
	u := NewTestUser(userID, nil)
	u.Roles = []string{role}
	return u
}

// NewTestPuzzle creates a three-choice puzzle with the given correct index
func NewTestPuzzle(id string, correctIndex int) domain.Puzzle {
	choices := make([]domain.Choice, 3)
	for i := range choices {
		choices[i] = domain.Choice{Text: string(rune('A' + i))}
	}
	choices[correctIndex].Correct = true
	return domain.Puzzle{
		ID:       id,
		Type:     "arithmetic",
		Question: "2 + 2 = ?",
		Choices:  choices,
	}
}

// TimePtr returns a pointer to the given time
func TimePtr(t time.Time) *time.Time {
	return &t
}
