package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allStatuses := []Status{
		StatusPending, StatusCompleted, StatusFailed,
		StatusExpired, StatusManuallyKicked, StatusDismissed,
	}

	legal := map[[2]Status]bool{
		{StatusPending, StatusCompleted}:      true,
		{StatusPending, StatusFailed}:         true,
		{StatusPending, StatusExpired}:        true,
		{StatusFailed, StatusManuallyKicked}:  true,
		{StatusFailed, StatusDismissed}:       true,
		{StatusExpired, StatusManuallyKicked}: true,
		{StatusExpired, StatusDismissed}:      true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			assert.Equal(t, legal[[2]Status{from, to}], CanTransition(from, to),
				"%s -> %s", from, to)
		}
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusFailed.IsTerminal())
	assert.False(t, StatusExpired.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusManuallyKicked.IsTerminal())
	assert.True(t, StatusDismissed.IsTerminal())
}

func TestProvocation_IsExpired(t *testing.T) {
	expiresAt := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	p := &Provocation{ExpiresAt: expiresAt}

	assert.False(t, p.IsExpired(expiresAt.Add(-time.Minute)))
	assert.False(t, p.IsExpired(expiresAt))
	assert.True(t, p.IsExpired(expiresAt.Add(time.Second)))
}
