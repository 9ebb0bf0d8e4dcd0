// Package memory provides in-memory repository implementations used by
// tests.
package memory

import (
	"context"
	"sync"
	"time"
)

type event struct {
	chatID   int64
	userID   int64
	issuedAt time.Time
}

// ProvocationLog is an in-memory repository.ProvocationLog
type ProvocationLog struct {
	mu     sync.RWMutex
	events []event
}

// NewProvocationLog creates an empty in-memory event log
func NewProvocationLog() *ProvocationLog {
	return &ProvocationLog{}
}

// Record appends an issuance event
func (l *ProvocationLog) Record(_ context.Context, chatID, userID int64, issuedAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event{chatID: chatID, userID: userID, issuedAt: issuedAt})
	return nil
}

// CountSince counts events for a chat at or after the cutoff
func (l *ProvocationLog) CountSince(_ context.Context, chatID int64, since time.Time) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := 0
	for _, e := range l.events {
		if e.chatID == chatID && !e.issuedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// LastIssuedAt returns the latest issuance time for a user, or nil
func (l *ProvocationLog) LastIssuedAt(_ context.Context, userID int64) (*time.Time, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var last *time.Time
	for i := range l.events {
		e := l.events[i]
		if e.userID != userID {
			continue
		}
		if last == nil || e.issuedAt.After(*last) {
			t := e.issuedAt
			last = &t
		}
	}
	return last, nil
}
