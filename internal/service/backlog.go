package service

import (
	"sync"
	"time"

	"antilurk/internal/domain"

	"go.uber.org/zap"
)

// BacklogStats is a read-only snapshot of the backlog state
type BacklogStats struct {
	TotalChats    int
	TotalUsers    int
	PerChatCounts map[int64]int
	Timestamp     time.Time
}

// BacklogManager holds users who were eligible for a challenge but
// blocked by rate limits, per chat, in arrival order
type BacklogManager struct {
	mu       sync.Mutex
	backlogs map[int64][]domain.BacklogEntry
	logger   *zap.Logger

	now func() time.Time
}

// NewBacklogManager creates an empty backlog manager
func NewBacklogManager(logger *zap.Logger) *BacklogManager {
	return &BacklogManager{
		backlogs: make(map[int64][]domain.BacklogEntry),
		logger:   logger,
		now:      time.Now,
	}
}

// Add appends users to the chat's backlog, preserving order
func (b *BacklogManager) Add(chatID int64, users []domain.User, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	addedAt := b.now()
	for _, u := range users {
		b.backlogs[chatID] = append(b.backlogs[chatID], domain.BacklogEntry{
			ChatID:  chatID,
			User:    u,
			Reason:  reason,
			AddedAt: addedAt,
		})
	}

	b.logger.Info("Added users to backlog",
		zap.Int64("chat_id", chatID),
		zap.Int("added_count", len(users)),
		zap.Int("total_backlog", len(b.backlogs[chatID])),
	)
}

// Get returns a copy of the chat's current backlog users without mutating it
func (b *BacklogManager) Get(chatID int64) []domain.User {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.backlogs[chatID]
	users := make([]domain.User, len(entries))
	for i, e := range entries {
		users[i] = e.User
	}
	return users
}

// Clear removes all entries for a chat and returns how many were removed
func (b *BacklogManager) Clear(chatID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	cleared := len(b.backlogs[chatID])
	delete(b.backlogs, chatID)

	b.logger.Info("Cleared backlog",
		zap.Int64("chat_id", chatID),
		zap.Int("cleared_count", cleared),
	)

	return cleared
}

// RemoveN pops up to n users from the front of the chat's queue
func (b *BacklogManager) RemoveN(chatID int64, n int) []domain.User {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.backlogs[chatID]
	if n > len(entries) {
		n = len(entries)
	}
	if n <= 0 {
		return nil
	}

	removed := make([]domain.User, n)
	for i, e := range entries[:n] {
		removed[i] = e.User
	}
	b.backlogs[chatID] = entries[n:]

	b.logger.Info("Removed users from backlog",
		zap.Int64("chat_id", chatID),
		zap.Int("removed_count", n),
		zap.Int("remaining_backlog", len(b.backlogs[chatID])),
	)

	return removed
}

// TotalSize returns the number of users across all chats' backlogs
func (b *BacklogManager) TotalSize() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalSizeLocked()
}

func (b *BacklogManager) totalSizeLocked() int {
	total := 0
	for _, entries := range b.backlogs {
		total += len(entries)
	}
	return total
}

// Stats returns a snapshot of backlog sizes for observability
func (b *BacklogManager) Stats() BacklogStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	perChat := make(map[int64]int, len(b.backlogs))
	for chatID, entries := range b.backlogs {
		perChat[chatID] = len(entries)
	}

	return BacklogStats{
		TotalChats:    len(b.backlogs),
		TotalUsers:    b.totalSizeLocked(),
		PerChatCounts: perChat,
		Timestamp:     b.now(),
	}
}
