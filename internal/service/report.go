package service

import (
	"context"

	"antilurk/internal/domain"

	"go.uber.org/zap"
)

// ReportService exposes read-only projections of the audit state for
// admin and report tooling
type ReportService struct {
	tracker *ProvocationTracker
	backlog *BacklogManager
	limiter *RateLimiter
	logger  *zap.Logger
}

// NewReportService creates a report service over the core state
func NewReportService(tracker *ProvocationTracker, backlog *BacklogManager, limiter *RateLimiter, logger *zap.Logger) *ReportService {
	return &ReportService{
		tracker: tracker,
		backlog: backlog,
		limiter: limiter,
		logger:  logger,
	}
}

// RecentProvocations returns up to limit provocations for a chat, newest first
func (r *ReportService) RecentProvocations(chatID int64, limit int) []domain.Provocation {
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return r.tracker.RecentForChat(chatID, limit)
}

// UserHistory returns all provocations issued to a user, oldest first
func (r *ReportService) UserHistory(userID int64) []domain.Provocation {
	return r.tracker.HistoryForUser(userID)
}

// ChatStats is a per-chat observability snapshot
type ChatStats struct {
	ChatID            int64
	BacklogSize       int
	RemainingHourly   int
	RemainingDaily    int
	PendingChallenges int
}

// Stats returns the backlog and rate-limit snapshot for a chat
func (r *ReportService) Stats(ctx context.Context, chatID int64) ChatStats {
	hourly, daily, err := r.limiter.RemainingAllowance(ctx, chatID)
	if err != nil {
		r.logger.Warn("Failed to query remaining allowance",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}

	pending := 0
	for _, p := range r.tracker.RecentForChat(chatID, 0) {
		if p.Status == domain.StatusPending {
			pending++
		}
	}

	return ChatStats{
		ChatID:            chatID,
		BacklogSize:       len(r.backlog.Get(chatID)),
		RemainingHourly:   hourly,
		RemainingDaily:    daily,
		PendingChallenges: pending,
	}
}

// BacklogStats returns the global backlog snapshot
func (r *ReportService) BacklogStats() BacklogStats {
	return r.backlog.Stats()
}
