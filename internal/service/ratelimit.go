package service

import (
	"context"
	"time"

	"antilurk/internal/domain"
	"antilurk/internal/repository"

	"go.uber.org/zap"
)

// RateLimiter enforces per-chat provocation limits over rolling
// hourly and daily windows. Counts come from the provocation event
// log; if a count query fails the limiter fails closed.
type RateLimiter struct {
	log         repository.ProvocationLog
	hourlyLimit int
	dailyLimit  int
	logger      *zap.Logger

	now func() time.Time
}

// NewRateLimiter creates a rate limiter with the given per-chat limits
func NewRateLimiter(log repository.ProvocationLog, hourlyLimit, dailyLimit int, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		log:         log,
		hourlyLimit: hourlyLimit,
		dailyLimit:  dailyLimit,
		logger:      logger,
		now:         time.Now,
	}
}

// counts returns (hourlyCount, dailyCount) for the chat
func (r *RateLimiter) counts(ctx context.Context, chatID int64) (int, int, error) {
	now := r.now()

	hourly, err := r.log.CountSince(ctx, chatID, now.Add(-time.Hour))
	if err != nil {
		return 0, 0, err
	}
	daily, err := r.log.CountSince(ctx, chatID, now.Add(-24*time.Hour))
	if err != nil {
		return 0, 0, err
	}
	return hourly, daily, nil
}

// CanProvoke reports whether a new provocation may be issued in the chat.
// Both the hourly and the daily count must be below their limits.
func (r *RateLimiter) CanProvoke(ctx context.Context, chatID int64) bool {
	hourly, daily, err := r.counts(ctx, chatID)
	if err != nil {
		// Fail closed: an unknown count must not open the gate
		r.logger.Error("Rate limit count query failed, treating as at-limit",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		return false
	}

	canProvoke := hourly < r.hourlyLimit && daily < r.dailyLimit

	r.logger.Debug("Rate limit check",
		zap.Int64("chat_id", chatID),
		zap.Int("hourly_count", hourly),
		zap.Int("daily_count", daily),
		zap.Int("hourly_limit", r.hourlyLimit),
		zap.Int("daily_limit", r.dailyLimit),
		zap.Bool("can_provoke", canProvoke),
	)

	return canProvoke
}

// RecordProvocation records an issuance event for accounting
func (r *RateLimiter) RecordProvocation(ctx context.Context, chatID, userID int64) error {
	if err := r.log.Record(ctx, chatID, userID, r.now()); err != nil {
		return err
	}
	r.logger.Info("Recorded provocation",
		zap.Int64("chat_id", chatID),
		zap.Int64("user_id", userID),
	)
	return nil
}

// RemainingAllowance returns how many provocations the hourly and daily
// windows still permit, floored at zero
func (r *RateLimiter) RemainingAllowance(ctx context.Context, chatID int64) (hourly, daily int, err error) {
	hourlyCount, dailyCount, err := r.counts(ctx, chatID)
	if err != nil {
		return 0, 0, err
	}
	return max(0, r.hourlyLimit-hourlyCount), max(0, r.dailyLimit-dailyCount), nil
}

// FilterByRateLimit splits candidates into (allowed, blocked) preserving
// input order: the first available-slot users are allowed, the rest blocked.
// On a count query failure every candidate is blocked.
func (r *RateLimiter) FilterByRateLimit(ctx context.Context, chatID int64, users []domain.User) (allowed, blocked []domain.User) {
	remainingHourly, remainingDaily, err := r.RemainingAllowance(ctx, chatID)
	if err != nil {
		r.logger.Error("Rate limit count query failed, blocking all candidates",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		return nil, append([]domain.User(nil), users...)
	}

	available := min(remainingHourly, remainingDaily)
	if available > len(users) {
		available = len(users)
	}

	allowed = append([]domain.User(nil), users[:available]...)
	blocked = append([]domain.User(nil), users[available:]...)

	r.logger.Info("Filtered users by rate limits",
		zap.Int64("chat_id", chatID),
		zap.Int("total_users", len(users)),
		zap.Int("allowed_users", len(allowed)),
		zap.Int("blocked_users", len(blocked)),
		zap.Int("available_slots", available),
	)

	return allowed, blocked
}
