package service

import (
	"context"
	"fmt"
	"time"

	"antilurk/internal/domain"
	"antilurk/internal/repository"

	"go.uber.org/zap"
)

// LurkerSelector identifies inactive, unprotected chat members who are
// not on a recent-provocation cooldown
type LurkerSelector struct {
	directory repository.Directory
	log       repository.ProvocationLog
	logger    *zap.Logger

	now func() time.Time
}

// NewLurkerSelector creates a selector backed by the given directory and event log
func NewLurkerSelector(directory repository.Directory, log repository.ProvocationLog, logger *zap.Logger) *LurkerSelector {
	return &LurkerSelector{
		directory: directory,
		log:       log,
		logger:    logger,
		now:       time.Now,
	}
}

// IsLurker reports whether a user is inactive beyond the threshold.
// A user with no recorded interaction is always a lurker.
func IsLurker(user domain.User, thresholdDays int, now time.Time) bool {
	if user.LastInteractionAt == nil {
		return true
	}
	cutoff := now.Add(-time.Duration(thresholdDays) * 24 * time.Hour)
	return user.LastInteractionAt.Before(cutoff)
}

// IdentifyLurkers returns the ordered candidate list for a chat. Per
// user the pipeline short-circuits: protected users are skipped first,
// then users active within the threshold, then users challenged within
// the cooldown interval. A failed cooldown lookup skips the user rather
// than failing the batch.
func (s *LurkerSelector) IdentifyLurkers(ctx context.Context, chatID int64, thresholdDays, intervalHours int) ([]domain.User, error) {
	now := s.now()
	cutoff := now.Add(-time.Duration(thresholdDays) * 24 * time.Hour)

	candidates, err := s.directory.GetUsersInactiveSince(ctx, chatID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load inactive users for chat %d: %w", chatID, err)
	}

	cooldown := time.Duration(intervalHours) * time.Hour

	var lurkers []domain.User
	for _, user := range candidates {
		if user.IsProtected() {
			continue
		}
		if !IsLurker(user, thresholdDays, now) {
			continue
		}

		lastIssued, err := s.log.LastIssuedAt(ctx, user.ID)
		if err != nil {
			// Partial directory/log records must not be fatal to selection
			s.logger.Warn("Cooldown lookup failed, skipping user",
				zap.Int64("chat_id", chatID),
				zap.Int64("user_id", user.ID),
				zap.Error(err),
			)
			continue
		}
		if lastIssued != nil && now.Sub(*lastIssued) < cooldown {
			continue
		}

		lurkers = append(lurkers, user)
	}

	s.logger.Info("Selected lurkers for chat",
		zap.Int64("chat_id", chatID),
		zap.Int("threshold_days", thresholdDays),
		zap.Time("cutoff_date", cutoff),
		zap.Int("lurker_count", len(lurkers)),
	)

	return lurkers, nil
}
