package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"antilurk/internal/config"
	"antilurk/internal/domain"

	"go.uber.org/zap"
)

// Notifier delivers challenge and escalation messages. The core does
// not know the wire format; delivery either returns an identifier or
// reports failure.
type Notifier interface {
	DeliverChallenge(ctx context.Context, chatID int64, puzzle domain.Puzzle, user domain.User, provocationID int64) (int, error)
	DeliverEscalation(ctx context.Context, modlogChatID int64, text string, provocationID int64) error
}

// ExpiredResult summarizes one expiry sweep
type ExpiredResult struct {
	Expired           int
	Processed         int
	NotificationsSent int
}

// ChallengeEngine orchestrates the challenge lifecycle: issuing
// puzzles, handling responses, sweeping expired challenges, and
// escalating failures to the linked modlog channel.
type ChallengeEngine struct {
	tracker    *ProvocationTracker
	notifier   Notifier
	puzzles    []domain.Puzzle
	channels   *config.Channels
	ttlMinutes int
	logger     *zap.Logger

	rng *rand.Rand
}

// NewChallengeEngine creates a challenge engine over the given puzzle set
func NewChallengeEngine(
	tracker *ProvocationTracker,
	notifier Notifier,
	puzzles []domain.Puzzle,
	channels *config.Channels,
	ttlMinutes int,
	logger *zap.Logger,
) *ChallengeEngine {
	return &ChallengeEngine{
		tracker:    tracker,
		notifier:   notifier,
		puzzles:    puzzles,
		channels:   channels,
		ttlMinutes: ttlMinutes,
		logger:     logger,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CanCreateChallenge reports whether the user has no pending challenge
// in the chat
func (e *ChallengeEngine) CanCreateChallenge(chatID int64, user domain.User) bool {
	return e.tracker.PendingFor(chatID, user.ID) == nil
}

// StartChallenge issues a new challenge to the user: picks a random
// puzzle, creates a pending provocation, and delivers the message. A
// delivery failure marks the provocation failed and is returned to the
// caller; no challenge is left dangling pending.
func (e *ChallengeEngine) StartChallenge(ctx context.Context, chatID int64, user domain.User) (int64, error) {
	if len(e.puzzles) == 0 {
		return 0, ErrNoPuzzles
	}

	puzzle := e.puzzles[e.rng.Intn(len(e.puzzles))]

	id, err := e.tracker.Create(chatID, user.ID, puzzle, e.ttlMinutes)
	if err != nil {
		return 0, err
	}

	messageID, err := e.notifier.DeliverChallenge(ctx, chatID, puzzle, user, id)
	if err != nil {
		e.logger.Error("Failed to deliver challenge",
			zap.Int64("provocation_id", id),
			zap.Int64("chat_id", chatID),
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
		if updErr := e.tracker.UpdateStatus(id, domain.StatusPending, domain.StatusFailed, 0); updErr != nil {
			e.logger.Error("Failed to mark undelivered challenge failed",
				zap.Int64("provocation_id", id),
				zap.Error(updErr),
			)
		}
		return 0, fmt.Errorf("failed to deliver challenge: %w", err)
	}

	if err := e.tracker.SetMessageID(id, messageID); err != nil {
		e.logger.Warn("Failed to stamp challenge message id",
			zap.Int64("provocation_id", id),
			zap.Error(err),
		)
	}

	e.logger.Info("Challenge started",
		zap.Int64("provocation_id", id),
		zap.Int64("chat_id", chatID),
		zap.Int64("user_id", user.ID),
		zap.String("puzzle_id", puzzle.ID),
		zap.Int("message_id", messageID),
	)

	return id, nil
}

// HandleResponse applies a validated user response: a correct answer
// completes the challenge, a wrong one fails it and escalates to the
// modlog channel
func (e *ChallengeEngine) HandleResponse(ctx context.Context, provocationID, userID int64, correct bool) error {
	if correct {
		if err := e.tracker.UpdateStatus(provocationID, domain.StatusPending, domain.StatusCompleted, userID); err != nil {
			return err
		}
		e.logger.Info("Challenge completed",
			zap.Int64("provocation_id", provocationID),
			zap.Int64("user_id", userID),
		)
		return nil
	}

	if err := e.tracker.UpdateStatus(provocationID, domain.StatusPending, domain.StatusFailed, userID); err != nil {
		return err
	}
	e.escalate(ctx, provocationID, "Failed to answer challenge correctly")
	e.logger.Info("Challenge failed",
		zap.Int64("provocation_id", provocationID),
		zap.Int64("user_id", userID),
	)
	return nil
}

// ProcessExpired sweeps pending challenges past their TTL, marks them
// expired, and escalates each one. A timeout is treated like a wrong
// answer for moderation purposes.
func (e *ChallengeEngine) ProcessExpired(ctx context.Context) ExpiredResult {
	expired := e.tracker.GetExpired()

	result := ExpiredResult{Expired: len(expired)}
	for _, p := range expired {
		if err := e.tracker.UpdateStatus(p.ID, domain.StatusPending, domain.StatusExpired, 0); err != nil {
			// A response may have raced the sweep; skip the record
			e.logger.Warn("Skipping expired challenge",
				zap.Int64("provocation_id", p.ID),
				zap.Error(err),
			)
			continue
		}
		result.Processed++

		if e.escalate(ctx, p.ID, "Challenge expired without response") {
			result.NotificationsSent++
		}
	}

	e.logger.Info("Expired challenges processed",
		zap.Int("expired_challenges", result.Expired),
		zap.Int("processed_count", result.Processed),
		zap.Int("notifications_sent", result.NotificationsSent),
	)

	return result
}

// ConfirmKick records a moderator's manual kick for a failed or expired challenge
func (e *ChallengeEngine) ConfirmKick(provocationID, adminID int64) error {
	return e.moderatorAction(provocationID, adminID, domain.StatusManuallyKicked)
}

// Dismiss records a moderator dismissing a failed or expired challenge
func (e *ChallengeEngine) Dismiss(provocationID, adminID int64) error {
	return e.moderatorAction(provocationID, adminID, domain.StatusDismissed)
}

func (e *ChallengeEngine) moderatorAction(provocationID, adminID int64, to domain.Status) error {
	p := e.tracker.Get(provocationID)
	if p == nil {
		return ErrProvocationNotFound
	}
	if err := e.tracker.UpdateStatus(provocationID, p.Status, to, 0); err != nil {
		return err
	}
	e.logger.Info("Moderator action recorded",
		zap.Int64("provocation_id", provocationID),
		zap.Int64("admin_user_id", adminID),
		zap.String("status", string(to)),
	)
	return nil
}

// escalate composes and delivers a moderator notice to the chat's
// linked modlog. Escalation failures are logged but never propagate;
// the sweep and response paths must keep going.
func (e *ChallengeEngine) escalate(ctx context.Context, provocationID int64, reason string) bool {
	p := e.tracker.Get(provocationID)
	if p == nil {
		e.logger.Error("Provocation not found for escalation",
			zap.Int64("provocation_id", provocationID),
		)
		return false
	}

	modlog, ok := e.channels.LinkedModlog(p.ChatID)
	if !ok {
		e.logger.Warn("No linked modlog found for chat",
			zap.Int64("chat_id", p.ChatID),
			zap.Int64("provocation_id", provocationID),
		)
		return false
	}

	text := fmt.Sprintf(
		"⚠️ *Challenge Failed - Manual Action Required*\n\n"+
			"*User:* %d\n"+
			"*Chat:* %d\n"+
			"*Reason:* %s\n"+
			"*Date:* %s UTC\n\n"+
			"*Action Required:* Please kick this user using Telegram admin tools.\n"+
			"Click 'Confirm Kick' after manually removing the user.",
		p.UserID, p.ChatID, reason, p.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	)

	if err := e.notifier.DeliverEscalation(ctx, modlog.ChatID, text, provocationID); err != nil {
		e.logger.Error("Failed to send kick notification",
			zap.Int64("provocation_id", provocationID),
			zap.Int64("modlog_chat_id", modlog.ChatID),
			zap.Error(err),
		)
		return false
	}

	e.logger.Info("Kick notification sent",
		zap.Int64("provocation_id", provocationID),
		zap.Int64("modlog_chat_id", modlog.ChatID),
		zap.Int64("user_id", p.UserID),
	)
	return true
}
