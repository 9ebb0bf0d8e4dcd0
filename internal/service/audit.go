package service

import (
	"context"
	"fmt"

	"antilurk/internal/config"
	"antilurk/internal/domain"

	"go.uber.org/zap"
)

// ChatAuditResult summarizes one chat's audit
type ChatAuditResult struct {
	LurkersFound     int
	BacklogProcessed int
	UsersProvoked    int
	UsersBacklogged  int
}

// AuditResult aggregates a full audit cycle across all moderated chats
type AuditResult struct {
	ProcessedChats   int
	TotalLurkers     int
	TotalProvoked    int
	TotalBacklogged  int
	BacklogTotalSize int
}

// AuditEngine drives one audit cycle: it merges each chat's backlog
// with freshly selected lurkers, partitions them through the rate
// limiter, challenges the allowed users, and carries the blocked ones
// over as the chat's new backlog.
type AuditEngine struct {
	selector   *LurkerSelector
	limiter    *RateLimiter
	backlog    *BacklogManager
	challenges *ChallengeEngine
	channels   *config.Channels
	global     config.Global
	logger     *zap.Logger
}

// NewAuditEngine creates an audit engine over the given collaborators
func NewAuditEngine(
	selector *LurkerSelector,
	limiter *RateLimiter,
	backlog *BacklogManager,
	challenges *ChallengeEngine,
	channels *config.Channels,
	global config.Global,
	logger *zap.Logger,
) *AuditEngine {
	return &AuditEngine{
		selector:   selector,
		limiter:    limiter,
		backlog:    backlog,
		challenges: challenges,
		channels:   channels,
		global:     global,
		logger:     logger,
	}
}

// AuditChat audits a single moderated chat. Backlog users are presented
// ahead of newly found lurkers so rate-limited carryover gets priority.
func (a *AuditEngine) AuditChat(ctx context.Context, chatID int64) (ChatAuditResult, error) {
	backlogUsers := a.backlog.Get(chatID)

	newLurkers, err := a.selector.IdentifyLurkers(
		ctx, chatID, a.global.LurkThresholdDays, a.global.ProvocationIntervalHours,
	)
	if err != nil {
		return ChatAuditResult{}, fmt.Errorf("failed to identify lurkers for chat %d: %w", chatID, err)
	}

	// Backlog first; a lurker already carried over is not added twice
	seen := make(map[int64]bool, len(backlogUsers))
	candidates := make([]domain.User, 0, len(backlogUsers)+len(newLurkers))
	for _, u := range backlogUsers {
		seen[u.ID] = true
		candidates = append(candidates, u)
	}
	for _, u := range newLurkers {
		if !seen[u.ID] {
			candidates = append(candidates, u)
		}
	}

	allowed, blocked := a.limiter.FilterByRateLimit(ctx, chatID, candidates)

	provoked := 0
	for _, user := range allowed {
		if !a.challenges.CanCreateChallenge(chatID, user) {
			a.logger.Warn("Skipping user with pending challenge",
				zap.Int64("chat_id", chatID),
				zap.Int64("user_id", user.ID),
			)
			continue
		}

		if _, err := a.challenges.StartChallenge(ctx, chatID, user); err != nil {
			a.logger.Error("Failed to provoke user",
				zap.Int64("chat_id", chatID),
				zap.Int64("user_id", user.ID),
				zap.Error(err),
			)
			continue
		}

		if err := a.limiter.RecordProvocation(ctx, chatID, user.ID); err != nil {
			a.logger.Error("Failed to record provocation",
				zap.Int64("chat_id", chatID),
				zap.Int64("user_id", user.ID),
				zap.Error(err),
			)
		}
		provoked++
	}

	// The prior backlog was consumed above; replace it with this cycle's blocked set
	a.backlog.Clear(chatID)
	if len(blocked) > 0 {
		a.backlog.Add(chatID, blocked, "rate_limited")
	}

	return ChatAuditResult{
		LurkersFound:     len(newLurkers),
		BacklogProcessed: len(backlogUsers),
		UsersProvoked:    provoked,
		UsersBacklogged:  len(blocked),
	}, nil
}

// RunFullAudit audits every moderated chat. One chat's failure is
// logged and does not abort the cycle.
func (a *AuditEngine) RunFullAudit(ctx context.Context) AuditResult {
	var result AuditResult

	for _, chat := range a.channels.Moderated() {
		chatResult, err := a.AuditChat(ctx, chat.ChatID)
		if err != nil {
			a.logger.Error("Chat audit failed",
				zap.Int64("chat_id", chat.ChatID),
				zap.String("chat_name", chat.ChatName),
				zap.Error(err),
			)
			continue
		}

		result.ProcessedChats++
		result.TotalLurkers += chatResult.LurkersFound
		result.TotalProvoked += chatResult.UsersProvoked
		result.TotalBacklogged += chatResult.UsersBacklogged

		a.logger.Info("Chat audit completed",
			zap.Int64("chat_id", chat.ChatID),
			zap.String("chat_name", chat.ChatName),
			zap.Int("lurkers_found", chatResult.LurkersFound),
			zap.Int("backlog_processed", chatResult.BacklogProcessed),
			zap.Int("users_provoked", chatResult.UsersProvoked),
			zap.Int("users_backlogged", chatResult.UsersBacklogged),
		)
	}

	result.BacklogTotalSize = a.backlog.TotalSize()

	a.logger.Info("Full audit completed",
		zap.Int("processed_chats", result.ProcessedChats),
		zap.Int("total_lurkers", result.TotalLurkers),
		zap.Int("total_provoked", result.TotalProvoked),
		zap.Int("total_backlogged", result.TotalBacklogged),
		zap.Int("backlog_total_size", result.BacklogTotalSize),
	)

	return result
}
