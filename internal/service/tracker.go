package service

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"antilurk/internal/domain"

	"go.uber.org/zap"
)

type pendingKey struct {
	chatID int64
	userID int64
}

// ProvocationTracker is the authoritative store for issued challenges.
// Records live in a single owned arena keyed by id, with a secondary
// index of pending challenges keyed by (chat, user) that enforces the
// at-most-one-pending invariant.
type ProvocationTracker struct {
	mu           sync.Mutex
	provocations map[int64]*domain.Provocation
	correct      map[int64]int
	pending      map[pendingKey]int64
	nextID       int64
	logger       *zap.Logger

	now func() time.Time
}

// NewProvocationTracker creates an empty tracker
func NewProvocationTracker(logger *zap.Logger) *ProvocationTracker {
	return &ProvocationTracker{
		provocations: make(map[int64]*domain.Provocation),
		correct:      make(map[int64]int),
		pending:      make(map[pendingKey]int64),
		nextID:       1,
		logger:       logger,
		now:          time.Now,
	}
}

// Create records a new pending provocation and returns its id. Ids are
// monotonic within the process. Returns ErrChallengePending if the user
// already has a pending challenge in the chat.
func (t *ProvocationTracker) Create(chatID, userID int64, puzzle domain.Puzzle, ttlMinutes int) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := pendingKey{chatID: chatID, userID: userID}
	if existing, ok := t.pending[key]; ok {
		return 0, fmt.Errorf("provocation %d: %w", existing, ErrChallengePending)
	}

	id := t.nextID
	t.nextID++

	now := t.now()
	t.provocations[id] = &domain.Provocation{
		ID:        id,
		ChatID:    chatID,
		UserID:    userID,
		PuzzleID:  puzzle.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(ttlMinutes) * time.Minute),
		Status:    domain.StatusPending,
	}
	t.correct[id] = puzzle.CorrectIndex()
	t.pending[key] = id

	t.logger.Info("Provocation created",
		zap.Int64("provocation_id", id),
		zap.Int64("chat_id", chatID),
		zap.Int64("user_id", userID),
		zap.String("puzzle_id", puzzle.ID),
		zap.Time("expires_at", t.provocations[id].ExpiresAt),
	)

	return id, nil
}

// Get returns a copy of the provocation, or nil if unknown
func (t *ProvocationTracker) Get(id int64) *domain.Provocation {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.provocations[id]
	if !ok {
		return nil
	}
	copied := *p
	return &copied
}

// PendingFor returns the pending provocation for a (chat, user) pair, if any
func (t *ProvocationTracker) PendingFor(chatID, userID int64) *domain.Provocation {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, ok := t.pending[pendingKey{chatID: chatID, userID: userID}]
	if !ok {
		return nil
	}
	copied := *t.provocations[id]
	return &copied
}

// SetMessageID stamps the delivered challenge message onto the record
func (t *ProvocationTracker) SetMessageID(id int64, messageID int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.provocations[id]
	if !ok {
		return ErrProvocationNotFound
	}
	p.MessageID = messageID
	return nil
}

// IsExpired reports whether the provocation's TTL has elapsed.
// An unknown id is treated as expired.
func (t *ProvocationTracker) IsExpired(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isExpiredLocked(id)
}

func (t *ProvocationTracker) isExpiredLocked(id int64) bool {
	p, ok := t.provocations[id]
	if !ok {
		return true
	}
	return p.IsExpired(t.now())
}

// UpdateStatus applies a status transition atomically. The caller states
// the status it observed; the update is rejected if the record has moved
// on since (compare-and-set), or if the transition is not in the table.
// A non-zero responseUserID stamps the response time.
func (t *ProvocationTracker) UpdateStatus(id int64, from, to domain.Status, responseUserID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.provocations[id]
	if !ok {
		return ErrProvocationNotFound
	}
	if p.Status != from {
		return fmt.Errorf("provocation %d is %s, not %s: %w", id, p.Status, from, ErrInvalidTransition)
	}
	if !domain.CanTransition(from, to) {
		return fmt.Errorf("provocation %d: %s -> %s: %w", id, from, to, ErrInvalidTransition)
	}

	p.Status = to
	if responseUserID != 0 {
		respondedAt := t.now()
		p.RespondedAt = &respondedAt
	}
	if from == domain.StatusPending {
		delete(t.pending, pendingKey{chatID: p.ChatID, userID: p.UserID})
	}

	t.logger.Info("Provocation status updated",
		zap.Int64("provocation_id", id),
		zap.String("status", string(to)),
		zap.Int64("response_user_id", responseUserID),
	)

	return nil
}

// ValidateCallback checks that a button response may be accepted: the
// provocation exists, the responder is the challenged user, the record
// is still pending and not expired. Unauthorized attempts are logged as
// potential abuse signals.
func (t *ProvocationTracker) ValidateCallback(id, userID int64, choiceIndex int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.provocations[id]
	if !ok {
		return false
	}

	if p.UserID != userID {
		t.logger.Warn("Unauthorized callback attempt",
			zap.Int64("provocation_id", id),
			zap.Int64("expected_user", p.UserID),
			zap.Int64("actual_user", userID),
		)
		return false
	}

	if p.Status != domain.StatusPending {
		t.logger.Warn("Callback for non-pending provocation",
			zap.Int64("provocation_id", id),
			zap.String("status", string(p.Status)),
		)
		return false
	}

	if t.isExpiredLocked(id) {
		t.logger.Warn("Callback for expired provocation",
			zap.Int64("provocation_id", id),
		)
		return false
	}

	return true
}

// IsCorrectChoice compares the chosen index against the puzzle's correct index
func (t *ProvocationTracker) IsCorrectChoice(id int64, choiceIndex int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	correct, ok := t.correct[id]
	if !ok {
		return false
	}
	return choiceIndex == correct
}

// GetExpired returns copies of all pending provocations whose TTL has elapsed
func (t *ProvocationTracker) GetExpired() []domain.Provocation {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	var expired []domain.Provocation
	for _, p := range t.provocations {
		if p.Status == domain.StatusPending && p.IsExpired(now) {
			expired = append(expired, *p)
		}
	}

	sort.Slice(expired, func(i, j int) bool { return expired[i].ID < expired[j].ID })
	return expired
}

// RecentForChat returns up to limit provocations for a chat, newest first
func (t *ProvocationTracker) RecentForChat(chatID int64, limit int) []domain.Provocation {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []domain.Provocation
	for _, p := range t.provocations {
		if p.ChatID == chatID {
			out = append(out, *p)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// HistoryForUser returns all provocations issued to a user, oldest first
func (t *ProvocationTracker) HistoryForUser(userID int64) []domain.Provocation {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []domain.Provocation
	for _, p := range t.provocations {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
