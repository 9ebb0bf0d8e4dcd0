package repository

import (
	"context"
	"time"

	"antilurk/internal/domain"
)

// Directory defines read-only user lookups owned by the tracking layer
type Directory interface {
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUsersActiveSince(ctx context.Context, chatID int64, since time.Time) ([]domain.User, error)
	GetUsersInactiveSince(ctx context.Context, chatID int64, since time.Time) ([]domain.User, error)
}

// ProvocationLog records issuance events and answers the windowed
// count queries the rate limiter and selector depend on
type ProvocationLog interface {
	Record(ctx context.Context, chatID, userID int64, issuedAt time.Time) error
	CountSince(ctx context.Context, chatID int64, since time.Time) (int, error)
	LastIssuedAt(ctx context.Context, userID int64) (*time.Time, error)
}
