package postgres

import (
	"context"
	"database/sql"
	"time"
)

// ProvocationLogRepo implements repository.ProvocationLog on Postgres.
// Counts are computed over rolling windows from the event rows, so an
// event issued at 23:59 keeps counting toward the daily total until a
// full 24 hours have elapsed.
type ProvocationLogRepo struct {
	db *sql.DB
}

// NewProvocationLogRepo creates a new provocation event log
func NewProvocationLogRepo(db *sql.DB) *ProvocationLogRepo {
	return &ProvocationLogRepo{db: db}
}

// Record inserts an issuance event
func (r *ProvocationLogRepo) Record(ctx context.Context, chatID, userID int64, issuedAt time.Time) error {
	query := `
		INSERT INTO provocation_events (chat_id, user_id, issued_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, chatID, userID, issuedAt)
	return err
}

// CountSince returns the number of issuance events for a chat after the cutoff
func (r *ProvocationLogRepo) CountSince(ctx context.Context, chatID int64, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM provocation_events WHERE chat_id = $1 AND issued_at >= $2`
	err := r.db.QueryRowContext(ctx, query, chatID, since).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// LastIssuedAt returns the most recent issuance time for a user, or nil
func (r *ProvocationLogRepo) LastIssuedAt(ctx context.Context, userID int64) (*time.Time, error) {
	var last sql.NullTime
	query := `SELECT MAX(issued_at) FROM provocation_events WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&last)
	if err != nil {
		return nil, err
	}
	if !last.Valid {
		return nil, nil
	}
	t := last.Time
	return &t, nil
}
