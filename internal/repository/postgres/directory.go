package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"antilurk/internal/domain"

	"github.com/lib/pq"
)

// DirectoryRepo implements repository.Directory
type DirectoryRepo struct {
	db *sql.DB
}

// NewDirectoryRepo creates a new directory repository
func NewDirectoryRepo(db *sql.DB) *DirectoryRepo {
	return &DirectoryRepo{db: db}
}

const userColumns = `user_id, username, first_name, last_name, first_seen, last_seen, last_interaction_at, is_admin, is_bot, roles`

// GetUser returns a user by id, or nil if not found
func (r *DirectoryRepo) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByUsername returns a user by username, or nil if not found
func (r *DirectoryRepo) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUsersActiveSince returns chat members who interacted after the cutoff
func (r *DirectoryRepo) GetUsersActiveSince(ctx context.Context, chatID int64, since time.Time) ([]domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		JOIN chat_members m ON m.user_id = u.user_id
		WHERE m.chat_id = $1
		  AND u.last_interaction_at IS NOT NULL
		  AND u.last_interaction_at >= $2
		ORDER BY u.last_interaction_at DESC
	`
	return r.queryUsers(ctx, query, chatID, since)
}

// GetUsersInactiveSince returns chat members with no interaction after the cutoff
func (r *DirectoryRepo) GetUsersInactiveSince(ctx context.Context, chatID int64, since time.Time) ([]domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		JOIN chat_members m ON m.user_id = u.user_id
		WHERE m.chat_id = $1
		  AND (u.last_interaction_at IS NULL OR u.last_interaction_at < $2)
		ORDER BY u.last_interaction_at ASC NULLS FIRST
	`
	return r.queryUsers(ctx, query, chatID, since)
}

func (r *DirectoryRepo) queryUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u         domain.User
		username  sql.NullString
		firstName sql.NullString
		lastName  sql.NullString
		lastInter sql.NullTime
	)
	err := row.Scan(
		&u.ID, &username, &firstName, &lastName,
		&u.FirstSeen, &u.LastSeen, &lastInter,
		&u.IsAdmin, &u.IsBot, pq.Array(&u.Roles),
	)
	if err != nil {
		return nil, err
	}
	u.Username = username.String
	u.FirstName = firstName.String
	u.LastName = lastName.String
	if lastInter.Valid {
		t := lastInter.Time
		u.LastInteractionAt = &t
	}
	return &u, nil
}
