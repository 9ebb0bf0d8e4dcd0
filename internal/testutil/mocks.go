package testutil

import (
	"context"
	"time"

	"antilurk/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockDirectory is a mock for repository.Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockDirectory) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockDirectory) GetUsersActiveSince(ctx context.Context, chatID int64, since time.Time) ([]domain.User, error) {
	args := m.Called(ctx, chatID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockDirectory) GetUsersInactiveSince(ctx context.Context, chatID int64, since time.Time) ([]domain.User, error) {
	args := m.Called(ctx, chatID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockProvocationLog is a mock for repository.ProvocationLog
type MockProvocationLog struct {
	mock.Mock
}

func (m *MockProvocationLog) Record(ctx context.Context, chatID, userID int64, issuedAt time.Time) error {
	args := m.Called(ctx, chatID, userID, issuedAt)
	return args.Error(0)
}

func (m *MockProvocationLog) CountSince(ctx context.Context, chatID int64, since time.Time) (int, error) {
	args := m.Called(ctx, chatID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockProvocationLog) LastIssuedAt(ctx context.Context, userID int64) (*time.Time, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

// MockNotifier is a mock for service.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) DeliverChallenge(ctx context.Context, chatID int64, puzzle domain.Puzzle, user domain.User, provocationID int64) (int, error) {
	args := m.Called(ctx, chatID, puzzle, user, provocationID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotifier) DeliverEscalation(ctx context.Context, modlogChatID int64, text string, provocationID int64) error {
	args := m.Called(ctx, modlogChatID, text, provocationID)
	return args.Error(0)
}
