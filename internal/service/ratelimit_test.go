package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"antilurk/internal/domain"
	"antilurk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRateLimiter_CanProvoke(t *testing.T) {
	// Both window counts must be below their limits (AND, not OR)
	limits := []int{1, 2, 5}
	counts := []int{0, 1, 2, 5, 7}

	for _, hourLimit := range limits {
		for _, dayLimit := range limits {
			for _, hourCount := range counts {
				for _, dayCount := range counts {
					name := fmt.Sprintf("h%d/%d d%d/%d", hourCount, hourLimit, dayCount, dayLimit)
					t.Run(name, func(t *testing.T) {
						mockLog := new(testutil.MockProvocationLog)
						mockLog.On("CountSince", mock.Anything, int64(-100), mock.Anything).
							Return(hourCount, nil).Once()
						mockLog.On("CountSince", mock.Anything, int64(-100), mock.Anything).
							Return(dayCount, nil).Once()

						limiter := NewRateLimiter(mockLog, hourLimit, dayLimit, testutil.NewTestLogger())

						expected := hourCount < hourLimit && dayCount < dayLimit
						assert.Equal(t, expected, limiter.CanProvoke(context.Background(), -100))
					})
				}
			}
		}
	}
}

func TestRateLimiter_CanProvoke_FailsClosed(t *testing.T) {
	mockLog := new(testutil.MockProvocationLog)
	mockLog.On("CountSince", mock.Anything, int64(-100), mock.Anything).
		Return(0, fmt.Errorf("connection refused"))

	limiter := NewRateLimiter(mockLog, 10, 100, testutil.NewTestLogger())

	assert.False(t, limiter.CanProvoke(context.Background(), -100))
}

func TestRateLimiter_FilterByRateLimit(t *testing.T) {
	users := []domain.User{
		testutil.NewTestUser(1, nil),
		testutil.NewTestUser(2, nil),
		testutil.NewTestUser(3, nil),
		testutil.NewTestUser(4, nil),
		testutil.NewTestUser(5, nil),
	}

	tests := []struct {
		name            string
		hourlyLimit     int
		dailyLimit      int
		hourlyCount     int
		dailyCount      int
		expectedAllowed int
	}{
		{
			name:            "hourly window is the bottleneck",
			hourlyLimit:     2,
			dailyLimit:      15,
			hourlyCount:     0,
			dailyCount:      0,
			expectedAllowed: 2,
		},
		{
			name:            "daily window is the bottleneck",
			hourlyLimit:     10,
			dailyLimit:      4,
			hourlyCount:     0,
			dailyCount:      1,
			expectedAllowed: 3,
		},
		{
			name:            "no slots left",
			hourlyLimit:     2,
			dailyLimit:      15,
			hourlyCount:     2,
			dailyCount:      2,
			expectedAllowed: 0,
		},
		{
			name:            "over limit floors at zero",
			hourlyLimit:     2,
			dailyLimit:      15,
			hourlyCount:     5,
			dailyCount:      20,
			expectedAllowed: 0,
		},
		{
			name:            "all allowed",
			hourlyLimit:     10,
			dailyLimit:      100,
			hourlyCount:     0,
			dailyCount:      0,
			expectedAllowed: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockLog := new(testutil.MockProvocationLog)
			mockLog.On("CountSince", mock.Anything, int64(-100), mock.Anything).
				Return(tt.hourlyCount, nil).Once()
			mockLog.On("CountSince", mock.Anything, int64(-100), mock.Anything).
				Return(tt.dailyCount, nil).Once()

			limiter := NewRateLimiter(mockLog, tt.hourlyLimit, tt.dailyLimit, testutil.NewTestLogger())

			allowed, blocked := limiter.FilterByRateLimit(context.Background(), -100, users)

			// Partition completeness: allowed ++ blocked equals the input in order
			assert.Len(t, allowed, tt.expectedAllowed)
			assert.Equal(t, len(users), len(allowed)+len(blocked))
			assert.Equal(t, users, append(append([]domain.User{}, allowed...), blocked...))
		})
	}
}

func TestRateLimiter_FilterByRateLimit_CountErrorBlocksAll(t *testing.T) {
	users := []domain.User{
		testutil.NewTestUser(1, nil),
		testutil.NewTestUser(2, nil),
	}

	mockLog := new(testutil.MockProvocationLog)
	mockLog.On("CountSince", mock.Anything, int64(-100), mock.Anything).
		Return(0, fmt.Errorf("connection refused"))

	limiter := NewRateLimiter(mockLog, 10, 100, testutil.NewTestLogger())

	allowed, blocked := limiter.FilterByRateLimit(context.Background(), -100, users)

	assert.Empty(t, allowed)
	assert.Equal(t, users, blocked)
}

func TestRateLimiter_RecordProvocation(t *testing.T) {
	mockLog := new(testutil.MockProvocationLog)
	mockLog.On("Record", mock.Anything, int64(-100), int64(42), mock.AnythingOfType("time.Time")).
		Return(nil)

	limiter := NewRateLimiter(mockLog, 2, 15, testutil.NewTestLogger())

	err := limiter.RecordProvocation(context.Background(), -100, 42)

	assert.NoError(t, err)
	mockLog.AssertExpectations(t)
}

func TestRateLimiter_WindowCutoffs(t *testing.T) {
	// The hourly query must use now-1h and the daily query now-24h
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mockLog := new(testutil.MockProvocationLog)
	mockLog.On("CountSince", mock.Anything, int64(-100), now.Add(-time.Hour)).
		Return(0, nil).Once()
	mockLog.On("CountSince", mock.Anything, int64(-100), now.Add(-24*time.Hour)).
		Return(0, nil).Once()

	limiter := NewRateLimiter(mockLog, 2, 15, testutil.NewTestLogger())
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.CanProvoke(context.Background(), -100))
	mockLog.AssertExpectations(t)
}
