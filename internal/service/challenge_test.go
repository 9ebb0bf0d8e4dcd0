package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"antilurk/internal/config"
	"antilurk/internal/domain"
	"antilurk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testChannels() *config.Channels {
	return &config.Channels{
		Channels: []config.Channel{
			{ChatID: -500, ChatName: "main", Mode: config.ModeModerated, ModlogRef: -900},
			{ChatID: -900, ChatName: "modlog", Mode: config.ModeModlog},
		},
	}
}

func newTestChallengeEngine(notifier Notifier, puzzles []domain.Puzzle) (*ChallengeEngine, *ProvocationTracker) {
	tracker := NewProvocationTracker(testutil.NewTestLogger())
	engine := NewChallengeEngine(tracker, notifier, puzzles, testChannels(), 30, testutil.NewTestLogger())
	return engine, tracker
}

func TestChallengeEngine_StartChallenge(t *testing.T) {
	user := testutil.NewTestUser(100, nil)
	puzzles := []domain.Puzzle{testutil.NewTestPuzzle("p1", 1)}

	mockNotifier := new(testutil.MockNotifier)
	mockNotifier.On("DeliverChallenge", mock.Anything, int64(-500), puzzles[0], user, mock.AnythingOfType("int64")).
		Return(777, nil)

	engine, tracker := newTestChallengeEngine(mockNotifier, puzzles)

	id, err := engine.StartChallenge(context.Background(), -500, user)

	assert.NoError(t, err)
	p := tracker.Get(id)
	assert.Equal(t, domain.StatusPending, p.Status)
	assert.Equal(t, 777, p.MessageID)
	mockNotifier.AssertExpectations(t)
}

func TestChallengeEngine_StartChallenge_NoPuzzles(t *testing.T) {
	engine, _ := newTestChallengeEngine(new(testutil.MockNotifier), nil)

	_, err := engine.StartChallenge(context.Background(), -500, testutil.NewTestUser(100, nil))

	assert.ErrorIs(t, err, ErrNoPuzzles)
}

func TestChallengeEngine_StartChallenge_DeliveryFailure(t *testing.T) {
	user := testutil.NewTestUser(100, nil)
	puzzles := []domain.Puzzle{testutil.NewTestPuzzle("p1", 1)}

	mockNotifier := new(testutil.MockNotifier)
	mockNotifier.On("DeliverChallenge", mock.Anything, int64(-500), puzzles[0], user, mock.AnythingOfType("int64")).
		Return(0, fmt.Errorf("telegram unreachable"))

	engine, tracker := newTestChallengeEngine(mockNotifier, puzzles)

	_, err := engine.StartChallenge(context.Background(), -500, user)

	// The error propagates and no challenge is left dangling pending
	assert.Error(t, err)
	assert.Nil(t, tracker.PendingFor(-500, 100))

	failed := tracker.RecentForChat(-500, 1)
	assert.Len(t, failed, 1)
	assert.Equal(t, domain.StatusFailed, failed[0].Status)
}

func TestChallengeEngine_StartChallenge_RejectsPendingDuplicate(t *testing.T) {
	user := testutil.NewTestUser(100, nil)
	puzzles := []domain.Puzzle{testutil.NewTestPuzzle("p1", 1)}

	mockNotifier := new(testutil.MockNotifier)
	mockNotifier.On("DeliverChallenge", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(777, nil)

	engine, _ := newTestChallengeEngine(mockNotifier, puzzles)

	_, err := engine.StartChallenge(context.Background(), -500, user)
	assert.NoError(t, err)

	assert.False(t, engine.CanCreateChallenge(-500, user))
	_, err = engine.StartChallenge(context.Background(), -500, user)
	assert.ErrorIs(t, err, ErrChallengePending)
}

func TestChallengeEngine_HandleResponse(t *testing.T) {
	tests := []struct {
		name             string
		correct          bool
		expectedStatus   domain.Status
		expectEscalation bool
	}{
		{
			name:           "correct answer completes",
			correct:        true,
			expectedStatus: domain.StatusCompleted,
		},
		{
			name:             "wrong answer fails and escalates",
			correct:          false,
			expectedStatus:   domain.StatusFailed,
			expectEscalation: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := testutil.NewTestUser(100, nil)
			puzzles := []domain.Puzzle{testutil.NewTestPuzzle("p1", 1)}

			mockNotifier := new(testutil.MockNotifier)
			mockNotifier.On("DeliverChallenge", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(777, nil)
			if tt.expectEscalation {
				mockNotifier.On("DeliverEscalation", mock.Anything, int64(-900), mock.AnythingOfType("string"), mock.AnythingOfType("int64")).
					Return(nil).Once()
			}

			engine, tracker := newTestChallengeEngine(mockNotifier, puzzles)
			id, err := engine.StartChallenge(context.Background(), -500, user)
			assert.NoError(t, err)

			err = engine.HandleResponse(context.Background(), id, 100, tt.correct)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, tracker.Get(id).Status)
			mockNotifier.AssertExpectations(t)
		})
	}
}

func TestChallengeEngine_HandleResponse_UnknownID(t *testing.T) {
	engine, _ := newTestChallengeEngine(new(testutil.MockNotifier), nil)

	err := engine.HandleResponse(context.Background(), 42, 100, true)

	assert.ErrorIs(t, err, ErrProvocationNotFound)
}

func TestChallengeEngine_ProcessExpired(t *testing.T) {
	user := testutil.NewTestUser(100, nil)
	puzzles := []domain.Puzzle{testutil.NewTestPuzzle("p1", 1)}

	mockNotifier := new(testutil.MockNotifier)
	mockNotifier.On("DeliverChallenge", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(777, nil)
	mockNotifier.On("DeliverEscalation", mock.Anything, int64(-900), mock.AnythingOfType("string"), mock.AnythingOfType("int64")).
		Return(nil).Once()

	engine, tracker := newTestChallengeEngine(mockNotifier, puzzles)

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return start }

	id, err := engine.StartChallenge(context.Background(), -500, user)
	assert.NoError(t, err)

	// Advance the clock past the TTL
	tracker.now = func() time.Time { return start.Add(31 * time.Minute) }

	result := engine.ProcessExpired(context.Background())

	assert.Equal(t, 1, result.Expired)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.NotificationsSent)
	assert.Equal(t, domain.StatusExpired, tracker.Get(id).Status)
	mockNotifier.AssertExpectations(t)
}

func TestChallengeEngine_ProcessExpired_EscalationFailureDoesNotAbort(t *testing.T) {
	puzzles := []domain.Puzzle{testutil.NewTestPuzzle("p1", 1)}

	mockNotifier := new(testutil.MockNotifier)
	mockNotifier.On("DeliverChallenge", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(777, nil)
	mockNotifier.On("DeliverEscalation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("modlog unreachable"))

	engine, tracker := newTestChallengeEngine(mockNotifier, puzzles)

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return start }

	_, err := engine.StartChallenge(context.Background(), -500, testutil.NewTestUser(100, nil))
	assert.NoError(t, err)
	_, err = engine.StartChallenge(context.Background(), -500, testutil.NewTestUser(200, nil))
	assert.NoError(t, err)

	tracker.now = func() time.Time { return start.Add(31 * time.Minute) }

	result := engine.ProcessExpired(context.Background())

	// Both records are marked expired even though no notification went out
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 0, result.NotificationsSent)
}

func TestChallengeEngine_ModeratorActions(t *testing.T) {
	tests := []struct {
		name           string
		action         func(e *ChallengeEngine, id int64) error
		from           domain.Status
		expectedStatus domain.Status
		expectedError  error
	}{
		{
			name:           "confirm kick after failure",
			action:         func(e *ChallengeEngine, id int64) error { return e.ConfirmKick(id, 1) },
			from:           domain.StatusFailed,
			expectedStatus: domain.StatusManuallyKicked,
		},
		{
			name:           "dismiss after expiry",
			action:         func(e *ChallengeEngine, id int64) error { return e.Dismiss(id, 1) },
			from:           domain.StatusExpired,
			expectedStatus: domain.StatusDismissed,
		},
		{
			name:          "confirm kick on completed challenge is rejected",
			action:        func(e *ChallengeEngine, id int64) error { return e.ConfirmKick(id, 1) },
			from:          domain.StatusCompleted,
			expectedError: ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, tracker := newTestChallengeEngine(new(testutil.MockNotifier), nil)
			id, err := tracker.Create(-500, 100, testutil.NewTestPuzzle("p1", 1), 30)
			assert.NoError(t, err)
			assert.NoError(t, tracker.UpdateStatus(id, domain.StatusPending, tt.from, 0))

			err = tt.action(engine, id)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedStatus, tracker.Get(id).Status)
			}
		})
	}
}
