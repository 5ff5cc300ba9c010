package session

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Get(ctx context.Context, userID int64) (*Session, error) {
	args := m.Called(ctx, userID)
	sess, _ := args.Get(0).(*Session)
	return sess, args.Error(1)
}

func (m *mockStorage) Set(ctx context.Context, userID int64, sess *Session) error {
	args := m.Called(ctx, userID, sess)
	return args.Error(0)
}

func (m *mockStorage) Clear(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockStorage) GetAll(ctx context.Context) ([]*Session, error) {
	args := m.Called(ctx)
	sessions, _ := args.Get(0).([]*Session)
	return sessions, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManager_Begin(t *testing.T) {
	ctx := context.Background()
	userID := int64(42)

	testCases := []struct {
		name       string
		setupMocks func(ms *mockStorage)
	}{
		{
			name: "no previous session",
			setupMocks: func(ms *mockStorage) {
				ms.On("Get", mock.Anything, userID).
					Return((*Session)(nil), ErrSessionNotFound).Once()
				ms.On("Set", mock.Anything, userID, mock.MatchedBy(func(s *Session) bool {
					return s.Step == StepAwaitingName && s.UserID == userID
				})).Return(nil).Once()
			},
		},
		{
			name: "replaces session in progress, discarding partial data",
			setupMocks: func(ms *mockStorage) {
				ms.On("Get", mock.Anything, userID).
					Return(&Session{UserID: userID, Step: StepAwaitingRadius, Name: "Home"}, nil).Once()
				ms.On("Set", mock.Anything, userID, mock.MatchedBy(func(s *Session) bool {
					return s.Step == StepAwaitingName && s.Name == ""
				})).Return(nil).Once()
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ms := &mockStorage{}
			tc.setupMocks(ms)

			mgr := NewManager(ms, testLogger(), nil)
			sess, err := mgr.Begin(ctx, userID)

			require.NoError(t, err)
			require.Equal(t, StepAwaitingName, sess.Step)
			ms.AssertExpectations(t)
		})
	}
}

func TestManager_Save(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	testCases := []struct {
		name        string
		setupMocks  func(ms *mockStorage)
		save        *Session
		expectedErr error
	}{
		{
			name: "allowed forward transition",
			setupMocks: func(ms *mockStorage) {
				ms.On("Get", mock.Anything, userID).
					Return(&Session{UserID: userID, Step: StepAwaitingName}, nil).Once()
				ms.On("Set", mock.Anything, userID, mock.MatchedBy(func(s *Session) bool {
					return s.Step == StepAwaitingLocation && s.Name == "Home"
				})).Return(nil).Once()
			},
			save:        &Session{UserID: userID, Step: StepAwaitingLocation, Name: "Home"},
			expectedErr: nil,
		},
		{
			name: "skipping a step is rejected",
			setupMocks: func(ms *mockStorage) {
				ms.On("Get", mock.Anything, userID).
					Return(&Session{UserID: userID, Step: StepAwaitingName}, nil).Once()
			},
			save:        &Session{UserID: userID, Step: StepAwaitingRadius},
			expectedErr: ErrInvalidTransition,
		},
		{
			name: "same-step update without transition",
			setupMocks: func(ms *mockStorage) {
				ms.On("Get", mock.Anything, userID).
					Return(&Session{UserID: userID, Step: StepAwaitingRadius, Name: "Home"}, nil).Once()
				ms.On("Set", mock.Anything, userID, mock.Anything).Return(nil).Once()
			},
			save:        &Session{UserID: userID, Step: StepAwaitingRadius, Name: "Home"},
			expectedErr: nil,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ms := &mockStorage{}
			tc.setupMocks(ms)

			mgr := NewManager(ms, testLogger(), nil)
			err := mgr.Save(ctx, tc.save)

			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
			} else {
				require.NoError(t, err)
			}

			ms.AssertExpectations(t)
		})
	}
}

func TestManager_Clear(t *testing.T) {
	ctx := context.Background()
	userID := int64(9)

	ms := &mockStorage{}
	ms.On("Clear", mock.Anything, userID).Return(nil).Once()

	mgr := NewManager(ms, testLogger(), nil)
	require.NoError(t, mgr.Clear(ctx, userID))
	ms.AssertExpectations(t)
}
