package presence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) Merge(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

func (m *mockStore) Get(ctx context.Context, userID string) (*domain.PresenceRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PresenceRecord), args.Error(1)
}

func (m *mockStore) Scan(ctx context.Context) ([]domain.PresenceRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PresenceRecord), args.Error(1)
}

func frozen(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestHeartbeatMergesExpectedFields(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	st := new(mockStore)
	svc := &service{store: st, logger: zap.NewNop(), now: frozen(now)}

	st.On("Merge", mock.Anything, "admin-1", mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["status"] == domain.PresenceOnline &&
			u["last_seen"] == now &&
			u["browser"] == "Firefox" &&
			u["email"] == "mike@b8shield.com"
	})).Return(nil)

	svc.Heartbeat(context.Background(), "admin-1", "mike@b8shield.com", domain.HeartbeatRequest{
		Status:       domain.PresenceOnline,
		LastActivity: now.Add(-10 * time.Second),
		Browser:      "Firefox",
	})

	st.AssertExpectations(t)
}

func TestHeartbeatDemotesIdleClientToAway(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	st := new(mockStore)
	svc := &service{store: st, logger: zap.NewNop(), now: frozen(now)}

	st.On("Merge", mock.Anything, "admin-1", mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["status"] == domain.PresenceAway
	})).Return(nil)

	svc.Heartbeat(context.Background(), "admin-1", "", domain.HeartbeatRequest{
		Status:       domain.PresenceOnline,
		LastActivity: now.Add(-6 * time.Minute),
	})

	st.AssertExpectations(t)
}

func TestHeartbeatSwallowsWriteFailure(t *testing.T) {
	st := new(mockStore)
	svc := NewService(st, zap.NewNop())
	st.On("Merge", mock.Anything, "admin-1", mock.Anything).Return(errors.New("throttled"))

	// Must not panic or surface the error.
	svc.Heartbeat(context.Background(), "admin-1", "", domain.HeartbeatRequest{Status: domain.PresenceOnline})
	st.AssertExpectations(t)
}

func TestListReclassifiesStaleRecordsAsOffline(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	st := new(mockStore)
	svc := &service{store: st, logger: zap.NewNop(), now: frozen(now)}

	st.On("Scan", mock.Anything).Return([]domain.PresenceRecord{
		{UserID: "fresh", Status: domain.PresenceOnline, LastSeen: now.Add(-30 * time.Second)},
		{UserID: "idle", Status: domain.PresenceAway, LastSeen: now.Add(-2 * time.Minute)},
		{UserID: "stale", Status: domain.PresenceOnline, LastSeen: now.Add(-6 * time.Minute)},
	}, nil)

	views, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 3)

	byID := map[string]domain.PresenceView{}
	for _, v := range views {
		byID[v.UserID] = v
	}

	assert.True(t, byID["fresh"].IsOnline)
	assert.True(t, byID["idle"].IsAway)

	// Stored "online" older than the activity timeout reads back as offline.
	assert.True(t, byID["stale"].IsOffline)
	assert.False(t, byID["stale"].IsOnline)
	assert.Equal(t, domain.PresenceOffline, byID["stale"].Status)
}

func TestGetClassifiesSingleRecord(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	st := new(mockStore)
	svc := &service{store: st, logger: zap.NewNop(), now: frozen(now)}

	st.On("Get", mock.Anything, "admin-1").Return(&domain.PresenceRecord{
		UserID: "admin-1", Status: domain.PresenceOnline, LastSeen: now.Add(-time.Minute),
	}, nil)

	v, err := svc.Get(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.True(t, v.IsOnline)
}
