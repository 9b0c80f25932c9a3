package presence

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
)

// Service tracks which admins are currently active. Writes are best-effort;
// presence must never take an admin session down with it.
type Service interface {
	Heartbeat(ctx context.Context, userID, email string, req domain.HeartbeatRequest)
	MarkOffline(ctx context.Context, userID string)
	List(ctx context.Context) ([]domain.PresenceView, error)
	Get(ctx context.Context, userID string) (*domain.PresenceView, error)
}

type store interface {
	Merge(ctx context.Context, userID string, updates map[string]interface{}) error
	Get(ctx context.Context, userID string) (*domain.PresenceRecord, error)
	Scan(ctx context.Context) ([]domain.PresenceRecord, error)
}

type service struct {
	store  store
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store store, logger *zap.Logger) Service {
	return &service{store: store, logger: logger, now: time.Now}
}

// Heartbeat merge-writes the admin's record. The stored status is what the
// client reports; an idle client past ActivityTimeout writes away itself.
// Failures are logged and swallowed.
func (s *service) Heartbeat(ctx context.Context, userID, email string, req domain.HeartbeatRequest) {
	now := s.now().UTC()

	status := req.Status
	lastActivity := req.LastActivity
	if lastActivity.IsZero() {
		lastActivity = now
	}
	if status == domain.PresenceOnline && now.Sub(lastActivity) > domain.ActivityTimeout {
		status = domain.PresenceAway
	}

	updates := map[string]interface{}{
		"status":        status,
		"last_seen":     now,
		"last_activity": lastActivity,
	}
	if req.Browser != "" {
		updates["browser"] = req.Browser
	}
	if email != "" {
		updates["email"] = email
	}

	if err := s.store.Merge(ctx, userID, updates); err != nil {
		s.logger.Warn("presence heartbeat write failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// MarkOffline records an explicit sign-out or tab close. Best-effort, same as
// the heartbeat.
func (s *service) MarkOffline(ctx context.Context, userID string) {
	updates := map[string]interface{}{
		"status":    domain.PresenceOffline,
		"last_seen": s.now().UTC(),
	}
	if err := s.store.Merge(ctx, userID, updates); err != nil {
		s.logger.Warn("presence offline write failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// List returns every record with the reader-side classification applied.
func (s *service) List(ctx context.Context) ([]domain.PresenceView, error) {
	records, err := s.store.Scan(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]domain.PresenceView, 0, len(records))
	now := s.now().UTC()
	for _, rec := range records {
		views = append(views, classify(rec, now))
	}
	return views, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.PresenceView, error) {
	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	v := classify(*rec, s.now().UTC())
	return &v, nil
}

// classify derives the effective state from record age. A record whose
// last_seen is older than ActivityTimeout is offline no matter what status the
// writer left behind.
func classify(rec domain.PresenceRecord, now time.Time) domain.PresenceView {
	v := domain.PresenceView{PresenceRecord: rec}
	if now.Sub(rec.LastSeen) > domain.ActivityTimeout {
		v.IsOffline = true
		v.Status = domain.PresenceOffline
		return v
	}
	switch rec.Status {
	case domain.PresenceOnline:
		v.IsOnline = true
	case domain.PresenceAway:
		v.IsAway = true
	default:
		v.IsOffline = true
	}
	return v
}
