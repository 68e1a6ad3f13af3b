package events

import (
	"context"
	"time"

	"github.com/SergeyKozhin/calnotes-backend/internal/database"
	"github.com/SergeyKozhin/calnotes-backend/internal/metrics"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/SergeyKozhin/calnotes-backend/internal/notifications"
	"go.uber.org/zap"
)

type Service struct {
	db               database.PGX
	logger           *zap.SugaredLogger
	eventsRepository eventsRepository
	sharesRepository sharesRepository
	refresh          refreshPublisher
	notifier         shareNotifier
	opts             Options
	now              func() time.Time
}

type Options struct {
	// Horizon bounds recurring events without RepeatUntil.
	Horizon time.Duration
	// MaxInstances caps the rows a single CreateEvent may insert.
	MaxInstances int
}

type eventsRepository interface {
	CreateEvents(ctx context.Context, q database.Queryable, events []*model.Event) error
	GetEventByID(ctx context.Context, q database.Queryable, id string) (*model.Event, error)
	GetEvents(ctx context.Context, q database.Queryable, filter model.EventsFilter) ([]*model.Event, error)
	GetSeries(ctx context.Context, q database.Queryable, baseID, ownerID string) ([]*model.Event, error)
	UpdateEvent(ctx context.Context, q database.Queryable, id, ownerID string, upd *model.EventUpdate) (int64, error)
	UpdateSeries(ctx context.Context, q database.Queryable, baseID, ownerID string, upd *model.EventUpdate) (int64, error)
	DeleteEvent(ctx context.Context, q database.Queryable, id, ownerID string) (int64, error)
	DeleteSeries(ctx context.Context, q database.Queryable, baseID, ownerID string) (int64, error)
}

type sharesRepository interface {
	GetShares(ctx context.Context, q database.Queryable, filter model.SharesFilter) ([]*model.SharedEvent, error)
	GetSeriesRecipients(ctx context.Context, q database.Queryable, baseID string) ([]string, error)
	UpdateSnapshot(ctx context.Context, q database.Queryable, eventID string, snapshot model.EventSnapshot) error
	DeleteByEvent(ctx context.Context, q database.Queryable, eventID string) (int64, error)
	DeleteBySeries(ctx context.Context, q database.Queryable, baseID string) (int64, error)
}

type refreshPublisher interface {
	Publish(ctx context.Context, userID, tab string) error
}

type shareNotifier interface {
	NotifyShares(ctx context.Context, shares []*model.SharedEvent, kind notifications.Kind) error
}

func NewService(
	db database.PGX,
	logger *zap.SugaredLogger,
	eventsRepo eventsRepository,
	sharesRepo sharesRepository,
	refresh refreshPublisher,
	notifier shareNotifier,
	opts Options,
) *Service {
	return &Service{
		db:               db,
		logger:           logger,
		eventsRepository: eventsRepo,
		sharesRepository: sharesRepo,
		refresh:          refresh,
		notifier:         notifier,
		opts:             opts,
		now:              time.Now,
	}
}

// publish never fails the caller, a missed refresh only delays a reload.
func (s *Service) publish(ctx context.Context, userID, tab string) {
	if err := s.refresh.Publish(ctx, userID, tab); err != nil {
		s.logger.Errorw("failed to publish refresh", "user_id", userID, "tab", tab, "err", err)
		return
	}
	metrics.RefreshPublished.WithLabelValues(tab).Inc()
}

func (s *Service) publishAll(ctx context.Context, userIDs []string, tab string) {
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		s.publish(ctx, id, tab)
	}
}
