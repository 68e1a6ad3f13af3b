package sharing

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/calnotes-backend/internal/database"
	"github.com/SergeyKozhin/calnotes-backend/internal/identity"
	"github.com/SergeyKozhin/calnotes-backend/internal/metrics"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/SergeyKozhin/calnotes-backend/internal/notifications"
	"github.com/SergeyKozhin/calnotes-backend/internal/refresh"
	"go.uber.org/zap"
)

type Service struct {
	db                 database.PGX
	logger             *zap.SugaredLogger
	eventsRepository   eventsRepository
	sharesRepository   sharesRepository
	profilesRepository profilesRepository
	refresh            refreshPublisher
	notifier           shareNotifier
}

type eventsRepository interface {
	GetEventByID(ctx context.Context, q database.Queryable, id string) (*model.Event, error)
}

type sharesRepository interface {
	CreateShare(ctx context.Context, q database.Queryable, share *model.SharedEventCreate) (int64, error)
	GetShare(ctx context.Context, q database.Queryable, id int64) (*model.SharedEvent, error)
	GetShares(ctx context.Context, q database.Queryable, filter model.SharesFilter) ([]*model.SharedEvent, error)
	UpdateStatus(ctx context.Context, q database.Queryable, id int64, from, to model.ShareStatus) (bool, error)
	DeleteShare(ctx context.Context, q database.Queryable, id int64) error
}

type profilesRepository interface {
	GetProfileByEmail(ctx context.Context, q database.Queryable, email string) (*model.Profile, error)
}

type refreshPublisher interface {
	Publish(ctx context.Context, userID, tab string) error
}

type shareNotifier interface {
	NotifyShare(ctx context.Context, share *model.SharedEvent, kind notifications.Kind) error
}

func NewService(
	db database.PGX,
	logger *zap.SugaredLogger,
	eventsRepo eventsRepository,
	sharesRepo sharesRepository,
	profilesRepo profilesRepository,
	refresh refreshPublisher,
	notifier shareNotifier,
) *Service {
	return &Service{
		db:                 db,
		logger:             logger,
		eventsRepository:   eventsRepo,
		sharesRepository:   sharesRepo,
		profilesRepository: profilesRepo,
		refresh:            refresh,
		notifier:           notifier,
	}
}

// ShareEvent offers senderID's event to the profile registered under
// recipientEmail. The share starts pending.
func (s *Service) ShareEvent(ctx context.Context, senderID, eventID, recipientEmail string) (*model.SharedEvent, error) {
	if _, err := identity.Classify(eventID); err != nil {
		return nil, fmt.Errorf("classify %q: %w", eventID, err)
	}

	event, err := s.eventsRepository.GetEventByID(ctx, s.db, eventID)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEventByID: %w", err)
	}
	// another owner's event is reported the same way as a missing one
	if event.OwnerID != senderID {
		return nil, model.ErrNoRecord
	}

	recipient, err := s.profilesRepository.GetProfileByEmail(ctx, s.db, recipientEmail)
	if err != nil {
		return nil, fmt.Errorf("profilesRepository.GetProfileByEmail: %w", err)
	}
	if recipient.ID == senderID {
		return nil, model.ErrForbidden
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	existing, err := s.sharesRepository.GetShares(ctx, tx, model.SharesFilter{
		RecipientID: recipient.ID,
		EventIDs:    []string{eventID},
		Statuses:    []model.ShareStatus{model.ShareStatusPending, model.ShareStatusAccepted},
	})
	if err != nil {
		return nil, fmt.Errorf("sharesRepository.GetShares: %w", err)
	}
	if len(existing) != 0 {
		return nil, model.ErrAlreadyExists
	}

	id, err := s.sharesRepository.CreateShare(ctx, tx, &model.SharedEventCreate{
		EventID:     eventID,
		SenderID:    senderID,
		RecipientID: recipient.ID,
		EventData:   event.Snapshot(),
	})
	if err != nil {
		return nil, fmt.Errorf("sharesRepository.CreateShare: %w", err)
	}

	share, err := s.sharesRepository.GetShare(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("sharesRepository.GetShare: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	metrics.SharesCreated.Inc()
	s.publish(ctx, recipient.ID)
	s.notify(ctx, share, notifications.KindShareReceived)

	return share, nil
}

// RespondToShare accepts or declines a pending share addressed to
// recipientID.
func (s *Service) RespondToShare(ctx context.Context, recipientID string, shareID int64, accept bool) (*model.SharedEvent, error) {
	share, err := s.sharesRepository.GetShare(ctx, s.db, shareID)
	if err != nil {
		return nil, fmt.Errorf("sharesRepository.GetShare: %w", err)
	}
	if share.RecipientID != recipientID {
		return nil, model.ErrForbidden
	}
	if share.Status != model.ShareStatusPending {
		return nil, model.ErrInvalidStatusTransition
	}

	to, kind := model.ShareStatusDeclined, notifications.KindShareDeclined
	if accept {
		to, kind = model.ShareStatusAccepted, notifications.KindShareAccepted
	}

	ok, err := s.sharesRepository.UpdateStatus(ctx, s.db, shareID, model.ShareStatusPending, to)
	if err != nil {
		return nil, fmt.Errorf("sharesRepository.UpdateStatus: %w", err)
	}
	if !ok {
		// answered concurrently
		return nil, model.ErrInvalidStatusTransition
	}
	share.Status = to

	metrics.ShareResponses.WithLabelValues(string(to)).Inc()
	s.publish(ctx, share.SenderID)
	s.publish(ctx, share.RecipientID)
	s.notify(ctx, share, kind)

	return share, nil
}

func (s *Service) GetIncoming(ctx context.Context, recipientID string, statuses []model.ShareStatus) ([]*model.SharedEvent, error) {
	shares, err := s.sharesRepository.GetShares(ctx, s.db, model.SharesFilter{
		RecipientID: recipientID,
		Statuses:    statuses,
	})
	if err != nil {
		return nil, fmt.Errorf("sharesRepository.GetShares: %w", err)
	}

	return shares, nil
}

func (s *Service) GetOutgoing(ctx context.Context, senderID string) ([]*model.SharedEvent, error) {
	shares, err := s.sharesRepository.GetShares(ctx, s.db, model.SharesFilter{SenderID: senderID})
	if err != nil {
		return nil, fmt.Errorf("sharesRepository.GetShares: %w", err)
	}

	return shares, nil
}

// DeleteShare removes a share. Either side of the share may remove it.
func (s *Service) DeleteShare(ctx context.Context, userID string, shareID int64) error {
	share, err := s.sharesRepository.GetShare(ctx, s.db, shareID)
	if err != nil {
		return fmt.Errorf("sharesRepository.GetShare: %w", err)
	}
	if share.SenderID != userID && share.RecipientID != userID {
		return model.ErrForbidden
	}

	if err := s.sharesRepository.DeleteShare(ctx, s.db, shareID); err != nil {
		return fmt.Errorf("sharesRepository.DeleteShare: %w", err)
	}

	s.publish(ctx, share.SenderID)
	s.publish(ctx, share.RecipientID)

	return nil
}

func (s *Service) publish(ctx context.Context, userID string) {
	if err := s.refresh.Publish(ctx, userID, refresh.TabShared); err != nil {
		s.logger.Errorw("failed to publish refresh", "user_id", userID, "err", err)
		return
	}
	metrics.RefreshPublished.WithLabelValues(refresh.TabShared).Inc()
}

// notify logs push failures, the share itself already succeeded.
func (s *Service) notify(ctx context.Context, share *model.SharedEvent, kind notifications.Kind) {
	if err := s.notifier.NotifyShare(ctx, share, kind); err != nil {
		s.logger.Errorw("failed to send share notification", "share_id", share.ID, "kind", kind.String(), "err", err)
	}
}
