package events

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/calnotes-backend/internal/identity"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
)

// GetEvent returns the row with id. Rows of other owners are reported as
// missing.
func (s *Service) GetEvent(ctx context.Context, ownerID, id string) (*model.Event, error) {
	if _, err := identity.Classify(id); err != nil {
		return nil, fmt.Errorf("classify %q: %w", id, err)
	}

	event, err := s.eventsRepository.GetEventByID(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEventByID: %w", err)
	}

	if event.OwnerID != ownerID {
		return nil, model.ErrNoRecord
	}

	return event, nil
}

func (s *Service) GetEvents(ctx context.Context, filter model.EventsFilter) ([]*model.Event, error) {
	events, err := s.eventsRepository.GetEvents(ctx, s.db, filter)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEvents: %w", err)
	}

	return events, nil
}

// GetSeries returns every row of the series id belongs to, base row first.
func (s *Service) GetSeries(ctx context.Context, ownerID, id string) ([]*model.Event, error) {
	cid, err := identity.Classify(id)
	if err != nil {
		return nil, fmt.Errorf("classify %q: %w", id, err)
	}

	events, err := s.eventsRepository.GetSeries(ctx, s.db, cid.BaseID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetSeries: %w", err)
	}

	if len(events) == 0 {
		return nil, model.ErrNoRecord
	}

	return events, nil
}
