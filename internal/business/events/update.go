package events

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/calnotes-backend/internal/database"
	"github.com/SergeyKozhin/calnotes-backend/internal/identity"
	"github.com/SergeyKozhin/calnotes-backend/internal/metrics"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/SergeyKozhin/calnotes-backend/internal/notifications"
	"github.com/SergeyKozhin/calnotes-backend/internal/refresh"
)

// UpdateEvent changes the single row id and the snapshots of its shares.
func (s *Service) UpdateEvent(ctx context.Context, ownerID, id string, upd *model.EventUpdate) (*model.Event, error) {
	if _, err := identity.Classify(id); err != nil {
		return nil, fmt.Errorf("classify %q: %w", id, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	n, err := s.eventsRepository.UpdateEvent(ctx, tx, id, ownerID, upd)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.UpdateEvent: %w", err)
	}
	if n == 0 {
		return nil, model.ErrNoRecord
	}

	event, err := s.eventsRepository.GetEventByID(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEventByID: %w", err)
	}

	changed, err := s.refreshSnapshots(ctx, tx, []*model.Event{event})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	metrics.EventsUpdated.WithLabelValues(metrics.ModeSingle).Add(float64(n))
	s.afterShareUpdate(ctx, ownerID, changed)

	return event, nil
}

// UpdateSeries applies upd to every row of the series id belongs to.
func (s *Service) UpdateSeries(ctx context.Context, ownerID, id string, upd *model.EventUpdate) ([]*model.Event, error) {
	cid, err := identity.Classify(id)
	if err != nil {
		return nil, fmt.Errorf("classify %q: %w", id, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	n, err := s.eventsRepository.UpdateSeries(ctx, tx, cid.BaseID, ownerID, upd)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.UpdateSeries: %w", err)
	}
	if n == 0 {
		return nil, model.ErrNoRecord
	}

	events, err := s.eventsRepository.GetSeries(ctx, tx, cid.BaseID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetSeries: %w", err)
	}

	changed, err := s.refreshSnapshots(ctx, tx, events)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	metrics.EventsUpdated.WithLabelValues(metrics.ModeSeries).Add(float64(n))
	s.afterShareUpdate(ctx, ownerID, changed)

	return events, nil
}

// refreshSnapshots rewrites the share snapshots of events and returns the
// shares whose visible fields changed.
func (s *Service) refreshSnapshots(ctx context.Context, q database.Queryable, events []*model.Event) ([]*model.SharedEvent, error) {
	ids := make([]string, len(events))
	byID := make(map[string]*model.Event, len(events))
	for i, e := range events {
		ids[i] = e.ID
		byID[e.ID] = e
	}

	shares, err := s.sharesRepository.GetShares(ctx, q, model.SharesFilter{EventIDs: ids})
	if err != nil {
		return nil, fmt.Errorf("sharesRepository.GetShares: %w", err)
	}

	var changed []*model.SharedEvent
	updated := make(map[string]struct{})
	for _, sh := range shares {
		event, ok := byID[sh.EventID]
		if !ok {
			continue
		}

		snapshot := event.Snapshot()
		if _, ok := updated[sh.EventID]; !ok {
			if err := s.sharesRepository.UpdateSnapshot(ctx, q, sh.EventID, snapshot); err != nil {
				return nil, fmt.Errorf("sharesRepository.UpdateSnapshot: %w", err)
			}
			updated[sh.EventID] = struct{}{}
		}

		if sh.Status != model.ShareStatusDeclined && sh.EventData.Differs(snapshot) {
			sh.EventData = snapshot
			changed = append(changed, sh)
		}
	}

	return changed, nil
}

func (s *Service) afterShareUpdate(ctx context.Context, ownerID string, changed []*model.SharedEvent) {
	s.publish(ctx, ownerID, refresh.TabCalendar)

	recipients := make([]string, len(changed))
	for i, sh := range changed {
		recipients[i] = sh.RecipientID
	}
	s.publishAll(ctx, recipients, refresh.TabShared)

	if err := s.notifier.NotifyShares(ctx, changed, notifications.KindShareUpdated); err != nil {
		s.logger.Errorw("failed to notify share recipients", "err", err)
	}
}
