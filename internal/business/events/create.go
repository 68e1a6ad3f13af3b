package events

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/calnotes-backend/internal/identity"
	"github.com/SergeyKozhin/calnotes-backend/internal/metrics"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/SergeyKozhin/calnotes-backend/internal/refresh"
)

// CreateEvent stores info as one base row plus one instance row per extra
// calendar day. It returns the base event and the number of instance rows.
func (s *Service) CreateEvent(ctx context.Context, info *model.EventCreate) (*model.Event, int, error) {
	if info.EndDate.IsZero() {
		info.EndDate = info.Date
	}

	days, err := s.expandDays(info)
	if err != nil {
		return nil, 0, err
	}

	baseID := newEventID(s.now())
	rows := make([]*model.Event, 0, len(days))
	for i, d := range days {
		id := baseID
		if i > 0 {
			id, err = identity.DeriveInstance(baseID, d.date)
			if err != nil {
				return nil, 0, fmt.Errorf("derive instance: %w", err)
			}
		}

		row := &model.Event{
			ID:          id,
			EventCreate: *info,
		}
		row.Date = d.date
		row.EndDate = d.endDate
		row.StartTime = shiftTime(info.StartTime, d.offset)
		row.EndTime = shiftTime(info.EndTime, d.offset)
		rows = append(rows, row)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.eventsRepository.CreateEvents(ctx, tx, rows); err != nil {
		return nil, 0, fmt.Errorf("eventsRepository.CreateEvents: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("commit tx: %w", err)
	}

	metrics.EventsCreated.Add(float64(len(rows)))
	s.logger.Debugw("event created", "id", baseID, "instances", len(rows)-1)
	s.publish(ctx, info.OwnerID, refresh.TabCalendar)

	return rows[0], len(rows) - 1, nil
}
