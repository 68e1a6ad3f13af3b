package events

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/calnotes-backend/internal/database"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
)

// CreateEvents inserts a base row together with its instance rows in a
// single statement.
func (*Repository) CreateEvents(ctx context.Context, q database.Queryable, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}

	qb := database.PSQL.
		Insert(database.EventsTable).
		Columns(
			"id",
			"owner_id",
			"title",
			"notes",
			"date",
			"end_date",
			"start_time",
			"end_time",
			"all_day",
			"category",
			"color",
			"repeat_type",
			"repeat_until",
		)

	for _, e := range events {
		qb = qb.Values(
			e.ID,
			e.OwnerID,
			e.Title,
			e.Notes,
			e.Date,
			e.EndDate,
			e.StartTime,
			e.EndTime,
			e.AllDay,
			e.Category,
			htmlColor(e.Color),
			int(e.RepeatType),
			e.RepeatUntil,
		)
	}

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
