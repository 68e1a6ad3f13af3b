package events

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/calnotes-backend/internal/database"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
)

func updateSet(upd *model.EventUpdate) map[string]interface{} {
	return map[string]interface{}{
		"title":      upd.Title,
		"notes":      upd.Notes,
		"start_time": upd.StartTime,
		"end_time":   upd.EndTime,
		"all_day":    upd.AllDay,
		"category":   upd.Category,
		"color":      htmlColor(upd.Color),
		"updated_at": sq.Expr("now()"),
	}
}

func (*Repository) UpdateEvent(ctx context.Context, q database.Queryable, id, ownerID string, upd *model.EventUpdate) (int64, error) {
	qb := database.PSQL.
		Update(database.EventsTable).
		SetMap(updateSet(upd)).
		Where(sq.Eq{"id": id, "owner_id": ownerID})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (*Repository) UpdateSeries(ctx context.Context, q database.Queryable, baseID, ownerID string, upd *model.EventUpdate) (int64, error) {
	match, err := database.SeriesMatch("id", baseID)
	if err != nil {
		return 0, err
	}

	qb := database.PSQL.
		Update(database.EventsTable).
		SetMap(updateSet(upd)).
		Where(match).
		Where(sq.Eq{"owner_id": ownerID})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return tag.RowsAffected(), nil
}
