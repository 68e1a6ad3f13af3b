package events

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/calnotes-backend/internal/database"
)

func (*Repository) DeleteEvent(ctx context.Context, q database.Queryable, id, ownerID string) (int64, error) {
	qb := database.PSQL.
		Delete(database.EventsTable).
		Where(sq.Eq{"id": id, "owner_id": ownerID})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteSeries removes the base record and all instances of baseID in one
// filtered delete.
func (*Repository) DeleteSeries(ctx context.Context, q database.Queryable, baseID, ownerID string) (int64, error) {
	match, err := database.SeriesMatch("id", baseID)
	if err != nil {
		return 0, err
	}

	qb := database.PSQL.
		Delete(database.EventsTable).
		Where(match).
		Where(sq.Eq{"owner_id": ownerID})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return tag.RowsAffected(), nil
}
