package shares

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/calnotes-backend/internal/database"
)

func (*Repository) DeleteShare(ctx context.Context, q database.Queryable, id int64) error {
	qb := database.PSQL.
		Delete(database.SharedEventsTable).
		Where(sq.Eq{"id": id})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

func (*Repository) DeleteByIDs(ctx context.Context, q database.Queryable, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	qb := database.PSQL.
		Delete(database.SharedEventsTable).
		Where(sq.Eq{"id": ids})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (*Repository) DeleteByEvent(ctx context.Context, q database.Queryable, eventID string) (int64, error) {
	qb := database.PSQL.
		Delete(database.SharedEventsTable).
		Where(sq.Eq{"event_id": eventID})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteBySeries removes the shares of every record in baseID's series.
func (*Repository) DeleteBySeries(ctx context.Context, q database.Queryable, baseID string) (int64, error) {
	match, err := database.SeriesMatch("event_id", baseID)
	if err != nil {
		return 0, err
	}

	qb := database.PSQL.
		Delete(database.SharedEventsTable).
		Where(match)

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return tag.RowsAffected(), nil
}
