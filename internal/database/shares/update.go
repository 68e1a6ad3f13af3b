package shares

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/calnotes-backend/internal/database"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
)

// UpdateStatus moves a share from one status to another. It reports false
// when the share was not in the expected status.
func (*Repository) UpdateStatus(ctx context.Context, q database.Queryable, id int64, from, to model.ShareStatus) (bool, error) {
	qb := database.PSQL.
		Update(database.SharedEventsTable).
		Set("status", string(to)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "status": string(from)})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return false, fmt.Errorf("SQL request: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// UpdateSnapshot rewrites event_data for every share of eventID.
func (*Repository) UpdateSnapshot(ctx context.Context, q database.Queryable, eventID string, snapshot model.EventSnapshot) error {
	eventData, err := marshalSnapshot(snapshot)
	if err != nil {
		return err
	}

	qb := database.PSQL.
		Update(database.SharedEventsTable).
		Set("event_data", eventData).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"event_id": eventID})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
