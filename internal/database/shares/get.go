package shares

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/calnotes-backend/internal/database"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/jackc/pgx/v4"
)

func (*Repository) GetShare(ctx context.Context, q database.Queryable, id int64) (*model.SharedEvent, error) {
	qb := baseQuery.
		Where(sq.Eq{"id": id})

	dto := &shareDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoRecord
		}
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return mapToShare(dto)
}

func (*Repository) GetShares(ctx context.Context, q database.Queryable, filter model.SharesFilter) ([]*model.SharedEvent, error) {
	qb := baseQuery.
		OrderBy("created_at DESC", "id DESC")

	if filter.SenderID != "" {
		qb = qb.Where(sq.Eq{"sender_id": filter.SenderID})
	}

	if filter.RecipientID != "" {
		qb = qb.Where(sq.Eq{"recipient_id": filter.RecipientID})
	}

	if len(filter.Statuses) != 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		qb = qb.Where(sq.Eq{"status": statuses})
	}

	if len(filter.EventIDs) != 0 {
		qb = qb.Where(sq.Eq{"event_id": filter.EventIDs})
	}

	var dtos []*shareDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.SharedEvent, len(dtos))
	for i, d := range dtos {
		var err error
		res[i], err = mapToShare(d)
		if err != nil {
			return nil, err
		}
	}

	return res, nil
}

// GetSeriesRecipients returns the distinct recipients of shares pointing at
// any record of baseID's series.
func (*Repository) GetSeriesRecipients(ctx context.Context, q database.Queryable, baseID string) ([]string, error) {
	match, err := database.SeriesMatch("event_id", baseID)
	if err != nil {
		return nil, err
	}

	qb := database.PSQL.
		Select("recipient_id").
		Distinct().
		From(database.SharedEventsTable).
		Where(match)

	var ids []string
	if err := q.Select(ctx, &ids, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return ids, nil
}
