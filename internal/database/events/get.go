package events

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/calnotes-backend/internal/database"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/jackc/pgx/v4"
)

func (*Repository) GetEventByID(ctx context.Context, q database.Queryable, id string) (*model.Event, error) {
	qb := baseQuery.
		Where(sq.Eq{"id": id})

	dto := &eventDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoRecord
		}
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return mapToEvent(dto)
}

func (*Repository) GetEvents(ctx context.Context, q database.Queryable, filter model.EventsFilter) ([]*model.Event, error) {
	qb := baseQuery.
		Where(sq.Eq{"owner_id": filter.OwnerID}).
		Where(sq.GtOrEq{"date": filter.From}).
		Where(sq.LtOrEq{"date": filter.To}).
		OrderBy("date", "start_time NULLS FIRST", "id")

	return selectEvents(ctx, q, qb)
}

func (*Repository) GetEventsByIDs(ctx context.Context, q database.Queryable, ids []string) ([]*model.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	qb := baseQuery.
		Where(sq.Eq{"id": ids})

	return selectEvents(ctx, q, qb)
}

// GetSeries returns the base record and every instance of baseID.
func (*Repository) GetSeries(ctx context.Context, q database.Queryable, baseID, ownerID string) ([]*model.Event, error) {
	match, err := database.SeriesMatch("id", baseID)
	if err != nil {
		return nil, err
	}

	qb := baseQuery.
		Where(match).
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("date", "id")

	return selectEvents(ctx, q, qb)
}

func selectEvents(ctx context.Context, q database.Queryable, qb sq.SelectBuilder) ([]*model.Event, error) {
	var dtos []*eventDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return mapToEvents(dtos)
}
