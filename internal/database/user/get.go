package user

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/calnotes-backend/internal/database"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
)

func (*Repository) GetProfileByEmail(ctx context.Context, q database.Queryable, email string) (*model.Profile, error) {
	profiles, err := getProfiles(ctx, q, sq.Expr("lower(email) = ?", strings.ToLower(email)))
	if err != nil {
		return nil, err
	}

	if len(profiles) == 0 {
		return nil, model.ErrNoRecord
	}

	return profiles[0], nil
}

func (*Repository) GetProfileByID(ctx context.Context, q database.Queryable, id string) (*model.Profile, error) {
	profiles, err := getProfiles(ctx, q, sq.Eq{"id": id})
	if err != nil {
		return nil, err
	}

	if len(profiles) == 0 {
		return nil, model.ErrNoRecord
	}

	return profiles[0], nil
}

func (*Repository) GetProfilesByIDs(ctx context.Context, q database.Queryable, ids []string) ([]*model.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	return getProfiles(ctx, q, sq.Eq{"id": ids})
}

func getProfiles(ctx context.Context, q database.Queryable, predicate interface{}) ([]*model.Profile, error) {
	qb := baseQuery.
		Where(predicate)

	var dtos []*profileDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.Profile, len(dtos))
	for i, d := range dtos {
		res[i] = mapToProfile(d)
	}

	return res, nil
}
