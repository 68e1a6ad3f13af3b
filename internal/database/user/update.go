package user

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/calnotes-backend/internal/database"
)

func (*Repository) UpdatePushToken(ctx context.Context, q database.Queryable, id string, token string) error {
	var value interface{} = token
	if token == "" {
		value = nil
	}

	qb := database.PSQL.
		Update(database.ProfilesTable).
		Set("push_token", value).
		Where(sq.Eq{"id": id})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

func (*Repository) UpdateNotify(ctx context.Context, q database.Queryable, id string, notify bool) error {
	qb := database.PSQL.
		Update(database.ProfilesTable).
		Set("notify", notify).
		Where(sq.Eq{"id": id})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
