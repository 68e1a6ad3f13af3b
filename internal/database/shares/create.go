package shares

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/calnotes-backend/internal/database"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
)

func (*Repository) CreateShare(ctx context.Context, q database.Queryable, share *model.SharedEventCreate) (int64, error) {
	eventData, err := marshalSnapshot(share.EventData)
	if err != nil {
		return 0, err
	}

	qb := database.PSQL.
		Insert(database.SharedEventsTable).
		Columns("event_id", "sender_id", "recipient_id", "status", "event_data").
		Values(
			share.EventID,
			share.SenderID,
			share.RecipientID,
			string(model.ShareStatusPending),
			eventData,
		).
		Suffix("returning id")

	var id int64
	if err := q.Get(ctx, &id, qb); err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return id, nil
}
