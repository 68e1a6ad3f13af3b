package shares

import "github.com/SergeyKozhin/calnotes-backend/internal/database"

var baseQuery = database.PSQL.
	Select(
		"id",
		"event_id",
		"sender_id",
		"recipient_id",
		"status",
		"event_data",
		"created_at",
		"updated_at",
	).
	From(database.SharedEventsTable)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}
