package events

import "github.com/SergeyKozhin/calnotes-backend/internal/database"

var columns = []string{
	"id",
	"owner_id",
	"title",
	"notes",
	"date",
	"end_date",
	"start_time",
	"end_time",
	"all_day",
	"category",
	"color",
	"repeat_type",
	"repeat_until",
	"created_at",
	"updated_at",
}

var baseQuery = database.PSQL.
	Select(columns...).
	From(database.EventsTable)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}
