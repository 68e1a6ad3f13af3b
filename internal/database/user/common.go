package user

import (
	"github.com/SergeyKozhin/calnotes-backend/internal/database"
)

var baseQuery = database.PSQL.
	Select(
		"id",
		"full_name",
		"email",
		"push_token",
		"notify",
	).
	From(database.ProfilesTable)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}
