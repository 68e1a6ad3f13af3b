package database

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/calnotes-backend/internal/identity"
)

const (
	EventsTable       = "events"
	SharedEventsTable = "shared_events"
	ProfilesTable     = "profiles"
)

var PSQL = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// SeriesMatch selects the base record baseID and all of its instances.
func SeriesMatch(column, baseID string) (sq.Sqlizer, error) {
	pattern, err := identity.SiblingPattern(baseID)
	if err != nil {
		return nil, fmt.Errorf("series match: %w", err)
	}

	return sq.Or{
		sq.Eq{column: baseID},
		sq.Like{column: pattern},
	}, nil
}
