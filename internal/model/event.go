package model

import (
	"time"

	"github.com/SergeyKozhin/calnotes-backend/internal/identity"
	"github.com/gerow/go-color"
)

type EventCreate struct {
	OwnerID     string
	Title       string
	Notes       string
	Date        time.Time
	EndDate     time.Time
	StartTime   *time.Time
	EndTime     *time.Time
	AllDay      bool
	Category    string
	Color       color.RGB
	RepeatType  RepeatType
	RepeatUntil *time.Time
}

type Event struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	EventCreate
}

// SeriesID returns the base id shared by all days of the event's series.
func (e *Event) SeriesID() (string, error) {
	id, err := identity.Classify(e.ID)
	if err != nil {
		return "", err
	}

	return id.BaseID, nil
}

// Snapshot captures the fields copied into a share at share time.
func (e *Event) Snapshot() EventSnapshot {
	return EventSnapshot{
		Title:     e.Title,
		Notes:     e.Notes,
		Date:      e.Date,
		EndDate:   e.EndDate,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		AllDay:    e.AllDay,
		Category:  e.Category,
		Color:     "#" + e.Color.ToHTML(),
	}
}

type EventUpdate struct {
	Title     string
	Notes     string
	StartTime *time.Time
	EndTime   *time.Time
	AllDay    bool
	Category  string
	Color     color.RGB
}

type RepeatType int

const (
	RepeatTypeNone RepeatType = iota
	RepeatTypeEveryDay
	RepeatTypeEveryThreeDays
	RepeatTypeEveryWeek
	RepeatTypeEveryMonth
	RepeatTypeEveryYear
)

func (t RepeatType) Valid() bool {
	return t >= RepeatTypeNone && t <= RepeatTypeEveryYear
}

type EventsFilter struct {
	OwnerID string
	From    time.Time
	To      time.Time
}
