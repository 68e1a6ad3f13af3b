package model

import "time"

type ShareStatus string

const (
	ShareStatusPending  ShareStatus = "pending"
	ShareStatusAccepted ShareStatus = "accepted"
	ShareStatusDeclined ShareStatus = "declined"
)

func (s ShareStatus) Valid() bool {
	switch s {
	case ShareStatusPending, ShareStatusAccepted, ShareStatusDeclined:
		return true
	default:
		return false
	}
}

// EventSnapshot is the denormalized copy of an event stored with a share.
type EventSnapshot struct {
	Title     string     `json:"title"`
	Notes     string     `json:"notes,omitempty"`
	Date      time.Time  `json:"date"`
	EndDate   time.Time  `json:"end_date"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	AllDay    bool       `json:"all_day"`
	Category  string     `json:"category,omitempty"`
	Color     string     `json:"color,omitempty"`
}

// Differs reports whether the fields a recipient sees changed.
func (s EventSnapshot) Differs(o EventSnapshot) bool {
	return s.Title != o.Title ||
		s.Notes != o.Notes ||
		!s.Date.Equal(o.Date) ||
		!s.EndDate.Equal(o.EndDate) ||
		!equalTimes(s.StartTime, o.StartTime) ||
		!equalTimes(s.EndTime, o.EndTime) ||
		s.AllDay != o.AllDay
}

func equalTimes(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

type SharedEventCreate struct {
	EventID     string
	SenderID    string
	RecipientID string
	EventData   EventSnapshot
}

type SharedEvent struct {
	ID        int64
	Status    ShareStatus
	CreatedAt time.Time
	UpdatedAt time.Time
	SharedEventCreate
}

type SharesFilter struct {
	SenderID    string
	RecipientID string
	Statuses    []ShareStatus
	EventIDs    []string
}
