package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SergeyKozhin/calnotes-backend/internal/identity"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/SergeyKozhin/calnotes-backend/internal/pkg/validator"
	"github.com/gerow/go-color"
)

// date is a calendar day encoded as YYYY-MM-DD.
type date time.Time

func (d date) MarshalJSON() ([]byte, error) {
	return json.Marshal(identity.FormatDateKey(time.Time(d)))
}

func (d *date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	t, err := identity.ParseDateKey(s)
	if err != nil {
		return err
	}

	*d = date(t)
	return nil
}

func (d *date) timePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := time.Time(*d)
	return &t
}

func datePtr(t *time.Time) *date {
	if t == nil {
		return nil
	}
	d := date(*t)
	return &d
}

type eventResp struct {
	ID          string     `json:"id"`
	SeriesID    string     `json:"series_id"`
	Instance    bool       `json:"instance"`
	Title       string     `json:"title"`
	Notes       string     `json:"notes,omitempty"`
	Date        date       `json:"date"`
	EndDate     date       `json:"end_date"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	AllDay      bool       `json:"all_day"`
	Category    string     `json:"category,omitempty"`
	Color       string     `json:"color"`
	RepeatType  int        `json:"repeat_type"`
	RepeatUntil *date      `json:"repeat_until,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func mapToEventResp(e *model.Event) (*eventResp, error) {
	id, err := identity.Classify(e.ID)
	if err != nil {
		return nil, fmt.Errorf("classify %q: %w", e.ID, err)
	}

	return &eventResp{
		ID:          e.ID,
		SeriesID:    id.BaseID,
		Instance:    id.Kind == identity.KindInstance,
		Title:       e.Title,
		Notes:       e.Notes,
		Date:        date(e.Date),
		EndDate:     date(e.EndDate),
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		AllDay:      e.AllDay,
		Category:    e.Category,
		Color:       "#" + e.Color.ToHTML(),
		RepeatType:  int(e.RepeatType),
		RepeatUntil: datePtr(e.RepeatUntil),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}, nil
}

type shareResp struct {
	ID          int64               `json:"id"`
	EventID     string              `json:"event_id"`
	SenderID    string              `json:"sender_id"`
	RecipientID string              `json:"recipient_id"`
	Status      model.ShareStatus   `json:"status"`
	EventData   model.EventSnapshot `json:"event_data"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func mapToShareResp(s *model.SharedEvent) (*shareResp, error) {
	return &shareResp{
		ID:          s.ID,
		EventID:     s.EventID,
		SenderID:    s.SenderID,
		RecipientID: s.RecipientID,
		Status:      s.Status,
		EventData:   s.EventData,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}, nil
}

type profileResp struct {
	ID       string `json:"id"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Notify   bool   `json:"notify"`
}

func mapToProfileResp(p *model.Profile) (*profileResp, error) {
	return &profileResp{
		ID:       p.ID,
		FullName: p.FullName,
		Email:    p.Email,
		Notify:   p.Notify,
	}, nil
}

// eventFields are the mutable fields shared by create and update requests.
type eventFields struct {
	Title     string     `json:"title"`
	Notes     string     `json:"notes"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	AllDay    bool       `json:"all_day"`
	Category  string     `json:"category"`
	Color     string     `json:"color"`
}

func (f *eventFields) validate(v *validator.Validator) {
	v.Check(strings.TrimSpace(f.Title) != "", "title", "title must be provided")
	v.Check(len(f.Title) <= 500, "title", "title must not be longer than 500 bytes")
	v.Check(f.Color == "" || validator.Matches(f.Color, validator.HexRX), "color", "color must be valid HEX color")
	if f.StartTime != nil && f.EndTime != nil {
		v.Check(!f.EndTime.Before(*f.StartTime), "end_time", "end_time must not be before start_time")
	}
}

func (f *eventFields) toUpdate() (*model.EventUpdate, error) {
	var rgb color.RGB
	if f.Color != "" {
		var err error
		rgb, err = color.HTMLToRGB(f.Color)
		if err != nil {
			return nil, fmt.Errorf("parse color: %w", err)
		}
	}

	return &model.EventUpdate{
		Title:     f.Title,
		Notes:     f.Notes,
		StartTime: f.StartTime,
		EndTime:   f.EndTime,
		AllDay:    f.AllDay,
		Category:  f.Category,
		Color:     rgb,
	}, nil
}
