package events

import (
	"fmt"
	"time"

	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/gerow/go-color"
)

type eventDTO struct {
	ID          string
	OwnerID     string
	Title       string
	Notes       string
	Date        time.Time
	EndDate     time.Time
	StartTime   *time.Time
	EndTime     *time.Time
	AllDay      bool
	Category    string
	Color       string
	RepeatType  int
	RepeatUntil *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func mapToEvent(dto *eventDTO) (*model.Event, error) {
	var rgb color.RGB
	if dto.Color != "" {
		var err error
		rgb, err = color.HTMLToRGB(dto.Color)
		if err != nil {
			return nil, fmt.Errorf("map color from %v: %w", dto.Color, err)
		}
	}

	return &model.Event{
		ID:        dto.ID,
		CreatedAt: dto.CreatedAt,
		UpdatedAt: dto.UpdatedAt,
		EventCreate: model.EventCreate{
			OwnerID:     dto.OwnerID,
			Title:       dto.Title,
			Notes:       dto.Notes,
			Date:        dto.Date,
			EndDate:     dto.EndDate,
			StartTime:   dto.StartTime,
			EndTime:     dto.EndTime,
			AllDay:      dto.AllDay,
			Category:    dto.Category,
			Color:       rgb,
			RepeatType:  model.RepeatType(dto.RepeatType),
			RepeatUntil: dto.RepeatUntil,
		},
	}, nil
}

func mapToEvents(dtos []*eventDTO) ([]*model.Event, error) {
	res := make([]*model.Event, len(dtos))
	for i, d := range dtos {
		var err error
		res[i], err = mapToEvent(d)
		if err != nil {
			return nil, err
		}
	}

	return res, nil
}

func htmlColor(c color.RGB) string {
	return "#" + c.ToHTML()
}
