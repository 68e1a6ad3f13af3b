package shares

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SergeyKozhin/calnotes-backend/internal/model"
)

type shareDTO struct {
	ID          int64
	EventID     string
	SenderID    string
	RecipientID string
	Status      string
	EventData   []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func mapToShare(dto *shareDTO) (*model.SharedEvent, error) {
	var snapshot model.EventSnapshot
	if len(dto.EventData) != 0 {
		if err := json.Unmarshal(dto.EventData, &snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal event_data of share %d: %w", dto.ID, err)
		}
	}

	return &model.SharedEvent{
		ID:        dto.ID,
		Status:    model.ShareStatus(dto.Status),
		CreatedAt: dto.CreatedAt,
		UpdatedAt: dto.UpdatedAt,
		SharedEventCreate: model.SharedEventCreate{
			EventID:     dto.EventID,
			SenderID:    dto.SenderID,
			RecipientID: dto.RecipientID,
			EventData:   snapshot,
		},
	}, nil
}

func marshalSnapshot(s model.EventSnapshot) (string, error) {
	js, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal event_data: %w", err)
	}

	return string(js), nil
}
