package user

import (
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
)

type profileDTO struct {
	ID        string
	FullName  string
	Email     string
	PushToken *string
	Notify    bool
}

func mapToProfile(dto *profileDTO) *model.Profile {
	p := &model.Profile{
		ID:       dto.ID,
		FullName: dto.FullName,
		Email:    dto.Email,
		Notify:   dto.Notify,
	}
	if dto.PushToken != nil {
		p.PushToken = *dto.PushToken
	}

	return p
}
