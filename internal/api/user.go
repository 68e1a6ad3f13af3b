package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/SergeyKozhin/calnotes-backend/internal/pkg/validator"
)

var errCantRetrieveProfile = errors.New("can't retrieve profile from context")

func (a *Api) getUserHandler(w http.ResponseWriter, r *http.Request) {
	profile, ok := r.Context().Value(contextKeyProfile).(*model.Profile)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveProfile)
		return
	}

	resp, _ := mapToProfileResp(profile)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) updatePushTokenHandler(w http.ResponseWriter, r *http.Request) {
	profile, ok := r.Context().Value(contextKeyProfile).(*model.Profile)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveProfile)
		return
	}

	req := &struct {
		Token string `json:"token"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()

	v.Check(len(req.Token) <= 4096, "token", "token is too long")

	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	if err := a.profiles.UpdatePushToken(r.Context(), a.db, profile.ID, req.Token); err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("update push token: %w", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *Api) updateNotifyHandler(w http.ResponseWriter, r *http.Request) {
	profile, ok := r.Context().Value(contextKeyProfile).(*model.Profile)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveProfile)
		return
	}

	req := &struct {
		Notify *bool `json:"notify"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()

	v.Check(req.Notify != nil, "notify", "notify must be provided")

	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	if err := a.profiles.UpdateNotify(r.Context(), a.db, profile.ID, *req.Notify); err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("update notify: %w", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
