package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/SergeyKozhin/calnotes-backend/internal/pkg/validator"
)

func (a *Api) shareEventHandler(w http.ResponseWriter, r *http.Request) {
	senderID, ok := userID(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	req := &struct {
		EventID        string `json:"event_id"`
		RecipientEmail string `json:"recipient_email"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	req.RecipientEmail = strings.TrimSpace(req.RecipientEmail)

	v := validator.New()

	v.Check(req.EventID != "", "event_id", "event_id must be provided")
	v.Check(validator.Matches(req.RecipientEmail, validator.EmailRX), "recipient_email", "recipient_email must be a valid email")

	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	share, err := a.sharingService.ShareEvent(r.Context(), senderID, req.EventID, req.RecipientEmail)
	if err != nil {
		a.serviceErrorResponse(w, r, fmt.Errorf("share event: %w", err), false)
		return
	}

	resp, _ := mapToShareResp(share)

	if err := a.writeJSON(w, http.StatusCreated, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) getIncomingSharesHandler(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := userID(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	vals := r.URL.Query()["status"]
	statuses := make([]model.ShareStatus, len(vals))
	for i, v := range vals {
		statuses[i] = model.ShareStatus(v)
		if !statuses[i].Valid() {
			a.badRequestResponse(w, r, fmt.Errorf("invalid status %q", v))
			return
		}
	}

	shares, err := a.sharingService.GetIncoming(r.Context(), recipientID, statuses)
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("get incoming shares: %w", err))
		return
	}

	resp, _ := mapSlice(shares, mapToShareResp)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) getOutgoingSharesHandler(w http.ResponseWriter, r *http.Request) {
	senderID, ok := userID(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	shares, err := a.sharingService.GetOutgoing(r.Context(), senderID)
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("get outgoing shares: %w", err))
		return
	}

	resp, _ := mapSlice(shares, mapToShareResp)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) acceptShareHandler(w http.ResponseWriter, r *http.Request) {
	a.respondToShare(w, r, true)
}

func (a *Api) declineShareHandler(w http.ResponseWriter, r *http.Request) {
	a.respondToShare(w, r, false)
}

func (a *Api) respondToShare(w http.ResponseWriter, r *http.Request, accept bool) {
	recipientID, ok := userID(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	shareID, err := shareIDParam(r)
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	share, err := a.sharingService.RespondToShare(r.Context(), recipientID, shareID, accept)
	if err != nil {
		a.serviceErrorResponse(w, r, fmt.Errorf("respond to share: %w", err), false)
		return
	}

	resp, _ := mapToShareResp(share)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) deleteShareHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	shareID, err := shareIDParam(r)
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	if err := a.sharingService.DeleteShare(r.Context(), id, shareID); err != nil {
		a.serviceErrorResponse(w, r, fmt.Errorf("delete share: %w", err), false)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
