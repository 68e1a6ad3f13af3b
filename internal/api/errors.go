package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SergeyKozhin/calnotes-backend/internal/business/events"
	"github.com/SergeyKozhin/calnotes-backend/internal/identity"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
)

func (a *Api) logError(_ *http.Request, err error) {
	a.logger.Errorw("server error", "error", err)
}

func (a *Api) errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	data := map[string]interface{}{"error": message}

	if err := a.writeJSON(w, status, data, nil); err != nil {
		a.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (a *Api) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	a.logError(r, err)

	message := "the server encountered a problem and could not process your request"
	a.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (a *Api) clientErrorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	a.logger.Debugw("client error", "err", message)
	a.errorResponse(w, r, status, message)
}

func (a *Api) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	a.clientErrorResponse(w, r, http.StatusNotFound, message)
}

func (a *Api) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	a.clientErrorResponse(w, r, http.StatusMethodNotAllowed, message)
}

func (a *Api) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	a.clientErrorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (a *Api) failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	a.clientErrorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

func (a *Api) unauthorizedResponse(w http.ResponseWriter, r *http.Request, err error) {
	a.clientErrorResponse(w, r, http.StatusUnauthorized, err.Error())
}

func (a *Api) forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	a.clientErrorResponse(w, r, http.StatusForbidden, message)
}

func (a *Api) conflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	a.clientErrorResponse(w, r, http.StatusConflict, err.Error())
}

// serviceErrorResponse maps business errors to responses. Malformed ids are
// reported as missing on lookups and as bad requests on mutations.
func (a *Api) serviceErrorResponse(w http.ResponseWriter, r *http.Request, err error, lookup bool) {
	switch {
	case errors.Is(err, identity.ErrInvalidIdentifier), errors.Is(err, identity.ErrInvalidDate):
		if lookup {
			a.notFoundResponse(w, r)
			return
		}
		a.badRequestResponse(w, r, err)
	case errors.Is(err, model.ErrNoRecord):
		a.notFoundResponse(w, r)
	case errors.Is(err, model.ErrForbidden):
		a.forbiddenResponse(w, r, "operation is not allowed for this user")
	case errors.Is(err, model.ErrAlreadyExists), errors.Is(err, model.ErrInvalidStatusTransition):
		a.conflictResponse(w, r, err)
	case errors.Is(err, events.ErrInvalidRange):
		a.failedValidationResponse(w, r, map[string]string{"end_date": err.Error()})
	default:
		a.serverErrorResponse(w, r, err)
	}
}
