package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SergeyKozhin/calnotes-backend/internal/identity"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/SergeyKozhin/calnotes-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

func (a *Api) createEventHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	req := &struct {
		eventFields
		Date        *date            `json:"date"`
		EndDate     *date            `json:"end_date"`
		RepeatType  model.RepeatType `json:"repeat_type"`
		RepeatUntil *date            `json:"repeat_until"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()

	req.validate(v)
	v.Check(req.Date != nil, "date", "date must be provided")
	v.Check(req.RepeatType.Valid(), "repeat_type", "unknown repeat type")
	if req.Date != nil && req.EndDate != nil {
		v.Check(!time.Time(*req.EndDate).Before(time.Time(*req.Date)), "end_date", "end_date must not be before date")
	}
	if req.Date != nil && req.RepeatUntil != nil {
		v.Check(!time.Time(*req.RepeatUntil).Before(time.Time(*req.Date)), "repeat_until", "repeat_until must not be before date")
	}

	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	upd, err := req.toUpdate()
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	info := &model.EventCreate{
		OwnerID:     ownerID,
		Title:       upd.Title,
		Notes:       upd.Notes,
		Date:        time.Time(*req.Date),
		StartTime:   upd.StartTime,
		EndTime:     upd.EndTime,
		AllDay:      upd.AllDay,
		Category:    upd.Category,
		Color:       upd.Color,
		RepeatType:  req.RepeatType,
		RepeatUntil: req.RepeatUntil.timePtr(),
	}
	if req.EndDate != nil {
		info.EndDate = time.Time(*req.EndDate)
	}

	event, instances, err := a.eventsService.CreateEvent(r.Context(), info)
	if err != nil {
		a.serviceErrorResponse(w, r, fmt.Errorf("create event: %w", err), false)
		return
	}

	created, err := mapToEventResp(event)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	resp := &struct {
		Event     *eventResp `json:"event"`
		Instances int        `json:"instances"`
	}{
		Event:     created,
		Instances: instances,
	}

	if err := a.writeJSON(w, http.StatusCreated, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) getEventsHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	filter, err := parseEventsQuery(r)
	if err != nil {
		a.badRequestResponse(w, r, err)
		return
	}
	filter.OwnerID = ownerID

	events, err := a.eventsService.GetEvents(r.Context(), *filter)
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("get events: %w", err))
		return
	}

	resp, err := mapSlice(events, mapToEventResp)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func parseEventsQuery(r *http.Request) (*model.EventsFilter, error) {
	var err error

	res := &model.EventsFilter{}

	v := r.URL.Query().Get("from")
	if v == "" {
		return nil, errors.New("from must be provided")
	}
	res.From, err = identity.ParseDateKey(v)
	if err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}

	v = r.URL.Query().Get("to")
	if v == "" {
		return nil, errors.New("to must be provided")
	}
	res.To, err = identity.ParseDateKey(v)
	if err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}

	if res.To.Before(res.From) {
		return nil, errors.New("to must not be before from")
	}

	return res, nil
}

func (a *Api) getEventHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	event, err := a.eventsService.GetEvent(r.Context(), ownerID, chi.URLParam(r, "eventID"))
	if err != nil {
		a.serviceErrorResponse(w, r, fmt.Errorf("get event: %w", err), true)
		return
	}

	resp, err := mapToEventResp(event)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) getSeriesHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	events, err := a.eventsService.GetSeries(r.Context(), ownerID, chi.URLParam(r, "eventID"))
	if err != nil {
		a.serviceErrorResponse(w, r, fmt.Errorf("get series: %w", err), true)
		return
	}

	resp, err := mapSlice(events, mapToEventResp)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) readEventUpdate(w http.ResponseWriter, r *http.Request) (*model.EventUpdate, bool) {
	req := &eventFields{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return nil, false
	}

	v := validator.New()
	req.validate(v)

	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return nil, false
	}

	upd, err := req.toUpdate()
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return nil, false
	}

	return upd, true
}

func (a *Api) updateEventHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	upd, ok := a.readEventUpdate(w, r)
	if !ok {
		return
	}

	event, err := a.eventsService.UpdateEvent(r.Context(), ownerID, chi.URLParam(r, "eventID"), upd)
	if err != nil {
		a.serviceErrorResponse(w, r, fmt.Errorf("update event: %w", err), false)
		return
	}

	resp, err := mapToEventResp(event)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) updateSeriesHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	upd, ok := a.readEventUpdate(w, r)
	if !ok {
		return
	}

	events, err := a.eventsService.UpdateSeries(r.Context(), ownerID, chi.URLParam(r, "eventID"), upd)
	if err != nil {
		a.serviceErrorResponse(w, r, fmt.Errorf("update series: %w", err), false)
		return
	}

	resp, err := mapSlice(events, mapToEventResp)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

type deleteResp struct {
	Deleted int64 `json:"deleted"`
}

func (a *Api) deleteEventHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	n, err := a.eventsService.DeleteEvent(r.Context(), ownerID, chi.URLParam(r, "eventID"))
	if err != nil {
		a.serviceErrorResponse(w, r, fmt.Errorf("delete event: %w", err), false)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, &deleteResp{Deleted: n}, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) deleteSeriesHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	n, err := a.eventsService.DeleteSeries(r.Context(), ownerID, chi.URLParam(r, "eventID"))
	if err != nil {
		a.serviceErrorResponse(w, r, fmt.Errorf("delete series: %w", err), false)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, &deleteResp{Deleted: n}, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}
