package api

import (
	"fmt"
	"net/http"

	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	ics "github.com/arran4/golang-ical"
)

func (a *Api) exportCalendarHandler(w http.ResponseWriter, r *http.Request) {
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

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(buildCalendar(events).Serialize()))
}

// buildCalendar emits one VEVENT per stored row so every instance keeps its
// own id as the UID.
func buildCalendar(events []*model.Event) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//calnotes//calendar export//EN")

	for _, e := range events {
		ev := cal.AddEvent(e.ID + "@calnotes")
		ev.SetSummary(e.Title)
		if e.Notes != "" {
			ev.SetDescription(e.Notes)
		}
		if e.Category != "" {
			ev.AddProperty(ics.ComponentPropertyCategories, e.Category)
		}
		ev.SetDtStampTime(e.UpdatedAt)

		if e.AllDay || e.StartTime == nil {
			ev.SetAllDayStartAt(e.Date)
			ev.SetAllDayEndAt(e.Date.AddDate(0, 0, 1))
			continue
		}

		ev.SetStartAt(*e.StartTime)
		if e.EndTime != nil {
			ev.SetEndAt(*e.EndTime)
		}
	}

	return cal
}
