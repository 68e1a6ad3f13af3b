package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SergeyKozhin/calnotes-backend/internal/refresh"
	"github.com/google/uuid"
)

// refreshStreamHandler keeps a server-sent events stream open and writes one
// "refresh" event per tab trigger for the user.
func (a *Api) refreshStreamHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		a.serverErrorResponse(w, r, fmt.Errorf("streaming unsupported by %T", w))
		return
	}

	tabs := make(chan string, 16)
	name := refresh.StreamName(id, uuid.NewString())
	a.registry.Register(name, func(tab string) {
		select {
		case tabs <- tab:
		default:
			// client is behind, it will reload on the next event anyway
		}
	})
	defer a.registry.Unregister(name)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(a.streamKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case tab := <-tabs:
			fmt.Fprintf(w, "event: refresh\ndata: %s\n\n", tab)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
