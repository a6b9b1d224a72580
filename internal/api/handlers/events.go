package handlers

import (
	"delivery-simulation/internal/adapters/events"
	"delivery-simulation/internal/api/dto"
	"net/http"
	"strconv"
)

// EventLog holds recently published events.
type EventLog interface {
	Records(n int) []events.Record
}

type EventHandler struct {
	Log          EventLog
	DefaultLimit int
}

// List returns the most recent events, oldest first. ?limit=n caps the count.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	limit := h.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	recs := h.Log.Records(limit)
	res := dto.ListEventsResponse{Events: make([]dto.RecordResponse, 0, len(recs))}
	for _, rec := range recs {
		res.Events = append(res.Events, dto.RecordResponse{
			RunID:         rec.RunID,
			Tick:          rec.Tick,
			EventResponse: eventResponse(rec),
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
