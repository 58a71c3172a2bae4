package explorer

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type eventView struct {
	StakingEvent
	Label string `json:"label"`
}

func toViews(rows []StakingEvent) []eventView {
	views := make([]eventView, len(rows))
	for i, row := range rows {
		views[i] = eventView{StakingEvent: row, Label: EventLabel(row.Type)}
	}
	return views
}

// Router exposes the read API over the indexed event store.
func (ix *Indexer) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/v1/events", func(w http.ResponseWriter, r *http.Request) {
		rows, err := ix.Events(r.URL.Query().Get("type"), queryLimit(r))
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, toViews(rows))
	})

	r.Get("/v1/depositors/{addr}/events", func(w http.ResponseWriter, r *http.Request) {
		rows, err := ix.DepositorEvents(chi.URLParam(r, "addr"), queryLimit(r))
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, toViews(rows))
	})

	return r
}

func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
