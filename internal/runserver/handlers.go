package runserver

import (
	"encoding/json"
	"net/http"

	"github.com/jfoltran/envclone/internal/metrics"
)

type handlers struct {
	collector *metrics.Collector
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.collector.Snapshot())
}

func (h *handlers) entities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.collector.Snapshot().Entities)
}

func (h *handlers) logs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.collector.Logs())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
