package analytics

import (
	"encoding/json"
	"net/http"
)

// Handler serves the aggregated query statistics.
type Handler struct {
	aggregator *Aggregator
}

func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{aggregator: aggregator}
}

// Stats responds with the current analytics snapshot.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.aggregator.Snapshot())
}
