package httptransport

import "net/http"

type syncPendingResponse struct {
	Pending int `json:"pending"`
}

func (h *Handler) handleSyncPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.queue.Pending(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, syncPendingResponse{Pending: pending})
}

// handleSyncFlush pushes queued events to the sink immediately instead of
// waiting for the background interval.
func (h *Handler) handleSyncFlush(w http.ResponseWriter, r *http.Request) {
	if h.flusher == nil {
		respondJSON(w, http.StatusServiceUnavailable, errorBody{Error: "sync_sink_unavailable"})
		return
	}
	if err := h.flusher.FlushOnce(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
