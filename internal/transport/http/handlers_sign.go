package httptransport

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"previnet/internal/platform/middleware"
	"previnet/internal/signable"
	"previnet/internal/signing"
)

type signRequest struct {
	Signature []byte                     `json:"signature"`
	Answers   map[string]signable.Answer `json:"answers,omitempty"`
	Responses []signable.FitnessResponse `json:"responses,omitempty"`
	Geo       *signable.Geo              `json:"geo,omitempty"`
}

type signResponse struct {
	Record      entityViewBody   `json:"record"`
	Certificate *certificateView `json:"certificate,omitempty"`
}

func (h *Handler) handleSign(w http.ResponseWriter, r *http.Request) {
	workerID := middleware.GetWorkerID(r.Context())
	if workerID == "" {
		respondJSON(w, http.StatusForbidden, errorBody{Error: "worker_token_required"})
		return
	}
	var req signRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.signing.Sign(r.Context(), signing.Request{
		EntityID:  chi.URLParam(r, "recordID"),
		WorkerID:  workerID,
		Signature: req.Signature,
		Answers:   req.Answers,
		Responses: req.Responses,
		Geo:       req.Geo,
	})
	if err != nil && !errors.Is(err, signing.ErrCertificationFailed) {
		respondError(w, err)
		return
	}
	resp := signResponse{Record: entityView(result.Entity, workerID)}
	if result.Certificate != nil {
		view := recordView(result.Certificate)
		resp.Certificate = &view
	}
	status := http.StatusOK
	if err != nil {
		// Signature committed, certificate pending. The client keeps the
		// signed state and can fetch the certificate later.
		status = http.StatusAccepted
	}
	respondJSON(w, status, resp)
}
