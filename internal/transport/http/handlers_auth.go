package httptransport

import (
	"net/http"

	"previnet/internal/worker"
)

type loginRequest struct {
	PIN string `json:"pin"`
}

type loginResponse struct {
	Token  string         `json:"token"`
	Worker *worker.Worker `json:"worker"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	token, signer, err := h.auth.LoginWithPIN(r.Context(), req.PIN)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{Token: token, Worker: signer})
}
