package httptransport

import (
	"net/http"

	"previnet/internal/worker"
)

type registerWorkerRequest struct {
	Name              string `json:"name"`
	ExternalID        string `json:"externalId"`
	Role              string `json:"role,omitempty"`
	Site              string `json:"site,omitempty"`
	CompanyName       string `json:"companyName,omitempty"`
	CompanyExternalID string `json:"companyExternalId,omitempty"`
	Phone             string `json:"phone,omitempty"`
	PIN               string `json:"pin,omitempty"`
}

func (h *Handler) handleRegisterWorker(w http.ResponseWriter, r *http.Request) {
	var req registerWorkerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := h.workers.Register(r.Context(), worker.RegisterRequest{
		Name:              req.Name,
		ExternalID:        req.ExternalID,
		Role:              req.Role,
		Site:              req.Site,
		CompanyName:       req.CompanyName,
		CompanyExternalID: req.CompanyExternalID,
		Phone:             req.Phone,
		PIN:               req.PIN,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.workers.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, workers)
}
