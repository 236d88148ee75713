package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"previnet/internal/auth"
	"previnet/internal/certificate"
	"previnet/internal/platform/middleware"
)

type certificateView struct {
	EntityID  string    `json:"entityId"`
	WorkerID  string    `json:"workerId"`
	Token     string    `json:"token"`
	FileName  string    `json:"fileName"`
	MimeType  string    `json:"mimeType"`
	CreatedAt time.Time `json:"createdAt"`
}

func recordView(record *certificate.Record) certificateView {
	return certificateView{
		EntityID:  record.EntityID,
		WorkerID:  record.WorkerID,
		Token:     record.Token,
		FileName:  record.FileName,
		MimeType:  record.MimeType,
		CreatedAt: record.CreatedAt,
	}
}

// handleCertificate streams the archived PDF. Workers only reach their own
// certificates; admins may fetch any worker's via the workerId query.
func (h *Handler) handleCertificate(w http.ResponseWriter, r *http.Request) {
	workerID := middleware.GetWorkerID(r.Context())
	if middleware.GetRole(r.Context()) == auth.RoleAdmin {
		if v := r.URL.Query().Get("workerId"); v != "" {
			workerID = v
		}
	}
	record, err := h.certs.Get(r.Context(),
		chi.URLParam(r, "recordID"), workerID, chi.URLParam(r, "token"))
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", record.MimeType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+record.FileName+`"`)
	_, _ = w.Write(record.Content)
}

func (h *Handler) handleMyCertificates(w http.ResponseWriter, r *http.Request) {
	workerID := middleware.GetWorkerID(r.Context())
	records, err := h.certs.ListByWorker(r.Context(), workerID)
	if err != nil {
		respondError(w, err)
		return
	}
	views := make([]certificateView, 0, len(records))
	for _, record := range records {
		views = append(views, recordView(record))
	}
	respondJSON(w, http.StatusOK, views)
}
