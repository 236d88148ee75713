package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"previnet/internal/platform/middleware"
	"previnet/internal/signable"
)

// SignableService is the publish/assign surface the transport depends on.
type SignableService interface {
	Publish(ctx context.Context, req signable.PublishRequest) (*signable.Entity, error)
	Assign(ctx context.Context, entityID string, workerIDs []string) (*signable.Entity, error)
	Get(ctx context.Context, id string) (*signable.Entity, error)
	List(ctx context.Context) ([]*signable.Entity, error)
	ListForWorker(ctx context.Context, workerID string) ([]*signable.Entity, error)
}

type publishRequest struct {
	Kind       signable.Kind              `json:"kind"`
	Title      string                     `json:"title"`
	Details    []signable.Detail          `json:"details,omitempty"`
	Questions  []signable.FitnessQuestion `json:"questions,omitempty"`
	Challenge  *signable.Challenge        `json:"challenge,omitempty"`
	Attachment *signable.Attachment       `json:"attachment,omitempty"`
	WorkerIDs  []string                   `json:"workerIds,omitempty"`
	WorkerRef  string                     `json:"workerRef,omitempty"`
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if !decodeBody(w, r, &req) {
		return
	}
	entity, err := h.signable.Publish(r.Context(), signable.PublishRequest{
		Kind:       req.Kind,
		Title:      req.Title,
		Details:    req.Details,
		Questions:  req.Questions,
		Challenge:  req.Challenge,
		Attachment: req.Attachment,
		WorkerIDs:  req.WorkerIDs,
		WorkerRef:  req.WorkerRef,
		CreatedBy:  middleware.GetUserID(r.Context()),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, entityView(entity, ""))
}

type assignRequest struct {
	WorkerIDs []string `json:"workerIds"`
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if !decodeBody(w, r, &req) {
		return
	}
	entity, err := h.signable.Assign(r.Context(), chi.URLParam(r, "recordID"), req.WorkerIDs)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entityView(entity, ""))
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	entities, err := h.signable.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entityViews(entities, ""))
}

func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	entity, err := h.signable.Get(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entityView(entity, middleware.GetWorkerID(r.Context())))
}

func (h *Handler) handleMyRecords(w http.ResponseWriter, r *http.Request) {
	workerID := middleware.GetWorkerID(r.Context())
	entities, err := h.signable.ListForWorker(r.Context(), workerID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entityViews(entities, workerID))
}

// handleAttachment streams the attachment and, for worker callers, records
// the view that unlocks signing.
func (h *Handler) handleAttachment(w http.ResponseWriter, r *http.Request) {
	entity, err := h.signable.Get(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		respondError(w, err)
		return
	}
	if entity.Attachment == nil {
		respondJSON(w, http.StatusNotFound, errorBody{Error: "no_attachment"})
		return
	}
	if workerID := middleware.GetWorkerID(r.Context()); workerID != "" {
		if err := h.views.MarkViewed(r.Context(), entity.ID, workerID); err != nil {
			respondError(w, err)
			return
		}
	}
	mimeType := entity.Attachment.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", `inline; filename="`+entity.Attachment.FileName+`"`)
	_, _ = w.Write(entity.Attachment.Content)
}
