package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"previnet/internal/auth"
	"previnet/internal/signable"
	"previnet/internal/signing"
	"previnet/pkg/platform/sentinel"
)

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorBody struct {
	Error string `json:"error"`
}

// respondError translates domain errors into the JSON error envelope. Every
// handler funnels failures through here so status codes stay consistent.
func respondError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, signing.ErrEntityNotFound),
		errors.Is(err, sentinel.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, signing.ErrAssignmentNotFound):
		status, code = http.StatusNotFound, "assignment_not_found"
	case errors.Is(err, signing.ErrAlreadySigned):
		status, code = http.StatusConflict, "already_signed"
	case errors.Is(err, sentinel.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, signing.ErrSignatureMissing):
		status, code = http.StatusBadRequest, "signature_missing"
	case errors.Is(err, signing.ErrVerificationRequired):
		status, code = http.StatusBadRequest, "verification_required"
	case errors.Is(err, signing.ErrVerificationFailed):
		status, code = http.StatusUnprocessableEntity, "verification_failed"
	case errors.Is(err, signing.ErrAttachmentNotViewed):
		status, code = http.StatusPreconditionFailed, "attachment_not_viewed"
	case errors.Is(err, signable.ErrKindInvalid):
		status, code = http.StatusBadRequest, "kind_invalid"
	case errors.Is(err, signable.ErrChallengeInvalid):
		status, code = http.StatusBadRequest, "challenge_invalid"
	case errors.Is(err, signable.ErrAttachmentUnsupported):
		status, code = http.StatusBadRequest, "attachment_unsupported"
	case errors.Is(err, signing.ErrCertificationFailed):
		status, code = http.StatusInternalServerError, "certification_failed"
	}
	respondJSON(w, status, errorBody{Error: code})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "malformed_body"})
		return false
	}
	return true
}
