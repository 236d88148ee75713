package signing

import "errors"

var (
	ErrEntityNotFound       = errors.New("signable entity not found")
	ErrAssignmentNotFound   = errors.New("worker has no assignment for this entity")
	ErrAlreadySigned        = errors.New("assignment already signed")
	ErrSignatureMissing     = errors.New("signature image is required")
	ErrVerificationRequired = errors.New("verification answers are required")
	ErrVerificationFailed   = errors.New("verification answers did not match")
	ErrAttachmentNotViewed  = errors.New("attachment must be opened before signing")
	ErrCertificationFailed  = errors.New("signature recorded but certificate generation failed")
)
