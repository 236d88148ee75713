package signable

import "errors"

var (
	// ErrAttachmentUnsupported rejects attachments at submission time: a file
	// claiming to be a PDF must actually parse as one. Signing never has to
	// re-check formats because of this.
	ErrAttachmentUnsupported = errors.New("attachment format unsupported")
	// ErrChallengeInvalid rejects publish requests whose challenge does not
	// carry exactly two well-formed questions.
	ErrChallengeInvalid = errors.New("verification challenge invalid")
	// ErrKindInvalid rejects unknown record kinds.
	ErrKindInvalid = errors.New("unknown record kind")
)
