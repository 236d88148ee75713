package signable

import (
	"strings"
	"time"
)

// Kind discriminates the six signable record kinds. All of them share the same
// signing flow; per-kind behavior is limited to render metadata and an outcome
// hook in the signing service.
type Kind string

const (
	KindSafetyTalk        Kind = "safety_talk"
	KindRiskAnalysis      Kind = "risk_analysis"
	KindSiteInduction     Kind = "site_induction"
	KindFitnessEvaluation Kind = "fitness_evaluation"
	KindDocument          Kind = "document"
	KindEnrollment        Kind = "enrollment"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSafetyTalk, KindRiskAnalysis, KindSiteInduction,
		KindFitnessEvaluation, KindDocument, KindEnrollment:
		return true
	}
	return false
}

// StatusPublished is the only entity status: records are created by a publish
// operation and never move back to draft.
const StatusPublished = "PUBLISHED"

// Geo is a best-effort device location captured at signing time. Accuracy is
// meters; zero means unknown.
type Geo struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracy,omitempty"`
}

// Detail is one descriptive label/value row shown on the certificate.
type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Attachment is an opaque binary carried by the entity. Only PDF attachments
// participate in the stamp render path.
type Attachment struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Content  []byte `json:"content"`
}

// IsPDF is the single stampability predicate: mime type or filename suffix.
func (a *Attachment) IsPDF() bool {
	if a == nil {
		return false
	}
	if a.MimeType == "application/pdf" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(a.FileName), ".pdf")
}

// ChallengeQuestion is one pre-signature knowledge check question. A question
// with options is multiple-choice; otherwise the expected answer is free text
// compared case-insensitively after trimming.
type ChallengeQuestion struct {
	ID             string   `json:"id"`
	Prompt         string   `json:"prompt"`
	Options        []string `json:"options,omitempty"`
	CorrectOption  int      `json:"correctOption,omitempty"`
	ExpectedAnswer string   `json:"expectedAnswer,omitempty"`
}

// Challenge is the pre-signature verification gate. When present it always
// carries exactly two questions.
type Challenge struct {
	Questions []ChallengeQuestion `json:"questions"`
}

// Answer is a signer's response to one challenge question.
type Answer struct {
	Option *int   `json:"option,omitempty"`
	Text   string `json:"text,omitempty"`
}

// FitnessQuestion is one yes/no self-evaluation question on a
// fitness-to-work record. Not a correctness check: the answers themselves
// determine the outcome.
type FitnessQuestion struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
}

// FitnessResponse is a worker's answer to one fitness question.
type FitnessResponse struct {
	ID     string `json:"id"`
	Answer bool   `json:"answer"`
}

// Assignment pairs an entity with one worker who must sign it. Token is minted
// once at assignment time and never reassigned: it is the idempotency key and
// part of the certificate storage key.
type Assignment struct {
	WorkerID            string             `json:"workerId"`
	Token               string             `json:"token"`
	SignerName          string             `json:"signerName,omitempty"`
	SignerExternalID    string             `json:"signerExternalId,omitempty"`
	SignedAt            *time.Time         `json:"signedAt,omitempty"`
	// Signature is the captured freehand signature image, PNG encoded.
	Signature           []byte             `json:"signature,omitempty"`
	VerificationAnswers map[string]Answer  `json:"verificationAnswers,omitempty"`
	VerificationAt      *time.Time         `json:"verificationAt,omitempty"`
	Responses           []FitnessResponse  `json:"responses,omitempty"`
	FitOutcome          *bool              `json:"fitOutcome,omitempty"`
	Geo                 *Geo               `json:"geo,omitempty"`
}

// Signed reports whether the assignment has already been signed.
func (a *Assignment) Signed() bool {
	return a != nil && a.SignedAt != nil
}

// Entity is a published signable record of any kind.
type Entity struct {
	ID          string            `json:"id"`
	Kind        Kind              `json:"kind"`
	Title       string            `json:"title"`
	Details     []Detail          `json:"details,omitempty"`
	Status      string            `json:"status"`
	Questions   []FitnessQuestion `json:"questions,omitempty"`
	Challenge   *Challenge        `json:"challenge,omitempty"`
	Attachment  *Attachment       `json:"attachment,omitempty"`
	Assignments []Assignment      `json:"assignments"`
	// WorkerRef links an enrollment entity to the worker registry record whose
	// enabled flag flips when the enrollment is signed.
	WorkerRef string    `json:"workerRef,omitempty"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	// Version supports optimistic concurrency in the store: Put only succeeds
	// when the caller read the current version.
	Version int64 `json:"version"`
}

// AssignmentFor returns a pointer into the entity's assignment list for the
// given worker, or nil when the worker was never targeted.
func (e *Entity) AssignmentFor(workerID string) *Assignment {
	for i := range e.Assignments {
		if e.Assignments[i].WorkerID == workerID {
			return &e.Assignments[i]
		}
	}
	return nil
}

// RequiresVerification reports whether a challenge gate must pass before
// signing.
func (e *Entity) RequiresVerification() bool {
	return e.Challenge != nil && len(e.Challenge.Questions) > 0
}
