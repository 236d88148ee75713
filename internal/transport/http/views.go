package httptransport

import (
	"time"

	"previnet/internal/signable"
)

// The view types keep payloads lean and safe: attachment bytes go through
// the download endpoint only, and challenge answer keys never leave the
// server.

type attachmentView struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	PDF      bool   `json:"pdf"`
}

type questionView struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options,omitempty"`
	// FreeText marks questions answered by typing instead of choosing.
	FreeText bool `json:"freeText,omitempty"`
}

type entityViewBody struct {
	ID          string                     `json:"id"`
	Kind        signable.Kind              `json:"kind"`
	Title       string                     `json:"title"`
	Details     []signable.Detail          `json:"details,omitempty"`
	Status      string                     `json:"status"`
	Questions   []signable.FitnessQuestion `json:"questions,omitempty"`
	Challenge   []questionView             `json:"challenge,omitempty"`
	Attachment  *attachmentView            `json:"attachment,omitempty"`
	Assignments []signable.Assignment      `json:"assignments,omitempty"`
	CreatedAt   time.Time                  `json:"createdAt"`
}

// entityView projects an entity for the API. A non-empty viewer worker ID
// narrows the assignment list to that worker's own.
func entityView(entity *signable.Entity, viewerWorkerID string) entityViewBody {
	body := entityViewBody{
		ID:        entity.ID,
		Kind:      entity.Kind,
		Title:     entity.Title,
		Details:   entity.Details,
		Status:    entity.Status,
		Questions: entity.Questions,
		CreatedAt: entity.CreatedAt,
	}
	if entity.Challenge != nil {
		for _, q := range entity.Challenge.Questions {
			body.Challenge = append(body.Challenge, questionView{
				ID:       q.ID,
				Prompt:   q.Prompt,
				Options:  q.Options,
				FreeText: len(q.Options) == 0,
			})
		}
	}
	if entity.Attachment != nil {
		body.Attachment = &attachmentView{
			FileName: entity.Attachment.FileName,
			MimeType: entity.Attachment.MimeType,
			PDF:      entity.Attachment.IsPDF(),
		}
	}
	for _, assignment := range entity.Assignments {
		if viewerWorkerID != "" && assignment.WorkerID != viewerWorkerID {
			continue
		}
		assignment.Signature = nil
		assignment.VerificationAnswers = nil
		body.Assignments = append(body.Assignments, assignment)
	}
	return body
}

func entityViews(entities []*signable.Entity, viewerWorkerID string) []entityViewBody {
	out := make([]entityViewBody, 0, len(entities))
	for _, entity := range entities {
		out = append(out, entityView(entity, viewerWorkerID))
	}
	return out
}
