package signable

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"

	"previnet/internal/syncqueue"
	platformstrings "previnet/pkg/platform/strings"
)

// Service owns the publish/assign half of an entity's life. Signing lives in
// the signing package; everything there assumes the validations done here
// (attachment format, challenge shape) already passed.
type Service struct {
	store  Store
	queue  syncqueue.Queue
	logger *slog.Logger
}

func NewService(store Store, queue syncqueue.Queue, logger *slog.Logger) *Service {
	return &Service{store: store, queue: queue, logger: logger}
}

// PublishRequest carries everything needed to create a published entity.
// Workers listed here get their assignment tokens minted immediately.
type PublishRequest struct {
	Kind       Kind
	Title      string
	Details    []Detail
	Questions  []FitnessQuestion
	Challenge  *Challenge
	Attachment *Attachment
	WorkerIDs  []string
	WorkerRef  string
	CreatedBy  string
}

// Publish validates and stores a new entity, then notifies the sync sink.
func (s *Service) Publish(ctx context.Context, req PublishRequest) (*Entity, error) {
	if !req.Kind.Valid() {
		return nil, ErrKindInvalid
	}
	if err := validateChallenge(req.Challenge); err != nil {
		return nil, err
	}
	if err := ValidateAttachment(req.Attachment); err != nil {
		return nil, err
	}

	entity := &Entity{
		ID:         uuid.NewString(),
		Kind:       req.Kind,
		Title:      req.Title,
		Details:    req.Details,
		Status:     StatusPublished,
		Questions:  req.Questions,
		Challenge:  req.Challenge,
		Attachment: req.Attachment,
		WorkerRef:  req.WorkerRef,
		CreatedBy:  req.CreatedBy,
		CreatedAt:  time.Now(),
	}
	for _, workerID := range platformstrings.DedupeAndTrim(req.WorkerIDs) {
		entity.Assignments = append(entity.Assignments, Assignment{
			WorkerID: workerID,
			Token:    uuid.NewString(),
		})
	}

	if err := s.store.Put(ctx, entity); err != nil {
		return nil, fmt.Errorf("publish %s: %w", req.Kind, err)
	}
	s.notifySync(ctx, entity.Kind)
	return entity, nil
}

// Assign targets additional workers on an already published entity. Tokens
// are minted here, exactly once per (entity, worker) pair; workers that
// already hold an assignment are left untouched.
func (s *Service) Assign(ctx context.Context, entityID string, workerIDs []string) (*Entity, error) {
	entity, err := s.store.Get(ctx, entityID)
	if err != nil {
		return nil, err
	}
	added := false
	for _, workerID := range platformstrings.DedupeAndTrim(workerIDs) {
		if entity.AssignmentFor(workerID) != nil {
			continue
		}
		entity.Assignments = append(entity.Assignments, Assignment{
			WorkerID: workerID,
			Token:    uuid.NewString(),
		})
		added = true
	}
	if !added {
		return entity, nil
	}
	if err := s.store.Put(ctx, entity); err != nil {
		return nil, fmt.Errorf("assign workers: %w", err)
	}
	s.notifySync(ctx, entity.Kind)
	return entity, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Entity, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Entity, error) {
	return s.store.List(ctx)
}

func (s *Service) ListForWorker(ctx context.Context, workerID string) ([]*Entity, error) {
	return s.store.ListByWorker(ctx, workerID)
}

func (s *Service) notifySync(ctx context.Context, kind Kind) {
	if err := s.queue.Enqueue(ctx, MetaFor(kind).SyncKind); err != nil {
		// The entity is already stored; losing one sync hint is recoverable,
		// failing the publish is not.
		s.logger.WarnContext(ctx, "sync enqueue failed", "kind", kind, "error", err.Error())
	}
}

func validateChallenge(challenge *Challenge) error {
	if challenge == nil {
		return nil
	}
	if len(challenge.Questions) != 2 {
		return fmt.Errorf("%w: want 2 questions, got %d", ErrChallengeInvalid, len(challenge.Questions))
	}
	for _, q := range challenge.Questions {
		if q.ID == "" || q.Prompt == "" {
			return fmt.Errorf("%w: question missing id or prompt", ErrChallengeInvalid)
		}
		if len(q.Options) > 0 {
			if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
				return fmt.Errorf("%w: correct option out of range", ErrChallengeInvalid)
			}
		} else if q.ExpectedAnswer == "" {
			return fmt.Errorf("%w: free-text question without expected answer", ErrChallengeInvalid)
		}
	}
	return nil
}

// ValidateAttachment enforces the submission-time format check: anything the
// IsPDF predicate will later treat as stampable must parse as a PDF now.
func ValidateAttachment(attachment *Attachment) error {
	if attachment == nil {
		return nil
	}
	if len(attachment.Content) == 0 {
		return fmt.Errorf("%w: empty attachment", ErrAttachmentUnsupported)
	}
	if !attachment.IsPDF() {
		return nil
	}
	pages, err := pdfapi.PageCount(bytes.NewReader(attachment.Content), nil)
	if err != nil || pages < 1 {
		return fmt.Errorf("%w: %s does not parse as PDF", ErrAttachmentUnsupported, attachment.FileName)
	}
	return nil
}
