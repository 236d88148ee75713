// Package signing implements the sign operation shared by every signable
// record kind: gate checks, signature capture, the per-kind outcome hook and
// certificate generation.
package signing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"previnet/internal/certificate"
	"previnet/internal/platform/metrics"
	"previnet/internal/signable"
	"previnet/internal/syncqueue"
	"previnet/internal/verification"
	"previnet/internal/worker"
	"previnet/pkg/platform/sentinel"
)

// putRetries bounds CAS retries when a sign races a concurrent assign on the
// same entity.
const putRetries = 3

type Service struct {
	entities  signable.Store
	workers   worker.Store
	certs     certificate.Store
	generator *certificate.Generator
	gate      *verification.Gate
	views     verification.ViewTracker
	queue     syncqueue.Queue
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
	locks     *keyedMutex
	clock     func() time.Time
}

type Option func(*Service)

func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

func NewService(
	entities signable.Store,
	workers worker.Store,
	certs certificate.Store,
	generator *certificate.Generator,
	gate *verification.Gate,
	views verification.ViewTracker,
	queue syncqueue.Queue,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		entities:  entities,
		workers:   workers,
		certs:     certs,
		generator: generator,
		gate:      gate,
		views:     views,
		queue:     queue,
		metrics:   m,
		logger:    logger,
		tracer:    otel.Tracer("previnet/signing"),
		locks:     newKeyedMutex(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request is one worker's attempt to sign one entity.
type Request struct {
	EntityID  string
	WorkerID  string
	Signature []byte
	Answers   map[string]signable.Answer
	Responses []signable.FitnessResponse
	Geo       *signable.Geo
}

// Result is the committed signing plus its certificate. Certificate is nil
// when generation failed after the signature was recorded; the error in that
// case wraps ErrCertificationFailed.
type Result struct {
	Entity      *signable.Entity
	Assignment  *signable.Assignment
	Certificate *certificate.Record
}

// Sign runs the full flow: load, locate the assignment, reject double
// signing, check the signature and the gates, commit the signed assignment,
// then generate and archive the certificate.
func (s *Service) Sign(ctx context.Context, req Request) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "signing.sign",
		trace.WithAttributes(
			attribute.String("entity.id", req.EntityID),
			attribute.String("worker.id", req.WorkerID),
		))
	defer span.End()

	s.locks.Lock(req.EntityID + "/" + req.WorkerID)
	defer s.locks.Unlock(req.EntityID + "/" + req.WorkerID)

	entity, assignment, err := s.commit(ctx, req)
	if err != nil {
		s.metrics.SigningFailuresTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	s.metrics.SigningsTotal.WithLabelValues(string(entity.Kind)).Inc()

	s.afterSign(ctx, entity)

	record, err := s.certify(ctx, entity, assignment)
	if err != nil {
		// The signature is already committed. Surface the failure instead
		// of pretending the certificate exists.
		// TODO: retry certificate generation for signed assignments that
		// have no certificate record.
		s.logger.ErrorContext(ctx, "certificate generation failed",
			"entity_id", entity.ID, "worker_id", req.WorkerID, "error", err.Error())
		return &Result{Entity: entity, Assignment: assignment},
			fmt.Errorf("%w: %v", ErrCertificationFailed, err)
	}

	return &Result{Entity: entity, Assignment: assignment, Certificate: record}, nil
}

// commit validates the request against the current entity state and writes
// the signed assignment, retrying the optimistic put on version conflicts.
func (s *Service) commit(ctx context.Context, req Request) (*signable.Entity, *signable.Assignment, error) {
	for attempt := 0; ; attempt++ {
		entity, err := s.entities.Get(ctx, req.EntityID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, ErrEntityNotFound
		}
		if err != nil {
			return nil, nil, fmt.Errorf("load entity: %w", err)
		}

		assignment := entity.AssignmentFor(req.WorkerID)
		if assignment == nil {
			return nil, nil, ErrAssignmentNotFound
		}
		if assignment.Signed() {
			return nil, nil, ErrAlreadySigned
		}
		if len(req.Signature) == 0 {
			return nil, nil, ErrSignatureMissing
		}
		if err := s.checkGates(ctx, entity, req); err != nil {
			return nil, nil, err
		}

		signer, err := s.workers.Get(ctx, req.WorkerID)
		if err != nil {
			return nil, nil, fmt.Errorf("load signer: %w", err)
		}

		now := s.clock()
		assignment.SignerName = signer.Name
		assignment.SignerExternalID = signer.ExternalID
		assignment.SignedAt = &now
		assignment.Signature = req.Signature
		assignment.Geo = req.Geo
		if entity.RequiresVerification() {
			assignment.VerificationAnswers = req.Answers
			assignment.VerificationAt = &now
		}
		if entity.Kind == signable.KindFitnessEvaluation {
			assignment.Responses = req.Responses
			outcome := fitnessOutcome(entity.Questions, req.Responses)
			assignment.FitOutcome = &outcome
		}

		err = s.entities.Put(ctx, entity)
		if err == nil {
			s.notifySync(ctx, entity.Kind)
			return entity, assignment, nil
		}
		if errors.Is(err, sentinel.ErrConflict) && attempt < putRetries {
			continue
		}
		return nil, nil, fmt.Errorf("commit signing: %w", err)
	}
}

func (s *Service) checkGates(ctx context.Context, entity *signable.Entity, req Request) error {
	if entity.Attachment != nil {
		viewed, err := s.views.Viewed(ctx, entity.ID, req.WorkerID)
		if err != nil {
			return fmt.Errorf("check attachment view: %w", err)
		}
		if !viewed {
			return ErrAttachmentNotViewed
		}
	}
	if entity.RequiresVerification() {
		if len(req.Answers) == 0 {
			return ErrVerificationRequired
		}
		if !s.gate.Validate(entity.Challenge, req.Answers) {
			return ErrVerificationFailed
		}
	}
	return nil
}

// afterSign runs the per-kind outcome hook. Enrollment signing enables the
// worker the entity was created for.
func (s *Service) afterSign(ctx context.Context, entity *signable.Entity) {
	if entity.Kind != signable.KindEnrollment || entity.WorkerRef == "" {
		return
	}
	if err := s.workers.SetEnabled(ctx, entity.WorkerRef, true); err != nil {
		s.logger.ErrorContext(ctx, "enable enrolled worker failed",
			"worker_id", entity.WorkerRef, "error", err.Error())
	}
}

func (s *Service) certify(ctx context.Context, entity *signable.Entity, assignment *signable.Assignment) (*certificate.Record, error) {
	record, err := s.generator.Render(ctx, entity, assignment)
	if err != nil {
		return nil, err
	}
	err = s.certs.Put(ctx, record)
	if errors.Is(err, sentinel.ErrConflict) {
		// A certificate for this triple already exists; keep the archive copy.
		return s.certs.Get(ctx, record.EntityID, record.WorkerID, record.Token)
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) notifySync(ctx context.Context, kind signable.Kind) {
	syncKind := signable.MetaFor(kind).SyncKind
	if err := s.queue.Enqueue(ctx, syncKind); err != nil {
		s.logger.WarnContext(ctx, "sync enqueue failed", "kind", kind, "error", err.Error())
		return
	}
	s.metrics.SyncEventsEnqueued.WithLabelValues(syncKind).Inc()
}

// fitnessOutcome is fit only when every question has an explicit yes. An
// unanswered question counts as no.
func fitnessOutcome(questions []signable.FitnessQuestion, responses []signable.FitnessResponse) bool {
	answered := make(map[string]bool, len(responses))
	for _, resp := range responses {
		answered[resp.ID] = resp.Answer
	}
	for _, q := range questions {
		if !answered[q.ID] {
			return false
		}
	}
	return true
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrEntityNotFound):
		return "entity_not_found"
	case errors.Is(err, ErrAssignmentNotFound):
		return "assignment_not_found"
	case errors.Is(err, ErrAlreadySigned):
		return "already_signed"
	case errors.Is(err, ErrSignatureMissing):
		return "signature_missing"
	case errors.Is(err, ErrVerificationRequired):
		return "verification_required"
	case errors.Is(err, ErrVerificationFailed):
		return "verification_failed"
	case errors.Is(err, ErrAttachmentNotViewed):
		return "attachment_not_viewed"
	default:
		return "internal"
	}
}
