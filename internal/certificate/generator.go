package certificate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"previnet/internal/platform/metrics"
	"previnet/internal/signable"
)

// Generator renders certificates. Records with a PDF attachment get the
// stamp path; a stamp failure falls back to the synthesized path so signing
// never loses its certificate to a malformed source file.
type Generator struct {
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
	clock   func() time.Time
}

type GeneratorOption func(*Generator)

func WithClock(clock func() time.Time) GeneratorOption {
	return func(g *Generator) { g.clock = clock }
}

func NewGenerator(m *metrics.Metrics, logger *slog.Logger, opts ...GeneratorOption) *Generator {
	g := &Generator{
		metrics: m,
		logger:  logger,
		tracer:  otel.Tracer("previnet/certificate"),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Render produces the certificate record for a signed assignment. The
// assignment must already carry its signature and signedAt.
func (g *Generator) Render(ctx context.Context, entity *signable.Entity, assignment *signable.Assignment) (*Record, error) {
	ctx, span := g.tracer.Start(ctx, "certificate.render",
		trace.WithAttributes(
			attribute.String("entity.kind", string(entity.Kind)),
			attribute.String("entity.id", entity.ID),
		))
	defer span.End()

	start := g.clock()
	defer func() {
		g.metrics.CertificateRenderSecs.Observe(time.Since(start).Seconds())
	}()

	if assignment.SignedAt == nil {
		return nil, fmt.Errorf("render certificate: assignment not signed")
	}

	record := &Record{
		EntityID:  entity.ID,
		WorkerID:  assignment.WorkerID,
		Token:     assignment.Token,
		MimeType:  "application/pdf",
		CreatedAt: g.clock(),
	}

	if entity.Attachment.IsPDF() {
		content, err := stampAttachment(entity.Attachment, assignment)
		if err == nil {
			span.SetAttributes(attribute.String("render.path", "stamp"))
			g.metrics.CertificatesGenerated.WithLabelValues("stamp").Inc()
			record.FileName = stampedFileName(entity.Attachment.FileName, assignment.Token)
			record.Content = content
			return record, nil
		}
		g.metrics.StampFallbacksTotal.Inc()
		g.logger.WarnContext(ctx, "stamp failed, synthesizing certificate",
			"entity_id", entity.ID, "error", err.Error())
	}

	content, err := synthesize(entity, assignment)
	if err != nil {
		return nil, fmt.Errorf("synthesize certificate: %w", err)
	}
	span.SetAttributes(attribute.String("render.path", "synthesize"))
	g.metrics.CertificatesGenerated.WithLabelValues("synthesize").Inc()
	record.FileName = certificateFileName(
		signable.MetaFor(entity.Kind).FilenamePrefix,
		assignment.SignerName,
		assignment.SignerExternalID,
		assignment.Token,
		*assignment.SignedAt,
	)
	record.Content = content
	return record, nil
}
