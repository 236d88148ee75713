package certificate

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"previnet/internal/platform/metrics"
	"previnet/internal/signable"
)

// extractedContent returns the decoded page content streams of a rendered
// certificate, so tests can assert on the text operators.
func extractedContent(t *testing.T, content []byte) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, pdfapi.ExtractContent(bytes.NewReader(content), dir, "cert", nil, nil))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var b strings.Builder
	for _, entry := range entries {
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		require.NoError(t, err)
		b.Write(raw)
	}
	return b.String()
}

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGenerator(m, logger)
}

func signaturePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 120, 40))
	for x := 10; x < 110; x++ {
		img.Set(x, 20, color.Black)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func sourcePDF(t *testing.T, pages int) []byte {
	t.Helper()
	f := fpdf.New("P", "pt", "A4", "")
	for i := 0; i < pages; i++ {
		f.AddPage()
		f.SetFont("Helvetica", "", 12)
		f.Text(72, 72, "source page")
	}
	var buf bytes.Buffer
	require.NoError(t, f.Output(&buf))
	return buf.Bytes()
}

func signedAssignment(t *testing.T) *signable.Assignment {
	t.Helper()
	signedAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	return &signable.Assignment{
		WorkerID:         "worker-1",
		Token:            "0123456789abcdefghij",
		SignerName:       "Juan Pérez",
		SignerExternalID: "12.345.678-9",
		SignedAt:         &signedAt,
		Signature:        signaturePNG(t),
		Geo:              &signable.Geo{Lat: -33.4489, Lng: -70.6693, Accuracy: 12},
	}
}

func TestRenderStampPreservesPages(t *testing.T) {
	gen := newTestGenerator(t)
	entity := &signable.Entity{
		ID:    "entity-1",
		Kind:  signable.KindRiskAnalysis,
		Title: "Working at height",
		Attachment: &signable.Attachment{
			FileName: "risk analysis.pdf",
			MimeType: "application/pdf",
			Content:  sourcePDF(t, 3),
		},
	}

	record, err := gen.Render(context.Background(), entity, signedAssignment(t))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(record.Content, []byte("%PDF")))
	require.Contains(t, record.FileName, "-signed-")
	require.Contains(t, record.FileName, "01234567efghij")

	pages, err := pdfapi.PageCount(bytes.NewReader(record.Content), nil)
	require.NoError(t, err)
	require.Equal(t, 3, pages)
}

func TestRenderStampConcurrent(t *testing.T) {
	gen := newTestGenerator(t)
	entity := &signable.Entity{
		ID:    "entity-1",
		Kind:  signable.KindRiskAnalysis,
		Title: "Working at height",
		Attachment: &signable.Attachment{
			FileName: "risk analysis.pdf",
			MimeType: "application/pdf",
			Content:  sourcePDF(t, 2),
		},
	}
	assignment := signedAssignment(t)

	var g errgroup.Group
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			record, err := gen.Render(context.Background(), entity, assignment)
			if err != nil {
				return err
			}
			_, err = pdfapi.PageCount(bytes.NewReader(record.Content), nil)
			return err
		})
	}
	require.NoError(t, g.Wait())
}

func TestRenderStampRequiresEmbeddableSignature(t *testing.T) {
	gen := newTestGenerator(t)
	entity := &signable.Entity{
		ID:    "entity-1",
		Kind:  signable.KindDocument,
		Title: "Operating manual",
		Attachment: &signable.Attachment{
			FileName: "manual.pdf",
			MimeType: "application/pdf",
			Content:  sourcePDF(t, 2),
		},
	}
	assignment := signedAssignment(t)
	assignment.Signature = []byte("not a png")

	record, err := gen.Render(context.Background(), entity, assignment)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(record.FileName, "DOC_"), record.FileName)
	require.NotContains(t, record.FileName, "-signed-")
}

func TestRenderFallsBackOnBrokenAttachment(t *testing.T) {
	gen := newTestGenerator(t)
	entity := &signable.Entity{
		ID:    "entity-2",
		Kind:  signable.KindDocument,
		Title: "Site policy",
		Attachment: &signable.Attachment{
			FileName: "policy.pdf",
			MimeType: "application/pdf",
			Content:  []byte("not a pdf at all"),
		},
	}

	record, err := gen.Render(context.Background(), entity, signedAssignment(t))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(record.Content, []byte("%PDF")))
	require.True(t, strings.HasPrefix(record.FileName, "DOC_"), record.FileName)
}

func TestRenderSynthesizesWithoutAttachment(t *testing.T) {
	gen := newTestGenerator(t)
	entity := &signable.Entity{
		ID:    "entity-3",
		Kind:  signable.KindSafetyTalk,
		Title: "Morning safety talk",
		Details: []signable.Detail{
			{Label: "Site", Value: "North yard"},
			{Label: "Topic", Value: "Ladder inspection and the three points of contact rule"},
		},
	}

	record, err := gen.Render(context.Background(), entity, signedAssignment(t))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(record.Content, []byte("%PDF")))
	require.Equal(t,
		"TALK_Juan_Prez_12345678-9_20260314_092653_01234567efghij.pdf",
		record.FileName)
	require.Equal(t, "application/pdf", record.MimeType)
	require.Equal(t, "entity-3_worker-1_0123456789abcdefghij", record.Key())

	// Accents and the token ellipsis land as cp1252 in the page stream.
	text := extractedContent(t, record.Content)
	require.Contains(t, text, "Juan P\xe9rez")
	require.Contains(t, text, "01234567\x85efghij")
}

func TestRenderSynthesizesWithUndecodableSignature(t *testing.T) {
	gen := newTestGenerator(t)
	entity := &signable.Entity{
		ID:    "entity-3",
		Kind:  signable.KindSafetyTalk,
		Title: "Morning safety talk",
	}
	assignment := signedAssignment(t)
	// Header survives, body does not: DecodeConfig passes but a full decode
	// fails, so the placeholder must be drawn instead of failing Output.
	assignment.Signature = assignment.Signature[:40]

	record, err := gen.Render(context.Background(), entity, assignment)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(record.Content, []byte("%PDF")))
	require.Contains(t, extractedContent(t, record.Content), "Signature image unavailable")
}

func TestRenderFitnessOutcome(t *testing.T) {
	cases := []struct {
		name    string
		fit     bool
		answers []signable.FitnessResponse
		want    string
	}{
		{
			name: "all yes is fit",
			fit:  true,
			answers: []signable.FitnessResponse{
				{ID: "q1", Answer: true},
				{ID: "q2", Answer: true},
			},
			want: "FIT FOR WORK",
		},
		{
			name: "single no is not fit",
			fit:  false,
			answers: []signable.FitnessResponse{
				{ID: "q1", Answer: true},
				{ID: "q2", Answer: false},
			},
			want: "NOT FIT FOR WORK",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := newTestGenerator(t)
			assignment := signedAssignment(t)
			assignment.FitOutcome = &tc.fit
			assignment.Responses = tc.answers
			entity := &signable.Entity{
				ID:    "entity-4",
				Kind:  signable.KindFitnessEvaluation,
				Title: "Daily fitness check",
				Questions: []signable.FitnessQuestion{
					{ID: "q1", Prompt: "Did you sleep at least 7 hours?"},
					{ID: "q2", Prompt: "Are you free of medication that causes drowsiness?"},
				},
			}

			record, err := gen.Render(context.Background(), entity, assignment)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(record.FileName, "FFW_"), record.FileName)

			pages, err := pdfapi.PageCount(bytes.NewReader(record.Content), nil)
			require.NoError(t, err)
			require.Equal(t, 1, pages)

			text := extractedContent(t, record.Content)
			require.Contains(t, text, tc.want)
			if tc.fit {
				require.NotContains(t, text, "NOT FIT FOR WORK")
			}
		})
	}
}

func TestRenderRejectsUnsignedAssignment(t *testing.T) {
	gen := newTestGenerator(t)
	entity := &signable.Entity{ID: "entity-5", Kind: signable.KindDocument, Title: "Doc"}
	_, err := gen.Render(context.Background(), entity, &signable.Assignment{
		WorkerID: "worker-1",
		Token:    "tok",
	})
	require.Error(t, err)
}
