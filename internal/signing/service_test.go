package signing

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"previnet/internal/certificate"
	"previnet/internal/platform/metrics"
	"previnet/internal/signable"
	"previnet/internal/syncqueue"
	"previnet/internal/verification"
	"previnet/internal/worker"
)

type fixture struct {
	service  *Service
	entities *signable.InMemoryStore
	workers  *worker.InMemoryStore
	certs    *certificate.InMemoryStore
	views    *verification.InMemoryViewTracker
	queue    *syncqueue.InMemoryQueue
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		entities: signable.NewInMemoryStore(),
		workers:  worker.NewInMemoryStore(),
		certs:    certificate.NewInMemoryStore(),
		views:    verification.NewInMemoryViewTracker(),
		queue:    syncqueue.NewInMemoryQueue(),
	}
	f.service = NewService(
		f.entities, f.workers, f.certs,
		certificate.NewGenerator(m, logger),
		verification.NewGate(), f.views, f.queue, m, logger,
	)
	return f
}

func (f *fixture) addWorker(t *testing.T, id, name, externalID string) {
	t.Helper()
	require.NoError(t, f.workers.Create(context.Background(), &worker.Worker{
		ID:         id,
		Name:       name,
		ExternalID: externalID,
		CreatedAt:  time.Now(),
	}))
}

func (f *fixture) addEntity(t *testing.T, entity *signable.Entity) {
	t.Helper()
	if entity.Status == "" {
		entity.Status = signable.StatusPublished
	}
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = time.Now()
	}
	require.NoError(t, f.entities.Put(context.Background(), entity))
}

func testSignature(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 80, 30))
	for x := 5; x < 75; x++ {
		img.Set(x, 15, color.Black)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testPDF(t *testing.T) []byte {
	t.Helper()
	f := fpdf.New("P", "pt", "A4", "")
	f.AddPage()
	f.SetFont("Helvetica", "", 12)
	f.Text(72, 72, "induction material")
	var buf bytes.Buffer
	require.NoError(t, f.Output(&buf))
	return buf.Bytes()
}

func intPtr(i int) *int { return &i }

func talkEntity() *signable.Entity {
	return &signable.Entity{
		ID:    "talk-1",
		Kind:  signable.KindSafetyTalk,
		Title: "Lockout tagout refresher",
		Challenge: &signable.Challenge{Questions: []signable.ChallengeQuestion{
			{ID: "q1", Prompt: "Lock before work?", Options: []string{"No", "Yes"}, CorrectOption: 1},
			{ID: "q2", Prompt: "Color of the lock tag", ExpectedAnswer: "red"},
		}},
		Assignments: []signable.Assignment{{WorkerID: "w1", Token: "token-talk-w1"}},
	}
}

func goodAnswers() map[string]signable.Answer {
	return map[string]signable.Answer{
		"q1": {Option: intPtr(1)},
		"q2": {Text: " Red "},
	}
}

func TestSignHappyPath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addWorker(t, "w1", "Juan Pérez", "12.345.678-9")
	f.addEntity(t, talkEntity())

	result, err := f.service.Sign(ctx, Request{
		EntityID:  "talk-1",
		WorkerID:  "w1",
		Signature: testSignature(t),
		Answers:   goodAnswers(),
		Geo:       &signable.Geo{Lat: -33.45, Lng: -70.66, Accuracy: 8},
	})
	require.NoError(t, err)
	require.True(t, result.Assignment.Signed())
	require.Equal(t, "token-talk-w1", result.Assignment.Token)
	require.Equal(t, "Juan Pérez", result.Assignment.SignerName)
	require.NotNil(t, result.Assignment.VerificationAt)
	require.NotNil(t, result.Certificate)
	require.True(t, bytes.HasPrefix(result.Certificate.Content, []byte("%PDF")))

	stored, err := f.certs.Get(ctx, "talk-1", "w1", "token-talk-w1")
	require.NoError(t, err)
	require.Equal(t, result.Certificate.FileName, stored.FileName)

	events, err := f.queue.Drain(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "talk", events[0].Kind)
}

func TestSignTwiceFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addWorker(t, "w1", "Juan Pérez", "12.345.678-9")
	f.addEntity(t, talkEntity())

	req := Request{
		EntityID:  "talk-1",
		WorkerID:  "w1",
		Signature: testSignature(t),
		Answers:   goodAnswers(),
	}
	_, err := f.service.Sign(ctx, req)
	require.NoError(t, err)

	_, err = f.service.Sign(ctx, req)
	require.ErrorIs(t, err, ErrAlreadySigned)
}

func TestSignGateFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addWorker(t, "w1", "Juan Pérez", "12.345.678-9")
	f.addEntity(t, talkEntity())

	_, err := f.service.Sign(ctx, Request{EntityID: "missing", WorkerID: "w1", Signature: testSignature(t)})
	require.ErrorIs(t, err, ErrEntityNotFound)

	_, err = f.service.Sign(ctx, Request{EntityID: "talk-1", WorkerID: "other", Signature: testSignature(t)})
	require.ErrorIs(t, err, ErrAssignmentNotFound)

	_, err = f.service.Sign(ctx, Request{EntityID: "talk-1", WorkerID: "w1", Answers: goodAnswers()})
	require.ErrorIs(t, err, ErrSignatureMissing)

	_, err = f.service.Sign(ctx, Request{EntityID: "talk-1", WorkerID: "w1", Signature: testSignature(t)})
	require.ErrorIs(t, err, ErrVerificationRequired)

	_, err = f.service.Sign(ctx, Request{
		EntityID: "talk-1", WorkerID: "w1", Signature: testSignature(t),
		Answers: map[string]signable.Answer{
			"q1": {Option: intPtr(0)},
			"q2": {Text: "red"},
		},
	})
	require.ErrorIs(t, err, ErrVerificationFailed)
}

func TestSignRequiresAttachmentView(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addWorker(t, "w1", "Juan Pérez", "12.345.678-9")
	f.addEntity(t, &signable.Entity{
		ID:    "induction-1",
		Kind:  signable.KindSiteInduction,
		Title: "North yard induction",
		Attachment: &signable.Attachment{
			FileName: "induction.pdf",
			MimeType: "application/pdf",
			Content:  testPDF(t),
		},
		Assignments: []signable.Assignment{{WorkerID: "w1", Token: "token-ind-w1"}},
	})

	req := Request{EntityID: "induction-1", WorkerID: "w1", Signature: testSignature(t)}
	_, err := f.service.Sign(ctx, req)
	require.ErrorIs(t, err, ErrAttachmentNotViewed)

	require.NoError(t, f.views.MarkViewed(ctx, "induction-1", "w1"))
	result, err := f.service.Sign(ctx, req)
	require.NoError(t, err)
	// PDF attachment means the certificate is the stamped original.
	require.Contains(t, result.Certificate.FileName, "-signed-")
}

func TestSignFitnessOutcome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addWorker(t, "w1", "Juan Pérez", "12.345.678-9")

	questions := []signable.FitnessQuestion{
		{ID: "q1", Prompt: "Slept enough?"},
		{ID: "q2", Prompt: "No impairing medication?"},
	}
	cases := []struct {
		name      string
		responses []signable.FitnessResponse
		wantFit   bool
	}{
		{"all yes is fit", []signable.FitnessResponse{{ID: "q1", Answer: true}, {ID: "q2", Answer: true}}, true},
		{"one no is not fit", []signable.FitnessResponse{{ID: "q1", Answer: true}, {ID: "q2", Answer: false}}, false},
		{"missing answer is not fit", []signable.FitnessResponse{{ID: "q1", Answer: true}}, false},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := "ffw-" + string(rune('a'+i))
			f.addEntity(t, &signable.Entity{
				ID:          id,
				Kind:        signable.KindFitnessEvaluation,
				Title:       "Daily check",
				Questions:   questions,
				Assignments: []signable.Assignment{{WorkerID: "w1", Token: "token-" + id}},
			})
			result, err := f.service.Sign(ctx, Request{
				EntityID:  id,
				WorkerID:  "w1",
				Signature: testSignature(t),
				Responses: tc.responses,
			})
			require.NoError(t, err)
			require.NotNil(t, result.Assignment.FitOutcome)
			require.Equal(t, tc.wantFit, *result.Assignment.FitOutcome)
		})
	}
}

func TestSignEnrollmentEnablesWorker(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addWorker(t, "w1", "Juan Pérez", "12.345.678-9")
	f.addEntity(t, &signable.Entity{
		ID:          "enrol-1",
		Kind:        signable.KindEnrollment,
		Title:       "Enrollment",
		WorkerRef:   "w1",
		Assignments: []signable.Assignment{{WorkerID: "w1", Token: "token-enrol-w1"}},
	})

	_, err := f.service.Sign(ctx, Request{
		EntityID:  "enrol-1",
		WorkerID:  "w1",
		Signature: testSignature(t),
	})
	require.NoError(t, err)

	w, err := f.workers.Get(ctx, "w1")
	require.NoError(t, err)
	require.True(t, w.Enabled)
}
