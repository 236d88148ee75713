package certificate

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/go-pdf/fpdf"

	"previnet/internal/signable"
)

// Synthesized certificate layout, in millimeters on A4.
const (
	synthMarginX  = 14.0
	synthTopY     = 18.0
	synthRightX   = 196.0
	synthValueX   = synthMarginX + 35
	synthLineStep = 5.0
	synthRowGap   = 7.0
	synthBreakY   = 268.0
	synthSigBoxW  = 170.0
	synthSigBoxH  = 45.0
)

type synthDoc struct {
	f *fpdf.Fpdf
	// tr maps UTF-8 to cp1252 for the core fonts. Untranslated text would
	// garble accents and panic SplitText on the token ellipsis.
	tr func(string) string
	y  float64
}

// synthesize renders a summary certificate from scratch: title, record
// details, the fitness questionnaire when present, the signer block, and the
// signature box.
func synthesize(entity *signable.Entity, assignment *signable.Assignment) ([]byte, error) {
	f := fpdf.New("P", "mm", "A4", "")
	f.SetAutoPageBreak(false, 0)
	f.AddPage()
	d := &synthDoc{f: f, tr: f.UnicodeTranslatorFromDescriptor(""), y: synthTopY}

	f.SetTextColor(0, 0, 0)
	f.SetFont("Helvetica", "B", 16)
	f.Text(synthMarginX, d.y, d.tr(entity.Title))
	d.y += 6

	f.SetFont("Helvetica", "", 10)
	f.SetTextColor(100, 100, 100)
	f.Text(synthMarginX, d.y, d.tr(signable.MetaFor(entity.Kind).Label))
	f.SetTextColor(0, 0, 0)
	d.y += 10

	for _, detail := range entity.Details {
		d.row(detail.Label, detail.Value)
	}
	if len(entity.Details) > 0 {
		d.divider()
	}

	if entity.Kind == signable.KindFitnessEvaluation {
		d.fitnessSection(entity, assignment)
		d.divider()
	}

	d.row("Signed by", assignment.SignerName)
	d.row("ID", assignment.SignerExternalID)
	d.row("Date/time", assignment.SignedAt.Format("2006-01-02 15:04:05"))
	d.row("Token", displayToken(assignment.Token))
	if assignment.Geo != nil {
		d.row("Geolocation", formatGeo(assignment.Geo))
	}

	d.signatureBox(assignment.Signature)

	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *synthDoc) ensure(height float64) {
	if d.y+height > synthBreakY {
		d.f.AddPage()
		d.y = synthTopY
	}
}

// row prints a bold label with a wrapped value column to its right.
func (d *synthDoc) row(label, value string) {
	valueW := synthRightX - synthValueX
	d.f.SetFont("Helvetica", "", 10)
	lines := d.f.SplitText(d.tr(value), valueW)
	if len(lines) == 0 {
		lines = []string{""}
	}
	d.ensure(synthRowGap + float64(len(lines)-1)*synthLineStep)

	d.f.SetFont("Helvetica", "B", 10)
	d.f.Text(synthMarginX, d.y, d.tr(label)+":")
	d.f.SetFont("Helvetica", "", 10)
	for i, line := range lines {
		d.f.Text(synthValueX, d.y+float64(i)*synthLineStep, line)
	}
	d.y += synthRowGap + float64(len(lines)-1)*synthLineStep
}

func (d *synthDoc) divider() {
	d.ensure(synthRowGap)
	d.f.SetDrawColor(200, 200, 200)
	d.f.SetLineWidth(0.2)
	d.f.Line(synthMarginX, d.y, synthRightX, d.y)
	d.y += synthRowGap
}

func (d *synthDoc) fitnessSection(entity *signable.Entity, assignment *signable.Assignment) {
	d.ensure(synthRowGap)
	d.f.SetFont("Helvetica", "B", 12)
	d.f.Text(synthMarginX, d.y, "Self-evaluation")
	d.y += synthRowGap

	answers := make(map[string]bool, len(assignment.Responses))
	for _, resp := range assignment.Responses {
		answers[resp.ID] = resp.Answer
	}
	for i, q := range entity.Questions {
		answer := "No"
		if answers[q.ID] {
			answer = "Yes"
		}
		d.row(fmt.Sprintf("Q%d (%s)", i+1, answer), q.Prompt)
	}

	if assignment.FitOutcome != nil {
		d.ensure(synthRowGap + 2)
		d.f.SetFont("Helvetica", "B", 13)
		if *assignment.FitOutcome {
			d.f.SetTextColor(34, 197, 94)
			d.f.Text(synthMarginX, d.y, "FIT FOR WORK")
		} else {
			d.f.SetTextColor(239, 68, 68)
			d.f.Text(synthMarginX, d.y, "NOT FIT FOR WORK")
		}
		d.f.SetTextColor(0, 0, 0)
		d.y += synthRowGap + 2
	}
}

func (d *synthDoc) signatureBox(signature []byte) {
	d.ensure(synthSigBoxH + synthRowGap)
	d.f.SetDrawColor(150, 150, 150)
	d.f.SetLineWidth(0.3)
	d.f.Rect(synthMarginX, d.y, synthSigBoxW, synthSigBoxH, "D")

	if !d.embedSignature(signature) {
		d.f.SetFont("Helvetica", "I", 9)
		d.f.SetTextColor(150, 150, 150)
		d.f.Text(synthMarginX+4, d.y+synthSigBoxH/2, "Signature image unavailable")
		d.f.SetTextColor(0, 0, 0)
	}
	d.y += synthSigBoxH + synthRowGap
}

// embedSignature places the image inside the box. fpdf latches image parse
// errors on the document, which would fail Output later, so a rejected image
// clears the latch and reports a miss; the caller draws the placeholder.
func (d *synthDoc) embedSignature(signature []byte) bool {
	if _, err := png.DecodeConfig(bytes.NewReader(signature)); err != nil {
		return false
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	d.f.RegisterImageOptionsReader("signature", opts, bytes.NewReader(signature))
	if !d.f.Ok() {
		d.f.ClearError()
		return false
	}
	d.f.ImageOptions("signature",
		synthMarginX+2, d.y+2, synthSigBoxW-4, synthSigBoxH-4, false, opts, 0, "")
	return true
}
