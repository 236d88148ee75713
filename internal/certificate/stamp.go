package certificate

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"

	"previnet/internal/signable"
)

// Stamp box geometry, in points, anchored to the bottom-right corner of the
// last page.
const (
	stampMargin = 36.0
	stampBoxW   = 200.0
	stampBoxH   = 160.0
	stampPad    = 10.0
	stampImgH   = 62.0
)

// stampAttachment copies every page of the source PDF and draws the
// signature box on the last one. The page importer panics on malformed
// input, so the whole walk runs under recover; the caller treats any error
// as a cue to synthesize instead. A signature image that cannot be embedded
// also fails the whole stamp: a certificate titled "Signature" must carry
// one.
func stampAttachment(attachment *signable.Attachment, assignment *signable.Assignment) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("import source pdf: %v", r)
		}
	}()

	pages, err := pdfapi.PageCount(bytes.NewReader(attachment.Content), nil)
	if err != nil {
		return nil, fmt.Errorf("count source pages: %w", err)
	}
	if pages < 1 {
		return nil, fmt.Errorf("source pdf has no pages")
	}

	f := fpdf.New("P", "pt", "A4", "")
	f.SetAutoPageBreak(false, 0)

	// The package-level gofpdi helpers share one importer across goroutines;
	// each stamp gets its own.
	imp := gofpdi.NewImporter()
	var rs io.ReadSeeker = bytes.NewReader(attachment.Content)
	for pageno := 1; pageno <= pages; pageno++ {
		tpl := imp.ImportPageFromStream(f, &rs, pageno, "/MediaBox")
		w, h := importedPageSize(imp, pageno)
		f.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
		imp.UseImportedTemplate(f, tpl, 0, 0, w, h)
		if pageno == pages {
			if err := drawStampBox(f, w, h, assignment); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, fmt.Errorf("write stamped pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func importedPageSize(imp *gofpdi.Importer, pageno int) (w, h float64) {
	sizes := imp.GetPageSizes()
	box, ok := sizes[pageno]["/MediaBox"]
	if !ok || box["w"] <= 0 || box["h"] <= 0 {
		return 595.28, 841.89
	}
	return box["w"], box["h"]
}

func drawStampBox(f *fpdf.Fpdf, pageW, pageH float64, assignment *signable.Assignment) error {
	// Core fonts are cp1252; raw UTF-8 would garble accented names and the
	// token ellipsis.
	tr := f.UnicodeTranslatorFromDescriptor("")

	boxX := pageW - stampMargin - stampBoxW
	boxY := pageH - stampMargin - stampBoxH

	f.SetFillColor(255, 255, 255)
	f.SetAlpha(0.92, "Normal")
	f.Rect(boxX, boxY, stampBoxW, stampBoxH, "F")
	f.SetAlpha(1, "Normal")
	f.SetDrawColor(153, 153, 153)
	f.SetLineWidth(1)
	f.Rect(boxX, boxY, stampBoxW, stampBoxH, "D")

	textX := boxX + stampPad
	f.SetTextColor(0, 0, 0)

	f.SetFont("Helvetica", "B", 12)
	y := boxY + stampPad + 12
	f.Text(textX, y, "Signature")

	f.SetFont("Helvetica", "B", 10)
	y += 16
	f.Text(textX, y, tr(assignment.SignerName))

	f.SetFont("Helvetica", "", 9)
	y += 13
	f.Text(textX, y, tr("ID: "+assignment.SignerExternalID))
	y += 13
	f.Text(textX, y, assignment.SignedAt.Format("2006-01-02 15:04"))
	if assignment.Geo != nil {
		y += 13
		f.Text(textX, y, tr(formatGeo(assignment.Geo)))
	}

	if err := drawStampSignature(f, boxX, y+4, assignment.Signature); err != nil {
		return err
	}

	f.SetFont("Helvetica", "", 7)
	f.Text(textX, boxY+stampBoxH-stampPad, tr("Token: "+displayToken(assignment.Token)))
	return nil
}

// drawStampSignature fits the signature image into the remaining box width,
// capped at stampImgH, keeping aspect ratio. Any embed failure is returned
// so the stamp is abandoned in favor of the synthesized certificate.
func drawStampSignature(f *fpdf.Fpdf, boxX, topY float64, signature []byte) error {
	cfg, err := png.DecodeConfig(bytes.NewReader(signature))
	if err != nil {
		return fmt.Errorf("decode signature image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("signature image has no size")
	}
	maxW := stampBoxW - 2*stampPad
	w := maxW
	h := w * float64(cfg.Height) / float64(cfg.Width)
	if h > stampImgH {
		h = stampImgH
		w = h * float64(cfg.Width) / float64(cfg.Height)
	}

	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	f.RegisterImageOptionsReader("signature", opts, bytes.NewReader(signature))
	if !f.Ok() {
		return fmt.Errorf("embed signature image: %w", f.Error())
	}
	x := boxX + (stampBoxW-w)/2
	f.ImageOptions("signature", x, topY, w, h, false, opts, 0, "")
	return nil
}

func formatGeo(geo *signable.Geo) string {
	if geo.Accuracy > 0 {
		return fmt.Sprintf("lat %.5f, lng %.5f (±%.0fm)", geo.Lat, geo.Lng, geo.Accuracy)
	}
	return fmt.Sprintf("lat %.5f, lng %.5f", geo.Lat, geo.Lng)
}
