package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/Darsh908/QC-Tool/barcode"
	"github.com/Darsh908/QC-Tool/document"
	"github.com/Darsh908/QC-Tool/geo"
	"github.com/Darsh908/QC-Tool/template"
)

type fakeRecognizer struct {
	text  string
	calls int
}

func (f *fakeRecognizer) Recognize(ctx context.Context, page document.Page, rect geo.Rect) string {
	f.calls++
	return f.text
}

type fakeDetector struct {
	outcome barcode.Outcome
	calls   int
}

func (f *fakeDetector) Detect(ctx context.Context, page document.Page, rect geo.Rect) barcode.Outcome {
	f.calls++
	return f.outcome
}

func textPage() *document.MemoryPage {
	return &document.MemoryPage{
		W: 200, H: 200,
		Runs: []document.TextRun{
			{Rect: geo.Rect{X0: 10, Y0: 10, X1: 50, Y1: 20}, Text: "LOT 4471"},
			{Rect: geo.Rect{X0: 150, Y0: 150, X1: 190, Y1: 160}, Text: "elsewhere"},
		},
	}
}

func TestExtractDigitalText(t *testing.T) {
	d := NewDispatcher()
	f := template.Field{Name: "lot", Mode: template.ModeText}
	rect := geo.Rect{X0: 0, Y0: 0, X1: 100, Y1: 100}

	res, err := d.Extract(context.Background(), textPage(), f, rect)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Value != "LOT 4471" || res.Method != "digital" || res.Confidence != "extracted" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Type != template.ModeText {
		t.Fatalf("unexpected type: %s", res.Type)
	}
}

func TestExtractDigitalTextEmptyRegion(t *testing.T) {
	d := NewDispatcher()
	f := template.Field{Name: "blank", Mode: template.ModeText}
	rect := geo.Rect{X0: 60, Y0: 60, X1: 90, Y1: 90}

	res, err := d.Extract(context.Background(), textPage(), f, rect)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Value != "" || res.Confidence != "empty" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestExtractOCRText(t *testing.T) {
	rec := &fakeRecognizer{text: "BATCH 12"}
	d := NewDispatcher(WithRecognizer(rec))
	f := template.Field{Name: "batch", Mode: template.ModeText, OCR: true}

	res, err := d.Extract(context.Background(), textPage(), f, geo.Rect{X0: 0, Y0: 0, X1: 50, Y1: 50})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Value != "BATCH 12" || res.Method != "ocr" || res.Confidence != "extracted" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if rec.calls != 1 {
		t.Fatalf("recognizer called %d times", rec.calls)
	}
}

func TestExtractOCRFailureEmbedsDiagnostic(t *testing.T) {
	rec := &fakeRecognizer{text: "[OCR Failed: engine unavailable]"}
	d := NewDispatcher(WithRecognizer(rec))
	f := template.Field{Name: "batch", Mode: template.ModeText, OCR: true}

	res, err := d.Extract(context.Background(), textPage(), f, geo.Rect{X0: 0, Y0: 0, X1: 50, Y1: 50})
	if err != nil {
		t.Fatalf("diagnostic value must not be a dispatch error, got %v", err)
	}
	if !strings.HasPrefix(res.Value, "[OCR Failed:") {
		t.Fatalf("diagnostic not embedded: %+v", res)
	}
}

func TestExtractImageOverlap(t *testing.T) {
	page := &document.MemoryPage{
		W: 200, H: 200,
		Placements: []geo.Rect{
			{X0: 10, Y0: 10, X1: 40, Y1: 40},
			{X0: 30, Y0: 30, X1: 60, Y1: 60},
			{X0: 150, Y0: 150, X1: 180, Y1: 180},
		},
	}
	d := NewDispatcher()
	f := template.Field{Name: "logo", Mode: template.ModeImage}

	res, err := d.Extract(context.Background(), page, f, geo.Rect{X0: 0, Y0: 0, X1: 50, Y1: 50})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Value != "2 image(s) found" {
		t.Fatalf("unexpected value: %q", res.Value)
	}
	if res.HasImages == nil || !*res.HasImages || res.ImageCount == nil || *res.ImageCount != 2 {
		t.Fatalf("unexpected counters: %+v", res)
	}
}

func TestExtractImageNoOverlap(t *testing.T) {
	page := &document.MemoryPage{
		W: 200, H: 200,
		Placements: []geo.Rect{{X0: 150, Y0: 150, X1: 180, Y1: 180}},
	}
	d := NewDispatcher()
	f := template.Field{Name: "logo", Mode: template.ModeImage}

	res, err := d.Extract(context.Background(), page, f, geo.Rect{X0: 0, Y0: 0, X1: 50, Y1: 50})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Value != "No images found" {
		t.Fatalf("unexpected value: %q", res.Value)
	}
	if res.HasImages == nil || *res.HasImages || res.ImageCount == nil || *res.ImageCount != 0 {
		t.Fatalf("unexpected counters: %+v", res)
	}
}

func TestExtractBarcodeDecoded(t *testing.T) {
	det := &fakeDetector{outcome: barcode.Outcome{
		Decoded: true,
		Codes:   []barcode.Code{{Type: "QR_CODE", Data: "A"}, {Type: "EAN_13", Data: "B"}},
		Method:  "qr@5x/threshold",
	}}
	d := NewDispatcher(WithDetector(det))
	f := template.Field{Name: "qr_serial", Mode: template.ModeBarcode}

	res, err := d.Extract(context.Background(), textPage(), f, geo.Rect{X0: 0, Y0: 0, X1: 50, Y1: 50})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Value != "[QR_CODE] A, [EAN_13] B" {
		t.Fatalf("unexpected value: %q", res.Value)
	}
	if res.Confidence != "scanned" || res.Method != "qr@5x/threshold" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Decoded == nil || !*res.Decoded || len(res.Codes) != 2 {
		t.Fatalf("unexpected codes: %+v", res)
	}
}

func TestExtractBarcodeNotFound(t *testing.T) {
	det := &fakeDetector{outcome: barcode.Outcome{Error: "no code found: multi@3x/original: not found"}}
	d := NewDispatcher(WithDetector(det))
	f := template.Field{Name: "qr_serial", Mode: template.ModeBarcode}

	res, err := d.Extract(context.Background(), textPage(), f, geo.Rect{X0: 0, Y0: 0, X1: 50, Y1: 50})
	if err != nil {
		t.Fatalf("an undecoded region must not be a dispatch error, got %v", err)
	}
	if res.Value != "No code found" || res.Confidence != "empty" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Decoded == nil || *res.Decoded {
		t.Fatalf("decoded flag not false: %+v", res)
	}
	if !strings.HasPrefix(res.Error, "no code found") {
		t.Fatalf("diagnostics lost: %q", res.Error)
	}
}

func TestExtractUnknownModeIsConfigError(t *testing.T) {
	d := NewDispatcher()
	f := template.Field{Name: "x", Mode: template.Mode("sculpture")}

	_, err := d.Extract(context.Background(), textPage(), f, geo.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10})
	if err == nil {
		t.Fatalf("expected configuration error for unknown mode")
	}
	if !strings.Contains(err.Error(), "sculpture") {
		t.Fatalf("error does not name the mode: %v", err)
	}
}

func TestExtractNormalizesAndRoundsCoordinates(t *testing.T) {
	d := NewDispatcher()
	f := template.Field{Name: "lot", Mode: template.ModeText}
	rect := geo.Rect{X0: 100.123456, Y0: 50.999, X1: 10.5, Y1: 5.001}

	res, err := d.Extract(context.Background(), textPage(), f, rect)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := geo.Rect{X0: 10.5, Y0: 5.0, X1: 100.12, Y1: 51.0}
	if res.Coordinates != want {
		t.Fatalf("Coordinates = %+v, want %+v", res.Coordinates, want)
	}
}
