package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/Darsh908/QC-Tool/barcode"
	"github.com/Darsh908/QC-Tool/document"
	"github.com/Darsh908/QC-Tool/geo"
	"github.com/Darsh908/QC-Tool/observability"
	"github.com/Darsh908/QC-Tool/ocr"
	"github.com/Darsh908/QC-Tool/template"
)

// Recognizer OCRs one page region. Satisfied by *ocr.RegionRecognizer.
type Recognizer interface {
	Recognize(ctx context.Context, page document.Page, rect geo.Rect) string
}

// CodeDetector runs the barcode fallback chain over one region. Satisfied by
// *barcode.Detector.
type CodeDetector interface {
	Detect(ctx context.Context, page document.Page, rect geo.Rect) barcode.Outcome
}

// Dispatcher routes a field definition to its extraction strategy based on
// the field's mode tag. Per-field failures are embedded in the result so one
// bad region never aborts the page.
type Dispatcher struct {
	recognizer Recognizer
	detector   CodeDetector
	logger     observability.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRecognizer replaces the OCR recognizer.
func WithRecognizer(r Recognizer) DispatcherOption {
	return func(d *Dispatcher) {
		if r != nil {
			d.recognizer = r
		}
	}
}

// WithDetector replaces the barcode detector.
func WithDetector(det CodeDetector) DispatcherOption {
	return func(d *Dispatcher) {
		if det != nil {
			d.detector = det
		}
	}
}

// WithDispatcherLogger sets the dispatcher's logger.
func WithDispatcherLogger(logger observability.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher builds a dispatcher with default strategies: the process OCR
// engine and the default barcode chain.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		recognizer: ocr.NewRegionRecognizer(nil),
		detector:   barcode.NewDetector(),
		logger:     observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Extract evaluates one field definition on one page. The rect is the field
// rectangle already scaled into page space; it is normalized and rounded for
// output here. Extract returns an error only for configuration mistakes (an
// unknown mode); every runtime failure is embedded in the result.
func (d *Dispatcher) Extract(ctx context.Context, page document.Page, f template.Field, rect geo.Rect) (FieldResult, error) {
	coords := rect.Normalize().Round(coordinateDecimals)

	switch f.Mode {
	case template.ModeText:
		return d.extractText(ctx, page, f, rect, coords), nil
	case template.ModeImage:
		return d.extractImage(page, rect, coords), nil
	case template.ModeBarcode:
		return d.extractBarcode(ctx, page, rect, coords), nil
	}
	return FieldResult{}, fmt.Errorf("field %q: unknown mode %q", f.Name, f.Mode)
}

// extractText reads the region's digital text layer, or OCRs the rendered
// region when the field opts into OCR.
func (d *Dispatcher) extractText(ctx context.Context, page document.Page, f template.Field, rect geo.Rect, coords geo.Rect) FieldResult {
	res := FieldResult{Type: template.ModeText, Coordinates: coords}

	if f.OCR {
		res.Method = "ocr"
		res.Value = d.recognizer.Recognize(ctx, page, rect)
	} else {
		res.Method = "digital"
		text, err := page.TextInRect(rect)
		if err != nil {
			res.Error = err.Error()
			d.logger.Warn("text extraction failed",
				observability.String("field", f.Name),
				observability.Error("error", err))
		}
		res.Value = strings.TrimSpace(text)
	}

	if res.Value == "" {
		res.Confidence = "empty"
	} else {
		res.Confidence = "extracted"
	}
	return res
}

// extractImage counts the page's image placements intersecting the region.
func (d *Dispatcher) extractImage(page document.Page, rect geo.Rect, coords geo.Rect) FieldResult {
	res := FieldResult{Type: template.ModeImage, Coordinates: coords}

	placements, err := page.ImagePlacements()
	if err != nil {
		res.Value = "No images found"
		res.HasImages = boolPtr(false)
		res.ImageCount = intPtr(0)
		res.Error = err.Error()
		return res
	}

	count := 0
	for _, p := range placements {
		if rect.Intersects(p) {
			count++
		}
	}
	res.HasImages = boolPtr(count > 0)
	res.ImageCount = intPtr(count)
	if count > 0 {
		res.Value = fmt.Sprintf("%d image(s) found", count)
	} else {
		res.Value = "No images found"
	}
	return res
}

// extractBarcode runs the fallback chain and flattens the outcome.
func (d *Dispatcher) extractBarcode(ctx context.Context, page document.Page, rect geo.Rect, coords geo.Rect) FieldResult {
	res := FieldResult{Type: template.ModeBarcode, Coordinates: coords}

	out := d.detector.Detect(ctx, page, rect)
	res.Decoded = boolPtr(out.Decoded)
	if out.Decoded {
		res.Codes = out.Codes
		res.Method = out.Method
		res.Confidence = "scanned"
		parts := make([]string, len(out.Codes))
		for i, c := range out.Codes {
			parts[i] = fmt.Sprintf("[%s] %s", c.Type, c.Data)
		}
		res.Value = strings.Join(parts, ", ")
	} else {
		res.Value = "No code found"
		res.Confidence = "empty"
		res.Error = out.Error
	}
	return res
}
