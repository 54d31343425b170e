package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/Darsh908/QC-Tool/document"
	"github.com/Darsh908/QC-Tool/geo"
	"github.com/Darsh908/QC-Tool/observability"
	"github.com/Darsh908/QC-Tool/preprocess"
)

// DefaultZoom is the rasterization factor for OCR regions. Higher zoom
// materially improves small-glyph recognition; 3x is the floor at which
// 6pt print on packaging artwork becomes reliable.
const DefaultZoom = 3.0

// PSM 6: assume a single uniform block of text, no layout analysis.
const psmSingleBlock = 6

// RegionRecognizer rasterizes a page region at high resolution, preprocesses
// it and runs the configured engine over it. Recognition failures never
// surface as errors: the returned string embeds the diagnostic instead, so a
// broken region cannot abort a page-level run.
type RegionRecognizer struct {
	engine Engine
	zoom   float64
	opts   []InputOption
	logger observability.Logger
}

// RecognizerOption configures a RegionRecognizer.
type RecognizerOption func(*RegionRecognizer)

// WithZoom overrides the rasterization zoom factor.
func WithZoom(zoom float64) RecognizerOption {
	return func(r *RegionRecognizer) {
		if zoom > 0 {
			r.zoom = zoom
		}
	}
}

// WithInputOptions appends options applied to every recognition input.
func WithInputOptions(opts ...InputOption) RecognizerOption {
	return func(r *RegionRecognizer) { r.opts = append(r.opts, opts...) }
}

// WithLogger sets the recognizer's logger.
func WithLogger(logger observability.Logger) RecognizerOption {
	return func(r *RegionRecognizer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegionRecognizer builds a recognizer around the given engine. A nil
// engine uses the process default.
func NewRegionRecognizer(engine Engine, opts ...RecognizerOption) *RegionRecognizer {
	if engine == nil {
		engine = DefaultEngine()
	}
	r := &RegionRecognizer{
		engine: engine,
		zoom:   DefaultZoom,
		logger: observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recognize OCRs the given page region and returns the trimmed text. On
// engine failure the result is a "[OCR Failed: ...]" diagnostic string.
func (r *RegionRecognizer) Recognize(ctx context.Context, page document.Page, rect geo.Rect) string {
	img, err := page.RenderRegion(ctx, rect, r.zoom)
	if err != nil {
		return fmt.Sprintf("[OCR Failed: %v]", err)
	}

	prepared := r.prepare(img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return fmt.Sprintf("[OCR Failed: encode region: %v]", err)
	}

	in := Input{
		Image:  buf.Bytes(),
		Format: ImageFormatPNG,
		DPI:    int(72 * r.zoom),
	}
	WithTesseractPSM(psmSingleBlock)(&in)
	for _, opt := range r.opts {
		opt(&in)
	}

	res, err := r.engine.Recognize(ctx, in)
	if err != nil {
		return fmt.Sprintf("[OCR Failed: %v]", err)
	}
	return strings.TrimSpace(res.PlainText)
}

// prepare runs the OCR preprocessing chain, falling back to plain grayscale
// when the chain cannot be applied.
func (r *RegionRecognizer) prepare(img image.Image) image.Image {
	pre, err := preprocess.ForOCR(img)
	if err != nil {
		r.logger.Warn("ocr preprocessing failed, using grayscale",
			observability.Error("error", err))
		return preprocess.Grayscale(img)
	}
	return pre
}
