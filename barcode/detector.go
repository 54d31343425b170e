package barcode

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/Darsh908/QC-Tool/document"
	"github.com/Darsh908/QC-Tool/geo"
	"github.com/Darsh908/QC-Tool/observability"
	"github.com/Darsh908/QC-Tool/preprocess"
)

// Detector runs the fallback chain over page regions. It is safe for
// sequential reuse across fields and pages; all state is per-call.
type Detector struct {
	chain    ChainConfig
	decoders map[string]Decoder
	caps     Capabilities
	logger   observability.Logger
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithChain replaces the default attempt chain.
func WithChain(chain ChainConfig) DetectorOption {
	return func(d *Detector) {
		if len(chain.Steps) > 0 {
			d.chain = chain
		}
	}
}

// WithCapabilities injects the startup capability probe result. Steps whose
// backend is unavailable are skipped with a diagnostic.
func WithCapabilities(caps Capabilities) DetectorOption {
	return func(d *Detector) { d.caps = caps }
}

// WithDecoder registers or replaces a backend under the given name.
func WithDecoder(name string, dec Decoder) DetectorOption {
	return func(d *Detector) { d.decoders[name] = dec }
}

// WithLogger sets the detector's logger.
func WithLogger(logger observability.Logger) DetectorOption {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDetector builds a detector with the default chain and built-in backends.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		chain:    DefaultChain(),
		decoders: builtinDecoders(),
		logger:   observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect evaluates the chain over the given region and returns the first
// non-empty decode, or an undecoded outcome carrying the aggregated
// diagnostics. Detect never returns an error: a region without a readable
// symbol is a normal result.
func (d *Detector) Detect(ctx context.Context, page document.Page, rect geo.Rect) Outcome {
	var diags []string
	renders := make(map[float64]image.Image)
	failed := make(map[float64]bool)

	for _, step := range d.chain.Steps {
		if err := ctx.Err(); err != nil {
			diags = append(diags, fmt.Sprintf("chain aborted: %v", err))
			break
		}
		label := step.label()

		dec, ok := d.decoders[step.Decoder]
		if !ok {
			diags = append(diags, fmt.Sprintf("%s: unknown decoder", label))
			continue
		}
		if !d.caps.Available(step.Decoder) {
			diags = append(diags, fmt.Sprintf("%s: backend unavailable", label))
			continue
		}

		img, err := d.renderCached(ctx, page, rect, step.Zoom, renders, failed)
		if err != nil {
			diags = append(diags, fmt.Sprintf("%s: %v", label, err))
			continue
		}

		prepared, err := preprocess.Apply(step.Variant, img)
		if err != nil {
			diags = append(diags, fmt.Sprintf("%s: %v", label, err))
			continue
		}

		codes, err := safeDecode(ctx, dec, prepared)
		if err != nil {
			diags = append(diags, fmt.Sprintf("%s: %v", label, err))
			continue
		}
		if len(codes) == 0 {
			diags = append(diags, fmt.Sprintf("%s: empty decode", label))
			continue
		}

		d.logger.Debug("symbol decoded",
			observability.String("method", label),
			observability.Int("codes", len(codes)))
		return Outcome{Decoded: true, Codes: dedupe(codes), Method: label}
	}

	return Outcome{Error: aggregate(diags)}
}

// renderCached rasterizes the region once per zoom level; later steps at the
// same zoom reuse the raster. A failed render is remembered so the chain does
// not retry a render that cannot succeed.
func (d *Detector) renderCached(ctx context.Context, page document.Page, rect geo.Rect, zoom float64, renders map[float64]image.Image, failed map[float64]bool) (image.Image, error) {
	if img, ok := renders[zoom]; ok {
		return img, nil
	}
	if failed[zoom] {
		return nil, fmt.Errorf("render at %gx previously failed", zoom)
	}
	img, err := page.RenderRegion(ctx, rect, zoom)
	if err != nil {
		failed[zoom] = true
		return nil, fmt.Errorf("render at %gx: %w", zoom, err)
	}
	renders[zoom] = img
	return img, nil
}

func aggregate(diags []string) string {
	if len(diags) == 0 {
		return "no code found"
	}
	return "no code found: " + strings.Join(diags, "; ")
}
