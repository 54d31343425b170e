package preprocess

import (
	"fmt"
	"image"
)

// Variant names one preprocessing recipe. Recognition strategies select an
// ordered list of variants to try; names are stable because they appear in
// chain configuration files and in diagnostics.
type Variant string

const (
	VariantOriginal          Variant = "original"
	VariantGrayscale         Variant = "grayscale"
	VariantCLAHE             Variant = "clahe"
	VariantThreshold         Variant = "threshold"
	VariantAdaptive          Variant = "adaptive"
	VariantInverted          Variant = "inverted"
	VariantInvertedThreshold Variant = "inverted_threshold"
	// VariantBlurAdaptive blurs before adaptive thresholding to suppress
	// print-texture noise around low-contrast symbols.
	VariantBlurAdaptive Variant = "blur_adaptive"
)

// Default kernel parameters, matched to the symbol sizes that show up on
// packaging artwork rendered at 3x-5x zoom.
const (
	adaptiveBlockSize = 11
	adaptiveC         = 2
	fixedThreshold    = 128
	claheClipLimit    = 3.0
	claheTiles        = 8
	blurSigma         = 1.0
)

// EscalationCatalog is the variant order the barcode detector sweeps at its
// high-zoom escalation step.
func EscalationCatalog() []Variant {
	return []Variant{
		VariantOriginal,
		VariantGrayscale,
		VariantCLAHE,
		VariantThreshold,
		VariantAdaptive,
		VariantInverted,
		VariantInvertedThreshold,
	}
}

// Apply runs the named variant over img. Unknown variants are an error so a
// typo in a chain configuration surfaces instead of silently skipping work.
func Apply(v Variant, img image.Image) (image.Image, error) {
	switch v {
	case VariantOriginal, "":
		return img, nil
	case VariantGrayscale:
		return Grayscale(img), nil
	case VariantCLAHE:
		return CLAHE(Grayscale(img), claheClipLimit, claheTiles), nil
	case VariantThreshold:
		return Threshold(Grayscale(img), fixedThreshold), nil
	case VariantAdaptive:
		return AdaptiveThreshold(Grayscale(img), adaptiveBlockSize, adaptiveC), nil
	case VariantInverted:
		return Invert(Grayscale(img)), nil
	case VariantInvertedThreshold:
		return Threshold(Invert(Grayscale(img)), fixedThreshold), nil
	case VariantBlurAdaptive:
		return AdaptiveThreshold(Grayscale(GaussianBlur(img, blurSigma)), adaptiveBlockSize, adaptiveC), nil
	}
	return nil, fmt.Errorf("unknown preprocessing variant %q", v)
}

// ForOCR runs the recognition chain used ahead of OCR: grayscale, adaptive
// threshold, then the optional denoise pass. Callers fall back to plain
// grayscale when this returns an error.
func ForOCR(img image.Image) (*image.Gray, error) {
	g := Grayscale(img)
	b := g.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("preprocess for ocr: empty image")
	}
	return Denoise(AdaptiveThreshold(g, adaptiveBlockSize, adaptiveC)), nil
}
