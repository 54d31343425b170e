// Package ocr defines the text-recognition provider contract used by the
// extraction pipeline and the region recognizer that feeds it. The interface
// is small and transport-agnostic so engines can be backed by native
// libraries or remote services without leaking provider concerns into
// callers; the default Tesseract-backed engine lives in the tesseract
// subpackage.
package ocr

import "context"

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
)

// Input encapsulates a single image submitted for recognition.
type Input struct {
	// ID is an optional caller-provided identifier echoed back in the Result.
	ID string
	// Image is the encoded payload in the format declared by Format.
	Image []byte
	// Format declares the image content type.
	Format ImageFormat
	// DPI carries the effective dots-per-inch; zero means unknown.
	DPI int
	// Languages lists trained-data hints (e.g., "eng").
	Languages []string
	// Metadata passes engine-specific knobs (e.g. Tesseract variables)
	// without hard-coding them into the API surface.
	Metadata map[string]string
}

// Result is the recognition output for one input.
type Result struct {
	InputID   string
	PlainText string
	// Confidence is the mean word confidence in [0,1]; zero when the engine
	// does not report one.
	Confidence float64
}

// Engine is the provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

var defaultEngine Engine = noopEngine{}

// DefaultEngine returns the process-wide default engine. Importing the
// tesseract subpackage replaces the initial no-op engine.
func DefaultEngine() Engine { return defaultEngine }

// SetDefaultEngine replaces the process-wide default engine.
func SetDefaultEngine(e Engine) { defaultEngine = e }

type noopEngine struct{}

func (noopEngine) Name() string { return "noop" }

func (noopEngine) Recognize(ctx context.Context, in Input) (Result, error) {
	return Result{InputID: in.ID}, nil
}
