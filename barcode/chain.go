package barcode

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Darsh908/QC-Tool/preprocess"
)

// Rasterization zoom factors for the two chain phases: a fast baseline pass
// and a high-resolution escalation for small or dense symbols.
const (
	BaselineZoom   = 3.0
	EscalationZoom = 5.0
)

// Step is one decode attempt: rasterize the region at Zoom, apply Variant,
// run Decoder. Steps are data so new backends and variants can be appended
// without touching the chain's control structure.
type Step struct {
	Zoom    float64            `yaml:"zoom"`
	Variant preprocess.Variant `yaml:"variant"`
	Decoder string             `yaml:"decoder"`
}

func (s Step) label() string {
	v := s.Variant
	if v == "" {
		v = preprocess.VariantOriginal
	}
	return fmt.Sprintf("%s@%gx/%s", s.Decoder, s.Zoom, v)
}

// ChainConfig is the ordered list of attempts the detector evaluates lazily,
// stopping at the first non-empty decode. The relative priority of the
// QR-only and multi-symbology backends is deliberately configuration, not
// code.
type ChainConfig struct {
	Steps []Step `yaml:"steps"`
}

// Validate checks every step against the known decoder and variant names.
func (c ChainConfig) Validate() error {
	if len(c.Steps) == 0 {
		return fmt.Errorf("chain has no steps")
	}
	known := builtinDecoders()
	for i, s := range c.Steps {
		if s.Zoom <= 0 {
			return fmt.Errorf("step %d: zoom must be positive", i)
		}
		if _, ok := known[s.Decoder]; !ok {
			return fmt.Errorf("step %d: unknown decoder %q", i, s.Decoder)
		}
		if _, err := preprocess.Apply(s.Variant, blankProbe); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

// DefaultChain returns the stock attempt order. The baseline pass tries the
// general-purpose decoder on the raw raster first, then the QR-only reader on
// grayscale, then the heuristic QR reader, then a blur+adaptive-threshold
// retry of the general-purpose decoder. If all of those come up empty the
// chain escalates to a high-resolution sweep over the full preprocessing
// catalog, trying the QR-only reader before the multi-symbology reader on
// each variant.
func DefaultChain() ChainConfig {
	steps := []Step{
		{Zoom: BaselineZoom, Variant: preprocess.VariantOriginal, Decoder: DecoderMulti},
		{Zoom: BaselineZoom, Variant: preprocess.VariantGrayscale, Decoder: DecoderQR},
		{Zoom: BaselineZoom, Variant: preprocess.VariantOriginal, Decoder: DecoderHeuristicQR},
		{Zoom: BaselineZoom, Variant: preprocess.VariantBlurAdaptive, Decoder: DecoderMulti},
	}
	for _, v := range preprocess.EscalationCatalog() {
		steps = append(steps,
			Step{Zoom: EscalationZoom, Variant: v, Decoder: DecoderQR},
			Step{Zoom: EscalationZoom, Variant: v, Decoder: DecoderMulti},
		)
	}
	return ChainConfig{Steps: steps}
}

// LoadChainConfig reads and validates a YAML chain override.
func LoadChainConfig(path string) (ChainConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ChainConfig{}, fmt.Errorf("read chain config %s: %w", path, err)
	}
	var c ChainConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return ChainConfig{}, fmt.Errorf("parse chain config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return ChainConfig{}, fmt.Errorf("chain config %s: %w", path, err)
	}
	return c, nil
}
