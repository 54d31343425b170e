package barcode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Darsh908/QC-Tool/preprocess"
)

func TestDefaultChainIsValid(t *testing.T) {
	chain := DefaultChain()
	if err := chain.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestDefaultChainOrdering(t *testing.T) {
	chain := DefaultChain()
	first := chain.Steps[0]
	if first.Zoom != BaselineZoom || first.Decoder != DecoderMulti || first.Variant != preprocess.VariantOriginal {
		t.Fatalf("unexpected first step: %+v", first)
	}
	// Baseline phase before escalation phase.
	sawEscalation := false
	for _, s := range chain.Steps {
		if s.Zoom == EscalationZoom {
			sawEscalation = true
		} else if sawEscalation {
			t.Fatalf("baseline step after escalation: %+v", s)
		}
	}
	if !sawEscalation {
		t.Fatalf("chain never escalates")
	}
	// At escalation, the QR-only reader runs before the multi reader per
	// variant.
	for i := 0; i < len(chain.Steps)-1; i++ {
		s, next := chain.Steps[i], chain.Steps[i+1]
		if s.Zoom == EscalationZoom && next.Zoom == EscalationZoom && s.Variant == next.Variant {
			if s.Decoder != DecoderQR || next.Decoder != DecoderMulti {
				t.Fatalf("unexpected escalation pair: %+v then %+v", s, next)
			}
		}
	}
}

func TestStepLabel(t *testing.T) {
	s := Step{Zoom: 3, Variant: preprocess.VariantGrayscale, Decoder: DecoderQR}
	if got := s.label(); got != "qr@3x/grayscale" {
		t.Fatalf("label() = %q", got)
	}
	s = Step{Zoom: 5, Decoder: DecoderMulti}
	if got := s.label(); got != "multi@5x/original" {
		t.Fatalf("label() = %q", got)
	}
}

func TestLoadChainConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.yaml")
	body := `steps:
  - zoom: 4
    variant: grayscale
    decoder: qr
  - zoom: 4
    variant: adaptive
    decoder: multi
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadChainConfig(path)
	if err != nil {
		t.Fatalf("LoadChainConfig() error = %v", err)
	}
	if len(c.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(c.Steps))
	}
	if c.Steps[0].Decoder != DecoderQR || c.Steps[0].Variant != preprocess.VariantGrayscale {
		t.Fatalf("unexpected step: %+v", c.Steps[0])
	}
}

func TestLoadChainConfigRejectsUnknownDecoder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.yaml")
	body := "steps:\n  - zoom: 3\n    variant: original\n    decoder: sorcery\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadChainConfig(path); err == nil {
		t.Fatalf("expected error for unknown decoder")
	}
}

func TestLoadChainConfigRejectsUnknownVariant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.yaml")
	body := "steps:\n  - zoom: 3\n    variant: posterize\n    decoder: qr\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadChainConfig(path); err == nil {
		t.Fatalf("expected error for unknown variant")
	}
}

func TestValidateRejectsEmptyAndBadZoom(t *testing.T) {
	if err := (ChainConfig{}).Validate(); err == nil {
		t.Fatalf("empty chain must not validate")
	}
	c := ChainConfig{Steps: []Step{{Zoom: 0, Decoder: DecoderQR}}}
	if err := c.Validate(); err == nil {
		t.Fatalf("zero zoom must not validate")
	}
}

func TestLoadChainConfigMissingFile(t *testing.T) {
	if _, err := LoadChainConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
