// Package barcode implements the multi-pass barcode and QR decode pipeline.
// Symbols on printed packaging are frequently low-contrast, rotated or
// rendered at low native resolution, so a single decode attempt has a high
// miss rate. The detector runs an ordered fallback chain of (zoom,
// preprocessing variant, decoder backend) attempts and stops at the first one
// that yields a non-empty decode. An exhausted chain is a normal outcome for
// blank regions, never an error.
package barcode

import (
	"context"
	"fmt"
	"image"
)

// Code is one decoded symbol: its symbology name and payload text.
type Code struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// Outcome is the result of running the fallback chain over one region.
type Outcome struct {
	// Decoded reports whether any attempt yielded at least one symbol.
	Decoded bool
	// Codes holds the decoded symbols in first-success order, deduplicated
	// by (type, data).
	Codes []Code
	// Method identifies the attempt that succeeded, e.g. "multi@3x/original".
	Method string
	// Error aggregates per-step diagnostics when the chain exhausts without
	// a decode. It is informational, not fatal.
	Error string
}

// Decoder is one decode backend. Implementations return their decoded
// symbols or an error describing why the image could not be decoded; "no
// symbol found" conditions are errors here and become chain diagnostics.
type Decoder interface {
	Name() string
	Decode(ctx context.Context, img image.Image) ([]Code, error)
}

// Capabilities records which decoder backends survived the startup probe.
// A nil value treats every backend as available.
type Capabilities map[string]bool

// Available reports whether the named backend can be used.
func (c Capabilities) Available(name string) bool {
	if c == nil {
		return true
	}
	return c[name]
}

// ProbeCapabilities exercises every built-in backend once against a small
// blank image and records which ones are usable. Backends are expected to
// report "not found" for the blank probe; only a panic marks a backend
// unavailable. The probe runs once at process start and the resulting set is
// injected into the detector, replacing the mutable global flags of earlier
// revisions of this tool.
func ProbeCapabilities() Capabilities {
	probe := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range probe.Pix {
		probe.Pix[i] = 255
	}
	caps := make(Capabilities)
	for name, dec := range builtinDecoders() {
		caps[name] = probeDecoder(dec, probe)
	}
	return caps
}

func probeDecoder(dec Decoder, img image.Image) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	dec.Decode(context.Background(), img)
	return true
}

// blankProbe is a minimal raster used to vet variant names in configuration.
var blankProbe = image.NewGray(image.Rect(0, 0, 1, 1))

// dedupe collapses identical (type, data) pairs, preserving first occurrence
// order.
func dedupe(codes []Code) []Code {
	seen := make(map[Code]struct{}, len(codes))
	out := codes[:0]
	for _, c := range codes {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// safeDecode shields the chain from backend panics: a panicking backend
// yields an error for that step and the chain proceeds.
func safeDecode(ctx context.Context, dec Decoder, img image.Image) (codes []Code, err error) {
	defer func() {
		if r := recover(); r != nil {
			codes = nil
			err = fmt.Errorf("decoder %s panicked: %v", dec.Name(), r)
		}
	}()
	return dec.Decode(ctx, img)
}
