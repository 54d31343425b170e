package fitz

import (
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/Darsh908/QC-Tool/geo"
)

// word lays out a string as per-glyph pdf.Text entries starting at (x, y) in
// bottom-left page space.
func word(s string, x, y, size float64) []pdf.Text {
	glyphs := make([]pdf.Text, 0, len(s))
	w := size * 0.6
	for i, r := range s {
		glyphs = append(glyphs, pdf.Text{
			S:        string(r),
			X:        x + float64(i)*w,
			Y:        y,
			W:        w,
			FontSize: size,
		})
	}
	return glyphs
}

func TestTextInRectAssemblesWords(t *testing.T) {
	// Page is 200pt tall. "LOT 4471" sits near the top, "ignore" at the
	// bottom. Glyph Y is the baseline in bottom-left space.
	var glyphs []pdf.Text
	glyphs = append(glyphs, word("LOT", 20, 180, 10)...)
	glyphs = append(glyphs, word("4471", 50, 180, 10)...)
	glyphs = append(glyphs, word("ignore", 20, 20, 10)...)

	got := textInRect(glyphs, geo.Rect{X0: 0, Y0: 0, X1: 120, Y1: 40}, 200)
	if got != "LOT 4471" {
		t.Fatalf("textInRect = %q", got)
	}
}

func TestTextInRectSplitsLines(t *testing.T) {
	var glyphs []pdf.Text
	glyphs = append(glyphs, word("first", 20, 180, 10)...)
	glyphs = append(glyphs, word("second", 20, 160, 10)...)

	got := textInRect(glyphs, geo.Rect{X0: 0, Y0: 0, X1: 200, Y1: 60}, 200)
	if got != "first\nsecond" {
		t.Fatalf("textInRect = %q", got)
	}
}

func TestTextInRectExcludesOutsideGlyphs(t *testing.T) {
	glyphs := word("outside", 150, 180, 10)
	got := textInRect(glyphs, geo.Rect{X0: 0, Y0: 0, X1: 100, Y1: 40}, 200)
	if got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestTextInRectNormalizesRect(t *testing.T) {
	glyphs := word("hi", 20, 180, 10)
	// Corners authored in the wrong order still select the region.
	got := textInRect(glyphs, geo.Rect{X0: 120, Y0: 40, X1: 0, Y1: 0}, 200)
	if got != "hi" {
		t.Fatalf("textInRect = %q", got)
	}
}

func TestGlyphBox(t *testing.T) {
	g := pdf.Text{X: 20, Y: 180, W: 6, FontSize: 10}
	box := glyphBox(g, 200)
	want := geo.Rect{X0: 20, Y0: 10, X1: 26, Y1: 20}
	if box != want {
		t.Fatalf("glyphBox = %+v, want %+v", box, want)
	}
}
