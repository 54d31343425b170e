package document

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/Darsh908/QC-Tool/geo"
)

func TestMemoryDocumentPaging(t *testing.T) {
	doc := NewMemoryDocument("fixture.pdf",
		&MemoryPage{W: 600, H: 800},
		&MemoryPage{W: 300, H: 400},
	)
	if doc.Name() != "fixture.pdf" {
		t.Fatalf("unexpected name: %s", doc.Name())
	}
	if doc.PageCount() != 2 {
		t.Fatalf("unexpected page count: %d", doc.PageCount())
	}
	p, err := doc.Page(1)
	if err != nil {
		t.Fatalf("Page(1) error = %v", err)
	}
	if w, h := p.Size(); w != 300 || h != 400 {
		t.Fatalf("unexpected size: %v x %v", w, h)
	}
	if _, err := doc.Page(2); err == nil {
		t.Fatalf("expected out-of-range error")
	}
	if _, err := doc.Page(-1); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestTextInRect(t *testing.T) {
	page := &MemoryPage{
		W: 600, H: 800,
		Runs: []TextRun{
			{Rect: geo.Rect{X0: 10, Y0: 100, X1: 80, Y1: 112}, Text: "second line"},
			{Rect: geo.Rect{X0: 10, Y0: 80, X1: 80, Y1: 92}, Text: "first line"},
			{Rect: geo.Rect{X0: 400, Y0: 80, X1: 460, Y1: 92}, Text: "elsewhere"},
		},
	}
	got, err := page.TextInRect(geo.Rect{X0: 0, Y0: 70, X1: 100, Y1: 120})
	if err != nil {
		t.Fatalf("TextInRect() error = %v", err)
	}
	if got != "first line\nsecond line" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextInRectEmptyRegion(t *testing.T) {
	page := &MemoryPage{W: 100, H: 100}
	got, err := page.TextInRect(geo.Rect{X0: 0, Y0: 0, X1: 50, Y1: 50})
	if err != nil {
		t.Fatalf("TextInRect() error = %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestRenderRegionDimensionsAndContent(t *testing.T) {
	raster := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 40; y < 60; y++ {
		for x := 40; x < 60; x++ {
			raster.Set(x, y, color.Black)
		}
	}
	page := &MemoryPage{W: 100, H: 100, Raster: raster}

	img, err := page.RenderRegion(context.Background(), geo.Rect{X0: 30, Y0: 30, X1: 70, Y1: 70}, 3)
	if err != nil {
		t.Fatalf("RenderRegion() error = %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 120 || b.Dy() != 120 {
		t.Fatalf("unexpected render size: %dx%d", b.Dx(), b.Dy())
	}
	// Center of the region maps onto the black square.
	cr, cg, cb, _ := img.At(60, 60).RGBA()
	if cr > 0x2000 || cg > 0x2000 || cb > 0x2000 {
		t.Fatalf("expected dark center pixel, got (%d,%d,%d)", cr, cg, cb)
	}
	// Corner stays white.
	wr, _, _, _ := img.At(1, 1).RGBA()
	if wr < 0xe000 {
		t.Fatalf("expected white corner pixel, got %d", wr)
	}
}

func TestRenderRegionRejectsEmptyRect(t *testing.T) {
	page := &MemoryPage{W: 100, H: 100}
	if _, err := page.RenderRegion(context.Background(), geo.Rect{X0: 5, Y0: 5, X1: 5, Y1: 50}, 3); err == nil {
		t.Fatalf("expected error for degenerate rect")
	}
}

func TestImagePlacementsCopies(t *testing.T) {
	page := &MemoryPage{
		W: 100, H: 100,
		Placements: []geo.Rect{{X0: 0, Y0: 0, X1: 10, Y1: 10}},
	}
	got, err := page.ImagePlacements()
	if err != nil {
		t.Fatalf("ImagePlacements() error = %v", err)
	}
	got[0].X0 = 99
	again, _ := page.ImagePlacements()
	if again[0].X0 != 0 {
		t.Fatalf("ImagePlacements leaked internal slice")
	}
}
