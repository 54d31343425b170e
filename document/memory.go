package document

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
	"strings"

	"golang.org/x/image/draw"

	"github.com/Darsh908/QC-Tool/geo"
)

// TextRun is a positioned piece of native text on a MemoryPage.
type TextRun struct {
	Rect geo.Rect
	Text string
}

// MemoryPage is an in-memory Page implementation. It backs tests and
// synthetic fixtures; the production backend lives in the fitz subpackage.
type MemoryPage struct {
	W, H       float64
	Runs       []TextRun
	Placements []geo.Rect
	// Raster is the page image at native (1x) resolution. Nil renders white.
	Raster image.Image
}

func (p *MemoryPage) Size() (float64, float64) { return p.W, p.H }

// TextInRect returns the concatenation of all runs intersecting r, in reading
// order (top to bottom, then left to right), trimmed.
func (p *MemoryPage) TextInRect(r geo.Rect) (string, error) {
	var hits []TextRun
	for _, run := range p.Runs {
		if run.Rect.Intersects(r) {
			hits = append(hits, run)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i].Rect.Normalize(), hits[j].Rect.Normalize()
		if a.Y0 != b.Y0 {
			return a.Y0 < b.Y0
		}
		return a.X0 < b.X0
	})
	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		parts = append(parts, h.Text)
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

// RenderRegion scales the clipped region of the page raster by zoom. Regions
// extending past the raster are padded white, matching renderer behavior.
func (p *MemoryPage) RenderRegion(ctx context.Context, r geo.Rect, zoom float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r = r.Normalize()
	w := int(math.Ceil(r.Width() * zoom))
	h := int(math.Ceil(r.Height() * zoom))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render region: empty rect %+v", r)
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if p.Raster != nil {
		src := image.Rect(int(r.X0), int(r.Y0), int(math.Ceil(r.X1)), int(math.Ceil(r.Y1)))
		src = src.Intersect(p.Raster.Bounds())
		if !src.Empty() {
			dst := image.Rect(
				int(float64(src.Min.X-int(r.X0))*zoom),
				int(float64(src.Min.Y-int(r.Y0))*zoom),
				int(float64(src.Max.X-int(r.X0))*zoom),
				int(float64(src.Max.Y-int(r.Y0))*zoom),
			)
			draw.CatmullRom.Scale(out, dst, p.Raster, src, draw.Over, nil)
		}
	}
	return out, nil
}

func (p *MemoryPage) ImagePlacements() ([]geo.Rect, error) {
	return append([]geo.Rect(nil), p.Placements...), nil
}

// MemoryDocument is an in-memory Document implementation.
type MemoryDocument struct {
	name  string
	pages []*MemoryPage
}

// NewMemoryDocument builds a document from the given pages.
func NewMemoryDocument(name string, pages ...*MemoryPage) *MemoryDocument {
	return &MemoryDocument{name: name, pages: pages}
}

func (d *MemoryDocument) Name() string   { return d.name }
func (d *MemoryDocument) PageCount() int { return len(d.pages) }

func (d *MemoryDocument) Page(index int) (Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page %d out of range [0,%d)", index, len(d.pages))
	}
	return d.pages[index], nil
}

func (d *MemoryDocument) Close() error { return nil }
