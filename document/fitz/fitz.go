// Package fitz is the MuPDF-backed document backend. Rendering goes through
// go-fitz; the digital text layer and image placements are read with a pure
// Go PDF parser so a rendering-only build of MuPDF is sufficient.
package fitz

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sync"

	gofitz "github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"

	"github.com/Darsh908/QC-Tool/document"
	"github.com/Darsh908/QC-Tool/geo"
	"github.com/Darsh908/QC-Tool/observability"
)

// Document is a document.Document backed by an on-disk PDF.
type Document struct {
	name   string
	logger observability.Logger

	// MuPDF handles are not safe for concurrent use.
	mu sync.Mutex
	fz *gofitz.Document

	// reader is nil when the pure Go parser cannot open the file; text and
	// placement queries then degrade to per-region errors instead of failing
	// the whole run.
	reader *pdf.Reader
	file   *os.File
}

// Open opens a PDF for extraction. The file must be renderable; a broken
// text layer is tolerated and reported per region.
func Open(path string, logger observability.Logger) (*Document, error) {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	fz, err := gofitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	d := &Document{
		name:   filepath.Base(path),
		logger: logger,
		fz:     fz,
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		logger.Warn("text layer unavailable, falling back to render-only access",
			observability.String("pdf", path),
			observability.Error("error", err))
	} else {
		// The reader keeps the file handle for lazy stream access; it is
		// closed together with the document.
		d.reader = reader
		d.file = f
	}
	return d, nil
}

func (d *Document) Name() string { return d.name }

func (d *Document) PageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fz.NumPage()
}

// Page returns the zero-based page. Page handles stay valid until Close.
func (d *Document) Page(index int) (document.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= d.fz.NumPage() {
		return nil, fmt.Errorf("page %d out of range [0,%d)", index, d.fz.NumPage())
	}
	bound, err := d.fz.Bound(index)
	if err != nil {
		return nil, fmt.Errorf("page %d bounds: %w", index, err)
	}
	return &Page{
		doc:   d,
		index: index,
		w:     float64(bound.Dx()),
		h:     float64(bound.Dy()),
	}, nil
}

func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var firstErr error
	if err := d.fz.Close(); err != nil {
		firstErr = err
	}
	if d.file != nil {
		if err := d.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Page is one page of an open Document.
type Page struct {
	doc   *Document
	index int
	w, h  float64
}

func (p *Page) Size() (float64, float64) { return p.w, p.h }

// RenderRegion rasterizes the page at 72*zoom DPI and crops the region. The
// crop is clamped to the page; a region entirely outside it is an error.
func (p *Page) RenderRegion(ctx context.Context, r geo.Rect, zoom float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r = r.Normalize()
	if r.IsEmpty() {
		return nil, fmt.Errorf("render region: empty rect %+v", r)
	}

	p.doc.mu.Lock()
	full, err := p.doc.fz.ImageDPI(p.index, 72*zoom)
	p.doc.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", p.index+1, err)
	}

	crop := image.Rect(
		int(math.Floor(r.X0*zoom)),
		int(math.Floor(r.Y0*zoom)),
		int(math.Ceil(r.X1*zoom)),
		int(math.Ceil(r.Y1*zoom)),
	).Intersect(full.Bounds())
	if crop.Empty() {
		return nil, fmt.Errorf("render region: rect %+v outside page", r)
	}

	// Detach the crop so the full-page raster can be collected.
	out := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	for y := 0; y < crop.Dy(); y++ {
		for x := 0; x < crop.Dx(); x++ {
			out.Set(x, y, full.At(crop.Min.X+x, crop.Min.Y+y))
		}
	}
	return out, nil
}

// TextInRect reads the digital text layer inside r.
func (p *Page) TextInRect(r geo.Rect) (string, error) {
	if p.doc.reader == nil {
		return "", fmt.Errorf("page %d: text layer unavailable", p.index+1)
	}
	pg := p.doc.reader.Page(p.index + 1)
	if pg.V.IsNull() {
		return "", fmt.Errorf("page %d: no content", p.index+1)
	}
	return textInRect(pg.Content().Text, r, p.h), nil
}

// ImagePlacements scans the page content streams for image XObject draws and
// returns their bounding boxes in top-left page coordinates.
func (p *Page) ImagePlacements() ([]geo.Rect, error) {
	if p.doc.reader == nil {
		return nil, fmt.Errorf("page %d: content streams unavailable", p.index+1)
	}
	pg := p.doc.reader.Page(p.index + 1)
	if pg.V.IsNull() {
		return nil, fmt.Errorf("page %d: no content", p.index+1)
	}
	return placements(pg, p.h)
}
