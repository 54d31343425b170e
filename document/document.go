// Package document abstracts the page source consumed by the extraction
// pipeline. The contract is intentionally small so backends can be native
// renderers (see the fitz subpackage) or in-memory fixtures, without leaking
// backend concerns into callers.
package document

import (
	"context"
	"image"

	"github.com/Darsh908/QC-Tool/geo"
)

// Document is a read-only, page-addressable source. Implementations must be
// safe for sequential use for the duration of a run; the pipeline never
// mutates a document after open.
type Document interface {
	// Name identifies the source in extraction output (typically the file
	// base name).
	Name() string
	// PageCount returns the number of pages.
	PageCount() int
	// Page returns the page at the given zero-based index.
	Page(index int) (Page, error)
	Close() error
}

// Page exposes the three queries the pipeline needs from a page: its native
// text layer, a raster of a region, and the placements of embedded images.
type Page interface {
	// Size returns the page width and height in points.
	Size() (width, height float64)
	// TextInRect returns the native text content clipped to the given
	// page-space rect, surrounding whitespace trimmed. An empty string is a
	// valid non-error result.
	TextInRect(r geo.Rect) (string, error)
	// RenderRegion rasterizes the clipped region at the given zoom factor
	// relative to native resolution.
	RenderRegion(ctx context.Context, r geo.Rect, zoom float64) (image.Image, error)
	// ImagePlacements returns one rect per placement of every raster image
	// embedded on the page. An image placed multiple times yields multiple
	// rects.
	ImagePlacements() ([]geo.Rect, error)
}
