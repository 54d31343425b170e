package fitz

import (
	"fmt"
	"io"
	"math"

	"github.com/ledongthuc/pdf"

	"github.com/Darsh908/QC-Tool/geo"
)

// formDepthLimit bounds recursion into nested form XObjects so cyclic
// references in broken files cannot hang the scan.
const formDepthLimit = 4

// matrix is a PDF transformation matrix [a b c d e f].
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

func (m matrix) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// mul returns the matrix that applies a first, then b. This matches the cm
// operator, which premultiplies the current transformation matrix.
func mul(a, b matrix) matrix {
	return matrix{
		a[0]*b[0] + a[1]*b[2],
		a[0]*b[1] + a[1]*b[3],
		a[2]*b[0] + a[3]*b[2],
		a[2]*b[1] + a[3]*b[3],
		a[4]*b[0] + a[5]*b[2] + b[4],
		a[4]*b[1] + a[5]*b[3] + b[5],
	}
}

// xobject is a resolved XObject resource, reduced to what the placement scan
// needs.
type xobject struct {
	image   bool
	matrix  matrix
	body    []byte
	resolve resolver
}

// resolver maps a resource name used by a Do operator to its XObject.
type resolver func(name string) (xobject, bool)

// placements walks the page content streams and collects the regions covered
// by drawn images, in top-left page coordinates.
func placements(pg pdf.Page, pageH float64) ([]geo.Rect, error) {
	content, err := contentBytes(pg.V.Key("Contents"))
	if err != nil {
		return nil, fmt.Errorf("read content stream: %w", err)
	}
	var out []geo.Rect
	scanStream(content, valueResolver(pg.Resources().Key("XObject")), identity, 0, func(ctm matrix) {
		out = append(out, imageRect(ctm, pageH))
	})
	return out, nil
}

// valueResolver adapts a page's XObject resource dictionary.
func valueResolver(xobjects pdf.Value) resolver {
	return func(name string) (xobject, bool) {
		if xobjects.Kind() != pdf.Dict {
			return xobject{}, false
		}
		obj := xobjects.Key(name)
		if obj.Kind() != pdf.Stream {
			return xobject{}, false
		}
		switch obj.Key("Subtype").Name() {
		case "Image":
			return xobject{image: true}, true
		case "Form":
			x := xobject{matrix: identity, resolve: valueResolver(obj.Key("Resources").Key("XObject"))}
			if m := obj.Key("Matrix"); m.Kind() == pdf.Array && m.Len() == 6 {
				for i := 0; i < 6; i++ {
					x.matrix[i] = m.Index(i).Float64()
				}
			}
			body, err := io.ReadAll(obj.Reader())
			if err != nil {
				return xobject{}, false
			}
			x.body = body
			return x, true
		}
		return xobject{}, false
	}
}

// imageRect maps the image's unit square through the placement matrix and
// flips into top-left coordinates.
func imageRect(ctm matrix, pageH float64) geo.Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range [][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		x, y := ctm.apply(c[0], c[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return geo.Rect{X0: minX, Y0: pageH - maxY, X1: maxX, Y1: pageH - minY}
}

func contentBytes(v pdf.Value) ([]byte, error) {
	switch v.Kind() {
	case pdf.Stream:
		return io.ReadAll(v.Reader())
	case pdf.Array:
		var all []byte
		for i := 0; i < v.Len(); i++ {
			part, err := io.ReadAll(v.Index(i).Reader())
			if err != nil {
				return nil, err
			}
			all = append(all, part...)
			all = append(all, '\n')
		}
		return all, nil
	}
	return nil, nil
}

// scanStream interprets just enough of the content stream to track the
// transformation matrix and spot image draws: q/Q save and restore state, cm
// concatenates, Do draws an XObject, and BI starts an inline image. Text and
// path operators only consume operands and are ignored.
func scanStream(data []byte, resolve resolver, base matrix, depth int, emit func(matrix)) {
	ctm := base
	var stack []matrix
	var nums []float64
	var lastName string

	lex := newLexer(data)
	for {
		tok, ok := lex.next()
		if !ok {
			return
		}
		switch tok.kind {
		case tokNumber:
			nums = append(nums, tok.num)
			continue
		case tokName:
			lastName = tok.text
			continue
		case tokOther:
			continue
		}

		// Operator.
		switch tok.text {
		case "q":
			stack = append(stack, ctm)
		case "Q":
			if n := len(stack); n > 0 {
				ctm = stack[n-1]
				stack = stack[:n-1]
			}
		case "cm":
			if len(nums) >= 6 {
				var m matrix
				copy(m[:], nums[len(nums)-6:])
				ctm = mul(m, ctm)
			}
		case "Do":
			handleXObject(resolve, lastName, ctm, depth, emit)
		case "BI":
			emit(ctm)
			lex.skipInlineImage()
		}
		nums = nums[:0]
		lastName = ""
	}
}

func handleXObject(resolve resolver, name string, ctm matrix, depth int, emit func(matrix)) {
	if name == "" || resolve == nil {
		return
	}
	obj, ok := resolve(name)
	if !ok {
		return
	}
	if obj.image {
		emit(ctm)
		return
	}
	if depth >= formDepthLimit {
		return
	}
	scanStream(obj.body, obj.resolve, mul(obj.matrix, ctm), depth+1, emit)
}
