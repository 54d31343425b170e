package fitz

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/Darsh908/QC-Tool/geo"
)

// textInRect assembles the glyphs whose boxes intersect r into lines of
// text. Glyph coordinates arrive in PDF user space (origin bottom left);
// pageH converts them into the pipeline's top-left space.
func textInRect(glyphs []pdf.Text, r geo.Rect, pageH float64) string {
	r = r.Normalize()

	var hits []pdf.Text
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		box := glyphBox(g, pageH)
		if box.Intersects(r) {
			hits = append(hits, g)
		}
	}
	if len(hits) == 0 {
		return ""
	}

	// Reading order: top to bottom by baseline, then left to right.
	sort.SliceStable(hits, func(i, j int) bool {
		yi, yj := pageH-hits[i].Y, pageH-hits[j].Y
		if yi != yj {
			return yi < yj
		}
		return hits[i].X < hits[j].X
	})

	var b strings.Builder
	prev := hits[0]
	b.WriteString(prev.S)
	for _, g := range hits[1:] {
		switch {
		case sameLine(prev, g):
			// Insert a space for gaps wider than a third of the glyph size;
			// adjacent glyphs of one word sit flush.
			if g.X-(prev.X+prev.W) > prev.FontSize*0.3 {
				b.WriteByte(' ')
			}
		default:
			b.WriteByte('\n')
		}
		b.WriteString(g.S)
		prev = g
	}
	return strings.TrimSpace(b.String())
}

// glyphBox approximates a glyph's bounding box in top-left coordinates. The
// baseline sits at g.Y; ascenders reach roughly one font size above it.
func glyphBox(g pdf.Text, pageH float64) geo.Rect {
	w := g.W
	if w <= 0 {
		w = g.FontSize * 0.5
	}
	return geo.Rect{
		X0: g.X,
		Y0: pageH - g.Y - g.FontSize,
		X1: g.X + w,
		Y1: pageH - g.Y,
	}
}

func sameLine(a, b pdf.Text) bool {
	tol := a.FontSize * 0.5
	if tol <= 0 {
		tol = 2
	}
	d := a.Y - b.Y
	if d < 0 {
		d = -d
	}
	return d <= tol
}
