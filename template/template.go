// Package template models the field-layout templates produced by the
// interactive authoring tool. A template anchors a set of named rectangular
// field definitions to a reference page size; the extraction pipeline scales
// those rectangles onto each page it visits.
package template

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Darsh908/QC-Tool/geo"
	"github.com/Darsh908/QC-Tool/observability"
)

// Mode selects the extraction strategy for a field.
type Mode string

const (
	ModeText    Mode = "text"
	ModeImage   Mode = "image"
	ModeBarcode Mode = "barcode"
)

// ParseMode validates a mode string from a template file. The empty string
// defaults to text for compatibility with templates written before the mode
// tag existed.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeText, ModeImage, ModeBarcode:
		return Mode(s), nil
	case "":
		return ModeText, nil
	}
	return "", fmt.Errorf("unknown field mode %q", s)
}

// Field is one named rectangular region. Names are not unique within a
// template; every definition produces its own result entry. The rectangle is
// stored exactly as authored and is not pre-normalized.
type Field struct {
	Name string  `json:"name"`
	X0   float64 `json:"x0"`
	Y0   float64 `json:"y0"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	Mode Mode    `json:"type"`
	OCR  bool    `json:"ocr,omitempty"`
}

// Rect returns the field rectangle in template space.
func (f Field) Rect() geo.Rect {
	return geo.Rect{X0: f.X0, Y0: f.Y0, X1: f.X1, Y1: f.Y1}
}

// Template is the immutable input of an extraction run.
type Template struct {
	PageWidth  float64 `json:"page_width"`
	PageHeight float64 `json:"page_height"`
	PDFName    string  `json:"pdf_name"`
	Fields     []Field `json:"fields"`
}

// Name identifies the template in extraction output.
func (t *Template) Name() string {
	if t.PDFName == "" {
		return "unknown"
	}
	return t.PDFName
}

// Parse decodes template JSON, validates every field, and applies the legacy
// mode migration. The authoring tool historically never emitted a "barcode"
// mode; barcode regions were recognized at runtime by their name containing
// "barcode" or "qr". That inference now happens exactly once, here, so the
// rest of the pipeline dispatches on an explicit mode tag only.
func Parse(data []byte, logger observability.Logger) (*Template, error) {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}
	for i := range t.Fields {
		f := &t.Fields[i]
		if f.Name == "" {
			return nil, fmt.Errorf("field %d: empty name", i)
		}
		mode, err := ParseMode(string(f.Mode))
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		f.Mode = mode
		if f.Mode == ModeText && hasCodeName(f.Name) {
			logger.Warn("migrating legacy field to barcode mode",
				observability.String("field", f.Name))
			f.Mode = ModeBarcode
		}
	}
	return &t, nil
}

// Load reads and parses a template file. A missing or unreadable file is a
// configuration error reported before any extraction starts.
func Load(path string, logger observability.Logger) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	t, err := Parse(data, logger)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	return t, nil
}

func hasCodeName(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "barcode") || strings.Contains(n, "qr")
}
