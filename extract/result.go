// Package extract assembles per-field extraction results into the run's
// output document. The dispatcher routes each field definition to its
// strategy; the runner iterates pages and fields and builds the final,
// immutable result document.
package extract

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Darsh908/QC-Tool/barcode"
	"github.com/Darsh908/QC-Tool/geo"
	"github.com/Darsh908/QC-Tool/template"
)

// Rounded output coordinates keep repeated runs byte-identical.
const coordinateDecimals = 2

// FieldResult is the outcome for one field instance (one field definition
// evaluated on one page). Mode-specific keys are omitted for the other modes.
type FieldResult struct {
	Value       string         `json:"value"`
	Type        template.Mode  `json:"type"`
	Confidence  string         `json:"confidence,omitempty"`
	Method      string         `json:"method,omitempty"`
	HasImages   *bool          `json:"has_images,omitempty"`
	ImageCount  *int           `json:"image_count,omitempty"`
	Decoded     *bool          `json:"decoded,omitempty"`
	Codes       []barcode.Code `json:"codes,omitempty"`
	Error       string         `json:"error,omitempty"`
	Coordinates geo.Rect       `json:"coordinates"`
}

// Dimensions is a page size in points.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PageResult groups the results of one page. Fields maps a field name to the
// ordered sequence of results produced by every definition sharing that name;
// entries are appended in template order and never merged.
type PageResult struct {
	PageNumber     int                      `json:"page_number"`
	PageDimensions Dimensions               `json:"page_dimensions"`
	Fields         map[string][]FieldResult `json:"fields"`
}

// Document is the run's complete output. It is built once by the runner and
// not mutated afterwards.
type Document struct {
	SourcePDF      string       `json:"source_pdf"`
	TemplateUsed   string       `json:"template_used"`
	ExtractionDate string       `json:"extraction_date"`
	TotalPages     int          `json:"total_pages"`
	Pages          []PageResult `json:"pages"`
}

// MarshalIndent renders the document as the tool's canonical two-space
// indented JSON.
func (d *Document) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// WriteFile saves the document to path as JSON.
func (d *Document) WriteFile(path string) error {
	data, err := d.MarshalIndent()
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }
