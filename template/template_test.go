package template

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultsAndValidation(t *testing.T) {
	data := []byte(`{
		"page_width": 300,
		"page_height": 400,
		"pdf_name": "carton_v2.pdf",
		"fields": [
			{"name": "Batch Number", "x0": 10, "y0": 20, "x1": 100, "y1": 50},
			{"name": "Danger Images", "x0": 0, "y0": 0, "x1": 50, "y1": 50, "type": "image"},
			{"name": "Expiry", "x0": 1, "y0": 2, "x1": 3, "y1": 4, "type": "text", "ocr": true}
		]
	}`)
	tpl, err := Parse(data, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if tpl.PageWidth != 300 || tpl.PageHeight != 400 {
		t.Fatalf("unexpected reference size: %v x %v", tpl.PageWidth, tpl.PageHeight)
	}
	if tpl.Name() != "carton_v2.pdf" {
		t.Fatalf("unexpected name: %s", tpl.Name())
	}
	if got := tpl.Fields[0].Mode; got != ModeText {
		t.Fatalf("missing type should default to text, got %q", got)
	}
	if got := tpl.Fields[1].Mode; got != ModeImage {
		t.Fatalf("expected image mode, got %q", got)
	}
	if !tpl.Fields[2].OCR {
		t.Fatalf("ocr flag lost")
	}
}

func TestParseMigratesLegacyCodeNames(t *testing.T) {
	data := []byte(`{"fields": [
		{"name": "Barcode EAN", "x0": 0, "y0": 0, "x1": 10, "y1": 10},
		{"name": "QR Code", "x0": 0, "y0": 0, "x1": 10, "y1": 10, "type": "text"},
		{"name": "Danger Images qr", "x0": 0, "y0": 0, "x1": 10, "y1": 10, "type": "image"}
	]}`)
	tpl, err := Parse(data, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if tpl.Fields[0].Mode != ModeBarcode {
		t.Fatalf("legacy barcode name not migrated: %q", tpl.Fields[0].Mode)
	}
	if tpl.Fields[1].Mode != ModeBarcode {
		t.Fatalf("legacy qr name not migrated: %q", tpl.Fields[1].Mode)
	}
	// Explicit image mode wins over the name heuristic.
	if tpl.Fields[2].Mode != ModeImage {
		t.Fatalf("image mode overridden by name heuristic: %q", tpl.Fields[2].Mode)
	}
}

func TestParseRejectsUnknownMode(t *testing.T) {
	data := []byte(`{"fields": [{"name": "X", "x0": 0, "y0": 0, "x1": 1, "y1": 1, "type": "hologram"}]}`)
	if _, err := Parse(data, nil); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestParseRejectsEmptyName(t *testing.T) {
	data := []byte(`{"fields": [{"name": "", "x0": 0, "y0": 0, "x1": 1, "y1": 1}]}`)
	if _, err := Parse(data, nil); err == nil {
		t.Fatalf("expected error for empty field name")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json"), nil); err == nil {
		t.Fatalf("expected error for missing template")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tpl.json")
	body := `{"page_width": 0, "page_height": 0, "pdf_name": "p.pdf", "fields": [{"name": "A", "x0": 1, "y0": 2, "x1": 3, "y1": 4}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	tpl, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	r := tpl.Fields[0].Rect()
	if r.X0 != 1 || r.Y0 != 2 || r.X1 != 3 || r.Y1 != 4 {
		t.Fatalf("unexpected rect: %+v", r)
	}
}
