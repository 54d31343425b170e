package extract

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// summaryValueWidth caps a field value on the console so one long OCR blob
// does not wreck the summary layout.
const summaryValueWidth = 80

// WriteSummary prints a human-readable run summary to w. Duplicate field
// names are disambiguated with a #n suffix so every result line is visible.
func WriteSummary(w io.Writer, doc *Document) {
	fmt.Fprintf(w, "Extraction summary for %s (template %s)\n", doc.SourcePDF, doc.TemplateUsed)
	fmt.Fprintf(w, "Pages in document: %d, pages extracted: %d\n", doc.TotalPages, len(doc.Pages))

	for _, page := range doc.Pages {
		fmt.Fprintf(w, "\nPage %d (%.1f x %.1f pt)\n", page.PageNumber, page.PageDimensions.Width, page.PageDimensions.Height)
		for _, name := range sortedFieldNames(page) {
			results := page.Fields[name]
			for i, res := range results {
				label := name
				if len(results) > 1 {
					label = fmt.Sprintf("%s #%d", name, i+1)
				}
				fmt.Fprintf(w, "  %-24s %s\n", label+":", summaryValue(res))
			}
		}
	}
}

func summaryValue(res FieldResult) string {
	v := strings.ReplaceAll(res.Value, "\n", " / ")
	if len(v) > summaryValueWidth {
		v = v[:summaryValueWidth-3] + "..."
	}
	if v == "" {
		v = "(empty)"
	}
	if res.Error != "" && res.Type == "text" && res.Method == "digital" {
		v += " [degraded]"
	}
	return v
}

func sortedFieldNames(page PageResult) []string {
	names := make([]string, 0, len(page.Fields))
	for name := range page.Fields {
		names = append(names, name)
	}
	// Template order is not recoverable from the map; sort lexically so the
	// report is stable across runs.
	sort.Strings(names)
	return names
}

// Markdown renders the document as a Markdown report with one table per page.
func Markdown(doc *Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Extraction Report\n\n")
	fmt.Fprintf(&b, "- **Source:** %s\n", doc.SourcePDF)
	fmt.Fprintf(&b, "- **Template:** %s\n", doc.TemplateUsed)
	fmt.Fprintf(&b, "- **Date:** %s\n", doc.ExtractionDate)
	fmt.Fprintf(&b, "- **Pages:** %d of %d extracted\n", len(doc.Pages), doc.TotalPages)

	for _, page := range doc.Pages {
		fmt.Fprintf(&b, "\n## Page %d\n\n", page.PageNumber)
		b.WriteString("| Field | Type | Value | Confidence |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, name := range sortedFieldNames(page) {
			results := page.Fields[name]
			for i, res := range results {
				label := name
				if len(results) > 1 {
					label = fmt.Sprintf("%s #%d", name, i+1)
				}
				fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
					escapeCell(label), res.Type, escapeCell(summaryValue(res)), res.Confidence)
			}
		}
	}
	return b.String()
}

// HTMLReport renders the Markdown report to standalone HTML.
func HTMLReport(doc *Document) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(doc)), &body); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>Extraction Report - %s</title>\n", doc.SourcePDF)
	out.WriteString("<style>body{font-family:sans-serif;margin:2em}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:4px 8px}</style>\n")
	out.WriteString("</head>\n<body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
