package extract

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Darsh908/QC-Tool/document"
	"github.com/Darsh908/QC-Tool/geo"
	"github.com/Darsh908/QC-Tool/observability"
	"github.com/Darsh908/QC-Tool/template"
)

// Runner drives a full extraction: it visits the requested pages in ascending
// order, scales every field rectangle into page space and dispatches it, then
// assembles the output document.
type Runner struct {
	dispatcher   *Dispatcher
	logger       observability.Logger
	fieldTimeout time.Duration
	now          func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithDispatcher replaces the runner's dispatcher.
func WithDispatcher(d *Dispatcher) RunnerOption {
	return func(r *Runner) {
		if d != nil {
			r.dispatcher = d
		}
	}
}

// WithRunnerLogger sets the runner's logger.
func WithRunnerLogger(logger observability.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFieldTimeout bounds the time spent on any single field. Zero disables
// the bound. A field that times out reports the timeout in its result; the
// run continues with the next field.
func WithFieldTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) { r.fieldTimeout = d }
}

// WithClock overrides the run timestamp source.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner builds a runner with a default dispatcher.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		dispatcher: NewDispatcher(),
		logger:     observability.NopLogger{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run extracts every field of the template from the requested pages of doc.
// Page numbers are 1-based; a nil or empty list means all pages, and numbers
// past the end of the document are skipped silently. Run fails only on
// configuration errors (an unknown field mode); per-field runtime failures
// are embedded in their results.
func (r *Runner) Run(ctx context.Context, doc document.Document, tmpl *template.Template, pages []int) (*Document, error) {
	total := doc.PageCount()
	selected := selectPages(total, pages)

	out := &Document{
		SourcePDF:      doc.Name(),
		TemplateUsed:   tmpl.Name(),
		ExtractionDate: r.now().Format(time.RFC3339),
		TotalPages:     total,
		Pages:          make([]PageResult, 0, len(selected)),
	}

	for _, pageNum := range selected {
		page, err := doc.Page(pageNum - 1)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNum, err)
		}
		pr, err := r.runPage(ctx, page, tmpl, pageNum)
		if err != nil {
			return nil, err
		}
		out.Pages = append(out.Pages, pr)
	}
	return out, nil
}

func (r *Runner) runPage(ctx context.Context, page document.Page, tmpl *template.Template, pageNum int) (PageResult, error) {
	w, h := page.Size()
	scale := geo.NewScaleFactors(tmpl.PageWidth, tmpl.PageHeight, w, h)

	r.logger.Info("extracting page",
		observability.Int("page", pageNum),
		observability.Float64("scale_x", scale.X),
		observability.Float64("scale_y", scale.Y))

	pr := PageResult{
		PageNumber:     pageNum,
		PageDimensions: Dimensions{Width: w, Height: h},
		Fields:         make(map[string][]FieldResult, len(tmpl.Fields)),
	}

	for _, f := range tmpl.Fields {
		rect := scale.Apply(f.Rect())
		res, err := r.runField(ctx, page, f, rect)
		if err != nil {
			return PageResult{}, err
		}
		if res.Error != "" {
			r.logger.Warn("field extraction degraded",
				observability.Int("page", pageNum),
				observability.String("field", f.Name),
				observability.String("error", res.Error))
		}
		pr.Fields[f.Name] = append(pr.Fields[f.Name], res)
	}
	return pr, nil
}

func (r *Runner) runField(ctx context.Context, page document.Page, f template.Field, rect geo.Rect) (FieldResult, error) {
	if r.fieldTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.fieldTimeout)
		defer cancel()
	}
	return r.dispatcher.Extract(ctx, page, f, rect)
}

// selectPages resolves a 1-based page request against the document length.
// Duplicates are collapsed and the result is ascending.
func selectPages(total int, pages []int) []int {
	if len(pages) == 0 {
		all := make([]int, total)
		for i := range all {
			all[i] = i + 1
		}
		return all
	}
	seen := make(map[int]struct{}, len(pages))
	var out []int
	for _, p := range pages {
		if p < 1 || p > total {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}
