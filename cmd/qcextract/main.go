// Command qcextract runs a template-driven extraction over a PDF and writes
// the results as JSON.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/Darsh908/QC-Tool/barcode"
	"github.com/Darsh908/QC-Tool/document/fitz"
	"github.com/Darsh908/QC-Tool/extract"
	"github.com/Darsh908/QC-Tool/observability"
	"github.com/Darsh908/QC-Tool/template"

	// Registers the tesseract engine as the process OCR default.
	_ "github.com/Darsh908/QC-Tool/ocr/tesseract"
)

func main() {
	app := &cli.App{
		Name:  "qcextract",
		Usage: "extract template-defined fields from packaging artwork PDFs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "template",
				Aliases:  []string{"t"},
				Usage:    "field layout template `FILE`",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "pdf",
				Aliases:  []string{"p"},
				Usage:    "input PDF `FILE`",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "result JSON `FILE`",
				Value:   "extracted_data.json",
			},
			&cli.StringFlag{
				Name:  "pages",
				Usage: "pages to extract, e.g. \"1,3-5\" (default all)",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "also write an HTML report to `FILE`",
			},
			&cli.StringFlag{
				Name:  "chain-config",
				Usage: "barcode fallback chain YAML `FILE`",
			},
			&cli.DurationFlag{
				Name:  "field-timeout",
				Usage: "bound the time spent on a single field",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "suppress the console summary",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "qcextract:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger := newLogger(c.Bool("verbose"), c.Bool("quiet"))

	tmpl, err := template.Load(c.String("template"), logger)
	if err != nil {
		return err
	}

	pages, err := parsePages(c.String("pages"))
	if err != nil {
		return err
	}

	chain := barcode.DefaultChain()
	if path := c.String("chain-config"); path != "" {
		chain, err = barcode.LoadChainConfig(path)
		if err != nil {
			return err
		}
	}

	doc, err := fitz.Open(c.String("pdf"), logger)
	if err != nil {
		return err
	}
	defer doc.Close()

	caps := barcode.ProbeCapabilities()
	for name, ok := range caps {
		if !ok {
			logger.Warn("decode backend unavailable", observability.String("backend", name))
		}
	}

	detector := barcode.NewDetector(
		barcode.WithChain(chain),
		barcode.WithCapabilities(caps),
		barcode.WithLogger(logger),
	)
	runner := extract.NewRunner(
		extract.WithDispatcher(extract.NewDispatcher(
			extract.WithDetector(detector),
			extract.WithDispatcherLogger(logger),
		)),
		extract.WithRunnerLogger(logger),
		extract.WithFieldTimeout(c.Duration("field-timeout")),
	)

	start := time.Now()
	result, err := runner.Run(c.Context, doc, tmpl, pages)
	if err != nil {
		return err
	}
	logger.Info("extraction finished",
		observability.Int("pages", len(result.Pages)),
		observability.String("elapsed", time.Since(start).Round(time.Millisecond).String()))

	if err := result.WriteFile(c.String("output")); err != nil {
		return err
	}

	if path := c.String("report"); path != "" {
		html, err := extract.HTMLReport(result)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, html, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	if !c.Bool("quiet") {
		extract.WriteSummary(os.Stdout, result)
	}
	return nil
}

func newLogger(verbose, quiet bool) observability.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	switch {
	case verbose:
		l.SetLevel(logrus.DebugLevel)
	case quiet:
		l.SetLevel(logrus.ErrorLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}
	return observability.NewLogrusLogger(l)
}

// parsePages expands a "1,3-5" style page list into 1-based page numbers.
func parsePages(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	var pages []int
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			a, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
			b, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || b < a {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
			for p := a; p <= b; p++ {
				pages = append(pages, p)
			}
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid page number %q", part)
		}
		pages = append(pages, p)
	}
	return pages, nil
}
