// Package pipeline sequences one label run: discover the input document,
// classify it, generate the promo flyer, compose the sheet, print best-effort
// and archive the original.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dlpedro/labelpress/internal/classifier"
	"github.com/dlpedro/labelpress/internal/config"
	"github.com/dlpedro/labelpress/internal/flyer"
	"github.com/dlpedro/labelpress/internal/geometry"
	"github.com/dlpedro/labelpress/internal/printer"
)

// ErrNoInput means no file matching <medium>-<order>.pdf was found.
var ErrNoInput = errors.New("no input label found")

// Composer is the sheet-assembly capability the pipeline depends on.
type Composer interface {
	Compose(cat geometry.Category, promoPath, labelPath, outPath string) error
}

// Result describes one completed run.
type Result struct {
	Medium     string
	Order      string
	Category   geometry.Category
	OutputPath string
	Printed    bool
}

// Runner executes the pipeline with injected capabilities.
type Runner struct {
	cfg       config.Config
	predictor classifier.Predictor
	flyer     flyer.Generator
	composer  Composer
	sink      printer.Sink
	log       *slog.Logger
}

func NewRunner(cfg config.Config, p classifier.Predictor, f flyer.Generator, c Composer, s printer.Sink, log *slog.Logger) *Runner {
	return &Runner{cfg: cfg, predictor: p, flyer: f, composer: c, sink: s, log: log}
}

// Run processes exactly one label document. Every failure before the output
// file exists aborts the run; printing alone is downgraded to a log line.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name, err := r.discover()
	if err != nil {
		return nil, err
	}
	medium, order, _ := strings.Cut(strings.TrimSuffix(name, ".pdf"), "-")
	labelPath := filepath.Join(r.cfg.BaseDir, name)
	outPath := filepath.Join(r.cfg.OutDir, medium+order+".pdf")
	log := r.log.With("input", name, "medium", medium, "order", order)

	cat, err := r.predictor.Predict(labelPath)
	if err != nil {
		return nil, fmt.Errorf("classify %s: %w", labelPath, err)
	}
	log.Info("label classified", "category", cat)

	// The output dir must exist before the flyer writes its intermediate:
	// failing here later would strand tmp/interm.pdf.
	if err := os.MkdirAll(r.cfg.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	promoPath, err := r.flyer.Generate(medium, order)
	if err != nil {
		return nil, fmt.Errorf("generate flyer: %w", err)
	}

	if err := r.composer.Compose(cat, promoPath, labelPath, outPath); err != nil {
		return nil, err
	}

	printed := r.printBestEffort(outPath, log)

	if err := moveFile(labelPath, filepath.Join(r.cfg.OutDir, name)); err != nil {
		return nil, fmt.Errorf("archive %s: %w", labelPath, err)
	}
	log.Info("run complete", "output", outPath, "printed", printed)

	return &Result{
		Medium:     medium,
		Order:      order,
		Category:   cat,
		OutputPath: outPath,
		Printed:    printed,
	}, nil
}

// discover finds the input document. Multiple matches are resolved by sorted
// order, first entry wins; the ambiguity is logged, not corrected.
func (r *Runner) discover() (string, error) {
	entries, err := os.ReadDir(r.cfg.BaseDir)
	if err != nil {
		return "", fmt.Errorf("read input dir %s: %w", r.cfg.BaseDir, err)
	}
	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".pdf") && strings.Contains(strings.TrimSuffix(name, ".pdf"), "-") {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: expected <medium>-<order>.pdf in %s", ErrNoInput, r.cfg.BaseDir)
	}
	sort.Strings(matches)
	if len(matches) > 1 {
		r.log.Warn("multiple input candidates, taking first in sorted order",
			"count", len(matches), "chosen", matches[0])
	}
	return matches[0], nil
}

// moveFile archives src at dst. Rename is the fast path; when it fails,
// typically because BaseDir and OutDir sit on different filesystems, the
// file is copied and the source removed.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// printBestEffort submits the sheet and reports whether it was accepted.
// A missing default printer or a spooler failure never fails the run.
func (r *Runner) printBestEffort(outPath string, log *slog.Logger) bool {
	if !r.cfg.PrintEnabled {
		return false
	}
	err := r.sink.Submit(outPath)
	if err == nil {
		return true
	}
	if errors.Is(err, printer.ErrNoDefaultPrinter) {
		log.Info("no default printer, print manually", "path", outPath)
	} else {
		log.Error("print failed, print manually", "path", outPath, "error", err)
	}
	return false
}
