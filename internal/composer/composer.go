// Package composer assembles the final two-up sheet: promo flyer on the left
// half, carrier label crop on the right, with a dashed cut guide between them.
package composer

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dlpedro/labelpress/internal/geometry"
	"github.com/dlpedro/labelpress/internal/pdftext"
	"github.com/dlpedro/labelpress/internal/render"
	"github.com/go-pdf/fpdf"
)

var (
	// ErrMissingInput means a required source document does not exist.
	ErrMissingInput = errors.New("required input file missing")

	// ErrComposition wraps any failure while extracting, assembling or
	// persisting the sheet.
	ErrComposition = errors.New("sheet composition failed")
)

// Cut guide: short vertical dashes down the middle of the sheet.
const (
	cutGuideStep   = 3.0
	cutGuideDash   = 2.0
	cutGuideMargin = 1.0
	cutGuideWidth  = 0.5
)

// Composer turns a promo intermediate and a shipping label into one sheet.
type Composer struct {
	dpi         int
	quality     int
	scissorPath string // optional; absence is non-fatal
	log         *slog.Logger
}

func New(dpi, quality int, scissorPath string, log *slog.Logger) *Composer {
	return &Composer{dpi: dpi, quality: quality, scissorPath: scissorPath, log: log}
}

// Compose builds outPath from the promo intermediate and the label document.
// The promo intermediate is a transient file and is deleted on every exit
// path. An unknown category is a soft failure: logged, no file produced.
func (c *Composer) Compose(cat geometry.Category, promoPath, labelPath, outPath string) error {
	defer func() {
		if err := os.Remove(promoPath); err != nil && !os.IsNotExist(err) {
			c.log.Warn("could not remove promo intermediate", "path", promoPath, "error", err)
		}
	}()

	if _, err := os.Stat(promoPath); err != nil {
		return fmt.Errorf("%w: %s (run the flyer generator first)", ErrMissingInput, promoPath)
	}
	if _, err := os.Stat(labelPath); err != nil {
		return fmt.Errorf("%w: %s", ErrMissingInput, labelPath)
	}
	// Cheap parse check before handing the label to the rasterizer; a
	// corrupt document fails here with a usable error instead of deep
	// inside MuPDF.
	if n, err := pdftext.PageCount(labelPath); err != nil {
		return fmt.Errorf("%w: %w", ErrComposition, err)
	} else if n < 1 {
		return fmt.Errorf("%w: label %s has no pages", ErrComposition, labelPath)
	}

	spec, err := geometry.Lookup(cat)
	if err != nil {
		c.log.Error("shipping category not supported", "category", cat)
		return err
	}

	promoImg, err := render.ExtractRegion(promoPath, 0, render.RegionSpec{
		Rect: geometry.PromoCrop, DPI: c.dpi, Quality: c.quality,
	})
	if err != nil {
		return fmt.Errorf("%w: promo region: %w", ErrComposition, err)
	}
	labelImg, err := render.ExtractRegion(labelPath, 0, render.RegionSpec{
		Rect: spec.LabelCrop, DPI: c.dpi, Quality: c.quality,
	})
	if err != nil {
		return fmt.Errorf("%w: label region: %w", ErrComposition, err)
	}

	if err := c.writeSheet(promoImg, labelImg, spec.LabelDest, outPath); err != nil {
		// Never leave a partial output behind.
		os.Remove(outPath)
		return fmt.Errorf("%w: %w", ErrComposition, err)
	}

	c.log.Info("sheet composed", "category", cat, "output", outPath)
	return nil
}

func (c *Composer) writeSheet(promo, label *render.Image, labelDest geometry.Rect, outPath string) error {
	doc := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: geometry.SheetWidth, Ht: geometry.SheetHeight},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	// Promo first, label overlaid second: the destinations may touch at the
	// fold and the label must win on the boundary.
	placeImage(doc, "promo", promo, geometry.PromoDest)
	placeImage(doc, "label", label, labelDest)

	drawCutGuide(doc)
	c.stampScissor(doc)

	if err := doc.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	return nil
}

func placeImage(doc *fpdf.Fpdf, name string, img *render.Image, dest geometry.Rect) {
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	doc.ImageOptions(name, dest.X0, dest.Y0, dest.Width(), dest.Height(), false, opts, 0, "")
}

// cutGuideYs returns the starting y of every dash segment.
func cutGuideYs() []float64 {
	var ys []float64
	for y := cutGuideMargin; y+cutGuideDash <= geometry.SheetHeight-cutGuideMargin; y += cutGuideStep {
		ys = append(ys, y)
	}
	return ys
}

func drawCutGuide(doc *fpdf.Fpdf) {
	x := geometry.SheetWidth / 2
	doc.SetDrawColor(0, 0, 0)
	doc.SetLineWidth(cutGuideWidth)
	for _, y := range cutGuideYs() {
		doc.Line(x, y, x, y+cutGuideDash)
	}
}

// stampScissor places the scissor icon near the bottom of the cut line when
// the asset exists. Missing asset: the dashed line alone is sufficient.
func (c *Composer) stampScissor(doc *fpdf.Fpdf) {
	if c.scissorPath == "" {
		return
	}
	if _, err := os.Stat(c.scissorPath); err != nil {
		return
	}
	x := geometry.SheetWidth / 2
	const w, h = 12.0, 18.0
	doc.ImageOptions(c.scissorPath, x-w/2, geometry.SheetHeight-cutGuideMargin-h, w, h,
		false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}
