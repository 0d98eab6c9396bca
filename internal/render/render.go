// Package render rasterizes a rectangular region of a PDF page into a
// compressed JPEG buffer at a target resolution.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"math"

	"github.com/dlpedro/labelpress/internal/geometry"
	fitz "github.com/gen2brain/go-fitz"
)

// ErrExtraction means an out-of-range page or a rectangle outside the page
// bounds. Never clamped: a silently clipped crop corrupts the composed sheet.
var ErrExtraction = errors.New("region extraction failed")

// RegionSpec describes one crop: a rectangle in page points plus rendering
// parameters.
type RegionSpec struct {
	Rect    geometry.Rect
	DPI     int
	Quality int // JPEG quality 1-100
}

// Image is the transient result of one extraction.
type Image struct {
	Data   []byte // JPEG
	Width  int    // pixels
	Height int
	Spec   RegionSpec
}

// ExtractRegion renders page `page` (0-based) of the document at spec.DPI,
// crops spec.Rect, flattens any alpha onto white and JPEG-encodes the result.
func ExtractRegion(path string, page int, spec RegionSpec) (*Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrExtraction, path, err)
	}
	defer doc.Close()

	if page < 0 || page >= doc.NumPage() {
		return nil, fmt.Errorf("%w: page %d out of range (document has %d)", ErrExtraction, page, doc.NumPage())
	}

	bound, err := doc.Bound(page)
	if err != nil {
		return nil, fmt.Errorf("%w: page bounds: %w", ErrExtraction, err)
	}
	r := spec.Rect
	if r.X0 < 0 || r.Y0 < 0 || r.X1 > float64(bound.Dx()) || r.Y1 > float64(bound.Dy()) ||
		r.Width() <= 0 || r.Height() <= 0 {
		return nil, fmt.Errorf("%w: rect (%g,%g,%g,%g) outside page bounds %dx%d",
			ErrExtraction, r.X0, r.Y0, r.X1, r.Y1, bound.Dx(), bound.Dy())
	}

	rendered, err := doc.ImageDPI(page, float64(spec.DPI))
	if err != nil {
		return nil, fmt.Errorf("%w: render page %d: %w", ErrExtraction, page, err)
	}

	// Page coordinates are points (72/inch); the render is scaled by DPI/72.
	scale := float64(spec.DPI) / 72
	crop := image.Rect(
		int(math.Round(r.X0*scale)),
		int(math.Round(r.Y0*scale)),
		int(math.Round(r.X1*scale)),
		int(math.Round(r.Y1*scale)),
	).Intersect(rendered.Bounds())
	if crop.Empty() {
		return nil, fmt.Errorf("%w: empty crop after scaling", ErrExtraction)
	}

	// Flatten onto white to drop any alpha before JPEG encoding.
	flat := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), rendered, crop.Min, draw.Over)

	quality := spec.Quality
	if quality <= 0 || quality > 100 {
		quality = 75
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("%w: encode jpeg: %w", ErrExtraction, err)
	}

	return &Image{
		Data:   buf.Bytes(),
		Width:  crop.Dx(),
		Height: crop.Dy(),
		Spec:   spec,
	}, nil
}
