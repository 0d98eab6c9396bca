// Package geometry holds the static crop/placement table that maps a shipping
// category to the rectangles used when assembling the final sheet.
package geometry

import (
	"errors"
	"fmt"
	"sort"
)

// Category identifies the carrier layout of a shipping label.
type Category string

const (
	CategoryMercadoLibre Category = "MercadoLibre"
	CategoryCorreoArg    Category = "CorreoArg"
)

// ErrUnsupportedCategory is returned when a category has no geometry entry.
// Callers surface it distinctly so operators know to extend the registry.
var ErrUnsupportedCategory = errors.New("unsupported shipping category")

// Rect is a rectangle in page points (72 per inch), top-left origin.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Output sheet: landscape A5 in points.
const (
	SheetWidth  = 595.0
	SheetHeight = 420.0
)

// Promo flyer geometry is category-independent: every sheet gets the same
// flyer crop on the left half.
var (
	PromoCrop = Rect{X0: 6, Y0: 10, X1: 297, Y1: 410}
	PromoDest = Rect{X0: 0, Y0: 0, X1: 297, Y1: 420}
)

// Spec is the per-category geometry pair: where to crop the carrier label and
// where to place the crop on the output sheet.
type Spec struct {
	LabelCrop Rect
	LabelDest Rect
}

// Adding a carrier means adding one entry here. Nothing else changes.
var registry = map[Category]Spec{
	CategoryMercadoLibre: {
		LabelCrop: Rect{X0: 30, Y0: 140, X1: 297, Y1: 600},
		LabelDest: Rect{X0: 297, Y0: 10, X1: 595, Y1: 420},
	},
	CategoryCorreoArg: {
		LabelCrop: Rect{X0: 50, Y0: 57, X1: 305, Y1: 490},
		LabelDest: Rect{X0: 297, Y0: 10, X1: 595, Y1: 420},
	},
}

// Lookup returns the geometry pair for a category.
func Lookup(c Category) (Spec, error) {
	spec, ok := registry[c]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnsupportedCategory, c)
	}
	return spec, nil
}

// Categories returns all registered categories in sorted order.
func Categories() []Category {
	out := make([]Category, 0, len(registry))
	for c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseCategory validates a category name against the registry.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := registry[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCategory, s)
	}
	return c, nil
}
