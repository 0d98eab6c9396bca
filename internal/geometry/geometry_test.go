package geometry

import (
	"errors"
	"testing"
)

func TestLookup_KnownCategories(t *testing.T) {
	for _, c := range Categories() {
		spec, err := Lookup(c)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", c, err)
		}
		if spec.LabelCrop.Width() <= 0 || spec.LabelCrop.Height() <= 0 {
			t.Errorf("%s: degenerate crop rect %+v", c, spec.LabelCrop)
		}
		if spec.LabelDest.Width() <= 0 || spec.LabelDest.Height() <= 0 {
			t.Errorf("%s: degenerate dest rect %+v", c, spec.LabelDest)
		}
	}
}

func TestLookup_UnknownCategory(t *testing.T) {
	_, err := Lookup(Category("OCA"))
	if !errors.Is(err, ErrUnsupportedCategory) {
		t.Fatalf("expected ErrUnsupportedCategory, got %v", err)
	}
}

func TestDestinationsWithinSheet(t *testing.T) {
	check := func(name string, r Rect) {
		if r.X0 < 0 || r.Y0 < 0 {
			t.Errorf("%s: origin outside sheet: %+v", name, r)
		}
		if r.X1 > SheetWidth || r.Y1 > SheetHeight {
			t.Errorf("%s: rect %+v exceeds sheet %gx%g", name, r, SheetWidth, SheetHeight)
		}
	}
	check("promo", PromoDest)
	for _, c := range Categories() {
		spec, _ := Lookup(c)
		check(string(c), spec.LabelDest)
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("MercadoLibre")
	if err != nil || c != CategoryMercadoLibre {
		t.Fatalf("ParseCategory(MercadoLibre) = %q, %v", c, err)
	}
	if _, err := ParseCategory("dhl"); !errors.Is(err, ErrUnsupportedCategory) {
		t.Fatalf("expected ErrUnsupportedCategory for unknown name, got %v", err)
	}
}

func TestCategories_SortedAndComplete(t *testing.T) {
	cats := Categories()
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(cats))
	}
	for i := 1; i < len(cats); i++ {
		if cats[i-1] >= cats[i] {
			t.Errorf("categories not sorted: %v", cats)
		}
	}
}
