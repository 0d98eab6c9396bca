package flyer

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

func writeTemplate(t *testing.T, path string) {
	t.Helper()
	doc := fpdf.NewCustom(&fpdf.InitType{UnitStr: "pt", Size: fpdf.SizeType{Wd: 297, Ht: 420}})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()
	doc.SetFont("Helvetica", "B", 16)
	doc.Text(40, 60, "GRACIAS POR TU COMPRA")
	if err := doc.OutputFileAndClose(path); err != nil {
		t.Fatalf("write template: %v", err)
	}
}

func newTestFlyer(t *testing.T) (*QRFlyer, string) {
	t.Helper()
	dir := t.TempDir()
	template := filepath.Join(dir, "flyer.pdf")
	writeTemplate(t, template)
	tempDir := filepath.Join(dir, "tmp")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(template, tempDir, "https://shop.example.com/catalogue/", log), tempDir
}

func TestGenerate_ProducesIntermediate(t *testing.T) {
	g, tempDir := newTestFlyer(t)

	out, err := g.Generate("meli", "123456")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != filepath.Join(tempDir, "interm.pdf") {
		t.Errorf("unexpected intermediate path %q", out)
	}

	n, err := api.PageCountFile(out)
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 page, got %d", n)
	}

	// The transient QR png must be gone.
	if _, err := os.Stat(filepath.Join(tempDir, "interm.png")); !os.IsNotExist(err) {
		t.Error("expected QR png to be removed")
	}
}

func TestGenerate_MissingTemplate(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := New(filepath.Join(t.TempDir(), "nope.pdf"), t.TempDir(), "https://x/", log)

	if _, err := g.Generate("meli", "1"); err == nil {
		t.Fatal("expected error for missing template")
	}
}

func TestQRURL_Parameters(t *testing.T) {
	g, _ := newTestFlyer(t)
	u := g.qrURL("meli", "123456")
	if !strings.Contains(u, "origen=meli") || !strings.Contains(u, "id=123456") {
		t.Errorf("qr url missing parameters: %q", u)
	}
}
