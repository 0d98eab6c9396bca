// Package flyer produces the promo intermediate: the static flyer template
// with an order-specific QR code stamped on it.
package flyer

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	qrcode "github.com/skip2/go-qrcode"
)

// Generator produces the promo intermediate PDF for one order and returns its
// path. The pipeline depends on this interface.
type Generator interface {
	Generate(medium, order string) (string, error)
}

// QR placement on the template, in points, top-left origin. Matches the
// reserved square on the printed flyer.
var qrRect = struct{ x0, y0, x1, y1 float64 }{190, 295, 259, 364}

// QRFlyer stamps a QR code onto the flyer template with pdfcpu.
type QRFlyer struct {
	TemplatePath string
	TempDir      string
	BaseURL      string
	log          *slog.Logger
}

func New(templatePath, tempDir, baseURL string, log *slog.Logger) *QRFlyer {
	return &QRFlyer{TemplatePath: templatePath, TempDir: tempDir, BaseURL: baseURL, log: log}
}

// Generate writes tmp/interm.pdf and returns its path. The transient QR png
// is removed on every exit path.
func (g *QRFlyer) Generate(medium, order string) (string, error) {
	if _, err := os.Stat(g.TemplatePath); err != nil {
		return "", fmt.Errorf("flyer template %s: %w", g.TemplatePath, err)
	}
	if err := os.MkdirAll(g.TempDir, 0o755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	qrURL := g.qrURL(medium, order)
	qrPath := filepath.Join(g.TempDir, "interm.png")
	// Rendered at the stamp's point size so pdfcpu places it 1:1.
	size := int(qrRect.x1 - qrRect.x0)
	if err := qrcode.WriteFile(qrURL, qrcode.Medium, size, qrPath); err != nil {
		return "", fmt.Errorf("generate qr: %w", err)
	}
	defer os.Remove(qrPath)

	dims, err := api.PageDimsFile(g.TemplatePath)
	if err != nil || len(dims) == 0 {
		return "", fmt.Errorf("flyer template dims: %w", err)
	}

	// pdfcpu offsets are bottom-left based; convert the top-left rect.
	offX := qrRect.x0
	offY := dims[0].Height - qrRect.y1
	desc := fmt.Sprintf("pos:bl, off:%.0f %.0f, scale:1 abs, rot:0", offX, offY)

	outPath := filepath.Join(g.TempDir, "interm.pdf")
	conf := model.NewDefaultConfiguration()
	if err := api.AddImageWatermarksFile(g.TemplatePath, outPath, []string{"1"}, true, qrPath, desc, conf); err != nil {
		return "", fmt.Errorf("stamp qr onto flyer: %w", err)
	}

	g.log.Info("promo intermediate generated", "path", outPath, "url", qrURL)
	return outPath, nil
}

func (g *QRFlyer) qrURL(medium, order string) string {
	q := url.Values{}
	q.Set("origen", medium)
	q.Set("id", order)
	return g.BaseURL + "?" + q.Encode()
}
