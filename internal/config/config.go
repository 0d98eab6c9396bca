package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	// Directories. All default relative to BaseDir.
	BaseDir  string // where incoming label PDFs are dropped
	DataDir  string // training corpora, flyer template, scissor asset
	ModelDir string // persisted classifier artifact
	TempDir  string // QR png and promo intermediate
	OutDir   string // composed sheets and archived inputs

	// Flyer
	ShopURL       string
	FlyerTemplate string
	ScissorAsset  string

	// Extraction
	DPI         int
	JPEGQuality int

	// Classifier training
	StopwordsPath string
	MaxFeatures   int

	// Printing
	PrintEnabled bool

	// PDF text extraction
	PDFFallbackPdftotext bool

	// Serve mode
	Port   string
	APIKey string
	JobTTL time.Duration
}

func Load() Config {
	base := envOr("LABELPRESS_BASE_DIR", ".")

	cfg := Config{
		BaseDir:  base,
		DataDir:  envOr("LABELPRESS_DATA_DIR", filepath.Join(base, "data")),
		ModelDir: envOr("LABELPRESS_MODEL_DIR", filepath.Join(base, "model")),
		TempDir:  envOr("LABELPRESS_TEMP_DIR", filepath.Join(base, "tmp")),
		OutDir:   envOr("LABELPRESS_OUT_DIR", filepath.Join(base, "out")),

		ShopURL: envOr("LABELPRESS_SHOP_URL", "https://www.3dcp.com.ar/eshop/catalogue/"),

		DPI:         envInt("LABELPRESS_DPI", 260),
		JPEGQuality: envInt("LABELPRESS_JPEG_QUALITY", 75),

		MaxFeatures: envInt("LABELPRESS_MAX_FEATURES", 5000),

		PrintEnabled:         envBool("LABELPRESS_PRINT", true),
		PDFFallbackPdftotext: envBool("LABELPRESS_PDF_FALLBACK_PDFTOTEXT", true),

		Port:   envOr("LABELPRESS_PORT", "8091"),
		APIKey: os.Getenv("LABELPRESS_API_KEY"),
		JobTTL: envDuration("LABELPRESS_JOB_TTL", 1*time.Hour),
	}

	cfg.FlyerTemplate = envOr("LABELPRESS_FLYER_TEMPLATE", filepath.Join(cfg.DataDir, "flyer.pdf"))
	cfg.ScissorAsset = envOr("LABELPRESS_SCISSOR_ASSET", filepath.Join(cfg.DataDir, "tijera.png"))
	cfg.StopwordsPath = envOr("LABELPRESS_STOPWORDS", filepath.Join(cfg.ModelDir, "custom_stopwords.txt"))

	if cfg.DPI <= 0 {
		cfg.DPI = 260
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 75
	}
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = 5000
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.ShopURL == "" {
		return fmt.Errorf("LABELPRESS_SHOP_URL must not be empty")
	}
	if c.BaseDir == "" {
		return fmt.Errorf("LABELPRESS_BASE_DIR must not be empty")
	}
	return nil
}

// TrainingDirs maps each category name to its labeled corpus directory.
// The keys are exactly the geometry registry's categories, which keeps the
// classifier label space and the registry consistent by construction.
func (c Config) TrainingDirs() map[string]string {
	return map[string]string{
		"MercadoLibre": filepath.Join(c.DataDir, "labelsMl"),
		"CorreoArg":    filepath.Join(c.DataDir, "labelsCorreoArg"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
