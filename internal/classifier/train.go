package classifier

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dlpedro/labelpress/internal/pdftext"
	"gonum.org/v1/gonum/stat"
)

// TrainConfig describes one training run.
type TrainConfig struct {
	// DataDirs maps a category name to a directory of labeled example PDFs.
	DataDirs map[string]string

	StopwordsPath string
	MaxFeatures   int
	Seed          uint64
}

const crossValFolds = 4

// Train builds the classifier artifact from labeled PDF folders. Documents
// without a text layer are skipped with a warning. The cross-validated
// accuracy is logged as a diagnostic, not enforced.
func Train(cfg TrainConfig, ex *pdftext.Extractor, log *slog.Logger) (*Artifact, error) {
	texts, labels, err := loadCorpus(cfg.DataDirs, ex, log)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("no training documents with extractable text found")
	}

	var stopwords []string
	if cfg.StopwordsPath != "" {
		stopwords, err = LoadStopwords(cfg.StopwordsPath)
		if err != nil {
			return nil, err
		}
	}

	codec, y := FitLabels(labels)
	vec := NewVectorizer(stopwords, cfg.MaxFeatures)
	vec.Fit(texts)

	x := make([][]float64, len(texts))
	for i, t := range texts {
		x[i] = vec.Transform(t)
	}

	art := fitArtifact(x, y, vec, codec, cfg.Seed, log)
	log.Info("training complete",
		"documents", len(texts),
		"classes", codec.Len(),
		"vocabulary", vec.Dim(),
		"fingerprint", art.Fingerprint,
	)
	return art, nil
}

// fitArtifact runs the 80/20 split, the fit and the diagnostics on
// already-vectorized data.
func fitArtifact(x [][]float64, y []int, vec *Vectorizer, codec *LabelCodec, seed uint64, log *slog.Logger) *Artifact {
	rng := rand.New(rand.NewPCG(seed, 0))
	order := rng.Perm(len(x))

	nTest := len(x) / 5
	var xTrain, xTest [][]float64
	var yTrain, yTest []int
	for i, idx := range order {
		if i < nTest {
			xTest = append(xTest, x[idx])
			yTest = append(yTest, y[idx])
		} else {
			xTrain = append(xTrain, x[idx])
			yTrain = append(yTrain, y[idx])
		}
	}

	model := TrainModel(xTrain, yTrain, codec.Len(), seed)

	if scores := crossValidate(xTrain, yTrain, codec.Len(), crossValFolds, seed); len(scores) > 0 {
		log.Info("cross-validated accuracy",
			"mean", fmt.Sprintf("%.4f", stat.Mean(scores, nil)),
			"folds", len(scores),
		)
	}
	if nTest > 0 {
		log.Info("held-out accuracy", "accuracy", fmt.Sprintf("%.4f", model.Accuracy(xTest, yTest)))
	}

	return &Artifact{
		Vectorizer:  vec,
		Model:       model,
		Labels:      codec,
		Fingerprint: fingerprint(codec.Classes, vec.Dim(), len(x)),
	}
}

// crossValidate returns per-fold accuracies of a k-fold split. Folds that
// would be empty are dropped (tiny corpora).
func crossValidate(x [][]float64, y []int, classes, k int, seed uint64) []float64 {
	if len(x) < k || k < 2 {
		return nil
	}
	var scores []float64
	for fold := 0; fold < k; fold++ {
		var xTrain, xVal [][]float64
		var yTrain, yVal []int
		for i := range x {
			if i%k == fold {
				xVal = append(xVal, x[i])
				yVal = append(yVal, y[i])
			} else {
				xTrain = append(xTrain, x[i])
				yTrain = append(yTrain, y[i])
			}
		}
		if len(xVal) == 0 || len(xTrain) == 0 {
			continue
		}
		m := TrainModel(xTrain, yTrain, classes, seed+uint64(fold)+1)
		scores = append(scores, m.Accuracy(xVal, yVal))
	}
	return scores
}

// loadCorpus extracts text from every labeled PDF. Category order is sorted
// so repeated runs see the corpus identically.
func loadCorpus(dirs map[string]string, ex *pdftext.Extractor, log *slog.Logger) ([]string, []string, error) {
	categories := make([]string, 0, len(dirs))
	for c := range dirs {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var texts, labels []string
	for _, cat := range categories {
		dir := dirs[cat]
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("read training dir %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
				continue
			}
			path := filepath.Join(dir, e.Name())
			text, err := ex.Text(path)
			if err != nil {
				return nil, nil, err
			}
			if text == "" {
				log.Warn("skipping document without text layer", "path", path)
				continue
			}
			texts = append(texts, text)
			labels = append(labels, cat)
		}
	}
	return texts, labels, nil
}
