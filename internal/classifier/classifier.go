// Package classifier trains and applies the shipping-label category model: a
// TF-IDF bag of words over the label's text layer, fed to a linear SVM.
// Labels from a given carrier share highly characteristic boilerplate, so this
// is a low-data, high-signal text problem rather than a vision one.
package classifier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dlpedro/labelpress/internal/geometry"
	"github.com/dlpedro/labelpress/internal/pdftext"
)

var (
	// ErrEmptyText means the document has no extractable text layer and
	// cannot be classified. Scanned labels hit this.
	ErrEmptyText = errors.New("document contains no extractable text")

	// ErrPrediction wraps any other classification failure.
	ErrPrediction = errors.New("prediction failed")
)

// Predictor maps a label PDF to its shipping category. The pipeline depends on
// this interface, not on the SVM implementation.
type Predictor interface {
	Predict(path string) (geometry.Category, error)
}

// SVM is the persisted-artifact-backed predictor.
type SVM struct {
	artifact  *Artifact
	extractor *pdftext.Extractor
}

// NewFromDir loads the trained artifact from modelDir.
func NewFromDir(modelDir string, ex *pdftext.Extractor) (*SVM, error) {
	art, err := LoadArtifact(modelDir)
	if err != nil {
		return nil, err
	}
	return &SVM{artifact: art, extractor: ex}, nil
}

// New wraps an already-loaded artifact.
func New(art *Artifact, ex *pdftext.Extractor) *SVM {
	return &SVM{artifact: art, extractor: ex}
}

// Predict extracts the document's text and returns its category.
func (s *SVM) Predict(path string) (geometry.Category, error) {
	text, err := s.extractor.Text(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrPrediction, path, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyText, path)
	}
	cat, err := s.classify(text)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrPrediction, path, err)
	}
	return cat, nil
}

func (s *SVM) classify(text string) (geometry.Category, error) {
	x := s.artifact.Vectorizer.Transform(text)
	idx := s.artifact.Model.Predict(x)
	name, err := s.artifact.Labels.Decode(idx)
	if err != nil {
		return "", err
	}
	return geometry.Category(name), nil
}
