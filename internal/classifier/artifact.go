package classifier

import (
	"crypto/sha256"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrArtifactLoad means the persisted model could not be located, decoded, or
// the three components do not belong together. Always fatal: a half-loaded
// classifier must never run.
var ErrArtifactLoad = errors.New("classifier artifact load failed")

// The three artifact files are co-versioned: trained together, loaded
// together. Each carries the same format version and train fingerprint.
const (
	FormatVersion = 1

	VectorizerFile = "vectorizer.gob"
	ModelFile      = "svm_model.gob"
	LabelsFile     = "label_codec.gob"
)

// Artifact bundles everything prediction needs.
type Artifact struct {
	Vectorizer  *Vectorizer
	Model       *Model
	Labels      *LabelCodec
	Fingerprint string
}

type vectorizerRecord struct {
	Version     int
	Fingerprint string
	Vectorizer  Vectorizer
}

type modelRecord struct {
	Version     int
	Fingerprint string
	Model       Model
}

type labelsRecord struct {
	Version     int
	Fingerprint string
	Labels      LabelCodec
}

// fingerprint ties the three files to one training run.
func fingerprint(classes []string, vocabSize, docs int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d", strings.Join(classes, ","), vocabSize, docs)))
	return fmt.Sprintf("%x", h[:8])
}

// Save writes the three artifact files into dir, creating it if needed.
func (a *Artifact) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	if err := writeGob(filepath.Join(dir, VectorizerFile), vectorizerRecord{
		Version: FormatVersion, Fingerprint: a.Fingerprint, Vectorizer: *a.Vectorizer,
	}); err != nil {
		return err
	}
	if err := writeGob(filepath.Join(dir, ModelFile), modelRecord{
		Version: FormatVersion, Fingerprint: a.Fingerprint, Model: *a.Model,
	}); err != nil {
		return err
	}
	return writeGob(filepath.Join(dir, LabelsFile), labelsRecord{
		Version: FormatVersion, Fingerprint: a.Fingerprint, Labels: *a.Labels,
	})
}

// LoadArtifact reads and cross-checks the three files. Any missing file,
// decode failure, version skew, fingerprint mismatch or dimension mismatch is
// an ErrArtifactLoad.
func LoadArtifact(dir string) (*Artifact, error) {
	var vr vectorizerRecord
	if err := readGob(filepath.Join(dir, VectorizerFile), &vr); err != nil {
		return nil, err
	}
	var mr modelRecord
	if err := readGob(filepath.Join(dir, ModelFile), &mr); err != nil {
		return nil, err
	}
	var lr labelsRecord
	if err := readGob(filepath.Join(dir, LabelsFile), &lr); err != nil {
		return nil, err
	}

	for name, v := range map[string]int{VectorizerFile: vr.Version, ModelFile: mr.Version, LabelsFile: lr.Version} {
		if v != FormatVersion {
			return nil, fmt.Errorf("%w: %s has format version %d, want %d", ErrArtifactLoad, name, v, FormatVersion)
		}
	}
	if vr.Fingerprint != mr.Fingerprint || mr.Fingerprint != lr.Fingerprint {
		return nil, fmt.Errorf("%w: fingerprints differ (%s/%s/%s), components from different training runs",
			ErrArtifactLoad, vr.Fingerprint, mr.Fingerprint, lr.Fingerprint)
	}
	if vr.Vectorizer.Dim() != mr.Model.Dim() {
		return nil, fmt.Errorf("%w: vocabulary size %d does not match model width %d",
			ErrArtifactLoad, vr.Vectorizer.Dim(), mr.Model.Dim())
	}
	if mr.Model.NumClasses() != lr.Labels.Len() {
		return nil, fmt.Errorf("%w: model has %d classes, label codec has %d",
			ErrArtifactLoad, mr.Model.NumClasses(), lr.Labels.Len())
	}

	return &Artifact{
		Vectorizer:  &vr.Vectorizer,
		Model:       &mr.Model,
		Labels:      &lr.Labels,
		Fingerprint: vr.Fingerprint,
	}, nil
}

func writeGob(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func readGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrArtifactLoad, path, err)
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrArtifactLoad, path, err)
	}
	return nil
}
