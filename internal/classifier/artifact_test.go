package classifier

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// trainedArtifact fits a small synthetic two-category corpus.
func trainedArtifact(t *testing.T) *Artifact {
	t.Helper()
	texts := []string{
		"mercado libre flex envio prioritario etiqueta",
		"mercado libre flex despacho etiqueta comprador",
		"mercado libre envio flex vendedor",
		"mercado libre etiqueta despacho flex",
		"correo argentino sucursal encomienda franqueo",
		"correo argentino encomienda clasica franqueo pagado",
		"correo argentino franqueo sucursal destino",
		"correo argentino encomienda sucursal retiro",
	}
	labels := []string{
		"MercadoLibre", "MercadoLibre", "MercadoLibre", "MercadoLibre",
		"CorreoArg", "CorreoArg", "CorreoArg", "CorreoArg",
	}

	codec, y := FitLabels(labels)
	vec := NewVectorizer(nil, 5000)
	vec.Fit(texts)
	x := make([][]float64, len(texts))
	for i, doc := range texts {
		x[i] = vec.Transform(doc)
	}
	return fitArtifact(x, y, vec, codec, 42, discardLogger())
}

func TestArtifact_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	art := trainedArtifact(t)
	if err := art.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadArtifact(dir)
	if err != nil {
		t.Fatalf("LoadArtifact: %v", err)
	}
	if loaded.Fingerprint != art.Fingerprint {
		t.Errorf("fingerprint changed across round trip")
	}
	if loaded.Vectorizer.Dim() != art.Vectorizer.Dim() {
		t.Errorf("vocabulary size changed: %d vs %d", loaded.Vectorizer.Dim(), art.Vectorizer.Dim())
	}
	if loaded.Labels.Len() != 2 {
		t.Errorf("expected 2 classes, got %d", loaded.Labels.Len())
	}
}

func TestLoadArtifact_MissingFile(t *testing.T) {
	dir := t.TempDir()
	art := trainedArtifact(t)
	if err := art.Save(dir); err != nil {
		t.Fatal(err)
	}
	os.Remove(filepath.Join(dir, ModelFile))

	if _, err := LoadArtifact(dir); !errors.Is(err, ErrArtifactLoad) {
		t.Fatalf("expected ErrArtifactLoad, got %v", err)
	}
}

func TestLoadArtifact_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	art := trainedArtifact(t)
	if err := art.Save(dir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, VectorizerFile), []byte("not gob"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadArtifact(dir); !errors.Is(err, ErrArtifactLoad) {
		t.Fatalf("expected ErrArtifactLoad, got %v", err)
	}
}

func TestLoadArtifact_MixedTrainingRuns(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()

	artA := trainedArtifact(t)
	if err := artA.Save(dirA); err != nil {
		t.Fatal(err)
	}

	// A second artifact with a different corpus shape gets a different
	// fingerprint; mixing its label codec in must be rejected.
	artB := trainedArtifact(t)
	artB.Fingerprint = "deadbeefdeadbeef"
	if err := artB.Save(dirB); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dirB, LabelsFile))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dirA, LabelsFile), data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadArtifact(dirA); !errors.Is(err, ErrArtifactLoad) {
		t.Fatalf("expected ErrArtifactLoad for mixed fingerprints, got %v", err)
	}
}
