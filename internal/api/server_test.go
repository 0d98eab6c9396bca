package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dlpedro/labelpress/internal/config"
	"github.com/dlpedro/labelpress/internal/pipeline"
)

// newTestServer wires a server over a station whose runner sees an empty
// input dir. Runs fail fast with "no input", which is enough for the HTTP
// surface under test.
func newTestServer(t *testing.T, apiKey string, logw io.Writer) *Server {
	t.Helper()
	if logw == nil {
		logw = io.Discard
	}
	log := slog.New(slog.NewJSONHandler(logw, nil))
	cfg := config.Config{BaseDir: t.TempDir(), APIKey: apiKey}
	runner := pipeline.NewRunner(cfg, nil, nil, nil, nil, log)
	station := pipeline.NewStation(runner, time.Minute, log)
	t.Cleanup(station.Stop)
	return NewServer(station, log, cfg)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("unexpected health body: %s", rec.Body.String())
	}
}

func TestGenerateReturnsPollableJob(t *testing.T) {
	s := newTestServer(t, "", nil)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	var resp struct {
		JobID   string `json:"job_id"`
		Status  string `json:"status"`
		PollURL string `json:"poll_url"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode generate response: %v", err)
	}
	if resp.JobID == "" {
		t.Fatal("expected a job id")
	}
	if resp.PollURL != "/api/jobs/"+resp.JobID {
		t.Errorf("poll url %q does not match job id %q", resp.PollURL, resp.JobID)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, resp.PollURL, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("poll url returned %d", rec.Code)
	}
	var snap struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode job status: %v", err)
	}
	if snap.JobID != resp.JobID {
		t.Errorf("status for job %q, requested %q", snap.JobID, resp.JobID)
	}
}

func TestJobStatusNotFound(t *testing.T) {
	s := newTestServer(t, "", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCategories(t *testing.T) {
	s := newTestServer(t, "", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "MercadoLibre") {
		t.Errorf("expected MercadoLibre in categories, got %s", rec.Body.String())
	}
}

func TestAPIKeyGuardsGenerate(t *testing.T) {
	s := newTestServer(t, "station-secret", nil)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong key, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/generate", nil)
	req.Header.Set("Authorization", "Bearer station-secret")
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 with the right key, got %d", rec.Code)
	}

	// Health stays open regardless of the key.
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected open health endpoint, got %d", rec.Code)
	}
}

func TestRequestLogTagsRequestID(t *testing.T) {
	var buf bytes.Buffer
	s := newTestServer(t, "", &buf)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	line := buf.String()
	if !strings.Contains(line, `"request_id"`) {
		t.Errorf("expected request_id in the request log, got: %s", line)
	}
	if !strings.Contains(line, `"path":"/health"`) {
		t.Errorf("expected path in the request log, got: %s", line)
	}
}
