package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/dlpedro/labelpress/internal/geometry"
)

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob()
	if job.Status != StatusQueued {
		t.Fatalf("new job should be queued, got %q", job.Status)
	}

	before := job.UpdatedAt
	time.Sleep(time.Millisecond)
	job.SetStatus(StatusRunning, "running pipeline")

	if job.Status != StatusRunning {
		t.Errorf("expected running, got %q", job.Status)
	}
	if !job.UpdatedAt.After(before) {
		t.Error("expected UpdatedAt to advance")
	}
}

func TestJob_Complete(t *testing.T) {
	job := NewJob()
	job.Complete(&Result{
		Medium:     "meli",
		Order:      "123456",
		Category:   geometry.CategoryMercadoLibre,
		OutputPath: "/out/meli123456.pdf",
		Printed:    true,
	})

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Errorf("expected completed, got %q", snap.Status)
	}
	if snap.Category != geometry.CategoryMercadoLibre || snap.Order != "123456" {
		t.Errorf("result fields not recorded: %+v", snap)
	}
	if !snap.Printed {
		t.Error("expected printed flag recorded")
	}
}

func TestJob_Fail(t *testing.T) {
	job := NewJob()
	job.Fail(errors.New("boom"))

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected failed, got %q", snap.Status)
	}
	if snap.Error != "boom" {
		t.Errorf("expected error message recorded, got %q", snap.Error)
	}
}

func TestJobStore_PutGetCleanup(t *testing.T) {
	store := NewJobStore(10 * time.Millisecond)
	job := NewJob()
	store.Put(job)

	if got := store.Get(job.ID); got != job {
		t.Fatal("expected to retrieve stored job")
	}

	time.Sleep(20 * time.Millisecond)
	store.Cleanup()
	if store.Get(job.ID) != nil {
		t.Error("expected expired job to be evicted")
	}
}

func TestNewJobID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := newJobID()
		if seen[id] {
			t.Fatalf("duplicate job id %q", id)
		}
		seen[id] = true
	}
}
