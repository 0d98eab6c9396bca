package pipeline

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/dlpedro/labelpress/internal/geometry"
)

// JobStatus represents the state of a label run triggered via the station API.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job tracks one pipeline run.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Medium     string            `json:"medium,omitempty"`
	Order      string            `json:"order,omitempty"`
	Category   geometry.Category `json:"category,omitempty"`
	OutputPath string            `json:"output_path,omitempty"`
	Printed    bool              `json:"printed"`
	Error      string            `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewJob creates a queued job with a fresh ID.
func NewJob() *Job {
	now := time.Now()
	return &Job{
		ID:        newJobID(),
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Complete records a successful run.
func (j *Job) Complete(res *Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusCompleted
	j.Phase = "done"
	j.Medium = res.Medium
	j.Order = res.Order
	j.Category = res.Category
	j.OutputPath = res.OutputPath
	j.Printed = res.Printed
	j.UpdatedAt = time.Now()
}

// Fail records a failed run.
func (j *Job) Fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusFailed
	j.Error = err.Error()
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string            `json:"job_id"`
	Status     JobStatus         `json:"status"`
	Phase      string            `json:"phase"`
	Medium     string            `json:"medium,omitempty"`
	Order      string            `json:"order,omitempty"`
	Category   geometry.Category `json:"category,omitempty"`
	OutputPath string            `json:"output_path,omitempty"`
	Printed    bool              `json:"printed"`
	Error      string            `json:"error,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:         j.ID,
		Status:     j.Status,
		Phase:      j.Phase,
		Medium:     j.Medium,
		Order:      j.Order,
		Category:   j.Category,
		OutputPath: j.OutputPath,
		Printed:    j.Printed,
		Error:      j.Error,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// newJobID returns a millisecond-timestamped random identifier. Collisions
// would need two triggers in the same millisecond with matching random bytes.
func newJobID() string {
	var b [6]byte
	rand.Read(b[:])
	return fmt.Sprintf("%d-%x", time.Now().UnixMilli(), b)
}
