package core

// jobs.go sequentializes committed batches through a single background
// worker and applies rows to the external stores one at a time.
//
// The single-flight guarantee is structural: one goroutine reads job IDs
// from a FIFO channel, so no two jobs can apply rows concurrently and a new
// job leaves pending only once the previous job reached a terminal state.
// Per-row failures are recorded into the job's error list and never abort
// the job; failed is reserved for catastrophic processor errors such as
// shutdown mid-job.

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yhkim-dev/stockflow/internal/store"
)

// JobStatus is the lifecycle state of an import job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job is one committed batch. Errors is seeded with the preview's error rows
// at commit time and grows with runtime apply failures; Processed increases
// monotonically from 0 to Total.
type Job struct {
	ID        string
	Type      UploadType
	Status    JobStatus
	Total     int
	Processed int
	Summary   PreviewSummary
	Columns   []string
	Rows      []ParsedRow
	Errors    []ParsedRow
	CreatedAt time.Time
	UpdatedAt time.Time
}

// JobStore owns all jobs by ID for the process lifetime, bounded by maxJobs:
// when a new job is added beyond capacity, the oldest terminal job is
// evicted. Active jobs are never evicted.
type JobStore struct {
	mu      sync.RWMutex
	jobs    map[string]*Job
	order   []string
	maxJobs int
}

// NewJobStore creates a job store retaining at most maxJobs jobs.
// A non-positive bound falls back to 200.
func NewJobStore(maxJobs int) *JobStore {
	if maxJobs <= 0 {
		maxJobs = 200
	}
	return &JobStore{jobs: make(map[string]*Job), maxJobs: maxJobs}
}

// Add registers a new job.
func (s *JobStore) Add(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.jobs) >= s.maxJobs {
		if !s.evictOldestTerminalLocked() {
			break
		}
	}

	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
}

// Get returns a snapshot copy of a job.
func (s *JobStore) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return snapshot(job), true
}

// update applies fn to a job under the write lock.
func (s *JobStore) update(id string, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job, ok := s.jobs[id]; ok {
		fn(job)
	}
}

func (s *JobStore) evictOldestTerminalLocked() bool {
	for i, id := range s.order {
		job, ok := s.jobs[id]
		if !ok || job.Status == JobCompleted || job.Status == JobFailed {
			delete(s.jobs, id)
			s.order = append(s.order[:i], s.order[i+1:]...)
			return true
		}
	}
	return false
}

// snapshot deep-copies the mutable slices so callers never observe the
// processor's in-place mutation.
func snapshot(job *Job) Job {
	out := *job
	out.Rows = append([]ParsedRow(nil), job.Rows...)
	out.Errors = append([]ParsedRow(nil), job.Errors...)
	return out
}

// Queue drains committed jobs through a single background worker.
type Queue struct {
	jobs       *JobStore
	applier    store.Applier
	startDelay time.Duration
	interval   time.Duration
	ch         chan string
	log        *slog.Logger
}

// NewQueue creates a job queue over the given store and applier. startDelay
// is the short pause before a job leaves pending; interval is the bounded
// inter-row pause that throttles apply throughput and yields control between
// rows.
func NewQueue(jobs *JobStore, applier store.Applier, startDelay, interval time.Duration) *Queue {
	return &Queue{
		jobs:       jobs,
		applier:    applier,
		startDelay: startDelay,
		interval:   interval,
		ch:         make(chan string, 64),
		log:        slog.Default(),
	}
}

// NewJob constructs a pending job from a consumed preview entry, seeding the
// error list with the preview's error rows.
func NewJob(entry *PreviewEntry) *Job {
	now := time.Now()
	job := &Job{
		ID:        uuid.New().String(),
		Type:      entry.Type,
		Status:    JobPending,
		Total:     len(entry.Rows),
		Summary:   entry.Summary,
		Columns:   entry.Columns,
		Rows:      entry.Rows,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, row := range entry.Rows {
		if row.Action == ActionError {
			job.Errors = append(job.Errors, row)
		}
	}
	return job
}

// Enqueue registers the job and hands it to the worker.
func (q *Queue) Enqueue(job *Job) {
	q.jobs.Add(job)
	q.ch <- job.ID
}

// Run processes queued jobs until the context is cancelled. It blocks and is
// intended to be started with go queue.Run(ctx). A job interrupted by
// cancellation is marked failed; resuming after restart is not supported.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-q.ch:
			q.process(ctx, id)
		}
	}
}

func (q *Queue) process(ctx context.Context, id string) {
	if !sleepCtx(ctx, q.startDelay) {
		q.fail(id, "processor stopped before start")
		return
	}

	var rows []ParsedRow
	q.jobs.update(id, func(job *Job) {
		job.Status = JobProcessing
		job.UpdatedAt = time.Now()
		rows = job.Rows
	})

	q.log.Info("job started", "job_id", id, "rows", len(rows))
	start := time.Now()

	applied, failed := 0, 0
	for _, row := range rows {
		if ctx.Err() != nil {
			q.fail(id, "processor stopped mid-job")
			return
		}

		// Rows flagged during preview were copied into the error list at
		// commit time and are never applied.
		if row.Action != ActionError && row.Payload != nil {
			if err := q.applyRow(ctx, row); err != nil {
				failed++
				errRow := ParsedRow{
					Index:      row.Index,
					LineNumber: row.LineNumber,
					Action:     ActionError,
					Raw:        row.Raw,
					Messages:   []string{err.Error()},
				}
				q.jobs.update(id, func(job *Job) {
					job.Errors = append(job.Errors, errRow)
				})
			} else {
				applied++
			}
		}

		q.jobs.update(id, func(job *Job) {
			job.Processed++
			job.UpdatedAt = time.Now()
		})

		if !sleepCtx(ctx, q.interval) {
			q.fail(id, "processor stopped mid-job")
			return
		}
	}

	q.jobs.update(id, func(job *Job) {
		job.Status = JobCompleted
		job.UpdatedAt = time.Now()
	})
	q.log.Info("job completed",
		"job_id", id,
		"applied", applied,
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// applyRow delegates one accepted row to the store's upsert operation for
// its payload kind. A panic during apply is converted to an error so a bad
// row can never crash the processor loop.
func (q *Queue) applyRow(ctx context.Context, row ParsedRow) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("apply panicked: %v", r)
		}
	}()

	p := row.Payload
	switch p.Kind {
	case TypeProducts:
		return q.applier.UpsertProduct(ctx, *p.Product)
	case TypeInitialStock:
		return q.applier.UpsertStock(ctx, *p.Stock)
	case TypeMovements:
		m := store.Movement{
			SKU:       p.Movement.SKU,
			Warehouse: p.Movement.Warehouse,
			Location:  p.Movement.Location,
			Partner:   p.Movement.Partner,
			Type:      string(p.Movement.Type),
			Quantity:  p.Movement.Quantity,
			Reference: p.Movement.Reference,
		}
		if p.Movement.OccurredAt != nil {
			m.OccurredAt = *p.Movement.OccurredAt
		} else {
			m.OccurredAt = time.Now()
		}
		return q.applier.AppendMovement(ctx, m)
	default:
		return fmt.Errorf("unknown payload kind %q", p.Kind)
	}
}

func (q *Queue) fail(id, reason string) {
	q.jobs.update(id, func(job *Job) {
		job.Status = JobFailed
		job.UpdatedAt = time.Now()
	})
	q.log.Warn("job failed", "job_id", id, "reason", reason)
}

// sleepCtx pauses for d, returning false if the context was cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
