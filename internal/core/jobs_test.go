package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/yhkim-dev/stockflow/internal/store"
)

func productRow(index int, sku string) ParsedRow {
	return ParsedRow{
		Index:      index,
		LineNumber: index + 2,
		Action:     ActionCreate,
		Raw:        map[string]string{"sku": sku},
		Payload: &Payload{Kind: TypeProducts, Product: &store.Product{
			SKU: sku, Name: "Item " + sku, Category: "Misc",
			ABCGrade: "A", XYZGrade: "X",
		}},
	}
}

func errorRow(index int, messages ...string) ParsedRow {
	return ParsedRow{
		Index:      index,
		LineNumber: index + 2,
		Action:     ActionError,
		Raw:        map[string]string{"sku": ""},
		Messages:   messages,
	}
}

// waitForStatus polls until the job reaches the wanted status or the test
// deadline expires.
func waitForStatus(t *testing.T, jobs *JobStore, id string, want JobStatus) Job {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if job, ok := jobs.Get(id); ok && job.Status == want {
			return job
		}
		time.Sleep(2 * time.Millisecond)
	}
	job, _ := jobs.Get(id)
	t.Fatalf("job %s stuck at %s, want %s", id, job.Status, want)
	return Job{}
}

func TestJobStore_GetReturnsSnapshot(t *testing.T) {
	jobs := NewJobStore(10)
	job := &Job{ID: "j1", Status: JobPending, Rows: []ParsedRow{productRow(0, "SKU-1")}}
	jobs.Add(job)

	snap, ok := jobs.Get("j1")
	if !ok {
		t.Fatal("job not found")
	}

	jobs.update("j1", func(j *Job) {
		j.Errors = append(j.Errors, errorRow(1, "boom"))
	})

	if len(snap.Errors) != 0 {
		t.Error("earlier snapshot observed a later mutation")
	}
	if _, ok := jobs.Get("missing"); ok {
		t.Error("Get returned a missing job")
	}
}

func TestJobStore_EvictsOldestTerminalOnly(t *testing.T) {
	jobs := NewJobStore(2)
	jobs.Add(&Job{ID: "done", Status: JobCompleted})
	jobs.Add(&Job{ID: "active", Status: JobProcessing})
	jobs.Add(&Job{ID: "new", Status: JobPending})

	if _, ok := jobs.Get("done"); ok {
		t.Error("oldest terminal job should have been evicted")
	}
	for _, id := range []string{"active", "new"} {
		if _, ok := jobs.Get(id); !ok {
			t.Errorf("job %s should have been retained", id)
		}
	}
}

func TestNewJob_SeedsPreviewErrors(t *testing.T) {
	entry := &PreviewEntry{
		Type:    TypeProducts,
		Columns: []string{"sku"},
		Rows: []ParsedRow{
			productRow(0, "SKU-1"),
			errorRow(1, "sku is required"),
			productRow(2, "SKU-2"),
		},
		Summary: PreviewSummary{Total: 3, NewCount: 2, ErrorCount: 1},
	}

	job := NewJob(entry)
	if job.ID == "" {
		t.Error("job has no ID")
	}
	if job.Status != JobPending {
		t.Errorf("Status = %s, want pending", job.Status)
	}
	if job.Total != 3 {
		t.Errorf("Total = %d, want 3", job.Total)
	}
	if len(job.Errors) != 1 || !strings.Contains(job.Errors[0].Messages[0], "required") {
		t.Errorf("Errors = %+v, want the preview's one error row", job.Errors)
	}
}

func TestQueue_ProcessesJobToCompletion(t *testing.T) {
	mem := store.NewMemory()
	jobs := NewJobStore(10)
	q := NewQueue(jobs, mem, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	entry := &PreviewEntry{
		Type:    TypeProducts,
		Columns: []string{"sku"},
		Rows: []ParsedRow{
			productRow(0, "SKU-1"),
			errorRow(1, "sku is required"),
			productRow(2, "SKU-2"),
		},
	}
	job := NewJob(entry)
	q.Enqueue(job)

	done := waitForStatus(t, jobs, job.ID, JobCompleted)
	if done.Processed != 3 {
		t.Errorf("Processed = %d, want 3", done.Processed)
	}
	if len(done.Errors) != 1 {
		t.Errorf("Errors = %d, want 1 (the preview error row)", len(done.Errors))
	}
	if mem.ProductCount() != 2 {
		t.Errorf("ProductCount = %d, want 2", mem.ProductCount())
	}
}

// failingApplier rejects specific SKUs so per-row failure isolation can be
// observed.
type failingApplier struct {
	store.Applier
	rejectSKU string
}

func (f *failingApplier) UpsertProduct(ctx context.Context, p store.Product) error {
	if p.SKU == f.rejectSKU {
		return fmt.Errorf("constraint violation on %s", p.SKU)
	}
	return f.Applier.UpsertProduct(ctx, p)
}

func TestQueue_RowFailureDoesNotAbortJob(t *testing.T) {
	mem := store.NewMemory()
	jobs := NewJobStore(10)
	q := NewQueue(jobs, &failingApplier{Applier: mem, rejectSKU: "SKU-2"}, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	job := NewJob(&PreviewEntry{
		Type:    TypeProducts,
		Columns: []string{"sku"},
		Rows: []ParsedRow{
			productRow(0, "SKU-1"),
			productRow(1, "SKU-2"),
			productRow(2, "SKU-3"),
		},
	})
	q.Enqueue(job)

	done := waitForStatus(t, jobs, job.ID, JobCompleted)
	if done.Processed != 3 {
		t.Errorf("Processed = %d, want 3", done.Processed)
	}
	if len(done.Errors) != 1 {
		t.Fatalf("Errors = %d, want 1", len(done.Errors))
	}
	if !strings.Contains(done.Errors[0].Messages[0], "constraint violation") {
		t.Errorf("error message = %q", done.Errors[0].Messages[0])
	}
	if mem.ProductCount() != 2 {
		t.Errorf("ProductCount = %d, want 2", mem.ProductCount())
	}
}

type panickingApplier struct {
	store.Applier
}

func (p *panickingApplier) UpsertProduct(context.Context, store.Product) error {
	panic("store blew up")
}

func TestQueue_RecoversFromApplyPanic(t *testing.T) {
	mem := store.NewMemory()
	jobs := NewJobStore(10)
	q := NewQueue(jobs, &panickingApplier{Applier: mem}, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	job := NewJob(&PreviewEntry{
		Type:    TypeProducts,
		Columns: []string{"sku"},
		Rows:    []ParsedRow{productRow(0, "SKU-1")},
	})
	q.Enqueue(job)

	done := waitForStatus(t, jobs, job.ID, JobCompleted)
	if len(done.Errors) != 1 || !strings.Contains(done.Errors[0].Messages[0], "apply panicked") {
		t.Errorf("Errors = %+v, want one recovered panic", done.Errors)
	}
}

// gatedApplier blocks the first upsert until released, holding the worker
// inside a job so queue ordering can be observed.
type gatedApplier struct {
	store.Applier
	started chan struct{}
	release chan struct{}
	gated   bool
}

func (g *gatedApplier) UpsertProduct(ctx context.Context, p store.Product) error {
	if !g.gated {
		g.gated = true
		close(g.started)
		<-g.release
	}
	return g.Applier.UpsertProduct(ctx, p)
}

func TestQueue_SecondJobWaitsForFirst(t *testing.T) {
	mem := store.NewMemory()
	jobs := NewJobStore(10)
	gate := &gatedApplier{
		Applier: mem,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	q := NewQueue(jobs, gate, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	first := NewJob(&PreviewEntry{Type: TypeProducts, Rows: []ParsedRow{productRow(0, "SKU-1")}})
	second := NewJob(&PreviewEntry{Type: TypeProducts, Rows: []ParsedRow{productRow(0, "SKU-2")}})
	q.Enqueue(first)
	q.Enqueue(second)

	<-gate.started

	if job, _ := jobs.Get(second.ID); job.Status != JobPending {
		t.Errorf("second job status = %s while first is mid-apply, want pending", job.Status)
	}

	close(gate.release)

	waitForStatus(t, jobs, first.ID, JobCompleted)
	waitForStatus(t, jobs, second.ID, JobCompleted)
}

func TestQueue_CancellationFailsInFlightJob(t *testing.T) {
	mem := store.NewMemory()
	jobs := NewJobStore(10)
	gate := &gatedApplier{
		Applier: mem,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	q := NewQueue(jobs, gate, 0, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go q.Run(ctx)

	job := NewJob(&PreviewEntry{Type: TypeProducts, Rows: []ParsedRow{
		productRow(0, "SKU-1"),
		productRow(1, "SKU-2"),
	}})
	q.Enqueue(job)

	<-gate.started
	cancel()
	close(gate.release)

	waitForStatus(t, jobs, job.ID, JobFailed)
}

func TestSleepCtx(t *testing.T) {
	if !sleepCtx(context.Background(), 0) {
		t.Error("zero sleep on a live context should succeed")
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if sleepCtx(cancelled, 0) {
		t.Error("zero sleep on a cancelled context should fail")
	}
	if sleepCtx(cancelled, time.Hour) {
		t.Error("sleep on a cancelled context should return immediately")
	}
	if !errors.Is(cancelled.Err(), context.Canceled) {
		t.Fatal("sanity: context not cancelled")
	}
}
