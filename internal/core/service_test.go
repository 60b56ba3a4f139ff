package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yhkim-dev/stockflow/internal/catalog"
	"github.com/yhkim-dev/stockflow/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()

	mem := store.NewMemory()
	if err := mem.UpsertProduct(context.Background(), store.Product{
		SKU: "SKU-001", Name: "Choco Pie 12ct", Category: "Snacks",
		ABCGrade: "A", XYZGrade: "X", DailyAvg: 24.5, DailyStd: 6.1,
	}); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	svc := NewService(mem, catalog.Default(), Options{
		StartDelay:  time.Millisecond,
		RowInterval: time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go svc.Run(ctx)

	return svc, mem
}

func waitJob(t *testing.T, svc *Service, id string, want JobStatus) Job {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := svc.Job(id)
		if err != nil {
			t.Fatalf("Job(%s): %v", id, err)
		}
		if job.Status == want {
			return job
		}
		time.Sleep(2 * time.Millisecond)
	}
	job, _ := svc.Job(id)
	t.Fatalf("job %s stuck at %s, want %s", id, job.Status, want)
	return Job{}
}

const productsCSV = "sku,name,category,abcGrade,xyzGrade,dailyAvg,dailyStd\n" +
	"SKU-100,Almond Bar,Snacks,A,X,10,2\n" +
	"SKU-001,Choco Pie 12ct,Snacks,A,X,30,7\n" +
	",,,,,,\n"

func TestService_Preview(t *testing.T) {
	svc, mem := newTestService(t)

	res, err := svc.Preview(context.Background(), TypeProducts, productsCSV, "en")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}

	if res.Token == "" {
		t.Error("preview issued no token")
	}
	want := PreviewSummary{Total: 3, NewCount: 1, UpdateCount: 1, ErrorCount: 1}
	if res.Summary != want {
		t.Errorf("Summary = %+v, want %+v", res.Summary, want)
	}
	if len(res.ErrorSamples) != 1 {
		t.Fatalf("ErrorSamples = %d, want 1", len(res.ErrorSamples))
	}
	if res.ErrorSamples[0].RowNumber != 4 {
		t.Errorf("error sample row = %d, want physical line 4", res.ErrorSamples[0].RowNumber)
	}
	if svc.PendingPreviews() != 1 {
		t.Errorf("PendingPreviews = %d, want 1", svc.PendingPreviews())
	}

	// Preview is read-only: only the seeded product exists.
	if mem.ProductCount() != 1 {
		t.Errorf("ProductCount after preview = %d, want 1", mem.ProductCount())
	}
}

func TestService_Preview_StructuralFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Preview(ctx, UploadType("bogus"), productsCSV, "en"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("unknown type err = %v", err)
	}
	if _, err := svc.Preview(ctx, TypeProducts, "   \n  ", "en"); !errors.Is(err, ErrEmptyUpload) {
		t.Errorf("empty upload err = %v", err)
	}
	if _, err := svc.Preview(ctx, TypeProducts, "sku,name,category,abcGrade,xyzGrade,dailyAvg,dailyStd\n", "en"); !errors.Is(err, ErrNoDataRows) {
		t.Errorf("header-only err = %v", err)
	}

	_, err := svc.Preview(ctx, TypeProducts, "sku,name\nSKU-1,Thing\n", "en")
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("missing columns err = %v", err)
	}
	for _, col := range []string{"category", "abcGrade", "dailyAvg"} {
		found := false
		for _, m := range missing.Missing {
			if m == col {
				found = true
			}
		}
		if !found {
			t.Errorf("missing columns %v lacks %s", missing.Missing, col)
		}
	}

	if svc.PendingPreviews() != 0 {
		t.Errorf("structural failures must not cache entries, have %d", svc.PendingPreviews())
	}
}

func TestService_Preview_SampleCap(t *testing.T) {
	mem := store.NewMemory()
	svc := NewService(mem, catalog.Default(), Options{
		PreviewSampleErrors: 2,
		StartDelay:          time.Millisecond,
		RowInterval:         time.Millisecond,
	})

	csv := "sku,warehouse,location,onHand\n" +
		"SKU-404,WH-SEL,A-01-01,1\n" +
		"SKU-405,WH-SEL,A-01-01,1\n" +
		"SKU-406,WH-SEL,A-01-01,1\n"

	res, err := svc.Preview(context.Background(), TypeInitialStock, csv, "en")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if res.Summary.ErrorCount != 3 {
		t.Errorf("ErrorCount = %d, want 3", res.Summary.ErrorCount)
	}
	if len(res.ErrorSamples) != 2 {
		t.Errorf("ErrorSamples = %d, want capped at 2", len(res.ErrorSamples))
	}
}

func TestService_CommitAndProcess(t *testing.T) {
	svc, mem := newTestService(t)

	res, err := svc.Preview(context.Background(), TypeProducts, productsCSV, "en")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}

	job, err := svc.Commit(TypeProducts, res.Token)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if svc.PendingPreviews() != 0 {
		t.Errorf("commit must consume the preview, have %d pending", svc.PendingPreviews())
	}

	done := waitJob(t, svc, job.ID, JobCompleted)
	if done.Processed != done.Total || done.Total != 3 {
		t.Errorf("Processed/Total = %d/%d, want 3/3", done.Processed, done.Total)
	}
	if len(done.Errors) != 1 {
		t.Errorf("Errors = %d, want the preview's one error row", len(done.Errors))
	}

	// SKU-100 created, SKU-001 updated in place.
	if mem.ProductCount() != 2 {
		t.Errorf("ProductCount = %d, want 2", mem.ProductCount())
	}
	updated, err := mem.ProductBySKU(context.Background(), "SKU-001")
	if err != nil || updated == nil {
		t.Fatalf("ProductBySKU: %v, %v", updated, err)
	}
	if updated.DailyAvg != 30 {
		t.Errorf("DailyAvg = %v, want the uploaded 30", updated.DailyAvg)
	}

	csvText, err := svc.JobErrorsCSV(done.ID)
	if err != nil {
		t.Fatalf("JobErrorsCSV: %v", err)
	}
	if !strings.Contains(csvText, "rowNumber,messages") {
		t.Errorf("error report missing header: %q", csvText)
	}
}

func TestService_Commit_InvalidTokens(t *testing.T) {
	svc, mem := newTestService(t)

	res, err := svc.Preview(context.Background(), TypeProducts, productsCSV, "en")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}

	if _, err := svc.Commit(TypeMovements, res.Token); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("mismatch err = %v, want ErrTypeMismatch", err)
	}
	if _, err := svc.Commit(TypeProducts, "never-issued"); !errors.Is(err, ErrPreviewNotFound) {
		t.Errorf("unknown token err = %v, want ErrPreviewNotFound", err)
	}

	job, err := svc.Commit(TypeProducts, res.Token)
	if err != nil {
		t.Fatalf("commit after mismatch: %v", err)
	}
	if _, err := svc.Commit(TypeProducts, res.Token); !errors.Is(err, ErrPreviewNotFound) {
		t.Errorf("reused token err = %v, want ErrPreviewNotFound", err)
	}

	waitJob(t, svc, job.ID, JobCompleted)
	if mem.ProductCount() != 2 {
		t.Errorf("ProductCount = %d, want 2 after the one successful commit", mem.ProductCount())
	}
}

func TestService_Job_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Job("missing"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("err = %v, want ErrJobNotFound", err)
	}
	if _, err := svc.JobErrorsCSV("missing"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("err = %v, want ErrJobNotFound", err)
	}
}
