package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/yhkim-dev/stockflow/internal/catalog"
	"github.com/yhkim-dev/stockflow/internal/store"
)

// Options tunes the import pipeline. Zero values fall back to the documented
// defaults so tests can construct a Service with Options{}.
type Options struct {
	// PreviewSampleErrors caps the error rows returned inline with a
	// preview response (default: 20).
	PreviewSampleErrors int

	// PreviewMaxEntries and PreviewMaxAge bound the preview cache
	// (defaults: 100 entries, 30m).
	PreviewMaxEntries int
	PreviewMaxAge     time.Duration

	// StartDelay is the pause before a job leaves pending (default: 100ms).
	StartDelay time.Duration

	// RowInterval is the inter-row apply pause (default: 10ms).
	RowInterval time.Duration

	// MaxJobs bounds the job store (default: 200).
	MaxJobs int

	// DefaultLanguage is the fallback for validation messages
	// (default: "en").
	DefaultLanguage string
}

// Service is the entry point for the bulk import pipeline. All state is
// injected and explicitly owned so tests can construct isolated instances.
type Service struct {
	store    store.Store
	cat      *catalog.Catalog
	previews *PreviewCache
	jobs     *JobStore
	queue    *Queue
	bundle   *i18n.Bundle
	opts     Options
}

// NewService wires the pipeline over a store and static catalog.
func NewService(st store.Store, cat *catalog.Catalog, opts Options) *Service {
	if opts.PreviewSampleErrors <= 0 {
		opts.PreviewSampleErrors = 20
	}
	if opts.StartDelay <= 0 {
		opts.StartDelay = 100 * time.Millisecond
	}
	if opts.RowInterval <= 0 {
		opts.RowInterval = 10 * time.Millisecond
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "en"
	}

	jobs := NewJobStore(opts.MaxJobs)
	return &Service{
		store:    st,
		cat:      cat,
		previews: NewPreviewCache(opts.PreviewMaxEntries, opts.PreviewMaxAge),
		jobs:     jobs,
		queue:    NewQueue(jobs, st, opts.StartDelay, opts.RowInterval),
		bundle:   NewBundle(),
		opts:     opts,
	}
}

// Run drains the job queue until ctx is cancelled. Start with
// go service.Run(ctx).
func (s *Service) Run(ctx context.Context) {
	s.queue.Run(ctx)
}

// PreviewResult is the outcome of the read-only analysis phase.
type PreviewResult struct {
	Token        string
	Type         UploadType
	Columns      []string
	Summary      PreviewSummary
	ErrorSamples []ErrorSample
}

// Preview tokenizes csvText, validates its header row, classifies every data
// row against the current catalog snapshot, and stores the batch under a
// one-time token. lang is a language preference and may be a full
// Accept-Language header. No store is mutated.
//
// Structural failures (empty content, missing required columns, no data
// rows) reject the whole upload before any row is examined.
func (s *Service) Preview(ctx context.Context, t UploadType, csvText, lang string) (*PreviewResult, error) {
	sch, ok := SchemaFor(t)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if strings.TrimSpace(csvText) == "" {
		return nil, ErrEmptyUpload
	}

	rows := Tokenize(csvText)
	if len(rows) == 0 {
		return nil, ErrEmptyUpload
	}

	header := rows[0]
	if missing := sch.MissingColumns(header); len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	dataRows := rows[1:]
	if len(dataRows) == 0 {
		return nil, ErrNoDataRows
	}

	msgs := NewMessages(s.bundle, lang, s.opts.DefaultLanguage)
	classifier := NewClassifier(s.store, s.cat, msgs)

	parsed := make([]ParsedRow, 0, len(dataRows))
	for i, cells := range dataRows {
		raw := make(map[string]string, len(header))
		for j, col := range header {
			if j < len(cells) {
				raw[col] = cells[j]
			} else {
				raw[col] = ""
			}
		}
		// Physical line numbers are 1-based with the header on line 1.
		parsed = append(parsed, classifier.Analyze(ctx, t, raw, i, i+2))
	}

	entry := &PreviewEntry{
		Type:    t,
		Columns: header,
		Rows:    parsed,
		Summary: Summarize(parsed),
	}
	token := s.previews.Put(entry)

	var samples []ErrorSample
	for _, row := range parsed {
		if row.Action != ActionError {
			continue
		}
		samples = append(samples, ErrorSample{RowNumber: row.LineNumber, Messages: row.Messages})
		if len(samples) >= s.opts.PreviewSampleErrors {
			break
		}
	}

	return &PreviewResult{
		Token:        token,
		Type:         t,
		Columns:      header,
		Summary:      entry.Summary,
		ErrorSamples: samples,
	}, nil
}

// Commit consumes a previewed batch and enqueues it as a job. It fails
// without mutating any store when the token is absent, already consumed, or
// bound to a different upload type.
func (s *Service) Commit(t UploadType, token string) (Job, error) {
	entry, err := s.previews.Take(token, t)
	if err != nil {
		return Job{}, err
	}

	job := NewJob(entry)
	s.queue.Enqueue(job)

	snap, _ := s.jobs.Get(job.ID)
	return snap, nil
}

// Job returns a snapshot of a job by ID.
func (s *Service) Job(id string) (Job, error) {
	job, ok := s.jobs.Get(id)
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return job, nil
}

// JobErrorsCSV renders a job's error report. An empty string means the job
// completed without errors.
func (s *Service) JobErrorsCSV(id string) (string, error) {
	job, err := s.Job(id)
	if err != nil {
		return "", err
	}
	return ErrorsCSV(job), nil
}

// PendingPreviews reports the number of unconsumed preview entries.
func (s *Service) PendingPreviews() int {
	return s.previews.Len()
}
