// Package store defines the inventory data collaborators consumed by the
// import pipeline: read-only lookups used during preview classification and
// the upsert/append operations used while a committed job is applied.
// Two implementations are provided: an in-memory store for tests and local
// development, and a PostgreSQL store backed by pgx.
package store

import (
	"context"
	"time"
)

// Product is one catalog entry, keyed by SKU.
type Product struct {
	SKU         string
	Name        string
	Category    string
	ABCGrade    string
	XYZGrade    string
	DailyAvg    float64
	DailyStd    float64
	SafetyStock *float64
	UnitCost    *float64
}

// StockKey is the natural identity of a stock level row.
type StockKey struct {
	SKU       string
	Warehouse string
	Location  string
}

// StockLevel is the on-hand quantity at one (sku, warehouse, location).
type StockLevel struct {
	StockKey
	OnHand   int
	Reserved int
}

// Movement is one append-only stock movement event.
type Movement struct {
	SKU        string
	Warehouse  string
	Location   string
	Partner    string
	Type       string // INBOUND or OUTBOUND
	Quantity   int
	Reference  string
	OccurredAt time.Time
}

// Lookup is the read side consumed by preview classification.
// Implementations return (nil, nil) when the entity does not exist.
type Lookup interface {
	ProductBySKU(ctx context.Context, sku string) (*Product, error)
	StockByKey(ctx context.Context, key StockKey) (*StockLevel, error)
}

// Applier is the write side consumed by the job processor.
type Applier interface {
	UpsertProduct(ctx context.Context, p Product) error
	UpsertStock(ctx context.Context, s StockLevel) error
	AppendMovement(ctx context.Context, m Movement) error
}

// Store combines both sides.
type Store interface {
	Lookup
	Applier
}

// FieldError is one structural validation failure from the shared product
// validator. Reason is "required" or "invalid"; callers localize the message.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

const (
	ReasonRequired = "required"
	ReasonInvalid  = "invalid"
)

var (
	abcGrades = map[string]bool{"A": true, "B": true, "C": true}
	xyzGrades = map[string]bool{"X": true, "Y": true, "Z": true}
)

// ValidateProduct is the shared structural validator for product records,
// used by both the CSV classifier and the CRUD routes.
func ValidateProduct(p Product) []FieldError {
	var errs []FieldError

	if p.SKU == "" {
		errs = append(errs, FieldError{Field: "sku", Reason: ReasonRequired})
	}
	if p.Name == "" {
		errs = append(errs, FieldError{Field: "name", Reason: ReasonRequired})
	}
	if p.Category == "" {
		errs = append(errs, FieldError{Field: "category", Reason: ReasonRequired})
	}
	if p.ABCGrade == "" {
		errs = append(errs, FieldError{Field: "abcGrade", Reason: ReasonRequired})
	} else if !abcGrades[p.ABCGrade] {
		errs = append(errs, FieldError{Field: "abcGrade", Value: p.ABCGrade, Reason: ReasonInvalid})
	}
	if p.XYZGrade == "" {
		errs = append(errs, FieldError{Field: "xyzGrade", Reason: ReasonRequired})
	} else if !xyzGrades[p.XYZGrade] {
		errs = append(errs, FieldError{Field: "xyzGrade", Value: p.XYZGrade, Reason: ReasonInvalid})
	}
	if p.DailyAvg < 0 {
		errs = append(errs, FieldError{Field: "dailyAvg", Reason: ReasonInvalid})
	}
	if p.DailyStd < 0 {
		errs = append(errs, FieldError{Field: "dailyStd", Reason: ReasonInvalid})
	}

	return errs
}
