// Package core implements the bulk CSV import pipeline: tokenizing uploads,
// validating and classifying rows against live reference data, holding
// analyzed batches for commit, and applying committed batches through a
// serialized background job queue.
// This package has no HTTP dependencies and can be driven by any frontend.
package core

import (
	"fmt"
	"time"

	"github.com/yhkim-dev/stockflow/internal/store"
)

// UploadType selects the schema and classifier for a bulk upload.
type UploadType string

const (
	TypeProducts     UploadType = "products"
	TypeInitialStock UploadType = "initial_stock"
	TypeMovements    UploadType = "movements"
)

// ParseUploadType converts a query-string value to an UploadType.
func ParseUploadType(s string) (UploadType, error) {
	switch UploadType(s) {
	case TypeProducts, TypeInitialStock, TypeMovements:
		return UploadType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// RowAction is the classification assigned to one input row.
type RowAction string

const (
	ActionCreate RowAction = "create"
	ActionUpdate RowAction = "update"
	ActionError  RowAction = "error"
)

// MovementType is the normalized direction of a stock movement.
type MovementType string

const (
	MovementInbound  MovementType = "INBOUND"
	MovementOutbound MovementType = "OUTBOUND"
)

// MovementPayload is the typed value extracted from one movements row.
// A nil OccurredAt means "now at apply time".
type MovementPayload struct {
	SKU        string
	Warehouse  string
	Location   string
	Partner    string
	Type       MovementType
	Quantity   int
	Reference  string
	OccurredAt *time.Time
}

// Payload is a tagged variant over the per-type payloads. Exactly one of the
// pointer fields matching Kind is non-nil. Products and stock levels carry
// their store records directly; movements keep a local payload type so an
// absent occurredAt can stay unset until apply time.
type Payload struct {
	Kind     UploadType
	Product  *store.Product
	Stock    *store.StockLevel
	Movement *MovementPayload
}

// ParsedRow is one analyzed input row.
//
// Raw always retains the original cells keyed by uploaded column name so that
// error rows can be exported with their source data. Messages is non-empty
// iff Action is ActionError; Payload is non-nil iff Action is not ActionError.
type ParsedRow struct {
	Index      int               `json:"index"`
	LineNumber int               `json:"lineNumber"`
	Action     RowAction         `json:"action"`
	Raw        map[string]string `json:"raw"`
	Messages   []string          `json:"messages,omitempty"`
	Payload    *Payload          `json:"-"`
}

// PreviewSummary aggregates the row classifications of an analyzed batch.
// Total always equals NewCount + UpdateCount + ErrorCount.
type PreviewSummary struct {
	Total       int `json:"total"`
	NewCount    int `json:"newCount"`
	UpdateCount int `json:"updateCount"`
	ErrorCount  int `json:"errorCount"`
}

// Summarize computes the preview summary for a list of parsed rows.
func Summarize(rows []ParsedRow) PreviewSummary {
	s := PreviewSummary{Total: len(rows)}
	for _, r := range rows {
		switch r.Action {
		case ActionUpdate:
			s.UpdateCount++
		case ActionError:
			s.ErrorCount++
		default:
			s.NewCount++
		}
	}
	return s
}

// ErrorSample is one error row returned inline with a preview response.
type ErrorSample struct {
	RowNumber int      `json:"rowNumber"`
	Messages  []string `json:"messages"`
}
