package core

import (
	"fmt"
	"sync"
)

// UploadSchema declares the column contract for one upload type. Required
// columns must appear in the uploaded header row by exact (trimmed) name;
// optional columns are consumed when present; unknown extras are ignored.
type UploadSchema struct {
	Type     UploadType
	Required []string
	Optional []string

	// Sample is one illustrative data row, aligned with Columns(), emitted
	// in downloadable templates.
	Sample []string
}

// Columns returns the schema's column names, required first.
func (s UploadSchema) Columns() []string {
	cols := make([]string, 0, len(s.Required)+len(s.Optional))
	cols = append(cols, s.Required...)
	return append(cols, s.Optional...)
}

// MissingColumns returns the required columns absent from the uploaded
// header row. Order of headers is irrelevant; extras are not errors.
func (s UploadSchema) MissingColumns(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, col := range s.Required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

var (
	schemas  = make(map[UploadType]UploadSchema)
	schemaMu sync.RWMutex
)

// RegisterSchema adds an upload schema to the registry.
// Panics if the type is already registered.
func RegisterSchema(s UploadSchema) {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	if _, exists := schemas[s.Type]; exists {
		panic(fmt.Sprintf("schema already registered: %s", s.Type))
	}
	schemas[s.Type] = s
}

// SchemaFor returns the schema for an upload type.
// Returns false if not registered.
func SchemaFor(t UploadType) (UploadSchema, bool) {
	schemaMu.RLock()
	defer schemaMu.RUnlock()

	s, ok := schemas[t]
	return s, ok
}

func init() {
	RegisterSchema(UploadSchema{
		Type:     TypeProducts,
		Required: []string{"sku", "name", "category", "abcGrade", "xyzGrade", "dailyAvg", "dailyStd"},
		Optional: []string{"safetyStock", "unitCost"},
		Sample:   []string{"SKU-001", "Choco Pie 12ct", "Snacks", "A", "X", "24.5", "6.1", "30", "1200"},
	})
	RegisterSchema(UploadSchema{
		Type:     TypeInitialStock,
		Required: []string{"sku", "warehouse", "location", "onHand"},
		Optional: []string{"reserved"},
		Sample:   []string{"SKU-001", "WH-SEL", "A-01-01", "120", "0"},
	})
	RegisterSchema(UploadSchema{
		Type:     TypeMovements,
		Required: []string{"sku", "warehouse", "location", "partner", "type", "quantity"},
		Optional: []string{"reference", "occurredAt"},
		Sample:   []string{"SKU-001", "WH-SEL", "A-01-01", "CJ Logistics", "OUTBOUND", "40", "SO-20240118-007", "2024-01-18"},
	})
}
