package core

// classify.go converts one raw row into a typed, validated payload or a list
// of localized error messages.
//
// Analysis is a pure function of the row plus the current snapshot of
// external reference data: it performs read-only lookups against the product
// and stock stores and the static warehouse/partner catalogs, never writes.
// Validation accumulates every applicable message for a row instead of
// stopping at the first failure, so a single preview can report all problems
// at once.

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/yhkim-dev/stockflow/internal/catalog"
	"github.com/yhkim-dev/stockflow/internal/store"
)

// Classifier analyzes raw rows against live reference data.
type Classifier struct {
	lookup store.Lookup
	cat    *catalog.Catalog
	msgs   *Messages
}

// NewClassifier creates a classifier over the given lookup snapshot,
// static catalog, and message renderer.
func NewClassifier(lookup store.Lookup, cat *catalog.Catalog, msgs *Messages) *Classifier {
	return &Classifier{lookup: lookup, cat: cat, msgs: msgs}
}

// Analyze classifies one data row. raw maps uploaded column names to the
// original cells; index is the 0-based data row position and lineNumber the
// 1-based physical line (header = line 1).
func (c *Classifier) Analyze(ctx context.Context, t UploadType, raw map[string]string, index, lineNumber int) ParsedRow {
	row := ParsedRow{Index: index, LineNumber: lineNumber, Raw: raw}

	switch t {
	case TypeProducts:
		c.analyzeProduct(ctx, &row)
	case TypeInitialStock:
		c.analyzeStock(ctx, &row)
	case TypeMovements:
		c.analyzeMovement(ctx, &row)
	default:
		row.Messages = append(row.Messages, string(t)+": "+ErrUnknownType.Error())
	}

	if len(row.Messages) > 0 {
		row.Action = ActionError
		row.Payload = nil
	}
	return row
}

func (c *Classifier) analyzeProduct(ctx context.Context, row *ParsedRow) {
	p := store.Product{
		SKU:      row.Raw["sku"],
		Name:     row.Raw["name"],
		Category: row.Raw["category"],
		ABCGrade: strings.ToUpper(row.Raw["abcGrade"]),
		XYZGrade: strings.ToUpper(row.Raw["xyzGrade"]),
		DailyAvg: c.requireNumber(row, "dailyAvg"),
		DailyStd: c.requireNumber(row, "dailyStd"),
	}
	p.SafetyStock = c.optionalNumber(row, "safetyStock")
	p.UnitCost = c.optionalNumber(row, "unitCost")

	// Structural checks are shared with the CRUD routes.
	for _, fe := range store.ValidateProduct(p) {
		switch fe.Reason {
		case store.ReasonRequired:
			row.Messages = append(row.Messages, c.msgs.Required(fe.Field))
		default:
			row.Messages = append(row.Messages, c.msgs.InvalidField(fe.Field, fe.Value))
		}
	}
	if len(row.Messages) > 0 {
		return
	}

	row.Action = ActionCreate
	if existing, err := c.lookup.ProductBySKU(ctx, p.SKU); err == nil && existing != nil {
		row.Action = ActionUpdate
	}
	row.Payload = &Payload{Kind: TypeProducts, Product: &p}
}

func (c *Classifier) analyzeStock(ctx context.Context, row *ParsedRow) {
	sku := c.requireProduct(ctx, row)
	warehouse, location := c.requirePlacement(row)

	onHand := c.requireNumber(row, "onHand")
	reserved := 0.0
	if v := c.optionalNumber(row, "reserved"); v != nil {
		reserved = *v
	}

	if len(row.Messages) > 0 {
		return
	}

	s := store.StockLevel{
		StockKey: store.StockKey{SKU: sku, Warehouse: warehouse, Location: location},
		OnHand:   roundQuantity(onHand),
		Reserved: roundQuantity(reserved),
	}

	row.Action = ActionCreate
	if existing, err := c.lookup.StockByKey(ctx, s.StockKey); err == nil && existing != nil {
		row.Action = ActionUpdate
	}
	row.Payload = &Payload{Kind: TypeInitialStock, Stock: &s}
}

func (c *Classifier) analyzeMovement(ctx context.Context, row *ParsedRow) {
	sku := c.requireProduct(ctx, row)
	warehouse, location := c.requirePlacement(row)

	partner := row.Raw["partner"]
	if partner == "" {
		row.Messages = append(row.Messages, c.msgs.Required("partner"))
	} else if !c.cat.HasPartner(partner) {
		row.Messages = append(row.Messages, c.msgs.UnknownPartner(partner))
	}

	var mt MovementType
	if typ := row.Raw["type"]; typ == "" {
		row.Messages = append(row.Messages, c.msgs.Required("type"))
	} else if normalized, ok := normalizeMovementType(typ); ok {
		mt = normalized
	} else {
		row.Messages = append(row.Messages, c.msgs.InvalidMovementType(typ))
	}

	quantity := 0
	switch n := parseNumber(row.Raw["quantity"]); {
	case n == nil:
		row.Messages = append(row.Messages, c.msgs.Required("quantity"))
	case math.IsNaN(*n):
		row.Messages = append(row.Messages, c.msgs.InvalidNumber("quantity", row.Raw["quantity"]))
	default:
		quantity = int(math.Round(*n))
		if quantity == 0 {
			row.Messages = append(row.Messages, c.msgs.ZeroQuantity())
		}
	}

	var occurredAt *time.Time
	if rawDate := row.Raw["occurredAt"]; rawDate != "" {
		if t, ok := parseDate(rawDate); ok {
			occurredAt = &t
		} else {
			row.Messages = append(row.Messages, c.msgs.InvalidDate("occurredAt", rawDate))
		}
	}

	if len(row.Messages) > 0 {
		return
	}

	payload := MovementPayload{
		SKU:        sku,
		Warehouse:  warehouse,
		Location:   location,
		Partner:    partner,
		Type:       mt,
		Quantity:   quantity,
		Reference:  row.Raw["reference"],
		OccurredAt: occurredAt,
	}

	// Movements are append-only events, never updated in place.
	row.Action = ActionCreate
	row.Payload = &Payload{Kind: TypeMovements, Movement: &payload}
}

// requireProduct validates the sku column and confirms the product exists.
func (c *Classifier) requireProduct(ctx context.Context, row *ParsedRow) string {
	sku := row.Raw["sku"]
	if sku == "" {
		row.Messages = append(row.Messages, c.msgs.Required("sku"))
		return ""
	}
	if existing, err := c.lookup.ProductBySKU(ctx, sku); err != nil || existing == nil {
		row.Messages = append(row.Messages, c.msgs.UnknownProduct(sku))
	}
	return sku
}

// requirePlacement validates the warehouse and location columns against the
// static catalog. The location check only runs once the warehouse resolves.
func (c *Classifier) requirePlacement(row *ParsedRow) (warehouse, location string) {
	warehouse = row.Raw["warehouse"]
	location = row.Raw["location"]

	warehouseKnown := false
	if warehouse == "" {
		row.Messages = append(row.Messages, c.msgs.Required("warehouse"))
	} else if c.cat.HasWarehouse(warehouse) {
		warehouseKnown = true
	} else {
		row.Messages = append(row.Messages, c.msgs.UnknownWarehouse(warehouse))
	}

	if location == "" {
		row.Messages = append(row.Messages, c.msgs.Required("location"))
	} else if warehouseKnown && !c.cat.HasLocation(warehouse, location) {
		row.Messages = append(row.Messages, c.msgs.UnknownLocation(warehouse, location))
	}

	return warehouse, location
}

// requireNumber parses a required numeric column, reporting absence and
// garbage separately.
func (c *Classifier) requireNumber(row *ParsedRow, field string) float64 {
	switch n := parseNumber(row.Raw[field]); {
	case n == nil:
		row.Messages = append(row.Messages, c.msgs.Required(field))
		return 0
	case math.IsNaN(*n):
		row.Messages = append(row.Messages, c.msgs.InvalidNumber(field, row.Raw[field]))
		return 0
	default:
		return *n
	}
}

// optionalNumber parses an optional numeric column. Absent yields nil;
// garbage is still an error.
func (c *Classifier) optionalNumber(row *ParsedRow, field string) *float64 {
	n := parseNumber(row.Raw[field])
	if n != nil && math.IsNaN(*n) {
		row.Messages = append(row.Messages, c.msgs.InvalidNumber(field, row.Raw[field]))
		return nil
	}
	return n
}

var movementTypeSynonyms = map[string]MovementType{
	"inbound": MovementInbound, "in": MovementInbound, "receipt": MovementInbound,
	"receiving": MovementInbound, "입고": MovementInbound,
	"outbound": MovementOutbound, "out": MovementOutbound, "issue": MovementOutbound,
	"release": MovementOutbound, "shipment": MovementOutbound, "출고": MovementOutbound,
}

// normalizeMovementType maps English and Korean synonyms to INBOUND/OUTBOUND.
func normalizeMovementType(s string) (MovementType, bool) {
	mt, ok := movementTypeSynonyms[strings.ToLower(strings.TrimSpace(s))]
	return mt, ok
}
