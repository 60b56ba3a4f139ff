package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx operations the store needs.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres is a Store backed by PostgreSQL.
type Postgres struct {
	db DBTX
}

// NewPostgres creates a PostgreSQL-backed store.
func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) ProductBySKU(ctx context.Context, sku string) (*Product, error) {
	const q = `
		SELECT sku, name, category, abc_grade, xyz_grade, daily_avg, daily_std, safety_stock, unit_cost
		FROM products
		WHERE sku = $1`

	var p Product
	err := s.db.QueryRow(ctx, q, sku).Scan(
		&p.SKU, &p.Name, &p.Category, &p.ABCGrade, &p.XYZGrade,
		&p.DailyAvg, &p.DailyStd, &p.SafetyStock, &p.UnitCost,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("product by sku: %w", err)
	}
	return &p, nil
}

func (s *Postgres) StockByKey(ctx context.Context, key StockKey) (*StockLevel, error) {
	const q = `
		SELECT sku, warehouse, location, on_hand, reserved
		FROM stock_levels
		WHERE sku = $1 AND warehouse = $2 AND location = $3`

	var lvl StockLevel
	err := s.db.QueryRow(ctx, q, key.SKU, key.Warehouse, key.Location).Scan(
		&lvl.SKU, &lvl.Warehouse, &lvl.Location, &lvl.OnHand, &lvl.Reserved,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stock by key: %w", err)
	}
	return &lvl, nil
}

func (s *Postgres) UpsertProduct(ctx context.Context, p Product) error {
	const q = `
		INSERT INTO products (sku, name, category, abc_grade, xyz_grade, daily_avg, daily_std, safety_stock, unit_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			abc_grade = EXCLUDED.abc_grade,
			xyz_grade = EXCLUDED.xyz_grade,
			daily_avg = EXCLUDED.daily_avg,
			daily_std = EXCLUDED.daily_std,
			safety_stock = EXCLUDED.safety_stock,
			unit_cost = EXCLUDED.unit_cost,
			updated_at = now()`

	_, err := s.db.Exec(ctx, q,
		p.SKU, p.Name, p.Category, p.ABCGrade, p.XYZGrade,
		p.DailyAvg, p.DailyStd, p.SafetyStock, p.UnitCost,
	)
	if err != nil {
		return fmt.Errorf("upsert product %s: %w", p.SKU, err)
	}
	return nil
}

func (s *Postgres) UpsertStock(ctx context.Context, lvl StockLevel) error {
	const q = `
		INSERT INTO stock_levels (sku, warehouse, location, on_hand, reserved)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sku, warehouse, location) DO UPDATE SET
			on_hand = EXCLUDED.on_hand,
			reserved = EXCLUDED.reserved,
			updated_at = now()`

	_, err := s.db.Exec(ctx, q, lvl.SKU, lvl.Warehouse, lvl.Location, lvl.OnHand, lvl.Reserved)
	if err != nil {
		return fmt.Errorf("upsert stock %s/%s/%s: %w", lvl.SKU, lvl.Warehouse, lvl.Location, err)
	}
	return nil
}

func (s *Postgres) AppendMovement(ctx context.Context, m Movement) error {
	const q = `
		INSERT INTO stock_movements (sku, warehouse, location, partner, type, quantity, reference, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.Exec(ctx, q, m.SKU, m.Warehouse, m.Location, m.Partner, m.Type, m.Quantity, m.Reference, m.OccurredAt)
	if err != nil {
		return fmt.Errorf("append movement %s: %w", m.SKU, err)
	}
	return nil
}
