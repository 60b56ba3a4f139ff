package store

import (
	"context"
	"sync"
)

// Memory is an in-memory Store. It is safe for concurrent use and is the
// default backend when no database is configured.
type Memory struct {
	mu        sync.RWMutex
	products  map[string]Product
	stock     map[StockKey]StockLevel
	movements []Movement
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		products: make(map[string]Product),
		stock:    make(map[StockKey]StockLevel),
	}
}

func (m *Memory) ProductBySKU(_ context.Context, sku string) (*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[sku]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) StockByKey(_ context.Context, key StockKey) (*StockLevel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stock[key]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Memory) UpsertProduct(_ context.Context, p Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.products[p.SKU] = p
	return nil
}

func (m *Memory) UpsertStock(_ context.Context, s StockLevel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stock[s.StockKey] = s
	return nil
}

func (m *Memory) AppendMovement(_ context.Context, mv Movement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.movements = append(m.movements, mv)
	return nil
}

// ProductCount returns the number of stored products.
func (m *Memory) ProductCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.products)
}

// Movements returns a copy of all appended movement events in order.
func (m *Memory) Movements() []Movement {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Movement, len(m.movements))
	copy(out, m.movements)
	return out
}
