// Package catalog holds the static warehouse, location, and partner
// reference data. Catalogs are seeded at process start and read-only for the
// process lifetime; the row classifier resolves warehouse/location/partner
// references against them.
package catalog

import "sort"

// Catalog is the static reference data snapshot.
type Catalog struct {
	warehouses map[string][]string
	partners   map[string]struct{}
}

// New builds a catalog from a warehouse→locations mapping and a partner list.
func New(warehouses map[string][]string, partners []string) *Catalog {
	c := &Catalog{
		warehouses: make(map[string][]string, len(warehouses)),
		partners:   make(map[string]struct{}, len(partners)),
	}
	for code, locs := range warehouses {
		c.warehouses[code] = append([]string(nil), locs...)
	}
	for _, p := range partners {
		c.partners[p] = struct{}{}
	}
	return c
}

// Default returns the built-in catalog used when no external seed is given.
func Default() *Catalog {
	return New(
		map[string][]string{
			"WH-SEL": {"A-01-01", "A-01-02", "A-02-01", "B-01-01", "B-01-02"},
			"WH-BUS": {"A-01-01", "A-01-02", "B-01-01"},
			"WH-ICN": {"DOCK-01", "DOCK-02", "RACK-01"},
		},
		[]string{"CJ Logistics", "Hanjin", "Coupang", "Kurly", "Direct"},
	)
}

// HasWarehouse reports whether a warehouse code is registered.
func (c *Catalog) HasWarehouse(code string) bool {
	_, ok := c.warehouses[code]
	return ok
}

// HasLocation reports whether a location belongs to a warehouse's list.
func (c *Catalog) HasLocation(warehouse, location string) bool {
	for _, loc := range c.warehouses[warehouse] {
		if loc == location {
			return true
		}
	}
	return false
}

// HasPartner reports whether a partner name is registered.
func (c *Catalog) HasPartner(name string) bool {
	_, ok := c.partners[name]
	return ok
}

// Warehouses returns all warehouse codes, sorted.
func (c *Catalog) Warehouses() []string {
	codes := make([]string, 0, len(c.warehouses))
	for code := range c.warehouses {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Locations returns the location list for a warehouse.
func (c *Catalog) Locations(warehouse string) []string {
	return append([]string(nil), c.warehouses[warehouse]...)
}

// Partners returns all partner names, sorted.
func (c *Catalog) Partners() []string {
	names := make([]string, 0, len(c.partners))
	for name := range c.partners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
