package catalog

import (
	"sort"
	"testing"
)

func TestCatalogLookups(t *testing.T) {
	c := New(
		map[string][]string{
			"WH-A": {"L1", "L2"},
			"WH-B": {"L1"},
		},
		[]string{"Acme", "Globex"},
	)

	if !c.HasWarehouse("WH-A") || !c.HasWarehouse("WH-B") {
		t.Error("registered warehouses not found")
	}
	if c.HasWarehouse("WH-C") {
		t.Error("unregistered warehouse found")
	}

	if !c.HasLocation("WH-A", "L2") {
		t.Error("registered location not found")
	}
	if c.HasLocation("WH-B", "L2") {
		t.Error("location leaked across warehouses")
	}
	if c.HasLocation("WH-C", "L1") {
		t.Error("location found in unknown warehouse")
	}

	if !c.HasPartner("Acme") {
		t.Error("registered partner not found")
	}
	if c.HasPartner("Initech") {
		t.Error("unregistered partner found")
	}
}

func TestCatalogEnumerations(t *testing.T) {
	c := New(
		map[string][]string{"WH-A": {"L1"}, "WH-B": nil},
		[]string{"Acme"},
	)

	ws := c.Warehouses()
	sort.Strings(ws)
	if len(ws) != 2 || ws[0] != "WH-A" || ws[1] != "WH-B" {
		t.Errorf("Warehouses() = %v", ws)
	}

	if locs := c.Locations("WH-A"); len(locs) != 1 || locs[0] != "L1" {
		t.Errorf("Locations(WH-A) = %v", locs)
	}
	if locs := c.Locations("WH-C"); len(locs) != 0 {
		t.Errorf("Locations(WH-C) = %v, want empty", locs)
	}

	if ps := c.Partners(); len(ps) != 1 || ps[0] != "Acme" {
		t.Errorf("Partners() = %v", ps)
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	if !c.HasWarehouse("WH-SEL") {
		t.Error("default catalog missing WH-SEL")
	}
	if !c.HasLocation("WH-SEL", "A-01-01") {
		t.Error("default catalog missing WH-SEL A-01-01")
	}
	if !c.HasPartner("CJ Logistics") {
		t.Error("default catalog missing CJ Logistics")
	}
}
