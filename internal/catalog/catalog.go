// Package catalog holds the static description of every upstream market
// data provider: what it can serve, how often it may be called and in which
// order it should be tried.
package catalog

import (
	"fmt"
	"sort"

	"quoteflow/internal/model"
)

// Descriptor is one immutable catalog entry, loaded at startup. Capability
// and budget live here and nowhere else; adding a provider means adding one
// entry plus one adapter.
type Descriptor struct {
	Name                  string
	PriorityRank          int // lower is preferred
	SupportedAssetClasses []model.AssetClass
	RequestsPerMinute     int
	Active                bool
}

// Supports reports whether the provider can serve the given asset class.
func (d Descriptor) Supports(class model.AssetClass) bool {
	for _, c := range d.SupportedAssetClasses {
		if c == class {
			return true
		}
	}
	return false
}

// Catalog is the ordered set of provider descriptors.
type Catalog struct {
	entries []Descriptor
}

// New validates the entries and returns a catalog. Declaration order is
// preserved so it can break priority ties.
func New(entries []Descriptor) (*Catalog, error) {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("catalog entry with empty name")
		}
		if _, dup := seen[e.Name]; dup {
			return nil, fmt.Errorf("duplicate catalog entry %q", e.Name)
		}
		seen[e.Name] = struct{}{}
		if e.RequestsPerMinute <= 0 {
			return nil, fmt.Errorf("catalog entry %q: requests_per_minute must be greater than 0", e.Name)
		}
		if len(e.SupportedAssetClasses) == 0 {
			return nil, fmt.Errorf("catalog entry %q: at least one asset class is required", e.Name)
		}
	}
	c := &Catalog{entries: make([]Descriptor, len(entries))}
	copy(c.entries, entries)
	return c, nil
}

// ProvidersFor returns the active descriptors supporting the asset class,
// ascending by priority rank. The sort is stable so entries sharing a rank
// keep their declaration order.
func (c *Catalog) ProvidersFor(class model.AssetClass) []Descriptor {
	out := make([]Descriptor, 0, len(c.entries))
	for _, e := range c.entries {
		if e.Active && e.Supports(class) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PriorityRank < out[j].PriorityRank
	})
	return out
}

// All returns every descriptor in declaration order, inactive ones included.
func (c *Catalog) All() []Descriptor {
	out := make([]Descriptor, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup returns the descriptor with the given name.
func (c *Catalog) Lookup(name string) (Descriptor, bool) {
	for _, e := range c.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Descriptor{}, false
}
