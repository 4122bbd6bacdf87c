package facts

import "sort"

// PropertyKey addresses a property by the declared type that owns it.
type PropertyKey struct {
	Type     string `json:"type"`
	Property string `json:"property"`
}

// PropertyDependencyIndex is a derived secondary index over a FactSet:
// direct lookup of the read sites and write sites of each property, plus
// the two set differences between them.
//
// Lookups are direct only. Callers needing multi-hop dependency chains
// compose multiple direct lookups themselves; this type will not grow
// transitive queries.
type PropertyDependencyIndex struct {
	reads  map[PropertyKey][]Site
	writes map[PropertyKey][]Site
	keys   []PropertyKey
}

// NewPropertyDependencyIndex builds the index in one pass over the set.
func NewPropertyDependencyIndex(s *Set) *PropertyDependencyIndex {
	idx := &PropertyDependencyIndex{
		reads:  make(map[PropertyKey][]Site),
		writes: make(map[PropertyKey][]Site),
	}
	seen := make(map[PropertyKey]bool)
	note := func(k PropertyKey) {
		if !seen[k] {
			seen[k] = true
			idx.keys = append(idx.keys, k)
		}
	}
	for _, r := range s.Reads {
		k := PropertyKey{Type: r.Type, Property: r.Property}
		note(k)
		idx.reads[k] = append(idx.reads[k], r.Site)
	}
	for _, w := range s.Writes {
		k := PropertyKey{Type: w.Type, Property: w.Property}
		note(k)
		idx.writes[k] = append(idx.writes[k], w.Site)
	}
	sort.Slice(idx.keys, func(i, j int) bool {
		a, b := idx.keys[i], idx.keys[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Property < b.Property
	})
	return idx
}

// Reads returns the sites that read the property, in fact order.
func (idx *PropertyDependencyIndex) Reads(typeName, property string) []Site {
	return idx.reads[PropertyKey{Type: typeName, Property: property}]
}

// Writes returns the sites that write the property, in fact order.
func (idx *PropertyDependencyIndex) Writes(typeName, property string) []Site {
	return idx.writes[PropertyKey{Type: typeName, Property: property}]
}

// Keys returns every known (type, property) pair in sorted order.
func (idx *PropertyDependencyIndex) Keys() []PropertyKey {
	return idx.keys
}

// ReadNeverWritten returns the properties some site reads but no site
// writes, sorted.
func (idx *PropertyDependencyIndex) ReadNeverWritten() []PropertyKey {
	var out []PropertyKey
	for _, k := range idx.keys {
		if len(idx.reads[k]) > 0 && len(idx.writes[k]) == 0 {
			out = append(out, k)
		}
	}
	return out
}

// WrittenNeverRead returns the properties some site writes but no site
// reads, sorted.
func (idx *PropertyDependencyIndex) WrittenNeverRead() []PropertyKey {
	var out []PropertyKey
	for _, k := range idx.keys {
		if len(idx.writes[k]) > 0 && len(idx.reads[k]) == 0 {
			out = append(out, k)
		}
	}
	return out
}
