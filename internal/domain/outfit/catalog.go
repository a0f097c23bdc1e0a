package outfit

import "strings"

// Catalog is an immutable, ordered table of outfit records.
type Catalog struct {
	columns map[Column]struct{}
	records []Record
}

// NewCatalog builds a catalog with the given structurally present columns.
// Row i becomes the record at position i.
func NewCatalog(columns []Column, rows []map[Column]string) Catalog {
	cols := make(map[Column]struct{}, len(columns))
	for _, c := range columns {
		cols[c] = struct{}{}
	}
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = NewRecord(i, row)
	}
	return Catalog{columns: cols, records: records}
}

// FromRecords builds a catalog where every known column is present.
// Positions are reassigned in slice order.
func FromRecords(rows []map[Column]string) Catalog {
	return NewCatalog(Columns, rows)
}

// Len returns the number of records.
func (c Catalog) Len() int { return len(c.records) }

// IsEmpty reports whether the catalog has no records.
func (c Catalog) IsEmpty() bool { return len(c.records) == 0 }

// HasColumn reports whether col is structurally present in the source table.
func (c Catalog) HasColumn(col Column) bool {
	_, ok := c.columns[col]
	return ok
}

// Records returns a private copy of the records in catalog order.
func (c Catalog) Records() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// At returns the record at position i.
func (c Catalog) At(i int) (Record, bool) {
	if i < 0 || i >= len(c.records) {
		return Record{}, false
	}
	return c.records[i], true
}

// Facets holds the distinct filter values present in a catalog.
type Facets struct {
	Seasons   []string
	Occasions []string
	Colors    []string
}

// Facets returns distinct season/occasion/color values in first-seen order.
// Values differing only in case are reported once, spelled as first seen.
func (c Catalog) Facets() Facets {
	return Facets{
		Seasons:   c.distinct(Season),
		Occasions: c.distinct(Occasion),
		Colors:    c.distinct(Color),
	}
}

func (c Catalog) distinct(col Column) []string {
	if !c.HasColumn(col) {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, r := range c.records {
		v := r.Get(col)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
