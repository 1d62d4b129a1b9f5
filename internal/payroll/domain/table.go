package domain

import (
	"iter"
	"slices"
)

// Table is an immutable, ordered collection of records. The zero value and a
// nil *Table are both empty tables.
type Table struct {
	rows []Record
}

// NewTable copies rows into a new table.
func NewTable(rows []Record) *Table {
	return &Table{rows: slices.Clone(rows)}
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// At returns a copy of the record at index i. ok is false when i is out of
// range, including on an empty table.
func (t *Table) At(i int) (Record, bool) {
	if i < 0 || i >= t.Len() {
		return Record{}, false
	}
	return t.rows[i], true
}

// All iterates records in table order.
func (t *Table) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		if t == nil {
			return
		}
		for i, rec := range t.rows {
			if !yield(i, rec) {
				return
			}
		}
	}
}

// Entities returns distinct agency names in first-appearance order.
func (t *Table) Entities() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, rec := range t.All() {
		if _, ok := seen[rec.Agency]; ok {
			continue
		}
		seen[rec.Agency] = struct{}{}
		out = append(out, rec.Agency)
	}
	return out
}

// Periods returns distinct fiscal years in ascending order.
func (t *Table) Periods() []int {
	seen := make(map[int]struct{})
	out := make([]int, 0)
	for _, rec := range t.All() {
		if _, ok := seen[rec.FiscalYear]; ok {
			continue
		}
		seen[rec.FiscalYear] = struct{}{}
		out = append(out, rec.FiscalYear)
	}
	slices.Sort(out)
	return out
}
