package columnar

import (
	"fmt"

	"github.com/coldframe/coldframe/pkg/schema"
)

// Batch is a fixed-size, column-oriented chunk of rows sharing a
// schema. Batches are immutable once built; operators that "change" a
// batch build a new one.
type Batch struct {
	Schema  schema.Schema
	Columns []Array
}

// NewBatch validates that each column's length matches and each
// column's type matches the schema's declared field type at that
// position, then returns the batch.
func NewBatch(s schema.Schema, columns []Array) (*Batch, error) {
	if len(columns) != s.Len() {
		return nil, fmt.Errorf("columnar: batch has %d columns, schema declares %d fields", len(columns), s.Len())
	}
	var n int
	for i, col := range columns {
		f := s.Fields[i]
		if col.Type() != f.Type {
			return nil, fmt.Errorf("columnar: column %d (%s) has type %s, schema declares %s", i, f.Name, col.Type(), f.Type)
		}
		if i == 0 {
			n = col.Len()
		} else if col.Len() != n {
			return nil, fmt.Errorf("columnar: column %d (%s) has length %d, expected %d", i, f.Name, col.Len(), n)
		}
	}
	return &Batch{Schema: s, Columns: columns}, nil
}

// NumRows returns the batch's row count, or 0 for a zero-column batch.
func (b *Batch) NumRows() int {
	if len(b.Columns) == 0 {
		return 0
	}
	return b.Columns[0].Len()
}

// Column returns the array at the given schema index.
func (b *Batch) Column(idx int) Array {
	return b.Columns[idx]
}

// ColumnByName resolves a possibly-qualified name and returns its
// array, or nil and false if not found.
func (b *Batch) ColumnByName(qualifier, name string) (Array, bool) {
	idx := b.Schema.IndexOf(qualifier, name)
	if idx < 0 {
		return nil, false
	}
	return b.Columns[idx], true
}

// Slice returns a new batch over the row range [start, end) of every
// column, sharing the same schema.
func (b *Batch) Slice(start, end int) *Batch {
	cols := make([]Array, len(b.Columns))
	for i, c := range b.Columns {
		cols[i] = c.Slice(start, end)
	}
	return &Batch{Schema: b.Schema, Columns: cols}
}
