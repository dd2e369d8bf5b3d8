// Package datasource defines the abstraction a TableScan reads from:
// something with a schema that can hand back its data as batches.
package datasource

import (
	"github.com/coldframe/coldframe/pkg/columnar"
	"github.com/coldframe/coldframe/pkg/schema"
)

// TableSource is implemented by anything a catalog entry can point at.
// The CSV-backed implementation lives in pkg/datasource/csv; an
// in-memory mutation target (the result of INSERT/UPDATE/DELETE) is a
// MemTable in this package.
type TableSource interface {
	Schema() schema.Schema
	// Scan returns the table's batches, optionally narrowed to the
	// given column indices. A nil projection returns all columns.
	Scan(projection []int) ([]*columnar.Batch, error)
	SourceName() string
}

// MemTable is a TableSource backed by a fixed slice of batches already
// held in memory — the result of CREATE TABLE, and the rebuilt state
// after INSERT/UPDATE/DELETE.
type MemTable struct {
	TableSchema schema.Schema
	Batches     []*columnar.Batch
}

func NewMemTable(s schema.Schema, batches []*columnar.Batch) *MemTable {
	return &MemTable{TableSchema: s, Batches: batches}
}

func (m *MemTable) Schema() schema.Schema { return m.TableSchema }

func (m *MemTable) Scan(projection []int) ([]*columnar.Batch, error) {
	if projection == nil {
		return m.Batches, nil
	}
	out := make([]*columnar.Batch, len(m.Batches))
	for i, b := range m.Batches {
		cols := make([]columnar.Array, len(projection))
		for j, idx := range projection {
			cols[j] = b.Column(idx)
		}
		projSchema := b.Schema.Select(projection)
		nb, err := columnar.NewBatch(projSchema, cols)
		if err != nil {
			return nil, err
		}
		out[i] = nb
	}
	return out, nil
}

func (m *MemTable) SourceName() string { return "MemTable" }
