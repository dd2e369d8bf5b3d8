package exec

import (
	"context"
	"fmt"

	"github.com/coldframe/coldframe/pkg/columnar"
	"github.com/coldframe/coldframe/pkg/physical"
	"github.com/coldframe/coldframe/pkg/schema"
)

// execUpdate rewrites every batch of Input, replacing each assigned
// column's value on rows where Predicate is true (nil Predicate means
// every row). Row count never changes: UPDATE never removes rows.
func (e *Executor) execUpdate(ctx context.Context, p *physical.Update) ([]*columnar.Batch, error) {
	batches, err := e.Execute(ctx, p.Input)
	if err != nil {
		return nil, err
	}

	assignMap := make(map[int]physical.Expr, len(p.Assignments))
	for _, a := range p.Assignments {
		assignMap[a.ColumnIndex] = a.Value
	}

	out := make([]*columnar.Batch, 0, len(batches))
	for _, batch := range batches {
		var predValue columnar.ColumnValue
		if p.Predicate != nil {
			predValue, err = p.Predicate.Evaluate(batch)
			if err != nil {
				return nil, fmt.Errorf("exec: update: %w", err)
			}
		}

		assignValues := make(map[int]columnar.ColumnValue, len(assignMap))
		for idx, expr := range assignMap {
			cv, err := expr.Evaluate(batch)
			if err != nil {
				return nil, fmt.Errorf("exec: update: %w", err)
			}
			assignValues[idx] = cv
		}

		n := batch.NumRows()
		builders := make([]columnar.Builder, len(batch.Columns))
		for i, col := range batch.Columns {
			builders[i] = columnar.NewArrayBuilder(col.Type())
		}

		for row := 0; row < n; row++ {
			matched := p.Predicate == nil
			if p.Predicate != nil {
				sv := predValue.ValueAt(row)
				matched = !sv.Null && sv.Bool
			}
			for i, col := range batch.Columns {
				if matched {
					if cv, ok := assignValues[i]; ok {
						av := cv.ValueAt(row)
						if av.Null {
							builders[i].AppendNull()
						} else {
							builders[i].AppendValue(rawOfScalar(av))
						}
						continue
					}
				}
				columnar.CopyRow(builders[i], col, row)
			}
		}

		arrays := make([]columnar.Array, len(builders))
		for i, b := range builders {
			arrays[i] = b.Build()
		}
		nb, err := columnar.NewBatch(batch.Schema, arrays)
		if err != nil {
			return nil, fmt.Errorf("exec: update: %w", err)
		}
		out = append(out, nb)
	}
	return out, nil
}

// oneRowDummyBatch is a scratch single-row batch used only to give
// literal expressions a NumRows() to broadcast against; its schema is
// never inspected by the caller.
func oneRowDummyBatch() *columnar.Batch {
	col := columnar.NewBoolArray([]bool{true}, nil)
	return &columnar.Batch{
		Schema:  schema.New(schema.Field{Name: "_", Type: schema.Boolean}),
		Columns: []columnar.Array{col},
	}
}

// execInsert evaluates each literal row against a scratch one-row
// batch, builds a single new batch out of the results, and appends it
// onto whatever Input scanned — mirroring the original prototype's
// insert_into_table, which appends onto the existing batch vector
// rather than replacing it (see physical.Insert's doc comment).
func (e *Executor) execInsert(ctx context.Context, p *physical.Insert) ([]*columnar.Batch, error) {
	existing, err := e.Execute(ctx, p.Input)
	if err != nil {
		return nil, err
	}
	if len(p.Rows) == 0 {
		return existing, nil
	}

	dummy := oneRowDummyBatch()
	builders := make([]columnar.Builder, p.TableSchema.Len())
	for i, f := range p.TableSchema.Fields {
		builders[i] = columnar.NewArrayBuilder(f.Type)
	}

	for _, row := range p.Rows {
		for i, expr := range row {
			cv, err := expr.Evaluate(dummy)
			if err != nil {
				return nil, fmt.Errorf("exec: insert: %w", err)
			}
			sv := cv.ValueAt(0)
			if sv.Null {
				builders[i].AppendNull()
			} else {
				builders[i].AppendValue(rawOfScalar(sv))
			}
		}
	}

	arrays := make([]columnar.Array, len(builders))
	for i, b := range builders {
		arrays[i] = b.Build()
	}
	newBatch, err := columnar.NewBatch(p.TableSchema, arrays)
	if err != nil {
		return nil, fmt.Errorf("exec: insert: %w", err)
	}

	out := make([]*columnar.Batch, 0, len(existing)+1)
	out = append(out, existing...)
	out = append(out, newBatch)
	return out, nil
}

// execDelete evaluates Predicate against every input batch
// independently (the same per-batch fix as Filter; spec.md documents
// the original prototype's first-batch-only evaluation as a bug).
// A null or false predicate keeps the row; only a true predicate
// removes it. A nil Predicate deletes every row.
func (e *Executor) execDelete(ctx context.Context, p *physical.Delete) ([]*columnar.Batch, error) {
	batches, err := e.Execute(ctx, p.Input)
	if err != nil {
		return nil, err
	}

	out := make([]*columnar.Batch, 0, len(batches))
	for _, batch := range batches {
		nb, err := deleteBatch(batch, p.Predicate)
		if err != nil {
			return nil, fmt.Errorf("exec: delete: %w", err)
		}
		out = append(out, nb)
	}
	return out, nil
}

func deleteBatch(batch *columnar.Batch, pred physical.Expr) (*columnar.Batch, error) {
	builders := make([]columnar.Builder, len(batch.Columns))
	for i, col := range batch.Columns {
		builders[i] = columnar.NewArrayBuilder(col.Type())
	}

	if pred == nil {
		arrays := make([]columnar.Array, len(builders))
		for i, b := range builders {
			arrays[i] = b.Build()
		}
		return columnar.NewBatch(batch.Schema, arrays)
	}

	predValue, err := pred.Evaluate(batch)
	if err != nil {
		return nil, err
	}

	n := batch.NumRows()
	for row := 0; row < n; row++ {
		sv := predValue.ValueAt(row)
		if !sv.Null && sv.Bool {
			continue
		}
		for i, col := range batch.Columns {
			columnar.CopyRow(builders[i], col, row)
		}
	}

	arrays := make([]columnar.Array, len(builders))
	for i, b := range builders {
		arrays[i] = b.Build()
	}
	return columnar.NewBatch(batch.Schema, arrays)
}
