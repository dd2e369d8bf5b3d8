package exec

import (
	"context"
	"fmt"

	"github.com/coldframe/coldframe/pkg/columnar"
	"github.com/coldframe/coldframe/pkg/physical"
)

// execFilter evaluates Predicate against every input batch
// independently (see DESIGN.md's Open Question decision: the original
// prototype's selection.rs only evaluates against the first batch,
// which spec.md documents as a bug implementers should not reproduce).
// A null predicate position contributes a null row to the output,
// matching the original's `None => builder.append_option(None)` branch.
func (e *Executor) execFilter(ctx context.Context, p *physical.Filter) ([]*columnar.Batch, error) {
	inputBatches, err := e.Execute(ctx, p.Input)
	if err != nil {
		return nil, err
	}

	out := make([]*columnar.Batch, 0, len(inputBatches))
	for _, batch := range inputBatches {
		filtered, err := filterBatch(batch, p.Predicate)
		if err != nil {
			return nil, fmt.Errorf("exec: filter: %w", err)
		}
		out = append(out, filtered)
	}
	return out, nil
}

// filterBatch builds a new batch keeping rows where pred is true, and
// appending a null row wherever pred is null.
func filterBatch(batch *columnar.Batch, pred physical.Expr) (*columnar.Batch, error) {
	predValue, err := pred.Evaluate(batch)
	if err != nil {
		return nil, err
	}

	n := batch.NumRows()
	builders := make([]columnar.Builder, len(batch.Columns))
	for i, col := range batch.Columns {
		builders[i] = columnar.NewArrayBuilder(col.Type())
	}

	for row := 0; row < n; row++ {
		sv := predValue.ValueAt(row)
		switch {
		case sv.Null:
			for i := range builders {
				builders[i].AppendNull()
			}
		case sv.Bool:
			for i, col := range batch.Columns {
				columnar.CopyRow(builders[i], col, row)
			}
		default:
			// predicate false: row dropped, nothing appended
		}
	}

	arrays := make([]columnar.Array, len(builders))
	for i, b := range builders {
		arrays[i] = b.Build()
	}
	return columnar.NewBatch(batch.Schema, arrays)
}
