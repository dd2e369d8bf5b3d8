package exec

import (
	"context"
	"fmt"

	"github.com/coldframe/coldframe/pkg/columnar"
	"github.com/coldframe/coldframe/pkg/physical"
)

func (e *Executor) execProjection(ctx context.Context, p *physical.Projection) ([]*columnar.Batch, error) {
	inputBatches, err := e.Execute(ctx, p.Input)
	if err != nil {
		return nil, err
	}

	out := make([]*columnar.Batch, 0, len(inputBatches))
	for _, batch := range inputBatches {
		arrays := make([]columnar.Array, len(p.Exprs))
		for i, expr := range p.Exprs {
			cv, err := expr.Evaluate(batch)
			if err != nil {
				return nil, fmt.Errorf("exec: projection: %w", err)
			}
			arrays[i] = cv.ToArray()
		}
		nb, err := columnar.NewBatch(p.OutSchema, arrays)
		if err != nil {
			return nil, fmt.Errorf("exec: projection: %w", err)
		}
		out = append(out, nb)
	}
	return out, nil
}
