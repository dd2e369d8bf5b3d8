package exec

import (
	"context"

	"github.com/coldframe/coldframe/pkg/columnar"
	"github.com/coldframe/coldframe/pkg/physical"
)

func (e *Executor) execLimit(ctx context.Context, p *physical.Limit) ([]*columnar.Batch, error) {
	batches, err := e.Execute(ctx, p.Input)
	if err != nil {
		return nil, err
	}

	remaining := p.N
	out := make([]*columnar.Batch, 0, len(batches))
	for _, b := range batches {
		if remaining <= 0 {
			break
		}
		n := b.NumRows()
		if n <= remaining {
			out = append(out, b)
			remaining -= n
			continue
		}
		out = append(out, b.Slice(0, remaining))
		remaining = 0
	}
	return out, nil
}

func (e *Executor) execOffset(ctx context.Context, p *physical.Offset) ([]*columnar.Batch, error) {
	batches, err := e.Execute(ctx, p.Input)
	if err != nil {
		return nil, err
	}

	skip := p.N
	out := make([]*columnar.Batch, 0, len(batches))
	for _, b := range batches {
		n := b.NumRows()
		if skip >= n {
			skip -= n
			continue
		}
		if skip > 0 {
			out = append(out, b.Slice(skip, n))
			skip = 0
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
