// Package exec implements the physical operators: each one takes a
// physical.Plan node (already holding resolved column indices and
// evaluable expressions) and a context, and returns the full []*Batch
// result of executing it — a bulk, pull-once call, not a row-at-a-time
// iterator. Grounded on pkg/ppl/executor's Open/Next/Close shape and
// zap logging convention, adapted to the batch-vector Execute contract
// original_source/'s `execute() -> Vec<RecordBatch>` uses throughout
// (see DESIGN.md).
package exec

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/coldframe/coldframe/pkg/columnar"
	"github.com/coldframe/coldframe/pkg/engineerr"
	"github.com/coldframe/coldframe/pkg/physical"
)

// Executor runs a physical plan tree to completion.
type Executor struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{logger: logger}
}

// Execute dispatches on the concrete physical.Plan type and returns the
// batches it produces.
func (e *Executor) Execute(ctx context.Context, plan physical.Plan) ([]*columnar.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.logger.Debug("exec: executing node", zap.String("node", plan.String()))

	switch p := plan.(type) {
	case *physical.Scan:
		return e.execScan(p)
	case *physical.Filter:
		return e.execFilter(ctx, p)
	case *physical.Projection:
		return e.execProjection(ctx, p)
	case *physical.Join:
		return e.execJoin(ctx, p)
	case *physical.CrossJoin:
		return e.execCrossJoin(ctx, p)
	case *physical.Aggregate:
		return e.execAggregate(ctx, p)
	case *physical.Limit:
		return e.execLimit(ctx, p)
	case *physical.Offset:
		return e.execOffset(ctx, p)
	case *physical.Update:
		return e.execUpdate(ctx, p)
	case *physical.Insert:
		return e.execInsert(ctx, p)
	case *physical.Delete:
		return e.execDelete(ctx, p)
	case *physical.CreateTable:
		return e.execCreateTable(p)
	default:
		return nil, engineerr.New(engineerr.PlanError, "unknown physical plan node %T", plan)
	}
}

func (e *Executor) execScan(p *physical.Scan) ([]*columnar.Batch, error) {
	batches, err := p.Source.Scan(p.Projection)
	if err != nil {
		return nil, fmt.Errorf("exec: scan %s: %w", p.TableName, err)
	}
	return batches, nil
}

func (e *Executor) execCreateTable(p *physical.CreateTable) ([]*columnar.Batch, error) {
	return nil, nil
}
