package exec

import (
	"context"
	"fmt"

	"github.com/coldframe/coldframe/pkg/columnar"
	"github.com/coldframe/coldframe/pkg/logical"
	"github.com/coldframe/coldframe/pkg/physical"
	"github.com/coldframe/coldframe/pkg/schema"
)

// aggState accumulates one AggregateExpr's running value for one
// group. Sum keeps a running total in the argument's own domain so the
// result type matches logical.AggregateExpr.ToField's Sum/Min/Max rule
// (same type as the argument); Avg always accumulates in float64 since
// its result type is always Float64.
type aggState struct {
	count      int64
	nonNull    int64
	sumI       int64
	sumU       uint64
	sumF       float64
	sumType    schema.DataType
	minMax     columnar.ScalarValue
	haveMinMax bool
}

// execAggregate performs a two-pass GROUP BY: pass one accumulates
// every row into its group's aggState in first-seen order (so output
// groups appear in the order they were first encountered, not sorted);
// pass two finalizes each group's accumulators into the output batch.
// GroupExpr nil means a single global group over every input row.
func (e *Executor) execAggregate(ctx context.Context, p *physical.Aggregate) ([]*columnar.Batch, error) {
	batches, err := e.Execute(ctx, p.Input)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		groupVal columnar.ScalarValue
		states   []*aggState
	}
	order := make([]string, 0)
	buckets := make(map[string]*bucket)

	const globalKey = "__global__"
	const nullGroupKey = "__null_group__"

	// A single global group (no GROUP BY) always produces exactly one
	// output row, even over zero input rows — AVG() over nothing is a
	// null, not a missing row.
	if p.GroupExpr == nil {
		states := make([]*aggState, len(p.AggExprs))
		for i := range states {
			states[i] = &aggState{}
		}
		buckets[globalKey] = &bucket{states: states}
		order = append(order, globalKey)
	}

	for _, batch := range batches {
		var groupCV columnar.ColumnValue
		if p.GroupExpr != nil {
			groupCV, err = p.GroupExpr.Evaluate(batch)
			if err != nil {
				return nil, fmt.Errorf("exec: aggregate: group expr: %w", err)
			}
		}

		argCVs := make([]columnar.ColumnValue, len(p.AggExprs))
		hasArg := make([]bool, len(p.AggExprs))
		for i, ae := range p.AggExprs {
			if ae.Arg != nil {
				cv, err := ae.Arg.Evaluate(batch)
				if err != nil {
					return nil, fmt.Errorf("exec: aggregate: %w", err)
				}
				argCVs[i] = cv
				hasArg[i] = true
			}
		}

		for row := 0; row < batch.NumRows(); row++ {
			var key string
			var groupVal columnar.ScalarValue
			if p.GroupExpr == nil {
				key = globalKey
			} else {
				groupVal = groupCV.ValueAt(row)
				if k, ok := scalarKey(groupVal); ok {
					key = "v:" + k
				} else {
					key = nullGroupKey
				}
			}

			b, exists := buckets[key]
			if !exists {
				b = &bucket{groupVal: groupVal, states: make([]*aggState, len(p.AggExprs))}
				for i := range b.states {
					b.states[i] = &aggState{}
				}
				buckets[key] = b
				order = append(order, key)
			}

			for i, ae := range p.AggExprs {
				var argVal columnar.ScalarValue
				if hasArg[i] {
					argVal = argCVs[i].ValueAt(row)
				}
				accumulate(b.states[i], ae.Func, argVal, hasArg[i])
			}
		}
	}

	builders := make([]columnar.Builder, p.OutSchema.Len())
	for i, f := range p.OutSchema.Fields {
		builders[i] = columnar.NewArrayBuilder(f.Type)
	}

	offset := 0
	if p.GroupExpr != nil {
		offset = 1
	}
	for _, key := range order {
		b := buckets[key]
		if p.GroupExpr != nil {
			if b.groupVal.Null {
				builders[0].AppendNull()
			} else {
				builders[0].AppendValue(rawOfScalar(b.groupVal))
			}
		}
		for i, ae := range p.AggExprs {
			finalize(builders[offset+i], ae.Func, b.states[i])
		}
	}

	arrays := make([]columnar.Array, len(builders))
	for i, bd := range builders {
		arrays[i] = bd.Build()
	}
	out, err := columnar.NewBatch(p.OutSchema, arrays)
	if err != nil {
		return nil, fmt.Errorf("exec: aggregate: %w", err)
	}
	return []*columnar.Batch{out}, nil
}

func accumulate(s *aggState, fn logical.AggregateFunc, argVal columnar.ScalarValue, hasArg bool) {
	switch fn {
	case logical.AggCount:
		if !hasArg || !argVal.Null {
			s.count++
		}
	case logical.AggSum, logical.AggAvg:
		if !hasArg || argVal.Null {
			return
		}
		s.nonNull++
		s.sumType = argVal.Type
		switch argVal.Type {
		case schema.Float64:
			s.sumF += argVal.F64
		case schema.UInt64:
			s.sumU += argVal.U64
			s.sumF += float64(argVal.U64)
		default:
			s.sumI += argVal.I64
			s.sumF += float64(argVal.I64)
		}
	case logical.AggMin:
		if !hasArg || argVal.Null {
			return
		}
		if !s.haveMinMax || scalarLess(argVal, s.minMax) {
			s.minMax = argVal
			s.haveMinMax = true
		}
	case logical.AggMax:
		if !hasArg || argVal.Null {
			return
		}
		if !s.haveMinMax || scalarLess(s.minMax, argVal) {
			s.minMax = argVal
			s.haveMinMax = true
		}
	}
}

func finalize(b columnar.Builder, fn logical.AggregateFunc, s *aggState) {
	switch fn {
	case logical.AggCount:
		b.AppendValue(s.count)
	case logical.AggSum:
		if s.nonNull == 0 {
			b.AppendNull()
			return
		}
		switch s.sumType {
		case schema.Float64:
			b.AppendValue(s.sumF)
		case schema.UInt64:
			b.AppendValue(s.sumU)
		default:
			b.AppendValue(s.sumI)
		}
	case logical.AggAvg:
		// An empty group averages to null, not NaN or zero.
		if s.nonNull == 0 {
			b.AppendNull()
			return
		}
		b.AppendValue(s.sumF / float64(s.nonNull))
	case logical.AggMin, logical.AggMax:
		if !s.haveMinMax {
			b.AppendNull()
			return
		}
		b.AppendValue(rawOfScalar(s.minMax))
	}
}

func scalarLess(a, b columnar.ScalarValue) bool {
	if a.Type == schema.Utf8 || b.Type == schema.Utf8 {
		return a.Str < b.Str
	}
	return aggAsFloat(a) < aggAsFloat(b)
}

func aggAsFloat(v columnar.ScalarValue) float64 {
	switch v.Type {
	case schema.Int64:
		return float64(v.I64)
	case schema.UInt64:
		return float64(v.U64)
	case schema.Float64:
		return v.F64
	default:
		return 0
	}
}

func rawOfScalar(v columnar.ScalarValue) interface{} {
	switch v.Type {
	case schema.Boolean:
		return v.Bool
	case schema.Int64:
		return v.I64
	case schema.UInt64:
		return v.U64
	case schema.Float64:
		return v.F64
	case schema.Utf8:
		return v.Str
	default:
		return nil
	}
}
