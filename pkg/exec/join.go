package exec

import (
	"context"
	"fmt"

	"github.com/coldframe/coldframe/pkg/columnar"
	"github.com/coldframe/coldframe/pkg/logical"
	"github.com/coldframe/coldframe/pkg/physical"
	"github.com/coldframe/coldframe/pkg/schema"
)

type rowRef struct {
	batch *columnar.Batch
	row   int
}

// scalarKey encodes a scalar as a hashable string, tagged by type so
// values of different types never collide. Null keys have no key: a
// null join column never matches, mirroring ordinary SQL equi-join
// semantics.
func scalarKey(sv columnar.ScalarValue) (string, bool) {
	if sv.Null {
		return "", false
	}
	switch sv.Type {
	case schema.Boolean:
		return fmt.Sprintf("b:%v", sv.Bool), true
	case schema.Int64:
		return fmt.Sprintf("i:%d", sv.I64), true
	case schema.UInt64:
		return fmt.Sprintf("u:%d", sv.U64), true
	case schema.Float64:
		return fmt.Sprintf("f:%g", sv.F64), true
	case schema.Utf8:
		return fmt.Sprintf("s:%s", sv.Str), true
	default:
		return "", false
	}
}

func (e *Executor) execJoin(ctx context.Context, p *physical.Join) ([]*columnar.Batch, error) {
	leftBatches, err := e.Execute(ctx, p.Left)
	if err != nil {
		return nil, err
	}
	rightBatches, err := e.Execute(ctx, p.Right)
	if err != nil {
		return nil, err
	}

	leftSchema := p.Left.Schema()
	rightSchema := p.Right.Schema()

	switch p.Kind {
	case logical.RightJoin:
		// Drive with the right side, building the hash index on the
		// left so an unmatched right row still gets left-side nulls.
		index := buildIndex(leftBatches, p.LeftKeyIdx)
		out, err := e.probeOuter(p, index, rightBatches, p.RightKeyIdx, leftSchema, rightSchema, true)
		if err != nil {
			return nil, err
		}
		return out, nil
	default:
		// Inner and Left both drive with the left side; Inner simply
		// drops rows that never matched instead of null-padding them.
		index := buildIndex(rightBatches, p.RightKeyIdx)
		out, err := e.probeOuter(p, index, leftBatches, p.LeftKeyIdx, leftSchema, rightSchema, false)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

func buildIndex(batches []*columnar.Batch, keyIdx int) map[string][]rowRef {
	idx := make(map[string][]rowRef)
	for _, b := range batches {
		col := b.Column(keyIdx)
		for row := 0; row < b.NumRows(); row++ {
			sv := columnar.ArrayValueAt(col, row)
			key, ok := scalarKey(sv)
			if !ok {
				continue
			}
			idx[key] = append(idx[key], rowRef{batch: b, row: row})
		}
	}
	return idx
}

// probeOuter drives over driveBatches, probing index by driveKeyIdx.
// When rightDrives is true, the driving rows are logically the right
// side of the join (a RIGHT JOIN) and matches come from the left-built
// index; the emitted row order is still left-columns-then-right, so
// the two cases only differ in which side is "driving" vs "indexed".
func (e *Executor) probeOuter(p *physical.Join, index map[string][]rowRef, driveBatches []*columnar.Batch, driveKeyIdx int, leftSchema, rightSchema schema.Schema, rightDrives bool) ([]*columnar.Batch, error) {
	builders := make([]columnar.Builder, p.OutSchema.Len())
	for i, f := range p.OutSchema.Fields {
		builders[i] = columnar.NewArrayBuilder(f.Type)
	}

	outer := p.Kind == logical.LeftJoin || p.Kind == logical.RightJoin

	for _, db := range driveBatches {
		col := db.Column(driveKeyIdx)
		for drow := 0; drow < db.NumRows(); drow++ {
			sv := columnar.ArrayValueAt(col, drow)
			key, ok := scalarKey(sv)

			matched := false
			if ok {
				for _, cand := range index[key] {
					var leftBatch, rb *columnar.Batch
					var leftRow, rightRow int
					if rightDrives {
						leftBatch, leftRow = cand.batch, cand.row
						rb, rightRow = db, drow
					} else {
						leftBatch, leftRow = db, drow
						rb, rightRow = cand.batch, cand.row
					}

					ok, err := e.matchesResidual(p, leftBatch, leftRow, rb, rightRow)
					if err != nil {
						return nil, err
					}
					if !ok {
						continue
					}
					matched = true
					appendJoinedRow(builders, leftSchema, leftBatch, leftRow, rightSchema, rb, rightRow)
				}
			}

			if !matched && outer {
				if rightDrives {
					appendJoinedRow(builders, leftSchema, nil, 0, rightSchema, db, drow)
				} else {
					appendJoinedRow(builders, leftSchema, db, drow, rightSchema, nil, 0)
				}
			}
		}
	}

	arrays := make([]columnar.Array, len(builders))
	for i, b := range builders {
		arrays[i] = b.Build()
	}
	out, err := columnar.NewBatch(p.OutSchema, arrays)
	if err != nil {
		return nil, fmt.Errorf("exec: join: %w", err)
	}
	return []*columnar.Batch{out}, nil
}

func (e *Executor) matchesResidual(p *physical.Join, leftBatch *columnar.Batch, leftRow int, rightBatch *columnar.Batch, rightRow int) (bool, error) {
	if p.ResidualFilter == nil {
		return true, nil
	}
	row, err := oneRowBatch(p.OutSchema, p.Left.Schema(), leftBatch, leftRow, p.Right.Schema(), rightBatch, rightRow)
	if err != nil {
		return false, err
	}
	cv, err := p.ResidualFilter.Evaluate(row)
	if err != nil {
		return false, err
	}
	sv := cv.ValueAt(0)
	return !sv.Null && sv.Bool, nil
}

func oneRowBatch(outSchema, leftSchema schema.Schema, leftBatch *columnar.Batch, leftRow int, rightSchema schema.Schema, rightBatch *columnar.Batch, rightRow int) (*columnar.Batch, error) {
	builders := make([]columnar.Builder, outSchema.Len())
	for i, f := range outSchema.Fields {
		builders[i] = columnar.NewArrayBuilder(f.Type)
	}
	appendJoinedRow(builders, leftSchema, leftBatch, leftRow, rightSchema, rightBatch, rightRow)
	arrays := make([]columnar.Array, len(builders))
	for i, b := range builders {
		arrays[i] = b.Build()
	}
	return columnar.NewBatch(outSchema, arrays)
}

// appendJoinedRow appends one combined row to builders, in
// left-columns-then-right-columns order. A nil side appends nulls for
// its span of columns (an unmatched outer-join row).
func appendJoinedRow(builders []columnar.Builder, leftSchema schema.Schema, leftBatch *columnar.Batch, leftRow int, rightSchema schema.Schema, rightBatch *columnar.Batch, rightRow int) {
	nl := leftSchema.Len()
	for i := 0; i < nl; i++ {
		if leftBatch == nil {
			builders[i].AppendNull()
			continue
		}
		columnar.CopyRow(builders[i], leftBatch.Column(i), leftRow)
	}
	for i := 0; i < rightSchema.Len(); i++ {
		if rightBatch == nil {
			builders[nl+i].AppendNull()
			continue
		}
		columnar.CopyRow(builders[nl+i], rightBatch.Column(i), rightRow)
	}
}

func (e *Executor) execCrossJoin(ctx context.Context, p *physical.CrossJoin) ([]*columnar.Batch, error) {
	leftBatches, err := e.Execute(ctx, p.Left)
	if err != nil {
		return nil, err
	}
	rightBatches, err := e.Execute(ctx, p.Right)
	if err != nil {
		return nil, err
	}

	leftSchema := p.Left.Schema()
	rightSchema := p.Right.Schema()

	builders := make([]columnar.Builder, p.OutSchema.Len())
	for i, f := range p.OutSchema.Fields {
		builders[i] = columnar.NewArrayBuilder(f.Type)
	}

	for _, lb := range leftBatches {
		for lrow := 0; lrow < lb.NumRows(); lrow++ {
			for _, rb := range rightBatches {
				for rrow := 0; rrow < rb.NumRows(); rrow++ {
					appendJoinedRow(builders, leftSchema, lb, lrow, rightSchema, rb, rrow)
				}
			}
		}
	}

	arrays := make([]columnar.Array, len(builders))
	for i, b := range builders {
		arrays[i] = b.Build()
	}
	out, err := columnar.NewBatch(p.OutSchema, arrays)
	if err != nil {
		return nil, fmt.Errorf("exec: cross join: %w", err)
	}
	return []*columnar.Batch{out}, nil
}
