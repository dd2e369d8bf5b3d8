// Package physical holds the physical expression evaluator and the
// physical plan node definitions pkg/exec executes against. Grounded on
// original_source/src/physical_plan/selection.rs's per-type predicate
// evaluation and the teacher's PhysicalPlan interface shape
// (pkg/ppl/physical/physical_plan.go), minus Location() (meaningless
// for a single-process engine).
package physical

import (
	"fmt"
	"math"
	"strings"

	"github.com/coldframe/coldframe/pkg/columnar"
	"github.com/coldframe/coldframe/pkg/engineerr"
	"github.com/coldframe/coldframe/pkg/logical"
	"github.com/coldframe/coldframe/pkg/schema"
)

// Expr is a physical expression: column references are resolved to
// plain indices (no more qualifier/name lookup at evaluation time).
type Expr interface {
	Evaluate(batch *columnar.Batch) (columnar.ColumnValue, error)
	String() string
}

// ColumnRef reads column Index of the batch being evaluated.
type ColumnRef struct {
	Index int
	Name  string // for String() only
}

func (c *ColumnRef) String() string { return c.Name }

func (c *ColumnRef) Evaluate(batch *columnar.Batch) (columnar.ColumnValue, error) {
	if c.Index < 0 || c.Index >= len(batch.Columns) {
		return columnar.ColumnValue{}, engineerr.ColumnNotExistsError(c.Name)
	}
	return columnar.ArrayValue(batch.Column(c.Index)), nil
}

// Literal broadcasts a constant across every row of the batch.
type Literal struct {
	Value columnar.ScalarValue
}

func (l *Literal) String() string { return l.Value.String() }

func (l *Literal) Evaluate(batch *columnar.Batch) (columnar.ColumnValue, error) {
	return columnar.ScalarColumnValue(l.Value, batch.NumRows()), nil
}

// Binary is a two-operand physical expression, evaluated row by row so
// that a null operand at a given position produces a null result at
// that position without disturbing any other row (spec.md's
// null-propagation-only three-valued-logic model; no additional
// short-circuiting is attempted).
type Binary struct {
	Op          logical.BinaryOp
	Left, Right Expr
}

func (b *Binary) String() string {
	return fmt.Sprintf("%s %s %s", b.Left, b.Op, b.Right)
}

func (b *Binary) ResultType(leftType, rightType schema.DataType) schema.DataType {
	if b.Op.IsComparison() {
		return schema.Boolean
	}
	return promote(leftType, rightType)
}

func (b *Binary) Evaluate(batch *columnar.Batch) (columnar.ColumnValue, error) {
	left, err := b.Left.Evaluate(batch)
	if err != nil {
		return columnar.ColumnValue{}, err
	}
	right, err := b.Right.Evaluate(batch)
	if err != nil {
		return columnar.ColumnValue{}, err
	}

	n := batch.NumRows()
	resultType := b.ResultType(operandType(left), operandType(right))
	builder := columnar.NewArrayBuilder(resultType)
	for i := 0; i < n; i++ {
		lv := left.ValueAt(i)
		rv := right.ValueAt(i)
		sv, err := applyBinary(b.Op, lv, rv)
		if err != nil {
			return columnar.ColumnValue{}, err
		}
		if sv.Null {
			builder.AppendNull()
			continue
		}
		builder.AppendValue(rawOf(sv))
	}
	return columnar.ArrayValue(builder.Build()), nil
}

func operandType(c columnar.ColumnValue) schema.DataType {
	if c.IsArray() {
		return c.Array.Type()
	}
	return c.Scalar.Type
}

func promote(a, b schema.DataType) schema.DataType {
	if a == schema.Float64 || b == schema.Float64 {
		return schema.Float64
	}
	if a == schema.UInt64 && b == schema.UInt64 {
		return schema.UInt64
	}
	if a == schema.Int64 || b == schema.Int64 {
		return schema.Int64
	}
	return a
}

func rawOf(v columnar.ScalarValue) interface{} {
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

func asFloat(v columnar.ScalarValue) float64 {
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

func asInt(v columnar.ScalarValue) int64 {
	switch v.Type {
	case schema.Int64:
		return v.I64
	case schema.UInt64:
		return int64(v.U64)
	default:
		return 0
	}
}

// applyBinary computes a single scalar result. Any null operand
// produces a null result, regardless of operator.
func applyBinary(op logical.BinaryOp, l, r columnar.ScalarValue) (columnar.ScalarValue, error) {
	if l.Null || r.Null {
		if op.IsComparison() {
			return columnar.NewNullScalar(schema.Boolean), nil
		}
		return columnar.NewNullScalar(promote(l.Type, r.Type)), nil
	}

	switch op {
	case logical.OpAnd:
		return columnar.NewBoolScalar(l.Bool && r.Bool), nil
	case logical.OpOr:
		return columnar.NewBoolScalar(l.Bool || r.Bool), nil
	case logical.OpEq:
		return columnar.NewBoolScalar(compareEqual(l, r)), nil
	case logical.OpNotEq:
		return columnar.NewBoolScalar(!compareEqual(l, r)), nil
	case logical.OpLt, logical.OpLtEq, logical.OpGt, logical.OpGtEq:
		cmp, err := compareOrdered(op, l, r)
		if err != nil {
			return columnar.ScalarValue{}, err
		}
		return columnar.NewBoolScalar(cmp), nil
	case logical.OpPlus, logical.OpMinus, logical.OpMultiply, logical.OpDivide, logical.OpModulo:
		return applyArithmetic(op, l, r)
	default:
		return columnar.ScalarValue{}, engineerr.New(engineerr.PlanError, "unknown operator %s", op)
	}
}

func compareEqual(l, r columnar.ScalarValue) bool {
	if l.Type == schema.Utf8 || r.Type == schema.Utf8 {
		return l.Str == r.Str
	}
	if l.Type == schema.Boolean || r.Type == schema.Boolean {
		return l.Bool == r.Bool
	}
	return asFloat(l) == asFloat(r)
}

func compareOrdered(op logical.BinaryOp, l, r columnar.ScalarValue) (bool, error) {
	if l.Type == schema.Utf8 && r.Type == schema.Utf8 {
		c := strings.Compare(l.Str, r.Str)
		switch op {
		case logical.OpLt:
			return c < 0, nil
		case logical.OpLtEq:
			return c <= 0, nil
		case logical.OpGt:
			return c > 0, nil
		default:
			return c >= 0, nil
		}
	}
	if l.Type == schema.Boolean || r.Type == schema.Boolean {
		return false, engineerr.New(engineerr.NotSupported, "cannot order-compare Boolean values")
	}
	lf, rf := asFloat(l), asFloat(r)
	switch op {
	case logical.OpLt:
		return lf < rf, nil
	case logical.OpLtEq:
		return lf <= rf, nil
	case logical.OpGt:
		return lf > rf, nil
	default:
		return lf >= rf, nil
	}
}

func applyArithmetic(op logical.BinaryOp, l, r columnar.ScalarValue) (columnar.ScalarValue, error) {
	if l.Type == schema.Utf8 || r.Type == schema.Utf8 || l.Type == schema.Boolean || r.Type == schema.Boolean {
		return columnar.ScalarValue{}, engineerr.New(engineerr.NotSupported, "operator %s requires numeric operands", op)
	}
	rt := promote(l.Type, r.Type)
	if rt == schema.Float64 {
		lf, rf := asFloat(l), asFloat(r)
		var out float64
		switch op {
		case logical.OpPlus:
			out = lf + rf
		case logical.OpMinus:
			out = lf - rf
		case logical.OpMultiply:
			out = lf * rf
		case logical.OpDivide:
			if rf == 0 {
				return columnar.NewNullScalar(schema.Float64), nil
			}
			out = lf / rf
		case logical.OpModulo:
			if rf == 0 {
				return columnar.NewNullScalar(schema.Float64), nil
			}
			out = math.Mod(lf, rf)
		}
		return columnar.NewFloat64Scalar(out), nil
	}

	li, ri := asInt(l), asInt(r)
	var out int64
	switch op {
	case logical.OpPlus:
		out = li + ri
	case logical.OpMinus:
		out = li - ri
	case logical.OpMultiply:
		out = li * ri
	case logical.OpDivide:
		if ri == 0 {
			return columnar.NewNullScalar(schema.Int64), nil
		}
		out = li / ri
	case logical.OpModulo:
		if ri == 0 {
			return columnar.NewNullScalar(schema.Int64), nil
		}
		out = li % ri
	}
	if rt == schema.UInt64 {
		return columnar.NewUInt64Scalar(uint64(out)), nil
	}
	return columnar.NewInt64Scalar(out), nil
}
