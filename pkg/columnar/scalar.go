package columnar

import (
	"fmt"

	"github.com/coldframe/coldframe/pkg/schema"
)

// ScalarValue is a single typed value (or null), the unit produced by
// evaluating a Literal expression and the unit consumed when comparing
// a column against a constant.
type ScalarValue struct {
	Type  schema.DataType
	Null  bool
	Bool  bool
	I64   int64
	U64   uint64
	F64   float64
	Str   string
}

func NewBoolScalar(v bool) ScalarValue    { return ScalarValue{Type: schema.Boolean, Bool: v} }
func NewInt64Scalar(v int64) ScalarValue  { return ScalarValue{Type: schema.Int64, I64: v} }
func NewUInt64Scalar(v uint64) ScalarValue { return ScalarValue{Type: schema.UInt64, U64: v} }
func NewFloat64Scalar(v float64) ScalarValue {
	return ScalarValue{Type: schema.Float64, F64: v}
}
func NewUtf8Scalar(v string) ScalarValue { return ScalarValue{Type: schema.Utf8, Str: v} }
func NewNullScalar(t schema.DataType) ScalarValue {
	return ScalarValue{Type: t, Null: true}
}

func (s ScalarValue) String() string {
	if s.Null {
		return "NULL"
	}
	switch s.Type {
	case schema.Boolean:
		return fmt.Sprintf("%v", s.Bool)
	case schema.Int64:
		return fmt.Sprintf("%d", s.I64)
	case schema.UInt64:
		return fmt.Sprintf("%d", s.U64)
	case schema.Float64:
		return fmt.Sprintf("%g", s.F64)
	case schema.Utf8:
		return s.Str
	default:
		return "?"
	}
}

// ColumnValue is the result of evaluating a physical expression against
// a batch: either a full per-row Array, or a single Scalar broadcast
// across Length logical rows, materialized lazily so that constant
// expressions (e.g. a literal in a projection) never allocate an array
// until something actually needs one.
type ColumnValue struct {
	Array  Array
	Scalar ScalarValue
	Length int
	isArr  bool
}

func ArrayValue(a Array) ColumnValue {
	return ColumnValue{Array: a, Length: a.Len(), isArr: true}
}

func ScalarColumnValue(s ScalarValue, length int) ColumnValue {
	return ColumnValue{Scalar: s, Length: length, isArr: false}
}

func (c ColumnValue) IsArray() bool { return c.isArr }
func (c ColumnValue) Len() int      { return c.Length }

// ToArray materializes a broadcast scalar into a full array; a value
// that is already an array is returned unchanged.
func (c ColumnValue) ToArray() Array {
	if c.isArr {
		return c.Array
	}
	b := NewArrayBuilder(c.Scalar.Type)
	for i := 0; i < c.Length; i++ {
		if c.Scalar.Null {
			b.AppendNull()
		} else {
			b.AppendValue(scalarRaw(c.Scalar))
		}
	}
	return b.Build()
}

func scalarRaw(s ScalarValue) interface{} {
	switch s.Type {
	case schema.Boolean:
		return s.Bool
	case schema.Int64:
		return s.I64
	case schema.UInt64:
		return s.U64
	case schema.Float64:
		return s.F64
	case schema.Utf8:
		return s.Str
	default:
		panic(fmt.Sprintf("columnar: unknown scalar type %v", s.Type))
	}
}

// ValueAt returns the scalar at row i, whether the ColumnValue is a
// real array or a broadcast scalar.
func (c ColumnValue) ValueAt(i int) ScalarValue {
	if !c.isArr {
		return c.Scalar
	}
	return ArrayValueAt(c.Array, i)
}

// ArrayValueAt extracts the scalar at row i out of a typed array.
func ArrayValueAt(a Array, i int) ScalarValue {
	if !a.IsValid(i) {
		return NewNullScalar(a.Type())
	}
	switch arr := a.(type) {
	case *BoolArray:
		return NewBoolScalar(arr.Values[i])
	case *Int64Array:
		return NewInt64Scalar(arr.Values[i])
	case *UInt64Array:
		return NewUInt64Scalar(arr.Values[i])
	case *Float64Array:
		return NewFloat64Scalar(arr.Values[i])
	case *Utf8Array:
		return NewUtf8Scalar(arr.Values[i])
	default:
		panic(fmt.Sprintf("columnar: unknown array type %T", a))
	}
}
