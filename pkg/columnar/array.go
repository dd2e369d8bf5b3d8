// Package columnar implements the engine's in-memory columnar value
// model: typed arrays with parallel validity bitmaps, scalar values,
// and record batches. All type dispatch over the five primitive kinds
// is a finite switch; there are no unchecked casts.
package columnar

import (
	"fmt"

	"github.com/coldframe/coldframe/pkg/schema"
)

// Array is an immutable, type-homogeneous column of values, with a
// parallel validity bitmap marking which positions are non-null.
type Array interface {
	Type() schema.DataType
	Len() int
	IsValid(i int) bool
	// Slice returns a new Array over [start, end).
	Slice(start, end int) Array
}

// BoolArray holds Boolean values.
type BoolArray struct {
	Values []bool
	Valid  []bool
}

func NewBoolArray(values []bool, valid []bool) *BoolArray {
	return &BoolArray{Values: values, Valid: validOrAllTrue(valid, len(values))}
}

func (a *BoolArray) Type() schema.DataType { return schema.Boolean }
func (a *BoolArray) Len() int              { return len(a.Values) }
func (a *BoolArray) IsValid(i int) bool    { return a.Valid[i] }
func (a *BoolArray) Slice(start, end int) Array {
	return &BoolArray{Values: a.Values[start:end], Valid: a.Valid[start:end]}
}

// Int64Array holds Int64 values.
type Int64Array struct {
	Values []int64
	Valid  []bool
}

func NewInt64Array(values []int64, valid []bool) *Int64Array {
	return &Int64Array{Values: values, Valid: validOrAllTrue(valid, len(values))}
}

func (a *Int64Array) Type() schema.DataType { return schema.Int64 }
func (a *Int64Array) Len() int              { return len(a.Values) }
func (a *Int64Array) IsValid(i int) bool    { return a.Valid[i] }
func (a *Int64Array) Slice(start, end int) Array {
	return &Int64Array{Values: a.Values[start:end], Valid: a.Valid[start:end]}
}

// UInt64Array holds UInt64 values.
type UInt64Array struct {
	Values []uint64
	Valid  []bool
}

func NewUInt64Array(values []uint64, valid []bool) *UInt64Array {
	return &UInt64Array{Values: values, Valid: validOrAllTrue(valid, len(values))}
}

func (a *UInt64Array) Type() schema.DataType { return schema.UInt64 }
func (a *UInt64Array) Len() int              { return len(a.Values) }
func (a *UInt64Array) IsValid(i int) bool    { return a.Valid[i] }
func (a *UInt64Array) Slice(start, end int) Array {
	return &UInt64Array{Values: a.Values[start:end], Valid: a.Valid[start:end]}
}

// Float64Array holds Float64 values.
type Float64Array struct {
	Values []float64
	Valid  []bool
}

func NewFloat64Array(values []float64, valid []bool) *Float64Array {
	return &Float64Array{Values: values, Valid: validOrAllTrue(valid, len(values))}
}

func (a *Float64Array) Type() schema.DataType { return schema.Float64 }
func (a *Float64Array) Len() int              { return len(a.Values) }
func (a *Float64Array) IsValid(i int) bool    { return a.Valid[i] }
func (a *Float64Array) Slice(start, end int) Array {
	return &Float64Array{Values: a.Values[start:end], Valid: a.Valid[start:end]}
}

// Utf8Array holds Utf8 values.
type Utf8Array struct {
	Values []string
	Valid  []bool
}

func NewUtf8Array(values []string, valid []bool) *Utf8Array {
	return &Utf8Array{Values: values, Valid: validOrAllTrue(valid, len(values))}
}

func (a *Utf8Array) Type() schema.DataType { return schema.Utf8 }
func (a *Utf8Array) Len() int              { return len(a.Values) }
func (a *Utf8Array) IsValid(i int) bool    { return a.Valid[i] }
func (a *Utf8Array) Slice(start, end int) Array {
	return &Utf8Array{Values: a.Values[start:end], Valid: a.Valid[start:end]}
}

// CopyRow appends row i of src onto dst, preserving nullness, without
// going through a ScalarValue.
func CopyRow(dst Builder, src Array, i int) {
	if !src.IsValid(i) {
		dst.AppendNull()
		return
	}
	switch arr := src.(type) {
	case *BoolArray:
		dst.AppendValue(arr.Values[i])
	case *Int64Array:
		dst.AppendValue(arr.Values[i])
	case *UInt64Array:
		dst.AppendValue(arr.Values[i])
	case *Float64Array:
		dst.AppendValue(arr.Values[i])
	case *Utf8Array:
		dst.AppendValue(arr.Values[i])
	default:
		panic(fmt.Sprintf("columnar: unknown array type %T", src))
	}
}

func validOrAllTrue(valid []bool, n int) []bool {
	if valid != nil {
		return valid
	}
	v := make([]bool, n)
	for i := range v {
		v[i] = true
	}
	return v
}

// NewArrayBuilder returns an empty Builder for the given type, for
// callers that append values incrementally.
func NewArrayBuilder(t schema.DataType) Builder {
	switch t {
	case schema.Boolean:
		return &boolBuilder{}
	case schema.Int64:
		return &int64Builder{}
	case schema.UInt64:
		return &uint64Builder{}
	case schema.Float64:
		return &float64Builder{}
	case schema.Utf8:
		return &utf8Builder{}
	default:
		panic(fmt.Sprintf("columnar: unknown data type %v", t))
	}
}

// Builder incrementally constructs an Array, one value or null at a
// time, mirroring the original prototype's per-type append builders.
type Builder interface {
	AppendValue(v interface{})
	AppendNull()
	Build() Array
	Len() int
}

type boolBuilder struct {
	values []bool
	valid  []bool
}

func (b *boolBuilder) AppendValue(v interface{}) {
	b.values = append(b.values, v.(bool))
	b.valid = append(b.valid, true)
}
func (b *boolBuilder) AppendNull() {
	b.values = append(b.values, false)
	b.valid = append(b.valid, false)
}
func (b *boolBuilder) Build() Array { return NewBoolArray(b.values, b.valid) }
func (b *boolBuilder) Len() int     { return len(b.values) }

type int64Builder struct {
	values []int64
	valid  []bool
}

func (b *int64Builder) AppendValue(v interface{}) {
	b.values = append(b.values, v.(int64))
	b.valid = append(b.valid, true)
}
func (b *int64Builder) AppendNull() {
	b.values = append(b.values, 0)
	b.valid = append(b.valid, false)
}
func (b *int64Builder) Build() Array { return NewInt64Array(b.values, b.valid) }
func (b *int64Builder) Len() int     { return len(b.values) }

type uint64Builder struct {
	values []uint64
	valid  []bool
}

func (b *uint64Builder) AppendValue(v interface{}) {
	b.values = append(b.values, v.(uint64))
	b.valid = append(b.valid, true)
}
func (b *uint64Builder) AppendNull() {
	b.values = append(b.values, 0)
	b.valid = append(b.valid, false)
}
func (b *uint64Builder) Build() Array { return NewUInt64Array(b.values, b.valid) }
func (b *uint64Builder) Len() int     { return len(b.values) }

type float64Builder struct {
	values []float64
	valid  []bool
}

func (b *float64Builder) AppendValue(v interface{}) {
	b.values = append(b.values, v.(float64))
	b.valid = append(b.valid, true)
}
func (b *float64Builder) AppendNull() {
	b.values = append(b.values, 0)
	b.valid = append(b.valid, false)
}
func (b *float64Builder) Build() Array { return NewFloat64Array(b.values, b.valid) }
func (b *float64Builder) Len() int     { return len(b.values) }

type utf8Builder struct {
	values []string
	valid  []bool
}

func (b *utf8Builder) AppendValue(v interface{}) {
	b.values = append(b.values, v.(string))
	b.valid = append(b.valid, true)
}
func (b *utf8Builder) AppendNull() {
	b.values = append(b.values, "")
	b.valid = append(b.valid, false)
}
func (b *utf8Builder) Build() Array { return NewUtf8Array(b.values, b.valid) }
func (b *utf8Builder) Len() int     { return len(b.values) }
