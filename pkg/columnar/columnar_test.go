package columnar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldframe/coldframe/pkg/schema"
)

func TestInt64ArrayValidity(t *testing.T) {
	a := NewInt64Array([]int64{1, 2, 3}, []bool{true, false, true})

	assert.True(t, a.IsValid(0))
	assert.False(t, a.IsValid(1))
	assert.Equal(t, 3, a.Len())
}

func TestBuilderRoundTrip(t *testing.T) {
	b := NewArrayBuilder(schema.Utf8)
	b.AppendValue("hi")
	b.AppendNull()
	b.AppendValue("bye")

	arr := b.Build().(*Utf8Array)
	require.Equal(t, 3, arr.Len())
	assert.Equal(t, "hi", arr.Values[0])
	assert.False(t, arr.Valid[1])
	assert.Equal(t, "bye", arr.Values[2])
}

func TestColumnValueBroadcastToArray(t *testing.T) {
	cv := ScalarColumnValue(NewInt64Scalar(42), 3)
	arr := cv.ToArray().(*Int64Array)

	require.Equal(t, 3, arr.Len())
	for i := 0; i < 3; i++ {
		assert.Equal(t, int64(42), arr.Values[i])
		assert.True(t, arr.Valid[i])
	}
}

func TestColumnValueNullBroadcast(t *testing.T) {
	cv := ScalarColumnValue(NewNullScalar(schema.Float64), 2)
	arr := cv.ToArray().(*Float64Array)

	for i := 0; i < 2; i++ {
		assert.False(t, arr.Valid[i])
	}
}

func TestArrayValueAtRespectsValidity(t *testing.T) {
	a := NewBoolArray([]bool{true, false}, []bool{true, false})

	v0 := ArrayValueAt(a, 0)
	v1 := ArrayValueAt(a, 1)

	assert.False(t, v0.Null)
	assert.True(t, v0.Bool)
	assert.True(t, v1.Null)
}

func TestNewBatchRejectsLengthMismatch(t *testing.T) {
	s := schema.New(
		schema.Field{Name: "a", Type: schema.Int64},
		schema.Field{Name: "b", Type: schema.Utf8},
	)
	cols := []Array{
		NewInt64Array([]int64{1, 2}, nil),
		NewUtf8Array([]string{"x"}, nil),
	}

	_, err := NewBatch(s, cols)
	assert.Error(t, err)
}

func TestNewBatchRejectsTypeMismatch(t *testing.T) {
	s := schema.New(schema.Field{Name: "a", Type: schema.Int64})
	cols := []Array{NewUtf8Array([]string{"x"}, nil)}

	_, err := NewBatch(s, cols)
	assert.Error(t, err)
}

func TestBatchSlice(t *testing.T) {
	s := schema.New(schema.Field{Name: "a", Type: schema.Int64})
	b, err := NewBatch(s, []Array{NewInt64Array([]int64{1, 2, 3, 4}, nil)})
	require.NoError(t, err)

	sliced := b.Slice(1, 3)
	arr := sliced.Column(0).(*Int64Array)
	assert.Equal(t, []int64{2, 3}, arr.Values)
}

func TestColumnByNameUnqualified(t *testing.T) {
	s := schema.New(schema.Field{Qualifier: "t", Name: "a", Type: schema.Int64})
	b, err := NewBatch(s, []Array{NewInt64Array([]int64{9}, nil)})
	require.NoError(t, err)

	col, ok := b.ColumnByName("", "a")
	require.True(t, ok)
	assert.Equal(t, int64(9), col.(*Int64Array).Values[0])
}
