package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexOfQualified(t *testing.T) {
	s := New(
		Field{Qualifier: "a", Name: "id", Type: Int64},
		Field{Qualifier: "b", Name: "id", Type: Int64},
	)

	require.Equal(t, 0, s.IndexOf("a", "id"))
	require.Equal(t, 1, s.IndexOf("b", "id"))
	require.Equal(t, -1, s.IndexOf("c", "id"))
}

func TestIndexOfUnqualifiedReturnsFirstMatch(t *testing.T) {
	s := New(
		Field{Qualifier: "a", Name: "id", Type: Int64},
		Field{Qualifier: "b", Name: "id", Type: Int64},
	)

	assert.Equal(t, 0, s.IndexOf("", "id"))
}

func TestJoinConcatenatesFieldLists(t *testing.T) {
	left := New(Field{Qualifier: "a", Name: "id", Type: Int64})
	right := New(Field{Qualifier: "b", Name: "name", Type: Utf8})

	joined := Join(left, right)

	require.Equal(t, 2, joined.Len())
	assert.Equal(t, "a", joined.Fields[0].Qualifier)
	assert.Equal(t, "b", joined.Fields[1].Qualifier)
}

func TestSelectProjectsInOrder(t *testing.T) {
	s := New(
		Field{Name: "a", Type: Int64},
		Field{Name: "b", Type: Utf8},
		Field{Name: "c", Type: Boolean},
	)

	got := s.Select([]int{2, 0})

	require.Equal(t, 2, got.Len())
	assert.Equal(t, "c", got.Fields[0].Name)
	assert.Equal(t, "a", got.Fields[1].Name)
}

func TestWithQualifierRewritesAllFields(t *testing.T) {
	s := New(Field{Name: "id", Type: Int64}, Field{Name: "name", Type: Utf8})

	aliased := s.WithQualifier("t1")

	for _, f := range aliased.Fields {
		assert.Equal(t, "t1", f.Qualifier)
	}
}

func TestFieldOutOfRange(t *testing.T) {
	s := New(Field{Name: "id", Type: Int64})

	_, ok := s.Field(5)
	assert.False(t, ok)
}
