package logical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldframe/coldframe/pkg/columnar"
	"github.com/coldframe/coldframe/pkg/schema"
)

func sampleScan() *TableScan {
	s := schema.New(
		schema.Field{Name: "id", Type: schema.Int64},
		schema.Field{Name: "name", Type: schema.Utf8},
	)
	return NewTableScan("people", s)
}

func TestTableScanAppliesQualifier(t *testing.T) {
	scan := sampleScan()
	assert.Equal(t, "people", scan.Schema().Fields[0].Qualifier)
}

func TestFilterPreservesSchema(t *testing.T) {
	scan := sampleScan()
	pred := &BinaryExpr{Op: OpEq, Left: &Column{Name: "id"}, Right: &Literal{Value: columnar.NewInt64Scalar(1)}}
	f := NewFilter(scan, pred)

	assert.Equal(t, scan.Schema(), f.Schema())
}

func TestProjectionResolvesFieldTypes(t *testing.T) {
	scan := sampleScan()
	proj, err := NewProjection(scan, []Expr{&Column{Name: "name"}})
	require.NoError(t, err)

	s := proj.Schema()
	require.Equal(t, 1, s.Len())
	assert.Equal(t, schema.Utf8, s.Fields[0].Type)
}

func TestAggregateRejectsMultipleGroupKeys(t *testing.T) {
	scan := sampleScan()
	_, err := NewAggregate(scan, []Expr{&Column{Name: "id"}, &Column{Name: "name"}}, nil)
	assert.Error(t, err)
}

func TestAggregateCountIsInt64NotNull(t *testing.T) {
	scan := sampleScan()
	agg, err := NewAggregate(scan, nil, []*AggregateExpr{{Func: AggCount, Arg: &Wildcard{}}})
	require.NoError(t, err)

	s := agg.Schema()
	require.Equal(t, 1, s.Len())
	assert.Equal(t, schema.Int64, s.Fields[0].Type)
	assert.False(t, s.Fields[0].Nullable)
}

func TestJoinSchemaConcatenates(t *testing.T) {
	left := sampleScan()
	rs := schema.New(schema.Field{Name: "id", Type: schema.Int64}, schema.Field{Name: "amount", Type: schema.Float64})
	right := NewTableScan("orders", rs)

	j := NewJoin(left, right, InnerJoin, &Column{Qualifier: "people", Name: "id"}, &Column{Qualifier: "orders", Name: "id"}, nil)
	assert.Equal(t, 4, j.Schema().Len())
}

func TestPrintPlanIndentsChildren(t *testing.T) {
	scan := sampleScan()
	f := NewFilter(scan, &Literal{Value: columnar.NewBoolScalar(true)})

	out := PrintPlan(f, 0)
	assert.Contains(t, out, "Filter:")
	assert.Contains(t, out, "  TableScan: people")
}
