package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldframe/coldframe/pkg/logical"
	"github.com/coldframe/coldframe/pkg/schema"
)

func sampleScan() *logical.TableScan {
	s := schema.New(
		schema.Field{Name: "id", Type: schema.Int64},
		schema.Field{Name: "name", Type: schema.Utf8},
		schema.Field{Name: "score", Type: schema.Float64},
	)
	return logical.NewTableScan("t", s)
}

func TestProjectionPushDownNarrowsDirectScan(t *testing.T) {
	scan := sampleScan()
	proj, err := logical.NewProjection(scan, []logical.Expr{&logical.Column{Qualifier: "t", Name: "name"}})
	require.NoError(t, err)

	out := ProjectionPushDown{}.Apply(proj)

	newProj := out.(*logical.Projection)
	newScan := newProj.Input.(*logical.TableScan)
	require.NotNil(t, newScan.ProjectedIndex)
	assert.Equal(t, []int{1}, newScan.ProjectedIndex)
}

func TestProjectionPushDownIncludesFilterColumns(t *testing.T) {
	scan := sampleScan()
	filter := logical.NewFilter(scan, &logical.BinaryExpr{
		Op:    logical.OpGt,
		Left:  &logical.Column{Qualifier: "t", Name: "score"},
		Right: &logical.Literal{},
	})
	proj, err := logical.NewProjection(filter, []logical.Expr{&logical.Column{Qualifier: "t", Name: "name"}})
	require.NoError(t, err)

	out := ProjectionPushDown{}.Apply(proj)

	newProj := out.(*logical.Projection)
	newFilter := newProj.Input.(*logical.Filter)
	newScan := newFilter.Input.(*logical.TableScan)
	assert.ElementsMatch(t, []int{1, 2}, newScan.ProjectedIndex)
}

func TestProjectionPushDownSkipsNonScanInput(t *testing.T) {
	left := sampleScan()
	right := sampleScan()
	join := logical.NewJoin(left, right, logical.InnerJoin, &logical.Column{Name: "id"}, &logical.Column{Name: "id"}, nil)
	proj, err := logical.NewProjection(join, []logical.Expr{&logical.Column{Name: "name"}})
	require.NoError(t, err)

	out := ProjectionPushDown{}.Apply(proj)
	newProj := out.(*logical.Projection)
	_, ok := newProj.Input.(*logical.Join)
	assert.True(t, ok)
}

func TestOptimizerDefaultIsNoOpWithoutRules(t *testing.T) {
	o := Default(nil)
	scan := sampleScan()
	out := o.Optimize(scan)
	assert.Same(t, logical.Plan(scan), out)
}
