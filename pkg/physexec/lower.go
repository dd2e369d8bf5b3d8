// Package physexec lowers a pkg/logical.Plan into a pkg/physical.Plan:
// every column reference becomes a plain index into its input's
// schema, and every Scan is bound to the live pkg/catalog TableSource
// it reads from. Grounded on the teacher's planner-to-physical
// dispatch shape (pkg/ppl/planner's `buildPhysicalPlan` switch) and on
// pkg/physical's evaluator, which this package is the sole producer
// of expressions for.
package physexec

import (
	"fmt"

	"github.com/coldframe/coldframe/pkg/catalog"
	"github.com/coldframe/coldframe/pkg/engineerr"
	"github.com/coldframe/coldframe/pkg/logical"
	"github.com/coldframe/coldframe/pkg/physical"
	"github.com/coldframe/coldframe/pkg/schema"
)

// Lowerer lowers logical plans against a fixed catalog.
type Lowerer struct {
	catalog *catalog.Catalog
}

func New(cat *catalog.Catalog) *Lowerer {
	return &Lowerer{catalog: cat}
}

// Lower dispatches on the concrete logical.Plan type.
func (l *Lowerer) Lower(plan logical.Plan) (physical.Plan, error) {
	switch p := plan.(type) {
	case *logical.TableScan:
		return l.lowerScan(p)
	case *logical.Filter:
		return l.lowerFilter(p)
	case *logical.Projection:
		return l.lowerProjection(p)
	case *logical.Join:
		return l.lowerJoin(p)
	case *logical.CrossJoin:
		return l.lowerCrossJoin(p)
	case *logical.Aggregate:
		return l.lowerAggregate(p)
	case *logical.Limit:
		return l.lowerLimit(p)
	case *logical.Offset:
		return l.lowerOffset(p)
	case *logical.Update:
		return l.lowerUpdate(p)
	case *logical.Insert:
		return l.lowerInsert(p)
	case *logical.Delete:
		return l.lowerDelete(p)
	case *logical.CreateTable:
		return &physical.CreateTable{TableName: p.TableName, TableSchema: p.TableSchema}, nil
	default:
		return nil, engineerr.New(engineerr.PlanError, "unknown logical plan node %T", plan)
	}
}

func (l *Lowerer) lowerScan(p *logical.TableScan) (*physical.Scan, error) {
	src, err := l.catalog.GetTable(p.CatalogName)
	if err != nil {
		return nil, fmt.Errorf("physexec: %w", err)
	}
	return &physical.Scan{
		Source:     src,
		TableName:  p.TableName,
		ScanSchema: p.Schema(),
		Projection: p.ProjectedIndex,
	}, nil
}

func (l *Lowerer) lowerFilter(p *logical.Filter) (*physical.Filter, error) {
	input, err := l.Lower(p.Input)
	if err != nil {
		return nil, err
	}
	pred, err := lowerExpr(p.Predicate, p.Input)
	if err != nil {
		return nil, err
	}
	return &physical.Filter{Input: input, Predicate: pred}, nil
}

func (l *Lowerer) lowerProjection(p *logical.Projection) (*physical.Projection, error) {
	input, err := l.Lower(p.Input)
	if err != nil {
		return nil, err
	}
	exprs := make([]physical.Expr, len(p.Exprs))
	for i, e := range p.Exprs {
		pe, err := lowerExpr(e, p.Input)
		if err != nil {
			return nil, err
		}
		exprs[i] = pe
	}
	return &physical.Projection{Input: input, Exprs: exprs, OutSchema: p.Schema()}, nil
}

func (l *Lowerer) lowerJoin(p *logical.Join) (*physical.Join, error) {
	left, err := l.Lower(p.Left)
	if err != nil {
		return nil, err
	}
	right, err := l.Lower(p.Right)
	if err != nil {
		return nil, err
	}

	leftIdx := p.Left.Schema().IndexOf(p.LeftKey.Qualifier, p.LeftKey.Name)
	if leftIdx < 0 {
		return nil, engineerr.ColumnNotExistsError(p.LeftKey.String())
	}
	rightIdx := p.Right.Schema().IndexOf(p.RightKey.Qualifier, p.RightKey.Name)
	if rightIdx < 0 {
		return nil, engineerr.ColumnNotExistsError(p.RightKey.String())
	}

	var residual physical.Expr
	if p.ResidualFilter != nil {
		combined := &schemaOnlyPlan{s: p.Schema()}
		residual, err = lowerExpr(p.ResidualFilter, combined)
		if err != nil {
			return nil, err
		}
	}

	return &physical.Join{
		Left: left, Right: right, Kind: p.Kind,
		LeftKeyIdx: leftIdx, RightKeyIdx: rightIdx,
		ResidualFilter: residual, OutSchema: p.Schema(),
	}, nil
}

func (l *Lowerer) lowerCrossJoin(p *logical.CrossJoin) (*physical.CrossJoin, error) {
	left, err := l.Lower(p.Left)
	if err != nil {
		return nil, err
	}
	right, err := l.Lower(p.Right)
	if err != nil {
		return nil, err
	}
	return &physical.CrossJoin{Left: left, Right: right, OutSchema: p.Schema()}, nil
}

func (l *Lowerer) lowerAggregate(p *logical.Aggregate) (*physical.Aggregate, error) {
	input, err := l.Lower(p.Input)
	if err != nil {
		return nil, err
	}

	var groupExpr physical.Expr
	if len(p.GroupExprs) == 1 {
		groupExpr, err = lowerExpr(p.GroupExprs[0], p.Input)
		if err != nil {
			return nil, err
		}
	}

	outSchema := p.Schema()
	offset := len(p.GroupExprs)
	aggExprs := make([]physical.AggregateExpr, len(p.AggExprs))
	for i, ae := range p.AggExprs {
		var arg physical.Expr
		if ae.Arg != nil {
			if _, isWildcard := ae.Arg.(*logical.Wildcard); !isWildcard {
				arg, err = lowerExpr(ae.Arg, p.Input)
				if err != nil {
					return nil, err
				}
			}
		}
		f, _ := outSchema.Field(offset + i)
		aggExprs[i] = physical.AggregateExpr{Func: ae.Func, Arg: arg, Name: f.Name}
	}

	return &physical.Aggregate{Input: input, GroupExpr: groupExpr, AggExprs: aggExprs, OutSchema: outSchema}, nil
}

func (l *Lowerer) lowerLimit(p *logical.Limit) (*physical.Limit, error) {
	input, err := l.Lower(p.Input)
	if err != nil {
		return nil, err
	}
	return &physical.Limit{Input: input, N: p.N}, nil
}

func (l *Lowerer) lowerOffset(p *logical.Offset) (*physical.Offset, error) {
	input, err := l.Lower(p.Input)
	if err != nil {
		return nil, err
	}
	return &physical.Offset{Input: input, N: p.N}, nil
}

func (l *Lowerer) lowerUpdate(p *logical.Update) (*physical.Update, error) {
	input, err := l.Lower(p.Input)
	if err != nil {
		return nil, err
	}

	var predicate physical.Expr
	if p.Predicate != nil {
		predicate, err = lowerExpr(p.Predicate, p.Input)
		if err != nil {
			return nil, err
		}
	}

	assignments := make([]physical.Assignment, len(p.Assignments))
	for i, a := range p.Assignments {
		idx := p.Input.Schema().IndexOf("", a.Column)
		if idx < 0 {
			return nil, engineerr.ColumnNotExistsError(a.Column)
		}
		assignments[i] = physical.Assignment{ColumnIndex: idx, Value: &physical.Literal{Value: a.Value.Value}}
	}

	return &physical.Update{TableName: p.TableName, Input: input, Predicate: predicate, Assignments: assignments}, nil
}

// lowerInsert builds a Scan over the target table's current batches as
// Input, so pkg/exec's execInsert can append the new literal rows onto
// whatever is already there (see physical.Insert's doc comment).
func (l *Lowerer) lowerInsert(p *logical.Insert) (*physical.Insert, error) {
	src, err := l.catalog.GetTable(p.TableName)
	if err != nil {
		return nil, fmt.Errorf("physexec: %w", err)
	}
	input := &physical.Scan{Source: src, TableName: p.TableName, ScanSchema: p.TableSchema}

	rows := make([][]physical.Expr, len(p.Rows))
	for ri, row := range p.Rows {
		exprs := make([]physical.Expr, len(row))
		for ci, lit := range row {
			exprs[ci] = &physical.Literal{Value: lit.Value}
		}
		rows[ri] = exprs
	}

	return &physical.Insert{TableName: p.TableName, TableSchema: p.TableSchema, Input: input, Rows: rows}, nil
}

func (l *Lowerer) lowerDelete(p *logical.Delete) (*physical.Delete, error) {
	input, err := l.Lower(p.Input)
	if err != nil {
		return nil, err
	}

	var predicate physical.Expr
	if p.Predicate != nil {
		predicate, err = lowerExpr(p.Predicate, p.Input)
		if err != nil {
			return nil, err
		}
	}

	return &physical.Delete{TableName: p.TableName, Input: input, Predicate: predicate}, nil
}

// lowerExpr resolves a logical.Expr against input's schema into a
// physical.Expr carrying a plain column index instead of a
// qualifier/name pair.
func lowerExpr(e logical.Expr, input logical.Plan) (physical.Expr, error) {
	switch v := e.(type) {
	case *logical.Column:
		idx := input.Schema().IndexOf(v.Qualifier, v.Name)
		if idx < 0 {
			return nil, engineerr.ColumnNotExistsError(v.String())
		}
		return &physical.ColumnRef{Index: idx, Name: v.Name}, nil
	case *logical.Literal:
		return &physical.Literal{Value: v.Value}, nil
	case *logical.BinaryExpr:
		left, err := lowerExpr(v.Left, input)
		if err != nil {
			return nil, err
		}
		right, err := lowerExpr(v.Right, input)
		if err != nil {
			return nil, err
		}
		return &physical.Binary{Op: v.Op, Left: left, Right: right}, nil
	case *logical.AliasExpr:
		return lowerExpr(v.Expr, input)
	default:
		return nil, engineerr.New(engineerr.NotSupported, "cannot lower expression %T to a physical expression", e)
	}
}

// schemaOnlyPlan is a bare logical.Plan standing in for a row shape
// that has no real plan node of its own — namely a join's combined
// output row, used only so lowerExpr's Column resolution can run
// against the joined schema when lowering a residual filter.
type schemaOnlyPlan struct{ s schema.Schema }

func (p *schemaOnlyPlan) Schema() schema.Schema    { return p.s }
func (p *schemaOnlyPlan) Children() []logical.Plan { return nil }
func (p *schemaOnlyPlan) String() string           { return "joined row" }
