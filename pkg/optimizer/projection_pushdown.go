package optimizer

import (
	"github.com/coldframe/coldframe/pkg/logical"
)

// ProjectionPushDown narrows a TableScan to only the columns an
// enclosing Projection (and any Filter between it and the scan)
// actually reference, so pkg/exec's scan operator can skip materializing
// unused columns.
//
// The original Rust prototype's equivalent rule takes a dangerous
// shortcut: it assumes a projection's referenced columns always occupy
// the index range [0, k) of the scan's schema, which silently produces
// wrong results whenever the projected columns aren't a schema prefix
// (see spec.md §9). This implementation instead resolves each
// referenced column by name against the scan's schema and pushes down
// the exact index set, which is always correct — at the cost of only
// firing on the narrow shape (Projection directly over TableScan, or
// Projection over Filter over TableScan, with no intervening Join or
// Aggregate) where "the columns this subtree needs" is unambiguous
// without deeper dataflow analysis. It is off by default (see
// Optimizer.Default) since spec.md documents it as the one rule an
// implementer may reasonably choose to skip.
type ProjectionPushDown struct{}

func (ProjectionPushDown) Name() string { return "ProjectionPushDown" }

func (r ProjectionPushDown) Apply(plan logical.Plan) logical.Plan {
	switch p := plan.(type) {
	case *logical.Projection:
		newInput := r.Apply(p.Input)
		pushInto(newInput, referencedColumns(p.Exprs, nil))
		return &logical.Projection{Input: newInput, Exprs: p.Exprs}
	case *logical.Filter:
		newInput := r.Apply(p.Input)
		return &logical.Filter{Input: newInput, Predicate: p.Predicate}
	case *logical.Aggregate:
		newInput := r.Apply(p.Input)
		return &logical.Aggregate{Input: newInput, GroupExprs: p.GroupExprs, AggExprs: p.AggExprs}
	case *logical.Join:
		return &logical.Join{
			Left: r.Apply(p.Left), Right: r.Apply(p.Right),
			Kind: p.Kind, LeftKey: p.LeftKey, RightKey: p.RightKey, ResidualFilter: p.ResidualFilter,
		}
	case *logical.CrossJoin:
		return &logical.CrossJoin{Left: r.Apply(p.Left), Right: r.Apply(p.Right)}
	case *logical.Limit:
		return &logical.Limit{Input: r.Apply(p.Input), N: p.N}
	case *logical.Offset:
		return &logical.Offset{Input: r.Apply(p.Input), N: p.N}
	default:
		return plan
	}
}

// pushInto sets scan.ProjectedIndex when input is (after unwrapping any
// Filter) directly a TableScan; it is a no-op for any other shape,
// which is what keeps this rule safe (see the type doc comment).
func pushInto(input logical.Plan, cols []logical.Column) {
	target := input
	if f, ok := input.(*logical.Filter); ok {
		target = f.Input
		cols = append(append([]logical.Column{}, cols...), referencedColumns([]logical.Expr{f.Predicate}, nil)...)
	}
	scan, ok := target.(*logical.TableScan)
	if !ok {
		return
	}

	seen := make(map[int]bool)
	var indices []int
	for _, c := range cols {
		idx := scan.TableSchema.IndexOf(c.Qualifier, c.Name)
		if idx < 0 || seen[idx] {
			continue
		}
		seen[idx] = true
		indices = append(indices, idx)
	}
	if len(indices) > 0 {
		scan.ProjectedIndex = indices
	}
}

// referencedColumns collects every Column a set of expressions
// transitively reference.
func referencedColumns(exprs []logical.Expr, acc []logical.Column) []logical.Column {
	for _, e := range exprs {
		acc = collectColumns(e, acc)
	}
	return acc
}

func collectColumns(e logical.Expr, acc []logical.Column) []logical.Column {
	switch v := e.(type) {
	case *logical.Column:
		acc = append(acc, *v)
	case *logical.BinaryExpr:
		acc = collectColumns(v.Left, acc)
		acc = collectColumns(v.Right, acc)
	case *logical.AliasExpr:
		acc = collectColumns(v.Expr, acc)
	case *logical.AggregateExpr:
		if v.Arg != nil {
			acc = collectColumns(v.Arg, acc)
		}
	}
	return acc
}
