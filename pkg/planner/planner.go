// Package planner lowers a parsed pkg/sqlast.Statement into a
// pkg/logical.Plan, resolving table names against the live catalog as
// it goes (so an unknown table is caught here). Column references are
// not checked here; pkg/physexec resolves them when lowering the plan.
package planner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coldframe/coldframe/pkg/catalog"
	"github.com/coldframe/coldframe/pkg/columnar"
	"github.com/coldframe/coldframe/pkg/engineerr"
	"github.com/coldframe/coldframe/pkg/logical"
	"github.com/coldframe/coldframe/pkg/schema"
	"github.com/coldframe/coldframe/pkg/sqlast"
)

// Planner lowers SQL AST into logical plans against a Catalog.
type Planner struct {
	catalog *catalog.Catalog
}

func New(cat *catalog.Catalog) *Planner {
	return &Planner{catalog: cat}
}

// Plan lowers any statement with an actual data flow. DROP TABLE, SHOW
// TABLES, and EXPLAIN have no logical plan of their own (DROP is a pure
// catalog removal, the other two are driver-level introspection) and
// are handled directly by pkg/driver before reaching here.
func (p *Planner) Plan(stmt sqlast.Statement) (logical.Plan, error) {
	switch s := stmt.(type) {
	case *sqlast.SelectStmt:
		return p.planSelect(s)
	case *sqlast.CreateTableStmt:
		return p.planCreateTable(s)
	case *sqlast.InsertStmt:
		return p.planInsert(s)
	case *sqlast.UpdateStmt:
		return p.planUpdate(s)
	case *sqlast.DeleteStmt:
		return p.planDelete(s)
	default:
		return nil, engineerr.New(engineerr.PlanError, "%T must be handled by the driver, not planned", stmt)
	}
}

func normalizeIdent(s string) string {
	// Every identifier is case-folded to lower case. The lexer emits
	// quoted and unquoted identifiers as the same token kind and the AST
	// does not record quoting, so quoted identifiers are folded too and
	// do not keep their original case.
	return strings.ToLower(s)
}

func (p *Planner) resolveTable(ref sqlast.TableRef) (*logical.TableScan, string, error) {
	name := normalizeIdent(ref.Name)
	src, err := p.catalog.GetTable(name)
	if err != nil {
		return nil, "", fmt.Errorf("planner: %w", err)
	}
	qualifier := name
	if ref.Alias != "" {
		qualifier = normalizeIdent(ref.Alias)
	}
	scan := logical.NewAliasedTableScan(name, qualifier, src.Schema())
	return scan, qualifier, nil
}

func (p *Planner) planSelect(s *sqlast.SelectStmt) (logical.Plan, error) {
	plan, _, err := p.resolveTable(s.From)
	if err != nil {
		return nil, err
	}
	var cur logical.Plan = plan

	// A comma-separated FROM list (FROM a, b, c) is a cross join of
	// every named table; any equi-join condition between them lives in
	// the WHERE clause and is applied by the Filter built below, same
	// as for an explicit "FROM a CROSS JOIN b WHERE a.k = b.k".
	for _, extra := range s.FromExtra {
		extraScan, _, err := p.resolveTable(extra)
		if err != nil {
			return nil, err
		}
		cur = logical.NewCrossJoin(cur, extraScan)
	}

	for _, j := range s.Joins {
		rightScan, rightQual, err := p.resolveTable(j.Table)
		if err != nil {
			return nil, err
		}
		if j.Kind == sqlast.CrossJoin {
			cur = logical.NewCrossJoin(cur, rightScan)
			continue
		}
		kind := joinKind(j.Kind)
		leftKey, rightKey, residual, err := splitJoinOn(j.On, cur.Schema(), rightScan.Schema(), rightQual)
		if err != nil {
			return nil, err
		}
		cur = logical.NewJoin(cur, rightScan, kind, leftKey, rightKey, residual)
	}

	if s.Where != nil {
		pred, err := lowerExpr(s.Where)
		if err != nil {
			return nil, err
		}
		cur = logical.NewFilter(cur, pred)
	}

	hasAgg := len(s.GroupBy) > 0 || selectHasAggregate(s.Items)
	if hasAgg {
		groupExprs, aggExprs, err := splitAggregates(s.Items, s.GroupBy)
		if err != nil {
			return nil, err
		}
		agg, err := logical.NewAggregate(cur, groupExprs, aggExprs)
		if err != nil {
			return nil, err
		}
		cur = agg
	} else {
		exprs, err := expandProjection(s.Items, cur)
		if err != nil {
			return nil, err
		}
		proj, err := logical.NewProjection(cur, exprs)
		if err != nil {
			return nil, err
		}
		cur = proj
	}

	if s.Limit != nil {
		cur = logical.NewLimit(cur, *s.Limit)
	}
	if s.Offset != nil {
		cur = logical.NewOffset(cur, *s.Offset)
	}

	return cur, nil
}

func joinKind(k sqlast.JoinKind) logical.JoinKind {
	switch k {
	case sqlast.LeftJoin:
		return logical.LeftJoin
	case sqlast.RightJoin:
		return logical.RightJoin
	default:
		return logical.InnerJoin
	}
}

// splitJoinOn walks the ON clause's AND-conjuncts (per spec.md §4.3's
// key/residual split), finds the first conjunct that equates a column
// from the left side with a column from the right side, and ANDs every
// other conjunct together into a residual filter that the hash join
// evaluates against each candidate joined row while probing.
func splitJoinOn(on sqlast.Expr, leftSchema, rightSchema schema.Schema, rightQualifier string) (*logical.Column, *logical.Column, logical.Expr, error) {
	conjuncts := flattenAnd(on)

	var leftKey, rightKey *logical.Column
	var residualParts []sqlast.Expr

	for _, c := range conjuncts {
		if leftKey == nil {
			if lk, rk, ok := asEquiJoinKey(c, leftSchema, rightSchema); ok {
				leftKey, rightKey = lk, rk
				continue
			}
		}
		residualParts = append(residualParts, c)
	}

	if leftKey == nil {
		return nil, nil, nil, engineerr.New(engineerr.PlanError, "ON clause for join with %s must contain an equality between the two tables", rightQualifier)
	}

	var residual logical.Expr
	for _, part := range residualParts {
		e, err := lowerExpr(part)
		if err != nil {
			return nil, nil, nil, err
		}
		if residual == nil {
			residual = e
		} else {
			residual = &logical.BinaryExpr{Op: logical.OpAnd, Left: residual, Right: e}
		}
	}

	return leftKey, rightKey, residual, nil
}

func flattenAnd(e sqlast.Expr) []sqlast.Expr {
	if b, ok := e.(*sqlast.BinaryExpr); ok && b.Op == sqlast.BinAnd {
		return append(flattenAnd(b.Left), flattenAnd(b.Right)...)
	}
	return []sqlast.Expr{e}
}

func asEquiJoinKey(e sqlast.Expr, leftSchema, rightSchema schema.Schema) (*logical.Column, *logical.Column, bool) {
	b, ok := e.(*sqlast.BinaryExpr)
	if !ok || b.Op != sqlast.BinEq {
		return nil, nil, false
	}
	lc, lok := b.Left.(*sqlast.ColumnExpr)
	rc, rok := b.Right.(*sqlast.ColumnExpr)
	if !lok || !rok {
		return nil, nil, false
	}
	if leftSchema.IndexOf(lc.Ident.Qualifier, lc.Ident.Name) >= 0 && rightSchema.IndexOf(rc.Ident.Qualifier, rc.Ident.Name) >= 0 {
		return &logical.Column{Qualifier: lc.Ident.Qualifier, Name: lc.Ident.Name}, &logical.Column{Qualifier: rc.Ident.Qualifier, Name: rc.Ident.Name}, true
	}
	if leftSchema.IndexOf(rc.Ident.Qualifier, rc.Ident.Name) >= 0 && rightSchema.IndexOf(lc.Ident.Qualifier, lc.Ident.Name) >= 0 {
		return &logical.Column{Qualifier: rc.Ident.Qualifier, Name: rc.Ident.Name}, &logical.Column{Qualifier: lc.Ident.Qualifier, Name: lc.Ident.Name}, true
	}
	return nil, nil, false
}

func selectHasAggregate(items []sqlast.SelectItem) bool {
	for _, it := range items {
		if containsAggregate(it.Expr) {
			return true
		}
	}
	return false
}

func containsAggregate(e sqlast.Expr) bool {
	switch v := e.(type) {
	case *sqlast.FuncCallExpr:
		return isAggregateFuncName(v.Name)
	case *sqlast.BinaryExpr:
		return containsAggregate(v.Left) || containsAggregate(v.Right)
	default:
		return false
	}
}

func isAggregateFuncName(name string) bool {
	switch strings.ToUpper(name) {
	case "COUNT", "SUM", "AVG", "MIN", "MAX":
		return true
	default:
		return false
	}
}

func splitAggregates(items []sqlast.SelectItem, groupBy []sqlast.Expr) ([]logical.Expr, []*logical.AggregateExpr, error) {
	var groupExprs []logical.Expr
	for _, g := range groupBy {
		e, err := lowerExpr(g)
		if err != nil {
			return nil, nil, err
		}
		groupExprs = append(groupExprs, e)
	}

	var aggExprs []*logical.AggregateExpr
	for _, it := range items {
		// A bare reference to the single group key is already the
		// Aggregate's first output column (it comes first whatever its
		// position in the select list), so it adds no aggregate.
		if col, isCol := it.Expr.(*sqlast.ColumnExpr); isCol && len(groupBy) == 1 {
			if g, isGCol := groupBy[0].(*sqlast.ColumnExpr); isGCol &&
				normalizeIdent(g.Ident.Name) == normalizeIdent(col.Ident.Name) &&
				(col.Ident.Qualifier == "" || g.Ident.Qualifier == "" ||
					normalizeIdent(g.Ident.Qualifier) == normalizeIdent(col.Ident.Qualifier)) {
				continue
			}
		}
		fc, ok := it.Expr.(*sqlast.FuncCallExpr)
		if !ok || !isAggregateFuncName(fc.Name) {
			return nil, nil, engineerr.New(engineerr.PlanError, "GROUP BY query select list must consist of aggregate functions and the group key")
		}
		if len(fc.Args) != 1 {
			return nil, nil, engineerr.New(engineerr.PlanError, "aggregate function %s takes exactly one argument, got %d", fc.Name, len(fc.Args))
		}
		var arg logical.Expr
		if _, isStar := fc.Args[0].(*sqlast.StarExpr); isStar {
			arg = &logical.Wildcard{}
		} else {
			e, err := lowerExpr(fc.Args[0])
			if err != nil {
				return nil, nil, err
			}
			arg = e
		}
		aggExprs = append(aggExprs, &logical.AggregateExpr{Func: aggregateFuncOf(fc.Name), Arg: arg})
	}
	return groupExprs, aggExprs, nil
}

func aggregateFuncOf(name string) logical.AggregateFunc {
	switch strings.ToUpper(name) {
	case "SUM":
		return logical.AggSum
	case "AVG":
		return logical.AggAvg
	case "MIN":
		return logical.AggMin
	case "MAX":
		return logical.AggMax
	default:
		return logical.AggCount
	}
}

// expandProjection lowers each select item, expanding a bare "*" or
// "t.*" wildcard into one Column per matching input field.
func expandProjection(items []sqlast.SelectItem, input logical.Plan) ([]logical.Expr, error) {
	if len(items) == 0 {
		return expandWildcard("", input), nil
	}
	var exprs []logical.Expr
	for _, it := range items {
		if star, ok := it.Expr.(*sqlast.StarExpr); ok {
			exprs = append(exprs, expandWildcard(star.Qualifier, input)...)
			continue
		}
		e, err := lowerExpr(it.Expr)
		if err != nil {
			return nil, err
		}
		if it.Alias != "" {
			e = &logical.AliasExpr{Expr: e, Alias: it.Alias}
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func expandWildcard(qualifier string, input logical.Plan) []logical.Expr {
	var exprs []logical.Expr
	for _, f := range input.Schema().Fields {
		if qualifier != "" && f.Qualifier != normalizeIdent(qualifier) {
			continue
		}
		exprs = append(exprs, &logical.Column{Qualifier: f.Qualifier, Name: f.Name})
	}
	return exprs
}

func lowerExpr(e sqlast.Expr) (logical.Expr, error) {
	switch v := e.(type) {
	case *sqlast.ColumnExpr:
		return &logical.Column{Qualifier: normalizeIdent(v.Ident.Qualifier), Name: normalizeIdent(v.Ident.Name)}, nil
	case *sqlast.LiteralExpr:
		return lowerLiteral(v)
	case *sqlast.BinaryExpr:
		left, err := lowerExpr(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := lowerExpr(v.Right)
		if err != nil {
			return nil, err
		}
		return &logical.BinaryExpr{Op: lowerBinOp(v.Op), Left: left, Right: right}, nil
	case *sqlast.FuncCallExpr:
		if isAggregateFuncName(v.Name) {
			return nil, engineerr.New(engineerr.PlanError, "aggregate function %s is only valid in a GROUP BY query's select list", v.Name)
		}
		return nil, engineerr.New(engineerr.NoMatchFunction, "unknown function %s", v.Name)
	case *sqlast.StarExpr:
		return &logical.Wildcard{Qualifier: normalizeIdent(v.Qualifier)}, nil
	default:
		return nil, engineerr.New(engineerr.NotSupported, "unsupported expression %T", e)
	}
}

func lowerBinOp(op sqlast.BinOp) logical.BinaryOp {
	switch op {
	case sqlast.BinAnd:
		return logical.OpAnd
	case sqlast.BinOr:
		return logical.OpOr
	case sqlast.BinEq:
		return logical.OpEq
	case sqlast.BinNotEq:
		return logical.OpNotEq
	case sqlast.BinLt:
		return logical.OpLt
	case sqlast.BinLtEq:
		return logical.OpLtEq
	case sqlast.BinGt:
		return logical.OpGt
	case sqlast.BinGtEq:
		return logical.OpGtEq
	case sqlast.BinPlus:
		return logical.OpPlus
	case sqlast.BinMinus:
		return logical.OpMinus
	case sqlast.BinMul:
		return logical.OpMultiply
	case sqlast.BinDiv:
		return logical.OpDivide
	case sqlast.BinMod:
		return logical.OpModulo
	default:
		return logical.OpEq
	}
}

func lowerLiteral(v *sqlast.LiteralExpr) (logical.Expr, error) {
	sv, err := literalToScalar(v, schema.Utf8)
	if err != nil {
		return nil, err
	}
	return &logical.Literal{Value: sv}, nil
}

// literalToScalar converts a parsed literal to a typed scalar. nullType
// is used only for a NULL literal, whose own syntax carries no type
// information; callers that know the target column's type (INSERT,
// UPDATE) pass it so the resulting null scalar reports that type.
func literalToScalar(v *sqlast.LiteralExpr, nullType schema.DataType) (columnar.ScalarValue, error) {
	switch v.Kind {
	case sqlast.LitInt:
		n, err := strconv.ParseInt(v.Text, 10, 64)
		if err != nil {
			return columnar.ScalarValue{}, engineerr.Wrap(engineerr.PlanError, err, "invalid integer literal %q", v.Text)
		}
		return columnar.NewInt64Scalar(n), nil
	case sqlast.LitFloat:
		f, err := strconv.ParseFloat(v.Text, 64)
		if err != nil {
			return columnar.ScalarValue{}, engineerr.Wrap(engineerr.PlanError, err, "invalid float literal %q", v.Text)
		}
		return columnar.NewFloat64Scalar(f), nil
	case sqlast.LitString:
		return columnar.NewUtf8Scalar(v.Text), nil
	case sqlast.LitBool:
		return columnar.NewBoolScalar(v.Text == "true"), nil
	case sqlast.LitNull:
		return columnar.NewNullScalar(nullType), nil
	default:
		return columnar.ScalarValue{}, engineerr.New(engineerr.PlanError, "unknown literal kind")
	}
}

func (p *Planner) planCreateTable(s *sqlast.CreateTableStmt) (logical.Plan, error) {
	fields := make([]schema.Field, len(s.Columns))
	for i, c := range s.Columns {
		dt, err := dataTypeOf(c.Type)
		if err != nil {
			return nil, err
		}
		fields[i] = schema.Field{Name: normalizeIdent(c.Name), Type: dt, Nullable: c.Nullable}
	}
	return logical.NewCreateTable(normalizeIdent(s.Table), schema.New(fields...)), nil
}

func dataTypeOf(name string) (schema.DataType, error) {
	switch name {
	case "BOOLEAN":
		return schema.Boolean, nil
	case "INT64":
		return schema.Int64, nil
	case "UINT64":
		return schema.UInt64, nil
	case "FLOAT64":
		return schema.Float64, nil
	case "UTF8":
		return schema.Utf8, nil
	default:
		return 0, engineerr.New(engineerr.NotSupported, "unknown column type %q", name)
	}
}

func (p *Planner) planInsert(s *sqlast.InsertStmt) (logical.Plan, error) {
	name := normalizeIdent(s.Table)
	src, err := p.catalog.GetTable(name)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	tableSchema := src.Schema()

	colOrder := s.Columns
	if colOrder == nil {
		colOrder = make([]string, tableSchema.Len())
		for i, f := range tableSchema.Fields {
			colOrder[i] = f.Name
		}
	}

	rows := make([][]*logical.Literal, len(s.Rows))
	for ri, row := range s.Rows {
		if len(row) != len(colOrder) {
			return nil, engineerr.New(engineerr.PlanError, "INSERT row %d has %d values, expected %d", ri, len(row), len(colOrder))
		}
		lits := make([]*logical.Literal, tableSchema.Len())
		for ci, colName := range colOrder {
			idx := tableSchema.IndexOf("", normalizeIdent(colName))
			if idx < 0 {
				return nil, engineerr.ColumnNotExistsError(colName)
			}
			lit, ok := row[ci].(*sqlast.LiteralExpr)
			if !ok {
				return nil, engineerr.New(engineerr.NotSupported, "INSERT values must be literals")
			}
			sv, err := literalToScalar(lit, tableSchema.Fields[idx].Type)
			if err != nil {
				return nil, err
			}
			lits[idx] = &logical.Literal{Value: sv}
		}
		for idx, f := range tableSchema.Fields {
			if lits[idx] == nil {
				lits[idx] = &logical.Literal{Value: columnar.NewNullScalar(f.Type)}
			}
		}
		rows[ri] = lits
	}

	return logical.NewInsert(name, tableSchema, rows), nil
}

func (p *Planner) planUpdate(s *sqlast.UpdateStmt) (logical.Plan, error) {
	name := normalizeIdent(s.Table)
	src, err := p.catalog.GetTable(name)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	scan := logical.NewTableScan(name, src.Schema())

	assignments := make([]logical.Assignment, len(s.Assignments))
	for i, a := range s.Assignments {
		idx := scan.Schema().IndexOf("", normalizeIdent(a.Column))
		if idx < 0 {
			return nil, engineerr.ColumnNotExistsError(a.Column)
		}
		lit, ok := a.Value.(*sqlast.LiteralExpr)
		if !ok {
			return nil, engineerr.New(engineerr.NotSupported, "UPDATE SET values must be literals")
		}
		f, _ := scan.Schema().Field(idx)
		sv, err := literalToScalar(lit, f.Type)
		if err != nil {
			return nil, err
		}
		assignments[i] = logical.Assignment{Column: normalizeIdent(a.Column), Value: &logical.Literal{Value: sv}}
	}

	// spec.md §4.3 rule 7: UPDATE without a WHERE clause is rejected
	// rather than silently rewriting every row.
	if s.Where == nil {
		return nil, engineerr.New(engineerr.NotImplemented, "UPDATE without a WHERE clause")
	}
	predicate, err := lowerExpr(s.Where)
	if err != nil {
		return nil, err
	}

	return logical.NewUpdate(name, scan, predicate, assignments), nil
}

func (p *Planner) planDelete(s *sqlast.DeleteStmt) (logical.Plan, error) {
	name := normalizeIdent(s.Table)
	src, err := p.catalog.GetTable(name)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	scan := logical.NewTableScan(name, src.Schema())

	// spec.md §4.3 rule 9: DELETE without a WHERE clause is rejected
	// rather than silently clearing the whole table.
	if s.Where == nil {
		return nil, engineerr.New(engineerr.NotImplemented, "DELETE without a WHERE clause")
	}
	predicate, err := lowerExpr(s.Where)
	if err != nil {
		return nil, err
	}

	return logical.NewDelete(name, scan, predicate), nil
}
