package logical

import (
	"fmt"
	"strings"

	"github.com/coldframe/coldframe/pkg/schema"
)

// Plan is one node of the logical plan tree. Schema is derived from the
// node's fields and inputs each time it is called.
type Plan interface {
	Schema() schema.Schema
	Children() []Plan
	String() string
}

// TableScan reads a registered table, optionally narrowed to a column
// projection (filled in by the optimizer's projection push-down rule,
// not by the planner). TableName is the qualifier rows are exposed
// under (an alias, if the statement gave one); CatalogName is always
// the real catalog lookup key, so an aliased scan can still be
// resolved back to its source table at lowering time.
type TableScan struct {
	TableName      string
	CatalogName    string
	TableSchema    schema.Schema
	ProjectedIndex []int // nil means "all columns"
}

func NewTableScan(tableName string, s schema.Schema) *TableScan {
	return &TableScan{TableName: tableName, CatalogName: tableName, TableSchema: s.WithQualifier(tableName)}
}

// NewAliasedTableScan builds a scan whose rows are qualified by alias
// but whose data still comes from catalogName.
func NewAliasedTableScan(catalogName, alias string, s schema.Schema) *TableScan {
	return &TableScan{TableName: alias, CatalogName: catalogName, TableSchema: s.WithQualifier(alias)}
}

func (s *TableScan) Schema() schema.Schema {
	if s.ProjectedIndex == nil {
		return s.TableSchema
	}
	return s.TableSchema.Select(s.ProjectedIndex)
}
func (s *TableScan) Children() []Plan { return nil }
func (s *TableScan) String() string   { return fmt.Sprintf("TableScan: %s", s.TableName) }

// Filter keeps only the rows for which Predicate evaluates true,
// propagating the input's schema unchanged.
type Filter struct {
	Input     Plan
	Predicate Expr
}

func NewFilter(input Plan, predicate Expr) *Filter {
	return &Filter{Input: input, Predicate: predicate}
}

func (f *Filter) Schema() schema.Schema { return f.Input.Schema() }
func (f *Filter) Children() []Plan      { return []Plan{f.Input} }
func (f *Filter) String() string        { return fmt.Sprintf("Filter: %s", f.Predicate) }

// Projection evaluates Exprs against the input, producing one output
// column per expression (after Wildcard expansion, so this node never
// holds an unexpanded Wildcard).
type Projection struct {
	Input Plan
	Exprs []Expr
}

func NewProjection(input Plan, exprs []Expr) (*Projection, error) {
	for _, e := range exprs {
		if _, ok := e.(*Wildcard); ok {
			return nil, fmt.Errorf("logical: projection exprs must have wildcards expanded first")
		}
	}
	return &Projection{Input: input, Exprs: exprs}, nil
}

func (p *Projection) Schema() schema.Schema {
	fields := make([]schema.Field, len(p.Exprs))
	for i, e := range p.Exprs {
		f, err := e.ToField(p.Input)
		if err != nil {
			// ToField only fails for malformed trees the planner should
			// never produce; a zero-value field keeps Schema() total.
			f = schema.Field{Name: e.String()}
		}
		fields[i] = f
	}
	return schema.New(fields...)
}
func (p *Projection) Children() []Plan { return []Plan{p.Input} }
func (p *Projection) String() string   { return fmt.Sprintf("Projection: %s", ExprListString(p.Exprs)) }

// JoinKind is the closed set of join types spec.md §4.1 names.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
	RightJoin
)

func (k JoinKind) String() string {
	switch k {
	case InnerJoin:
		return "Inner"
	case LeftJoin:
		return "Left"
	case RightJoin:
		return "Right"
	default:
		return "?"
	}
}

// Join is an equi-join on a single key column pair, with an optional
// residual filter for any ON-clause conjuncts that aren't equalities
// between a left and a right column.
type Join struct {
	Left, Right    Plan
	Kind           JoinKind
	LeftKey        *Column
	RightKey       *Column
	ResidualFilter Expr // nil when the ON clause is a pure equi-join
}

func NewJoin(left, right Plan, kind JoinKind, leftKey, rightKey *Column, residual Expr) *Join {
	return &Join{Left: left, Right: right, Kind: kind, LeftKey: leftKey, RightKey: rightKey, ResidualFilter: residual}
}

func (j *Join) Schema() schema.Schema { return schema.Join(j.Left.Schema(), j.Right.Schema()) }
func (j *Join) Children() []Plan      { return []Plan{j.Left, j.Right} }
func (j *Join) String() string {
	return fmt.Sprintf("Join: %s.%s = %s.%s (%s)", j.LeftKey.Qualifier, j.LeftKey.Name, j.RightKey.Qualifier, j.RightKey.Name, j.Kind)
}

// CrossJoin is the cartesian product of Left and Right, with no join
// predicate.
type CrossJoin struct {
	Left, Right Plan
}

func NewCrossJoin(left, right Plan) *CrossJoin { return &CrossJoin{Left: left, Right: right} }

func (c *CrossJoin) Schema() schema.Schema { return schema.Join(c.Left.Schema(), c.Right.Schema()) }
func (c *CrossJoin) Children() []Plan      { return []Plan{c.Left, c.Right} }
func (c *CrossJoin) String() string        { return "CrossJoin" }

// Aggregate computes zero or one group-by key and one or more
// aggregate expressions over the input. spec.md restricts GroupExprs
// to at most one expression (see DESIGN.md's Open Question decision).
type Aggregate struct {
	Input      Plan
	GroupExprs []Expr
	AggExprs   []*AggregateExpr
}

func NewAggregate(input Plan, groupExprs []Expr, aggExprs []*AggregateExpr) (*Aggregate, error) {
	if len(groupExprs) > 1 {
		return nil, fmt.Errorf("logical: GROUP BY supports at most one key expression, got %d", len(groupExprs))
	}
	return &Aggregate{Input: input, GroupExprs: groupExprs, AggExprs: aggExprs}, nil
}

func (a *Aggregate) Schema() schema.Schema {
	fields := make([]schema.Field, 0, len(a.GroupExprs)+len(a.AggExprs))
	for _, e := range a.GroupExprs {
		f, err := e.ToField(a.Input)
		if err != nil {
			f = schema.Field{Name: e.String()}
		}
		fields = append(fields, f)
	}
	for _, e := range a.AggExprs {
		f, err := e.ToField(a.Input)
		if err != nil {
			f = schema.Field{Name: e.String()}
		}
		fields = append(fields, f)
	}
	return schema.New(fields...)
}
func (a *Aggregate) Children() []Plan { return []Plan{a.Input} }
func (a *Aggregate) String() string {
	groups := ExprListString(a.GroupExprs)
	aggs := make([]Expr, len(a.AggExprs))
	for i, e := range a.AggExprs {
		aggs[i] = e
	}
	return fmt.Sprintf("Aggregate: group=[%s], aggr=[%s]", groups, ExprListString(aggs))
}

// Limit caps the number of output rows to N.
type Limit struct {
	Input Plan
	N     int
}

func NewLimit(input Plan, n int) *Limit { return &Limit{Input: input, N: n} }

func (l *Limit) Schema() schema.Schema { return l.Input.Schema() }
func (l *Limit) Children() []Plan      { return []Plan{l.Input} }
func (l *Limit) String() string        { return fmt.Sprintf("Limit: %d", l.N) }

// Offset skips the first N rows of the input.
type Offset struct {
	Input Plan
	N     int
}

func NewOffset(input Plan, n int) *Offset { return &Offset{Input: input, N: n} }

func (o *Offset) Schema() schema.Schema { return o.Input.Schema() }
func (o *Offset) Children() []Plan      { return []Plan{o.Input} }
func (o *Offset) String() string        { return fmt.Sprintf("Offset: %d", o.N) }

// Assignment is a single "column = literal" pair in an UPDATE
// statement; spec.md restricts the right-hand side to literals (see
// DESIGN.md's Open Question decision).
type Assignment struct {
	Column string
	Value  *Literal
}

// Update rebuilds TableName's batches, applying Assignments to every
// row for which Predicate (possibly nil, meaning "every row") holds.
type Update struct {
	TableName   string
	Input       Plan
	Predicate   Expr
	Assignments []Assignment
}

func NewUpdate(tableName string, input Plan, predicate Expr, assignments []Assignment) *Update {
	return &Update{TableName: tableName, Input: input, Predicate: predicate, Assignments: assignments}
}

func (u *Update) Schema() schema.Schema { return u.Input.Schema() }
func (u *Update) Children() []Plan      { return []Plan{u.Input} }
func (u *Update) String() string        { return fmt.Sprintf("Update: %s", u.TableName) }

// Insert appends Rows (each a literal per column, in schema order) to
// TableName.
type Insert struct {
	TableName   string
	TableSchema schema.Schema
	Rows        [][]*Literal
}

func NewInsert(tableName string, s schema.Schema, rows [][]*Literal) *Insert {
	return &Insert{TableName: tableName, TableSchema: s, Rows: rows}
}

func (i *Insert) Schema() schema.Schema { return i.TableSchema }
func (i *Insert) Children() []Plan      { return nil }
func (i *Insert) String() string {
	return fmt.Sprintf("Insert: %s (%d rows)", i.TableName, len(i.Rows))
}

// Delete removes every row of TableName for which Predicate (possibly
// nil, meaning "every row") holds.
type Delete struct {
	TableName string
	Input     Plan
	Predicate Expr
}

func NewDelete(tableName string, input Plan, predicate Expr) *Delete {
	return &Delete{TableName: tableName, Input: input, Predicate: predicate}
}

func (d *Delete) Schema() schema.Schema { return d.Input.Schema() }
func (d *Delete) Children() []Plan      { return []Plan{d.Input} }
func (d *Delete) String() string        { return fmt.Sprintf("Delete: %s", d.TableName) }

// CreateTable registers a new, empty table with the given schema.
type CreateTable struct {
	TableName   string
	TableSchema schema.Schema
}

func NewCreateTable(tableName string, s schema.Schema) *CreateTable {
	return &CreateTable{TableName: tableName, TableSchema: s.WithQualifier(tableName)}
}

func (c *CreateTable) Schema() schema.Schema { return c.TableSchema }
func (c *CreateTable) Children() []Plan      { return nil }
func (c *CreateTable) String() string        { return fmt.Sprintf("CreateTable: %s", c.TableName) }

// PrintPlan renders an indented tree, one line per node, grounded on
// the teacher's PrintPlan helper (pkg/ppl/planner/logical_plan.go).
func PrintPlan(p Plan, depth int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(p.String())
	b.WriteString("\n")
	for _, child := range p.Children() {
		b.WriteString(PrintPlan(child, depth+1))
	}
	return b.String()
}
