package physical

import (
	"fmt"
	"strings"

	"github.com/coldframe/coldframe/pkg/datasource"
	"github.com/coldframe/coldframe/pkg/logical"
	"github.com/coldframe/coldframe/pkg/schema"
)

// Plan is one physical plan node. Physical nodes hold resolved
// (index-based) expressions; pkg/exec attaches the actual execution
// behavior to each variant.
type Plan interface {
	Schema() schema.Schema
	Children() []Plan
	String() string
}

// Scan reads a table source, optionally narrowed to Projection column
// indices.
type Scan struct {
	Source     datasource.TableSource
	TableName  string
	ScanSchema schema.Schema
	Projection []int
}

func (s *Scan) Schema() schema.Schema { return s.ScanSchema }
func (s *Scan) Children() []Plan      { return nil }
func (s *Scan) String() string        { return fmt.Sprintf("Scan: %s", s.TableName) }

// Filter keeps rows where Predicate evaluates true.
type Filter struct {
	Input     Plan
	Predicate Expr
}

func (f *Filter) Schema() schema.Schema { return f.Input.Schema() }
func (f *Filter) Children() []Plan      { return []Plan{f.Input} }
func (f *Filter) String() string        { return fmt.Sprintf("Filter: %s", f.Predicate) }

// Projection evaluates Exprs against the input.
type Projection struct {
	Input       Plan
	Exprs       []Expr
	OutSchema   schema.Schema
}

func (p *Projection) Schema() schema.Schema { return p.OutSchema }
func (p *Projection) Children() []Plan      { return []Plan{p.Input} }
func (p *Projection) String() string {
	parts := make([]string, len(p.Exprs))
	for i, e := range p.Exprs {
		parts[i] = e.String()
	}
	return fmt.Sprintf("Projection: %s", strings.Join(parts, ", "))
}

// Join is a hash-join on a single key column pair.
type Join struct {
	Left, Right        Plan
	Kind                logical.JoinKind
	LeftKeyIdx          int
	RightKeyIdx         int
	ResidualFilter      Expr // evaluated against the joined row, nil if none
	OutSchema           schema.Schema
}

func (j *Join) Schema() schema.Schema { return j.OutSchema }
func (j *Join) Children() []Plan      { return []Plan{j.Left, j.Right} }
func (j *Join) String() string        { return fmt.Sprintf("Join(%s)", j.Kind) }

// CrossJoin is the cartesian product of Left and Right.
type CrossJoin struct {
	Left, Right Plan
	OutSchema   schema.Schema
}

func (c *CrossJoin) Schema() schema.Schema { return c.OutSchema }
func (c *CrossJoin) Children() []Plan      { return []Plan{c.Left, c.Right} }
func (c *CrossJoin) String() string        { return "CrossJoin" }

// AggregateFunc mirrors logical.AggregateFunc at the physical layer.
type AggregateFunc = logical.AggregateFunc

// AggregateExpr is one aggregate computation: Func applied to Arg (nil
// for COUNT(*)).
type AggregateExpr struct {
	Func AggregateFunc
	Arg  Expr
	Name string
}

// Aggregate computes zero or one group-by key (GroupExpr nil means a
// single global group) and the AggExprs over the input.
type Aggregate struct {
	Input     Plan
	GroupExpr Expr // nil for a single global group
	AggExprs  []AggregateExpr
	OutSchema schema.Schema
}

func (a *Aggregate) Schema() schema.Schema { return a.OutSchema }
func (a *Aggregate) Children() []Plan      { return []Plan{a.Input} }
func (a *Aggregate) String() string        { return "Aggregate" }

// Limit caps output to N rows.
type Limit struct {
	Input Plan
	N     int
}

func (l *Limit) Schema() schema.Schema { return l.Input.Schema() }
func (l *Limit) Children() []Plan      { return []Plan{l.Input} }
func (l *Limit) String() string        { return fmt.Sprintf("Limit: %d", l.N) }

// Offset skips the first N rows.
type Offset struct {
	Input Plan
	N     int
}

func (o *Offset) Schema() schema.Schema { return o.Input.Schema() }
func (o *Offset) Children() []Plan      { return []Plan{o.Input} }
func (o *Offset) String() string        { return fmt.Sprintf("Offset: %d", o.N) }

// Assignment is one resolved "column index = literal expr" pair.
type Assignment struct {
	ColumnIndex int
	Value       Expr
}

// Update rebuilds TableName's batches.
type Update struct {
	TableName   string
	Input       Plan
	Predicate   Expr // nil means every row
	Assignments []Assignment
}

func (u *Update) Schema() schema.Schema { return u.Input.Schema() }
func (u *Update) Children() []Plan      { return []Plan{u.Input} }
func (u *Update) String() string        { return fmt.Sprintf("Update: %s", u.TableName) }

// Insert appends Rows to TableName. Input scans the table's existing
// batches, onto which the executed Insert appends one new batch holding
// every inserted row (mirroring original_source/src/physical_plan/insert.rs's
// insert_into_table, which appends onto the scan it was handed rather
// than replacing it).
type Insert struct {
	TableName   string
	TableSchema schema.Schema
	Input       Plan
	Rows        [][]Expr
}

func (i *Insert) Schema() schema.Schema { return i.TableSchema }
func (i *Insert) Children() []Plan      { return []Plan{i.Input} }
func (i *Insert) String() string        { return fmt.Sprintf("Insert: %s", i.TableName) }

// Delete removes rows of TableName matching Predicate (nil means every
// row).
type Delete struct {
	TableName string
	Input     Plan
	Predicate Expr // nil means every row
}

func (d *Delete) Schema() schema.Schema { return d.Input.Schema() }
func (d *Delete) Children() []Plan      { return []Plan{d.Input} }
func (d *Delete) String() string        { return fmt.Sprintf("Delete: %s", d.TableName) }

// CreateTable registers a new, empty table.
type CreateTable struct {
	TableName   string
	TableSchema schema.Schema
}

func (c *CreateTable) Schema() schema.Schema { return c.TableSchema }
func (c *CreateTable) Children() []Plan      { return nil }
func (c *CreateTable) String() string        { return fmt.Sprintf("CreateTable: %s", c.TableName) }

// PrintPlan renders an indented tree, mirroring logical.PrintPlan.
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
