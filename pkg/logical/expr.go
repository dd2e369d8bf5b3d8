// Package logical defines the logical expression and plan IR: a typed
// tree produced by pkg/planner from a parsed SQL statement, consumed by
// pkg/optimizer and lowered to a physical plan by pkg/physexec.
package logical

import (
	"fmt"
	"strings"

	"github.com/coldframe/coldframe/pkg/columnar"
	"github.com/coldframe/coldframe/pkg/schema"
)

// Expr is one node of a logical expression tree. ToField answers "what
// column would this expression produce, if evaluated against a plan
// with this input schema" — the mechanism that lets schema propagate
// up through Projection/Aggregate without executing anything.
type Expr interface {
	String() string
	ToField(input Plan) (schema.Field, error)
}

// Column references an input column, by name and optional qualifier.
type Column struct {
	Qualifier string
	Name      string
}

func (c *Column) String() string {
	if c.Qualifier == "" {
		return c.Name
	}
	return c.Qualifier + "." + c.Name
}

func (c *Column) ToField(input Plan) (schema.Field, error) {
	idx := input.Schema().IndexOf(c.Qualifier, c.Name)
	if idx < 0 {
		return schema.Field{}, fmt.Errorf("logical: no column %q in input schema %s", c.String(), input.Schema())
	}
	f, _ := input.Schema().Field(idx)
	return f, nil
}

// Literal is a constant value, broadcast across every row when
// evaluated.
type Literal struct {
	Value columnar.ScalarValue
}

func (l *Literal) String() string { return l.Value.String() }

func (l *Literal) ToField(input Plan) (schema.Field, error) {
	return schema.Field{Name: l.Value.String(), Type: l.Value.Type, Nullable: true}, nil
}

// BinaryOp is the closed set of binary operators a BinaryExpr can hold.
type BinaryOp int

const (
	OpAnd BinaryOp = iota
	OpOr
	OpEq
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpPlus
	OpMinus
	OpMultiply
	OpDivide
	OpModulo
)

func (op BinaryOp) String() string {
	switch op {
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpEq:
		return "="
	case OpNotEq:
		return "!="
	case OpLt:
		return "<"
	case OpLtEq:
		return "<="
	case OpGt:
		return ">"
	case OpGtEq:
		return ">="
	case OpPlus:
		return "+"
	case OpMinus:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpModulo:
		return "%"
	default:
		return "?"
	}
}

// IsComparison reports whether op always produces a Boolean result,
// used when inferring the field type a BinaryExpr projects.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpAnd, OpOr, OpEq, OpNotEq, OpLt, OpLtEq, OpGt, OpGtEq:
		return true
	default:
		return false
	}
}

// BinaryExpr is a two-operand expression: comparison, boolean
// combinator, or arithmetic.
type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("%s %s %s", b.Left, b.Op, b.Right)
}

func (b *BinaryExpr) ToField(input Plan) (schema.Field, error) {
	if b.Op.IsComparison() {
		return schema.Field{Name: b.String(), Type: schema.Boolean, Nullable: true}, nil
	}
	left, err := b.Left.ToField(input)
	if err != nil {
		return schema.Field{}, err
	}
	return schema.Field{Name: b.String(), Type: left.Type, Nullable: true}, nil
}

// AggregateFunc is the closed set of aggregate functions spec.md §4.1
// names.
type AggregateFunc int

const (
	AggCount AggregateFunc = iota
	AggSum
	AggAvg
	AggMin
	AggMax
)

func (f AggregateFunc) String() string {
	switch f {
	case AggCount:
		return "COUNT"
	case AggSum:
		return "SUM"
	case AggAvg:
		return "AVG"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	default:
		return "?"
	}
}

// AggregateExpr applies an aggregate function to an input expression
// (typically a Column, or a Wildcard for COUNT(*)).
type AggregateExpr struct {
	Func AggregateFunc
	Arg  Expr
}

func (a *AggregateExpr) String() string {
	return fmt.Sprintf("%s(%s)", a.Func, a.Arg)
}

func (a *AggregateExpr) ToField(input Plan) (schema.Field, error) {
	switch a.Func {
	case AggCount:
		return schema.Field{Name: a.String(), Type: schema.Int64, Nullable: false}, nil
	case AggAvg:
		return schema.Field{Name: a.String(), Type: schema.Float64, Nullable: true}, nil
	default:
		argField, err := a.Arg.ToField(input)
		if err != nil {
			return schema.Field{}, err
		}
		return schema.Field{Name: a.String(), Type: argField.Type, Nullable: true}, nil
	}
}

// AliasExpr renames the field another expression would produce.
type AliasExpr struct {
	Expr  Expr
	Alias string
}

func (a *AliasExpr) String() string { return fmt.Sprintf("%s AS %s", a.Expr, a.Alias) }

func (a *AliasExpr) ToField(input Plan) (schema.Field, error) {
	f, err := a.Expr.ToField(input)
	if err != nil {
		return schema.Field{}, err
	}
	f.Name = a.Alias
	f.Qualifier = ""
	return f, nil
}

// Wildcard stands for "every column of the input", expanded by the
// planner into one Column per input field before a Projection is built.
type Wildcard struct {
	Qualifier string
}

func (w *Wildcard) String() string {
	if w.Qualifier == "" {
		return "*"
	}
	return w.Qualifier + ".*"
}

func (w *Wildcard) ToField(input Plan) (schema.Field, error) {
	return schema.Field{}, fmt.Errorf("logical: wildcard must be expanded before schema resolution")
}

// ExprListString renders a comma-separated list of expressions, used by
// plan String() methods.
func ExprListString(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
