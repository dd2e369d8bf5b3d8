// Package sqlast defines the parsed SQL statement tree pkg/sqlparse
// produces and pkg/planner consumes. Node content is untyped text and
// literal values; all type resolution happens later, against a real
// schema, in pkg/planner.
package sqlast

// Statement is any top-level SQL statement.
type Statement interface {
	statementNode()
}

// Ident is a possibly-qualified identifier, e.g. "t.id" or "id".
type Ident struct {
	Qualifier string
	Name      string
}

// SelectItem is one expression in a SELECT list, with an optional
// AS-alias.
type SelectItem struct {
	Expr  Expr
	Alias string
}

// TableRef names a FROM-clause table, with an optional alias.
type TableRef struct {
	Name  string
	Alias string
}

// JoinKind mirrors logical.JoinKind at the syntax level.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
	RightJoin
	CrossJoin
)

// JoinClause is one JOIN in a FROM clause.
type JoinClause struct {
	Kind  JoinKind
	Table TableRef
	On    Expr // nil for CROSS JOIN
}

// SelectStmt is a SELECT query. FromExtra holds any further tables
// named after a comma in the FROM clause (FROM a, b, c); the planner
// cross-joins each onto the plan chain in order, leaving any equi-join
// condition between them to the existing Where filter.
type SelectStmt struct {
	Items     []SelectItem // empty means "SELECT *"
	From      TableRef
	FromExtra []TableRef
	Joins     []JoinClause
	Where     Expr
	GroupBy   []Expr
	Limit     *int
	Offset    *int
}

func (*SelectStmt) statementNode() {}

// ColumnDef is one column in a CREATE TABLE statement.
type ColumnDef struct {
	Name     string
	Type     string // "BOOLEAN", "INT64", "UINT64", "FLOAT64", "UTF8"
	Nullable bool
}

// CreateTableStmt is a CREATE TABLE statement.
type CreateTableStmt struct {
	Table   string
	Columns []ColumnDef
}

func (*CreateTableStmt) statementNode() {}

// DropTableStmt is a DROP TABLE statement, naming one or more
// comma-separated tables (DROP TABLE a, b).
type DropTableStmt struct {
	Tables []string
}

func (*DropTableStmt) statementNode() {}

// InsertStmt is an INSERT INTO ... VALUES statement. Columns is nil
// when no explicit column list was given (values are matched to the
// table's schema in declared order).
type InsertStmt struct {
	Table   string
	Columns []string
	Rows    [][]Expr // each inner slice holds only Literal expressions
}

func (*InsertStmt) statementNode() {}

// Assignment is one "column = expr" pair in an UPDATE's SET clause.
type Assignment struct {
	Column string
	Value  Expr
}

// UpdateStmt is an UPDATE statement.
type UpdateStmt struct {
	Table       string
	Assignments []Assignment
	Where       Expr
}

func (*UpdateStmt) statementNode() {}

// DeleteStmt is a DELETE FROM statement.
type DeleteStmt struct {
	Table string
	Where Expr
}

func (*DeleteStmt) statementNode() {}

// ShowTablesStmt is the supplemental SHOW TABLES introspection command.
type ShowTablesStmt struct{}

func (*ShowTablesStmt) statementNode() {}

// ExplainStmt wraps another statement, asking the driver to print its
// plan instead of executing it.
type ExplainStmt struct {
	Physical bool
	Inner    Statement
}

func (*ExplainStmt) statementNode() {}
