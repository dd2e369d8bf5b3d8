package sqlparse

import (
	"fmt"
	"strconv"

	"github.com/coldframe/coldframe/pkg/sqlast"
)

// Parser walks a flat token stream built by the lexer and builds a
// sqlast.Statement tree by recursive descent.
type Parser struct {
	tokens []token
	pos    int
}

// Parse tokenizes and parses a single SQL statement (an optional
// trailing semicolon is accepted and ignored).
func Parse(sql string) (sqlast.Statement, error) {
	toks, err := newLexer(sql).tokenize()
	if err != nil {
		return nil, fmt.Errorf("sqlparse: %w", err)
	}
	p := &Parser{tokens: toks}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, fmt.Errorf("sqlparse: %w", err)
	}
	p.skipPunct(";")
	if !p.atEOF() {
		return nil, fmt.Errorf("sqlparse: unexpected trailing input at token %q", p.cur().text)
	}
	return stmt, nil
}

func (p *Parser) cur() token { return p.tokens[p.pos] }

func (p *Parser) advance() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *Parser) atEOF() bool { return p.cur().kind == tokEOF }

func (p *Parser) atKeyword(kw string) bool {
	t := p.cur()
	return t.kind == tokKeyword && t.text == kw
}

func (p *Parser) atPunct(s string) bool {
	t := p.cur()
	return t.kind == tokPunct && t.text == s
}

func (p *Parser) skipPunct(s string) bool {
	if p.atPunct(s) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectKeyword(kw string) error {
	if !p.atKeyword(kw) {
		return fmt.Errorf("expected %s, got %q", kw, p.cur().text)
	}
	p.advance()
	return nil
}

func (p *Parser) expectPunct(s string) error {
	if !p.atPunct(s) {
		return fmt.Errorf("expected %q, got %q", s, p.cur().text)
	}
	p.advance()
	return nil
}

func (p *Parser) expectIdent() (string, error) {
	t := p.cur()
	if t.kind != tokIdent {
		return "", fmt.Errorf("expected identifier, got %q", t.text)
	}
	p.advance()
	return t.text, nil
}

func (p *Parser) parseStatement() (sqlast.Statement, error) {
	switch {
	case p.atKeyword("SELECT"):
		return p.parseSelect()
	case p.atKeyword("CREATE"):
		return p.parseCreateTable()
	case p.atKeyword("DROP"):
		return p.parseDropTable()
	case p.atKeyword("INSERT"):
		return p.parseInsert()
	case p.atKeyword("UPDATE"):
		return p.parseUpdate()
	case p.atKeyword("DELETE"):
		return p.parseDelete()
	case p.atKeyword("SHOW"):
		return p.parseShowTables()
	case p.atKeyword("EXPLAIN"):
		return p.parseExplain()
	default:
		return nil, fmt.Errorf("unrecognized statement starting at %q", p.cur().text)
	}
}

// --- SELECT ---

func (p *Parser) parseSelect() (*sqlast.SelectStmt, error) {
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}

	stmt := &sqlast.SelectStmt{}

	if p.atPunct("*") {
		p.advance()
	} else {
		items, err := p.parseSelectItems()
		if err != nil {
			return nil, err
		}
		stmt.Items = items
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	from, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	stmt.From = from

	for p.skipPunct(",") {
		extra, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}
		stmt.FromExtra = append(stmt.FromExtra, extra)
	}

	for p.atJoinStart() {
		j, err := p.parseJoinClause()
		if err != nil {
			return nil, err
		}
		stmt.Joins = append(stmt.Joins, j)
	}

	if p.atKeyword("WHERE") {
		p.advance()
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = w
	}

	if p.atKeyword("GROUP") {
		p.advance()
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.GroupBy = []sqlast.Expr{e}
	}

	if p.atKeyword("LIMIT") {
		p.advance()
		n, err := p.expectIntLiteral()
		if err != nil {
			return nil, err
		}
		stmt.Limit = &n
	}

	if p.atKeyword("OFFSET") {
		p.advance()
		n, err := p.expectIntLiteral()
		if err != nil {
			return nil, err
		}
		stmt.Offset = &n
	}

	return stmt, nil
}

func (p *Parser) expectIntLiteral() (int, error) {
	t := p.cur()
	if t.kind != tokNumber {
		return 0, fmt.Errorf("expected integer, got %q", t.text)
	}
	p.advance()
	n, err := strconv.Atoi(t.text)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", t.text, err)
	}
	return n, nil
}

func (p *Parser) parseSelectItems() ([]sqlast.SelectItem, error) {
	var items []sqlast.SelectItem
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.skipPunct(",") {
			break
		}
	}
	return items, nil
}

func (p *Parser) parseSelectItem() (sqlast.SelectItem, error) {
	e, err := p.parseExpr()
	if err != nil {
		return sqlast.SelectItem{}, err
	}
	item := sqlast.SelectItem{Expr: e}
	if p.atKeyword("AS") {
		p.advance()
		alias, err := p.expectIdent()
		if err != nil {
			return sqlast.SelectItem{}, err
		}
		item.Alias = alias
	}
	return item, nil
}

func (p *Parser) parseTableRef() (sqlast.TableRef, error) {
	name, err := p.expectIdent()
	if err != nil {
		return sqlast.TableRef{}, err
	}
	ref := sqlast.TableRef{Name: name}
	if p.atKeyword("AS") {
		p.advance()
		alias, err := p.expectIdent()
		if err != nil {
			return sqlast.TableRef{}, err
		}
		ref.Alias = alias
	} else if p.cur().kind == tokIdent {
		alias, _ := p.expectIdent()
		ref.Alias = alias
	}
	return ref, nil
}

func (p *Parser) atJoinStart() bool {
	return p.atKeyword("JOIN") || p.atKeyword("INNER") || p.atKeyword("LEFT") ||
		p.atKeyword("RIGHT") || p.atKeyword("CROSS")
}

func (p *Parser) parseJoinClause() (sqlast.JoinClause, error) {
	kind := sqlast.InnerJoin
	switch {
	case p.atKeyword("INNER"):
		p.advance()
	case p.atKeyword("LEFT"):
		p.advance()
		kind = sqlast.LeftJoin
	case p.atKeyword("RIGHT"):
		p.advance()
		kind = sqlast.RightJoin
	case p.atKeyword("CROSS"):
		p.advance()
		kind = sqlast.CrossJoin
	}
	if err := p.expectKeyword("JOIN"); err != nil {
		return sqlast.JoinClause{}, err
	}
	table, err := p.parseTableRef()
	if err != nil {
		return sqlast.JoinClause{}, err
	}
	jc := sqlast.JoinClause{Kind: kind, Table: table}
	if kind != sqlast.CrossJoin {
		if err := p.expectKeyword("ON"); err != nil {
			return sqlast.JoinClause{}, err
		}
		on, err := p.parseExpr()
		if err != nil {
			return sqlast.JoinClause{}, err
		}
		jc.On = on
	}
	return jc, nil
}

// --- CREATE TABLE / DROP TABLE ---

func (p *Parser) parseCreateTable() (*sqlast.CreateTableStmt, error) {
	if err := p.expectKeyword("CREATE"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}

	var cols []sqlast.ColumnDef
	for {
		colName, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		typeName, err := p.expectTypeName()
		if err != nil {
			return nil, err
		}
		nullable := true
		if p.atKeyword("NOT") {
			p.advance()
			if err := p.expectKeyword("NULL"); err != nil {
				return nil, err
			}
			nullable = false
		}
		cols = append(cols, sqlast.ColumnDef{Name: colName, Type: typeName, Nullable: nullable})
		if !p.skipPunct(",") {
			break
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return &sqlast.CreateTableStmt{Table: name, Columns: cols}, nil
}

func (p *Parser) expectTypeName() (string, error) {
	t := p.cur()
	if t.kind == tokKeyword {
		switch t.text {
		case "BOOLEAN", "INT64", "UINT64", "FLOAT64", "UTF8":
			p.advance()
			return t.text, nil
		}
	}
	return "", fmt.Errorf("expected a column type, got %q", t.text)
}

func (p *Parser) parseDropTable() (*sqlast.DropTableStmt, error) {
	if err := p.expectKeyword("DROP"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	names := []string{name}
	for p.skipPunct(",") {
		next, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		names = append(names, next)
	}
	return &sqlast.DropTableStmt{Tables: names}, nil
}

// --- INSERT ---

func (p *Parser) parseInsert() (*sqlast.InsertStmt, error) {
	if err := p.expectKeyword("INSERT"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	stmt := &sqlast.InsertStmt{Table: name}

	if p.atPunct("(") {
		p.advance()
		for {
			col, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, col)
			if !p.skipPunct(",") {
				break
			}
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
	}

	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}

	for {
		row, err := p.parseValuesRow()
		if err != nil {
			return nil, err
		}
		stmt.Rows = append(stmt.Rows, row)
		if !p.skipPunct(",") {
			break
		}
	}

	return stmt, nil
}

func (p *Parser) parseValuesRow() ([]sqlast.Expr, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var row []sqlast.Expr
	for {
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		row = append(row, lit)
		if !p.skipPunct(",") {
			break
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return row, nil
}

func (p *Parser) parseLiteral() (sqlast.Expr, error) {
	t := p.cur()
	switch {
	case t.kind == tokNumber:
		p.advance()
		return numberLiteral(t.text), nil
	case t.kind == tokString:
		p.advance()
		return &sqlast.LiteralExpr{Kind: sqlast.LitString, Text: t.text}, nil
	case t.kind == tokKeyword && t.text == "TRUE":
		p.advance()
		return &sqlast.LiteralExpr{Kind: sqlast.LitBool, Text: "true"}, nil
	case t.kind == tokKeyword && t.text == "FALSE":
		p.advance()
		return &sqlast.LiteralExpr{Kind: sqlast.LitBool, Text: "false"}, nil
	case t.kind == tokKeyword && t.text == "NULL":
		p.advance()
		return &sqlast.LiteralExpr{Kind: sqlast.LitNull}, nil
	case t.kind == tokPunct && t.text == "-":
		p.advance()
		inner, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		lit := inner.(*sqlast.LiteralExpr)
		lit.Text = "-" + lit.Text
		return lit, nil
	default:
		return nil, fmt.Errorf("expected a literal value, got %q", t.text)
	}
}

func numberLiteral(text string) *sqlast.LiteralExpr {
	for _, r := range text {
		if r == '.' {
			return &sqlast.LiteralExpr{Kind: sqlast.LitFloat, Text: text}
		}
	}
	return &sqlast.LiteralExpr{Kind: sqlast.LitInt, Text: text}
}

// --- UPDATE ---

func (p *Parser) parseUpdate() (*sqlast.UpdateStmt, error) {
	if err := p.expectKeyword("UPDATE"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}

	stmt := &sqlast.UpdateStmt{Table: name}
	for {
		col, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("="); err != nil {
			return nil, err
		}
		val, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		stmt.Assignments = append(stmt.Assignments, sqlast.Assignment{Column: col, Value: val})
		if !p.skipPunct(",") {
			break
		}
	}

	if p.atKeyword("WHERE") {
		p.advance()
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = w
	}
	return stmt, nil
}

// --- DELETE ---

func (p *Parser) parseDelete() (*sqlast.DeleteStmt, error) {
	if err := p.expectKeyword("DELETE"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	stmt := &sqlast.DeleteStmt{Table: name}
	if p.atKeyword("WHERE") {
		p.advance()
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = w
	}
	return stmt, nil
}

// --- SHOW TABLES / EXPLAIN ---

func (p *Parser) parseShowTables() (*sqlast.ShowTablesStmt, error) {
	if err := p.expectKeyword("SHOW"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("TABLES"); err != nil {
		return nil, err
	}
	return &sqlast.ShowTablesStmt{}, nil
}

func (p *Parser) parseExplain() (*sqlast.ExplainStmt, error) {
	if err := p.expectKeyword("EXPLAIN"); err != nil {
		return nil, err
	}
	physical := false
	if p.atKeyword("PHYSICAL") {
		p.advance()
		physical = true
	}
	inner, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &sqlast.ExplainStmt{Physical: physical, Inner: inner}, nil
}

// --- expressions, precedence-climbing ---

func (p *Parser) parseExpr() (sqlast.Expr, error) { return p.parseOr() }

func (p *Parser) parseOr() (sqlast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("OR") {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &sqlast.BinaryExpr{Op: sqlast.BinOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (sqlast.Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("AND") {
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &sqlast.BinaryExpr{Op: sqlast.BinAnd, Left: left, Right: right}
	}
	return left, nil
}

var comparisonOps = map[string]sqlast.BinOp{
	"=": sqlast.BinEq, "!=": sqlast.BinNotEq,
	"<": sqlast.BinLt, "<=": sqlast.BinLtEq,
	">": sqlast.BinGt, ">=": sqlast.BinGtEq,
}

func (p *Parser) parseComparison() (sqlast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.cur().kind == tokPunct {
		if op, ok := comparisonOps[p.cur().text]; ok {
			p.advance()
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			return &sqlast.BinaryExpr{Op: op, Left: left, Right: right}, nil
		}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (sqlast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.atPunct("+") || p.atPunct("-") {
		op := sqlast.BinPlus
		if p.cur().text == "-" {
			op = sqlast.BinMinus
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &sqlast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (sqlast.Expr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.atPunct("*") || p.atPunct("/") || p.atPunct("%") {
		var op sqlast.BinOp
		switch p.cur().text {
		case "*":
			op = sqlast.BinMul
		case "/":
			op = sqlast.BinDiv
		case "%":
			op = sqlast.BinMod
		}
		p.advance()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = &sqlast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parsePrimary() (sqlast.Expr, error) {
	t := p.cur()
	switch {
	case t.kind == tokPunct && t.text == "(":
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return e, nil
	case t.kind == tokPunct && t.text == "*":
		p.advance()
		return &sqlast.StarExpr{}, nil
	case t.kind == tokNumber:
		p.advance()
		return numberLiteral(t.text), nil
	case t.kind == tokString:
		p.advance()
		return &sqlast.LiteralExpr{Kind: sqlast.LitString, Text: t.text}, nil
	case t.kind == tokKeyword && t.text == "TRUE":
		p.advance()
		return &sqlast.LiteralExpr{Kind: sqlast.LitBool, Text: "true"}, nil
	case t.kind == tokKeyword && t.text == "FALSE":
		p.advance()
		return &sqlast.LiteralExpr{Kind: sqlast.LitBool, Text: "false"}, nil
	case t.kind == tokKeyword && t.text == "NULL":
		p.advance()
		return &sqlast.LiteralExpr{Kind: sqlast.LitNull}, nil
	case t.kind == tokKeyword && isAggregateKeyword(t.text):
		return p.parseFuncCall()
	case t.kind == tokIdent:
		return p.parseIdentOrFuncCall()
	default:
		return nil, fmt.Errorf("unexpected token %q in expression", t.text)
	}
}

func isAggregateKeyword(s string) bool {
	switch s {
	case "COUNT", "SUM", "AVG", "MIN", "MAX":
		return true
	default:
		return false
	}
}

func (p *Parser) parseFuncCall() (sqlast.Expr, error) {
	name := p.cur().text
	p.advance()
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []sqlast.Expr
	if p.atPunct("*") {
		p.advance()
		args = append(args, &sqlast.StarExpr{})
	} else {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return &sqlast.FuncCallExpr{Name: name, Args: args}, nil
}

func (p *Parser) parseIdentOrFuncCall() (sqlast.Expr, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if p.atPunct("(") {
		p.advance()
		var args []sqlast.Expr
		if p.atPunct("*") {
			p.advance()
			args = append(args, &sqlast.StarExpr{})
		} else if !p.atPunct(")") {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return &sqlast.FuncCallExpr{Name: name, Args: args}, nil
	}
	if p.atPunct(".") {
		p.advance()
		if p.atPunct("*") {
			p.advance()
			return &sqlast.StarExpr{Qualifier: name}, nil
		}
		field, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &sqlast.ColumnExpr{Ident: sqlast.Ident{Qualifier: name, Name: field}}, nil
	}
	return &sqlast.ColumnExpr{Ident: sqlast.Ident{Name: name}}, nil
}
