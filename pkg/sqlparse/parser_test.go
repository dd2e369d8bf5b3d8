package sqlparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldframe/coldframe/pkg/sqlast"
)

func TestParseSimpleSelect(t *testing.T) {
	stmt, err := Parse("SELECT id, name FROM people WHERE id = 1")
	require.NoError(t, err)

	sel, ok := stmt.(*sqlast.SelectStmt)
	require.True(t, ok)
	require.Len(t, sel.Items, 2)
	assert.Equal(t, "people", sel.From.Name)
	require.NotNil(t, sel.Where)
}

func TestParseSelectStar(t *testing.T) {
	stmt, err := Parse("SELECT * FROM t")
	require.NoError(t, err)
	sel := stmt.(*sqlast.SelectStmt)
	assert.Empty(t, sel.Items)
}

func TestParseCommaSeparatedFromList(t *testing.T) {
	stmt, err := Parse("SELECT p.name, k.friend FROM person p, knows k WHERE p.id = k.pid")
	require.NoError(t, err)

	sel := stmt.(*sqlast.SelectStmt)
	assert.Equal(t, "person", sel.From.Name)
	assert.Equal(t, "p", sel.From.Alias)
	require.Len(t, sel.FromExtra, 1)
	assert.Equal(t, "knows", sel.FromExtra[0].Name)
	assert.Equal(t, "k", sel.FromExtra[0].Alias)
	require.NotNil(t, sel.Where)
}

func TestParseJoinWithAliasAndOn(t *testing.T) {
	stmt, err := Parse("SELECT p.id FROM people p JOIN orders o ON p.id = o.person_id")
	require.NoError(t, err)

	sel := stmt.(*sqlast.SelectStmt)
	require.Len(t, sel.Joins, 1)
	assert.Equal(t, "p", sel.From.Alias)
	assert.Equal(t, "orders", sel.Joins[0].Table.Name)
	assert.Equal(t, "o", sel.Joins[0].Table.Alias)
	assert.NotNil(t, sel.Joins[0].On)
}

func TestParseLeftJoinAndCrossJoin(t *testing.T) {
	stmt, err := Parse("SELECT * FROM a LEFT JOIN b ON a.id = b.id CROSS JOIN c")
	require.NoError(t, err)
	sel := stmt.(*sqlast.SelectStmt)
	require.Len(t, sel.Joins, 2)
	assert.Equal(t, sqlast.LeftJoin, sel.Joins[0].Kind)
	assert.Equal(t, sqlast.CrossJoin, sel.Joins[1].Kind)
	assert.Nil(t, sel.Joins[1].On)
}

func TestParseGroupByLimitOffset(t *testing.T) {
	stmt, err := Parse("SELECT dept, COUNT(*) FROM emp GROUP BY dept LIMIT 10 OFFSET 5")
	require.NoError(t, err)
	sel := stmt.(*sqlast.SelectStmt)
	require.Len(t, sel.GroupBy, 1)
	require.NotNil(t, sel.Limit)
	assert.Equal(t, 10, *sel.Limit)
	require.NotNil(t, sel.Offset)
	assert.Equal(t, 5, *sel.Offset)
}

func TestParseAggregateFuncCall(t *testing.T) {
	stmt, err := Parse("SELECT SUM(amount) AS total FROM orders")
	require.NoError(t, err)
	sel := stmt.(*sqlast.SelectStmt)
	require.Len(t, sel.Items, 1)
	assert.Equal(t, "total", sel.Items[0].Alias)
	fc, ok := sel.Items[0].Expr.(*sqlast.FuncCallExpr)
	require.True(t, ok)
	assert.Equal(t, "SUM", fc.Name)
}

func TestParseWhereWithAndOrPrecedence(t *testing.T) {
	stmt, err := Parse("SELECT * FROM t WHERE a = 1 AND b = 2 OR c = 3")
	require.NoError(t, err)
	sel := stmt.(*sqlast.SelectStmt)
	top, ok := sel.Where.(*sqlast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, sqlast.BinOr, top.Op)
	left, ok := top.Left.(*sqlast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, sqlast.BinAnd, left.Op)
}

func TestParseCreateTable(t *testing.T) {
	stmt, err := Parse("CREATE TABLE t (id INT64, name UTF8 NOT NULL)")
	require.NoError(t, err)
	ct := stmt.(*sqlast.CreateTableStmt)
	require.Len(t, ct.Columns, 2)
	assert.Equal(t, "INT64", ct.Columns[0].Type)
	assert.True(t, ct.Columns[0].Nullable)
	assert.False(t, ct.Columns[1].Nullable)
}

func TestParseDropTable(t *testing.T) {
	stmt, err := Parse("DROP TABLE t")
	require.NoError(t, err)
	dt := stmt.(*sqlast.DropTableStmt)
	assert.Equal(t, []string{"t"}, dt.Tables)
}

func TestParseDropTableMultiple(t *testing.T) {
	stmt, err := Parse("DROP TABLE a, b, c")
	require.NoError(t, err)
	dt := stmt.(*sqlast.DropTableStmt)
	assert.Equal(t, []string{"a", "b", "c"}, dt.Tables)
}

func TestParseInsertMultiRow(t *testing.T) {
	stmt, err := Parse("INSERT INTO t VALUES (1, 'a'), (2, 'b')")
	require.NoError(t, err)
	ins := stmt.(*sqlast.InsertStmt)
	require.Len(t, ins.Rows, 2)
	assert.Len(t, ins.Rows[0], 2)
}

func TestParseInsertWithExplicitColumns(t *testing.T) {
	stmt, err := Parse("INSERT INTO t (id, name) VALUES (1, 'a')")
	require.NoError(t, err)
	ins := stmt.(*sqlast.InsertStmt)
	assert.Equal(t, []string{"id", "name"}, ins.Columns)
}

func TestParseUpdateWithWhere(t *testing.T) {
	stmt, err := Parse("UPDATE t SET name = 'x', id = 5 WHERE id = 1")
	require.NoError(t, err)
	up := stmt.(*sqlast.UpdateStmt)
	require.Len(t, up.Assignments, 2)
	assert.NotNil(t, up.Where)
}

func TestParseDeleteWithoutWhere(t *testing.T) {
	stmt, err := Parse("DELETE FROM t")
	require.NoError(t, err)
	del := stmt.(*sqlast.DeleteStmt)
	assert.Nil(t, del.Where)
}

func TestParseShowTables(t *testing.T) {
	stmt, err := Parse("SHOW TABLES")
	require.NoError(t, err)
	_, ok := stmt.(*sqlast.ShowTablesStmt)
	assert.True(t, ok)
}

func TestParseExplainPhysical(t *testing.T) {
	stmt, err := Parse("EXPLAIN PHYSICAL SELECT * FROM t")
	require.NoError(t, err)
	ex := stmt.(*sqlast.ExplainStmt)
	assert.True(t, ex.Physical)
	_, ok := ex.Inner.(*sqlast.SelectStmt)
	assert.True(t, ok)
}

func TestParseNegativeNumberLiteral(t *testing.T) {
	stmt, err := Parse("INSERT INTO t VALUES (-5, -1.5)")
	require.NoError(t, err)
	ins := stmt.(*sqlast.InsertStmt)
	lit := ins.Rows[0][0].(*sqlast.LiteralExpr)
	assert.Equal(t, "-5", lit.Text)
}

func TestParseRejectsIncompleteWhereClause(t *testing.T) {
	_, err := Parse("SELECT * FROM t WHERE")
	assert.Error(t, err)
}

func TestParseQuotedIdentifier(t *testing.T) {
	stmt, err := Parse(`SELECT "select" FROM t`)
	require.NoError(t, err)
	sel := stmt.(*sqlast.SelectStmt)
	col := sel.Items[0].Expr.(*sqlast.ColumnExpr)
	assert.Equal(t, "select", col.Ident.Name)
}
