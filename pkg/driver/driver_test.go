package driver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coldframe/coldframe/pkg/catalog"
	"github.com/coldframe/coldframe/pkg/columnar"
	"github.com/coldframe/coldframe/pkg/driver"
	"github.com/coldframe/coldframe/pkg/engineconfig"
	"github.com/coldframe/coldframe/pkg/engineerr"
)

func newDriver(t *testing.T) *driver.Driver {
	t.Helper()
	cat := catalog.New(zap.NewNop())
	return driver.New(cat, engineconfig.Default(), nil, zap.NewNop())
}

func TestCreateTableThenInsertThenSelectRoundTrips(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()

	_, err := d.Execute(ctx, "CREATE TABLE t (id INT64, name UTF8)")
	require.NoError(t, err)

	_, err = d.Execute(ctx, "INSERT INTO t (id, name) VALUES (1, 'ann')")
	require.NoError(t, err)
	_, err = d.Execute(ctx, "INSERT INTO t (id, name) VALUES (2, 'bo')")
	require.NoError(t, err)

	// Each INSERT appends its own batch and the filter emits one output
	// batch per input batch, so only the second batch holds the match.
	res, err := d.Execute(ctx, "SELECT id, name FROM t WHERE id = 2")
	require.NoError(t, err)
	require.Len(t, res.Batches, 2)
	assert.Equal(t, 0, res.Batches[0].NumRows())
	assert.Equal(t, 1, res.Batches[1].NumRows())
}

func TestUpdateThenDeleteMutateTableInPlace(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()

	_, err := d.Execute(ctx, "CREATE TABLE t (id INT64, name UTF8)")
	require.NoError(t, err)
	_, err = d.Execute(ctx, "INSERT INTO t (id, name) VALUES (1, 'ann')")
	require.NoError(t, err)
	_, err = d.Execute(ctx, "INSERT INTO t (id, name) VALUES (2, 'bo')")
	require.NoError(t, err)

	_, err = d.Execute(ctx, "UPDATE t SET name = 'annie' WHERE id = 1")
	require.NoError(t, err)

	res, err := d.Execute(ctx, "SELECT name FROM t WHERE id = 1")
	require.NoError(t, err)
	arr := res.Batches[0].Column(0).(*columnar.Utf8Array)
	assert.Equal(t, "annie", arr.Values[0])

	_, err = d.Execute(ctx, "DELETE FROM t WHERE id = 2")
	require.NoError(t, err)

	res, err = d.Execute(ctx, "SELECT id FROM t")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Batches[0].NumRows())
}

func TestShowTablesListsRegisteredTables(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()
	_, err := d.Execute(ctx, "CREATE TABLE widgets (id INT64)")
	require.NoError(t, err)

	res, err := d.Execute(ctx, "SHOW TABLES")
	require.NoError(t, err)
	require.Len(t, res.Batches, 1)
	assert.Equal(t, 1, res.Batches[0].NumRows())
}

func TestDropTableRemovesItFromCatalog(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()
	_, err := d.Execute(ctx, "CREATE TABLE widgets (id INT64)")
	require.NoError(t, err)

	_, err = d.Execute(ctx, "DROP TABLE widgets")
	require.NoError(t, err)

	_, err = d.Execute(ctx, "SELECT * FROM widgets")
	assert.Error(t, err)
}

func TestDropTableMultipleRemovesAllFromCatalog(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()
	_, err := d.Execute(ctx, "CREATE TABLE a (id INT64)")
	require.NoError(t, err)
	_, err = d.Execute(ctx, "CREATE TABLE b (id INT64)")
	require.NoError(t, err)

	_, err = d.Execute(ctx, "DROP TABLE a, b")
	require.NoError(t, err)

	_, err = d.Execute(ctx, "SELECT * FROM a")
	assert.Error(t, err)
	_, err = d.Execute(ctx, "SELECT * FROM b")
	assert.Error(t, err)
}

func TestUpdateWithoutWhereIsRejected(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()
	_, err := d.Execute(ctx, "CREATE TABLE t (id INT64, name UTF8)")
	require.NoError(t, err)
	_, err = d.Execute(ctx, "INSERT INTO t (id, name) VALUES (1, 'ann')")
	require.NoError(t, err)

	_, err = d.Execute(ctx, "UPDATE t SET name = 'annie'")
	require.Error(t, err)
	assert.True(t, engineerr.Is(err, engineerr.NotImplemented))
}

func TestDeleteWithoutWhereIsRejected(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()
	_, err := d.Execute(ctx, "CREATE TABLE t (id INT64)")
	require.NoError(t, err)
	_, err = d.Execute(ctx, "INSERT INTO t (id) VALUES (1)")
	require.NoError(t, err)

	_, err = d.Execute(ctx, "DELETE FROM t")
	require.Error(t, err)
	assert.True(t, engineerr.Is(err, engineerr.NotImplemented))
}

func TestExplainPrintsLogicalPlanWithoutExecuting(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()
	_, err := d.Execute(ctx, "CREATE TABLE t (id INT64)")
	require.NoError(t, err)

	res, err := d.Execute(ctx, "EXPLAIN SELECT * FROM t")
	require.NoError(t, err)
	assert.Contains(t, res.Message, "Scan")
}

func TestSelectPlanCacheServesRepeatedQuery(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()
	_, err := d.Execute(ctx, "CREATE TABLE t (id INT64)")
	require.NoError(t, err)
	_, err = d.Execute(ctx, "INSERT INTO t (id) VALUES (1)")
	require.NoError(t, err)

	first, err := d.Execute(ctx, "SELECT id FROM t")
	require.NoError(t, err)
	second, err := d.Execute(ctx, "SELECT id FROM t")
	require.NoError(t, err)
	assert.Equal(t, first.Batches[0].NumRows(), second.Batches[0].NumRows())
}
