package csv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldframe/coldframe/pkg/columnar"
	"github.com/coldframe/coldframe/pkg/schema"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpenInfersTypesAndQualifier(t *testing.T) {
	path := writeTempCSV(t, "id,name,score\n1,alice,9.5\n2,bob,7.25\n")

	tbl, err := Open("people", path, DefaultConfig(), nil)
	require.NoError(t, err)

	require.Equal(t, 3, tbl.Schema().Len())
	idField, _ := tbl.Schema().Field(0)
	assert.Equal(t, "people", idField.Qualifier)
	assert.Equal(t, schema.Int64, idField.Type)

	scoreField, _ := tbl.Schema().Field(2)
	assert.Equal(t, schema.Float64, scoreField.Type)
}

func TestOpenHandlesEmptyValuesAsNull(t *testing.T) {
	path := writeTempCSV(t, "id,note\n1,\n2,hello\n")

	tbl, err := Open("t", path, DefaultConfig(), nil)
	require.NoError(t, err)

	require.Len(t, tbl.Batches, 1)
	noteCol := tbl.Batches[0].Column(1).(*columnar.Utf8Array)
	assert.False(t, noteCol.Valid[0])
	assert.True(t, noteCol.Valid[1])
}

func TestOpenRespectsMaxReadRecords(t *testing.T) {
	path := writeTempCSV(t, "id\n1\n2\n3\n4\n")
	cfg := DefaultConfig()
	cfg.MaxReadRecords = 2

	tbl, err := Open("t", path, cfg, nil)
	require.NoError(t, err)

	total := 0
	for _, b := range tbl.Batches {
		total += b.NumRows()
	}
	assert.Equal(t, 2, total)
}

func TestOpenBatchesByBatchSize(t *testing.T) {
	path := writeTempCSV(t, "id\n1\n2\n3\n4\n5\n")
	cfg := DefaultConfig()
	cfg.BatchSize = 2

	tbl, err := Open("t", path, cfg, nil)
	require.NoError(t, err)

	require.Len(t, tbl.Batches, 3)
	assert.Equal(t, 2, tbl.Batches[0].NumRows())
	assert.Equal(t, 1, tbl.Batches[2].NumRows())
}

func TestScanWithProjection(t *testing.T) {
	path := writeTempCSV(t, "id,name\n1,alice\n")
	tbl, err := Open("t", path, DefaultConfig(), nil)
	require.NoError(t, err)

	batches, err := tbl.Scan([]int{1})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 1, batches[0].Schema.Len())
	assert.Equal(t, "name", batches[0].Schema.Fields[0].Name)
}
