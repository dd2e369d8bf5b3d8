package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldframe/coldframe/pkg/columnar"
	"github.com/coldframe/coldframe/pkg/driver"
	"github.com/coldframe/coldframe/pkg/schema"
)

func TestPrintResultRendersHeaderAndRows(t *testing.T) {
	s := schema.New(
		schema.Field{Name: "id", Type: schema.Int64},
		schema.Field{Name: "name", Type: schema.Utf8},
	)
	batch, err := columnar.NewBatch(s, []columnar.Array{
		columnar.NewInt64Array([]int64{1, 2}, nil),
		columnar.NewUtf8Array([]string{"ann", "bo"}, nil),
	})
	require.NoError(t, err)

	var buf strings.Builder
	printResult(&buf, &driver.Result{Schema: s, Batches: []*columnar.Batch{batch}})

	out := buf.String()
	assert.Contains(t, out, "id")
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "ann")
	assert.Contains(t, out, "(2 row(s))")
}

func TestPrintResultRendersMessageOnly(t *testing.T) {
	var buf strings.Builder
	printResult(&buf, &driver.Result{Message: "table \"t\" dropped"})
	assert.Equal(t, "table \"t\" dropped\n", buf.String())
}
