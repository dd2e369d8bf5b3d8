package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldframe/coldframe/pkg/datasource"
	"github.com/coldframe/coldframe/pkg/engineerr"
	"github.com/coldframe/coldframe/pkg/schema"
)

func emptyTable() datasource.TableSource {
	return datasource.NewMemTable(schema.New(), nil)
}

func TestAddAndGetTable(t *testing.T) {
	c := New(nil)
	c.AddTable("t1", emptyTable())

	got, err := c.GetTable("t1")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestGetMissingTableErrors(t *testing.T) {
	c := New(nil)

	_, err := c.GetTable("missing")
	require.Error(t, err)
	assert.True(t, engineerr.Is(err, engineerr.NoSuchTable))
}

func TestRemoveTable(t *testing.T) {
	c := New(nil)
	c.AddTable("t1", emptyTable())
	c.RemoveTable("t1")

	assert.False(t, c.HasTable("t1"))
}

func TestReplaceIsAtomicFromCallerPerspective(t *testing.T) {
	c := New(nil)
	c.AddTable("t1", emptyTable())
	replacement := emptyTable()
	c.Replace("t1", replacement)

	got, err := c.GetTable("t1")
	require.NoError(t, err)
	assert.Same(t, replacement, got)
}

func TestTableNames(t *testing.T) {
	c := New(nil)
	c.AddTable("a", emptyTable())
	c.AddTable("b", emptyTable())

	names := c.TableNames()
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}
