package plancache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coldframe/coldframe/pkg/logical"
	"github.com/coldframe/coldframe/pkg/plancache"
	"github.com/coldframe/coldframe/pkg/schema"
)

func TestPutThenGetRoundTrips(t *testing.T) {
	cache := plancache.New(4)
	plan := logical.NewCreateTable("t", schema.New(schema.Field{Name: "id", Type: schema.Int64}))

	key := plancache.Key("SELECT   *\nFROM t")
	cache.Put(key, plan)

	got, ok := cache.Get(key)
	assert.True(t, ok)
	assert.Same(t, plan, got)
}

func TestKeyNormalizesWhitespace(t *testing.T) {
	assert.Equal(t, plancache.Key("SELECT   *\nFROM t"), plancache.Key("SELECT * FROM t"))
}

func TestZeroCapacityDisablesCaching(t *testing.T) {
	cache := plancache.New(0)
	plan := logical.NewCreateTable("t", schema.New(schema.Field{Name: "id", Type: schema.Int64}))
	cache.Put("k", plan)

	_, ok := cache.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestEvictsLeastRecentlyUsedAtCapacity(t *testing.T) {
	cache := plancache.New(2)
	p1 := logical.NewCreateTable("a", schema.New())
	p2 := logical.NewCreateTable("b", schema.New())
	p3 := logical.NewCreateTable("c", schema.New())

	cache.Put("a", p1)
	cache.Put("b", p2)
	cache.Put("c", p3) // evicts "a"

	_, ok := cache.Get("a")
	assert.False(t, ok)
	_, ok = cache.Get("b")
	assert.True(t, ok)
	_, ok = cache.Get("c")
	assert.True(t, ok)
}
