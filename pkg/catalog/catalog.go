// Package catalog holds the process-wide table registry: a name to
// TableSource map, mutated only as a whole-table remove-then-add so
// that a statement's mutation either lands completely or not at all.
package catalog

import (
	"sync"

	"go.uber.org/zap"

	"github.com/coldframe/coldframe/pkg/datasource"
	"github.com/coldframe/coldframe/pkg/engineerr"
)

// Catalog is safe for concurrent use; spec.md's concurrency model gives
// each statement exclusive access during its own execution, so the
// mutex here exists to make that exclusivity explicit rather than to
// support concurrent mutation correctness (a documented Non-goal).
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]datasource.TableSource
	logger *zap.Logger
}

func New(logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{tables: make(map[string]datasource.TableSource), logger: logger}
}

// AddTable registers src under name, replacing any prior table of that
// name. Used both for initial CSV loads and for the create/mutation
// side effects in pkg/driver.
func (c *Catalog) AddTable(name string, src datasource.TableSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[name] = src
	c.logger.Debug("catalog: table registered", zap.String("table", name))
}

// RemoveTable drops name from the catalog, if present.
func (c *Catalog) RemoveTable(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tables, name)
	c.logger.Debug("catalog: table removed", zap.String("table", name))
}

// GetTable returns the named table, or an error if it isn't registered.
func (c *Catalog) GetTable(name string) (datasource.TableSource, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[name]
	if !ok {
		return nil, engineerr.NoSuchTableError(name)
	}
	return t, nil
}

// HasTable reports whether name is currently registered.
func (c *Catalog) HasTable(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.tables[name]
	return ok
}

// TableNames returns the registered table names in no particular
// order, backing the supplemental SHOW TABLES command.
func (c *Catalog) TableNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	return names
}

// Replace atomically swaps out name's table for replacement — used by
// UPDATE/INSERT/DELETE, which rebuild a table's full batch set and must
// only publish it after the rebuild has fully succeeded.
func (c *Catalog) Replace(name string, replacement datasource.TableSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tables, name)
	c.tables[name] = replacement
	c.logger.Debug("catalog: table replaced", zap.String("table", name))
}
