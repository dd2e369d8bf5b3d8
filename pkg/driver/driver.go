// Package driver orchestrates one statement end to end: parse, plan,
// optimize, lower, execute, and — for CREATE TABLE/INSERT/UPDATE/
// DELETE — publish the result back to the catalog only after physical
// execution has fully succeeded. Grounded on spec.md §4.7 (the
// authoritative pipeline description) and on the teacher's
// `analyzer.Analyze` wrapping style for surfacing pipeline-stage
// errors with context.
package driver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coldframe/coldframe/pkg/catalog"
	"github.com/coldframe/coldframe/pkg/columnar"
	"github.com/coldframe/coldframe/pkg/datasource"
	"github.com/coldframe/coldframe/pkg/engineconfig"
	"github.com/coldframe/coldframe/pkg/exec"
	"github.com/coldframe/coldframe/pkg/logical"
	"github.com/coldframe/coldframe/pkg/metrics"
	"github.com/coldframe/coldframe/pkg/optimizer"
	"github.com/coldframe/coldframe/pkg/physexec"
	"github.com/coldframe/coldframe/pkg/physical"
	"github.com/coldframe/coldframe/pkg/planner"
	"github.com/coldframe/coldframe/pkg/plancache"
	"github.com/coldframe/coldframe/pkg/schema"
	"github.com/coldframe/coldframe/pkg/sqlast"
	"github.com/coldframe/coldframe/pkg/sqlparse"
)

// Result is what a single Execute call hands back. SELECT and SHOW
// TABLES return an output Schema plus Batches; CREATE TABLE returns the
// new table's Schema with no batches; INSERT, UPDATE and DELETE return
// the table's rebuilt batches; only DROP TABLE and EXPLAIN return a
// plain status Message instead.
type Result struct {
	Schema  schema.Schema
	Batches []*columnar.Batch
	Message string
}

// Driver wires together the catalog and every pipeline stage.
type Driver struct {
	catalog   *catalog.Catalog
	optimizer *optimizer.Optimizer
	cache     *plancache.Cache
	metrics   *metrics.Recorder
	logger    *zap.Logger
}

// New builds a Driver. metricsRecorder may be nil, in which case
// statement metrics are simply not recorded (useful for tests and any
// embedding that doesn't want a prometheus dependency wired in).
func New(cat *catalog.Catalog, cfg *engineconfig.Config, metricsRecorder *metrics.Recorder, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = engineconfig.Default()
	}
	var rules []optimizer.Rule
	if cfg.Optimizer.ProjectionPushdown {
		rules = append(rules, optimizer.ProjectionPushDown{})
	}
	return &Driver{
		catalog:   cat,
		optimizer: optimizer.New(logger, rules...),
		cache:     plancache.New(cfg.PlanCache.Capacity),
		metrics:   metricsRecorder,
		logger:    logger,
	}
}

// Execute runs one SQL statement to completion.
func (d *Driver) Execute(ctx context.Context, sql string) (*Result, error) {
	stmtID := uuid.New().String()
	logger := d.logger.With(zap.String("stmt_id", stmtID))
	start := time.Now()

	stmt, err := sqlparse.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("driver: parsing statement: %w", err)
	}
	kind := statementKind(stmt)
	logger.Debug("driver: parsed statement", zap.String("kind", kind))

	result, err := d.dispatch(ctx, logger, stmt, sql)
	elapsed := time.Since(start).Seconds()
	if d.metrics != nil {
		d.metrics.ObserveStatement(kind, elapsed)
		if err == nil && result != nil && kind == "select" {
			d.metrics.AddRowsReturned(rowCount(result.Batches))
		}
	}
	if err != nil {
		logger.Warn("driver: statement failed", zap.String("kind", kind), zap.Error(err))
		return nil, err
	}
	logger.Debug("driver: statement completed", zap.String("kind", kind), zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (d *Driver) dispatch(ctx context.Context, logger *zap.Logger, stmt sqlast.Statement, sql string) (*Result, error) {
	switch s := stmt.(type) {
	case *sqlast.ShowTablesStmt:
		return d.execShowTables(), nil
	case *sqlast.DropTableStmt:
		return d.execDropTable(s), nil
	case *sqlast.ExplainStmt:
		return d.execExplain(s)
	default:
		return d.execPlanned(ctx, logger, stmt, sql)
	}
}

func (d *Driver) execShowTables() *Result {
	names := d.catalog.TableNames()
	s := schema.New(schema.Field{Name: "table_name", Type: schema.Utf8})
	builder := columnar.NewArrayBuilder(schema.Utf8)
	for _, n := range names {
		builder.AppendValue(n)
	}
	batch, _ := columnar.NewBatch(s, []columnar.Array{builder.Build()})
	return &Result{Schema: s, Batches: []*columnar.Batch{batch}}
}

func (d *Driver) execDropTable(s *sqlast.DropTableStmt) *Result {
	for _, name := range s.Tables {
		d.catalog.RemoveTable(name)
	}
	return &Result{Message: fmt.Sprintf("table(s) %s dropped", strings.Join(s.Tables, ", "))}
}

func (d *Driver) execExplain(s *sqlast.ExplainStmt) (*Result, error) {
	logicalPlan, err := planner.New(d.catalog).Plan(s.Inner)
	if err != nil {
		return nil, fmt.Errorf("driver: explain: %w", err)
	}
	logicalPlan = d.optimizer.Optimize(logicalPlan)

	if !s.Physical {
		return &Result{Message: logical.PrintPlan(logicalPlan, 0)}, nil
	}
	physPlan, err := physexec.New(d.catalog).Lower(logicalPlan)
	if err != nil {
		return nil, fmt.Errorf("driver: explain: %w", err)
	}
	return &Result{Message: physical.PrintPlan(physPlan, 0)}, nil
}

// execPlanned runs the full parse-already-done→plan→optimize→lower→
// execute pipeline, publishing catalog mutations only once execution
// has fully succeeded.
func (d *Driver) execPlanned(ctx context.Context, logger *zap.Logger, stmt sqlast.Statement, sql string) (*Result, error) {
	var logicalPlan logical.Plan
	var err error

	cacheKey := ""
	if _, ok := stmt.(*sqlast.SelectStmt); ok {
		cacheKey = plancache.Key(sql)
		if cached, hit := d.cache.Get(cacheKey); hit {
			logger.Debug("driver: plan cache hit")
			logicalPlan = cached
		}
	}

	if logicalPlan == nil {
		logicalPlan, err = planner.New(d.catalog).Plan(stmt)
		if err != nil {
			return nil, fmt.Errorf("driver: planning statement: %w", err)
		}
		logicalPlan = d.optimizer.Optimize(logicalPlan)
		if cacheKey != "" {
			d.cache.Put(cacheKey, logicalPlan)
		}
	}

	physPlan, err := physexec.New(d.catalog).Lower(logicalPlan)
	if err != nil {
		return nil, fmt.Errorf("driver: lowering plan: %w", err)
	}

	batches, err := exec.New(logger).Execute(ctx, physPlan)
	if err != nil {
		return nil, fmt.Errorf("driver: executing plan: %w", err)
	}

	d.publish(logicalPlan, batches)

	return &Result{Schema: logicalPlan.Schema(), Batches: batches}, nil
}

// publish applies the catalog side effect for a mutation statement,
// after its physical plan has already executed successfully — so a
// failed statement never leaves a partial change visible (spec.md
// §7's no-partial-commit policy).
func (d *Driver) publish(logicalPlan logical.Plan, batches []*columnar.Batch) {
	switch p := logicalPlan.(type) {
	case *logical.CreateTable:
		d.catalog.AddTable(p.TableName, datasource.NewMemTable(p.TableSchema, nil))
	case *logical.Insert:
		d.catalog.Replace(p.TableName, datasource.NewMemTable(p.TableSchema, batches))
	case *logical.Update:
		d.catalog.Replace(p.TableName, datasource.NewMemTable(p.Input.Schema(), batches))
	case *logical.Delete:
		d.catalog.Replace(p.TableName, datasource.NewMemTable(p.Input.Schema(), batches))
	}
}

func statementKind(stmt sqlast.Statement) string {
	switch stmt.(type) {
	case *sqlast.SelectStmt:
		return "select"
	case *sqlast.CreateTableStmt:
		return "create_table"
	case *sqlast.DropTableStmt:
		return "drop_table"
	case *sqlast.InsertStmt:
		return "insert"
	case *sqlast.UpdateStmt:
		return "update"
	case *sqlast.DeleteStmt:
		return "delete"
	case *sqlast.ShowTablesStmt:
		return "show_tables"
	case *sqlast.ExplainStmt:
		return "explain"
	default:
		return "other"
	}
}

func rowCount(batches []*columnar.Batch) int {
	n := 0
	for _, b := range batches {
		n += b.NumRows()
	}
	return n
}
