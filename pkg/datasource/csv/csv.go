// Package csv implements the CSV-backed TableSource: schema inference
// from a sample of rows, followed by a full columnar read of the file
// into fixed-size batches.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/coldframe/coldframe/pkg/columnar"
	"github.com/coldframe/coldframe/pkg/schema"
)

// Config mirrors the original prototype's CsvConfig: has_header,
// delimiter, an optional sample-size cap for both schema inference and
// total rows read, a batch size, an optional column projection applied
// at read time, and an accepted-but-unused datetime format (dates are
// read as Utf8; there is no Date/Timestamp primitive in this engine's
// closed type set).
type Config struct {
	HasHeader      bool
	Delimiter      rune
	MaxReadRecords int // 0 means unbounded
	BatchSize      int
	FileProjection []int
	DatetimeFormat string
}

// DefaultConfig matches the original prototype's Default impl, except
// MaxReadRecords (there: a sample-only default of 3, "Some(3)") is left
// unbounded here since truncating every CSV table's scan to three rows
// by default would surprise a reader of this engine far more than it
// did a reader of a teaching prototype.
func DefaultConfig() Config {
	return Config{
		HasHeader: true,
		Delimiter: ',',
		BatchSize: 1_000_000,
	}
}

// Table is a TableSource backed by a CSV file read fully into memory at
// construction time.
type Table struct {
	TableSchema schema.Schema
	Batches     []*columnar.Batch
}

// Open infers a schema from filename, reads its rows into one or more
// batches (chunked by cfg.BatchSize), and returns the resulting Table.
// tableName becomes the qualifier on every inferred field.
func Open(tableName, filename string, cfg Config, logger *zap.Logger) (*Table, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("opening csv table", zap.String("table", tableName), zap.String("file", filename))

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", filename, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = cfg.Delimiter
	r.FieldsPerRecord = -1

	var header []string
	if cfg.HasHeader {
		header, err = r.Read()
		if err != nil {
			return nil, fmt.Errorf("csv: read header of %s: %w", filename, err)
		}
	}

	rows, err := readAll(r, cfg.MaxReadRecords)
	if err != nil {
		return nil, fmt.Errorf("csv: read rows of %s: %w", filename, err)
	}

	if header == nil {
		header = syntheticHeader(rows)
	}

	types := inferTypes(header, rows)
	fields := make([]schema.Field, len(header))
	for i, name := range header {
		fields[i] = schema.Field{Qualifier: tableName, Name: name, Type: types[i], Nullable: true}
	}
	s := schema.New(fields...)

	if cfg.FileProjection != nil {
		s = s.Select(cfg.FileProjection)
	}

	batches, err := buildBatches(s, rows, types, cfg)
	if err != nil {
		return nil, err
	}

	logger.Debug("loaded csv table", zap.String("table", tableName), zap.Int("rows", len(rows)), zap.Int("batches", len(batches)))
	return &Table{TableSchema: s, Batches: batches}, nil
}

func readAll(r *csv.Reader, maxRecords int) ([][]string, error) {
	var rows [][]string
	for {
		if maxRecords > 0 && len(rows) >= maxRecords {
			break
		}
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func syntheticHeader(rows [][]string) []string {
	n := 0
	if len(rows) > 0 {
		n = len(rows[0])
	}
	h := make([]string, n)
	for i := range h {
		h[i] = fmt.Sprintf("column%d", i+1)
	}
	return h
}

// inferTypes classifies each column as Int64, Float64, Boolean, or
// Utf8 by scanning every sampled row: a column is Int64 only if every
// non-empty value parses as an integer, Float64 if every non-empty
// value parses as a float (and at least one isn't a plain integer),
// Boolean if every non-empty value is accepted by strconv.ParseBool
// (true/false, t/f, TRUE/FALSE and similar), and Utf8
// otherwise. An all-empty column defaults to Utf8.
func inferTypes(header []string, rows [][]string) []schema.DataType {
	n := len(header)
	allInt := make([]bool, n)
	allFloat := make([]bool, n)
	allBool := make([]bool, n)
	anyValue := make([]bool, n)
	for i := range allInt {
		allInt[i], allFloat[i], allBool[i] = true, true, true
	}

	for _, row := range rows {
		for i := 0; i < n && i < len(row); i++ {
			v := row[i]
			if v == "" {
				continue
			}
			anyValue[i] = true
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				allInt[i] = false
			}
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				allFloat[i] = false
			}
			if _, err := strconv.ParseBool(v); err != nil {
				allBool[i] = false
			}
		}
	}

	types := make([]schema.DataType, n)
	for i := 0; i < n; i++ {
		switch {
		case !anyValue[i]:
			types[i] = schema.Utf8
		case allInt[i]:
			types[i] = schema.Int64
		case allFloat[i]:
			types[i] = schema.Float64
		case allBool[i]:
			types[i] = schema.Boolean
		default:
			types[i] = schema.Utf8
		}
	}
	return types
}

func buildBatches(s schema.Schema, rows [][]string, types []schema.DataType, cfg Config) ([]*columnar.Batch, error) {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = len(rows)
		if batchSize == 0 {
			batchSize = 1
		}
	}

	var batches []*columnar.Batch
	for start := 0; start < len(rows) || (start == 0 && len(rows) == 0); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		b, err := buildBatch(s, rows[start:end], types, cfg.FileProjection)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
		if len(rows) == 0 {
			break
		}
	}
	return batches, nil
}

func buildBatch(s schema.Schema, rows [][]string, types []schema.DataType, projection []int) (*columnar.Batch, error) {
	cols := projection
	if cols == nil {
		cols = make([]int, len(types))
		for i := range cols {
			cols[i] = i
		}
	}

	builders := make([]columnar.Builder, len(cols))
	for i, colIdx := range cols {
		builders[i] = columnar.NewArrayBuilder(types[colIdx])
	}

	for _, row := range rows {
		for bi, colIdx := range cols {
			var raw string
			if colIdx < len(row) {
				raw = row[colIdx]
			}
			appendValue(builders[bi], types[colIdx], raw)
		}
	}

	arrays := make([]columnar.Array, len(builders))
	for i, b := range builders {
		arrays[i] = b.Build()
	}
	return columnar.NewBatch(s, arrays)
}

func appendValue(b columnar.Builder, t schema.DataType, raw string) {
	if raw == "" {
		b.AppendNull()
		return
	}
	switch t {
	case schema.Int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			b.AppendNull()
			return
		}
		b.AppendValue(v)
	case schema.UInt64:
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			b.AppendNull()
			return
		}
		b.AppendValue(v)
	case schema.Float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			b.AppendNull()
			return
		}
		b.AppendValue(v)
	case schema.Boolean:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			b.AppendNull()
			return
		}
		b.AppendValue(v)
	default:
		b.AppendValue(raw)
	}
}

func (t *Table) Schema() schema.Schema { return t.TableSchema }

func (t *Table) Scan(projection []int) ([]*columnar.Batch, error) {
	if projection == nil {
		return t.Batches, nil
	}
	out := make([]*columnar.Batch, len(t.Batches))
	for i, b := range t.Batches {
		arrays := make([]columnar.Array, len(projection))
		for j, idx := range projection {
			arrays[j] = b.Column(idx)
		}
		nb, err := columnar.NewBatch(b.Schema.Select(projection), arrays)
		if err != nil {
			return nil, err
		}
		out[i] = nb
	}
	return out, nil
}

func (t *Table) SourceName() string { return "CsvTable" }
