// Command sqlshell is the engine's interactive REPL: it reads SQL
// statements line by line, executes each through pkg/driver, and
// prints result batches in a simple tabular form — spec.md §6's CLI,
// run as a cobra root command, with results rendered by this package's
// own fixed-width table writer (print.go).
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/coldframe/coldframe/pkg/catalog"
	"github.com/coldframe/coldframe/pkg/datasource/csv"
	"github.com/coldframe/coldframe/pkg/driver"
	"github.com/coldframe/coldframe/pkg/engineconfig"
	"github.com/coldframe/coldframe/pkg/enginelog"
	"github.com/coldframe/coldframe/pkg/metrics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var tables []string

	cmd := &cobra.Command{
		Use:   "sqlshell",
		Short: "Interactive shell for the in-memory SQL query engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, configPath, tables)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a config file (SQLENGINE_ env vars and flags still take precedence)")
	cmd.Flags().StringArrayVar(&tables, "table", nil, "register a CSV-backed table, as name=path/to/file.csv (repeatable)")

	return cmd
}

func runShell(cmd *cobra.Command, configPath string, tableSpecs []string) error {
	logger := enginelog.MustNew()
	defer logger.Sync()

	cfg, err := engineconfig.Load(configPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("sqlshell: loading config: %w", err)
	}

	cat := catalog.New(logger)
	for _, spec := range tableSpecs {
		name, path, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("sqlshell: --table must be name=path, got %q", spec)
		}
		table, err := csv.Open(name, path, csvConfigFrom(cfg), logger)
		if err != nil {
			return fmt.Errorf("sqlshell: loading table %q: %w", name, err)
		}
		cat.AddTable(name, table)
	}

	rec := metrics.New(prometheus.DefaultRegisterer)
	d := driver.New(cat, cfg, rec, logger)

	fmt.Fprintln(cmd.OutOrStdout(), "sqlengine shell. Type SQL statements terminated by a newline; 'exit' or 'quit' to leave.")
	return repl(cmd, d)
}

func csvConfigFrom(cfg *engineconfig.Config) csv.Config {
	c := csv.DefaultConfig()
	c.HasHeader = cfg.CSV.HasHeader
	if cfg.CSV.Delimiter != "" {
		c.Delimiter = rune(cfg.CSV.Delimiter[0])
	}
	if cfg.CSV.BatchSize > 0 {
		c.BatchSize = cfg.CSV.BatchSize
	}
	c.MaxReadRecords = cfg.CSV.MaxReadRecords
	c.DatetimeFormat = cfg.CSV.DatetimeFormat
	return c
}

func repl(cmd *cobra.Command, d *driver.Driver) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	for {
		fmt.Fprint(out, "sql> ")
		if !scanner.Scan() {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "exit", "quit":
			return nil
		}

		res, err := d.Execute(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		printResult(out, res)
	}
}
