// Package engineconfig binds the engine's tunables through viper, the
// teacher's configuration library, readable from a config file,
// SQLENGINE_-prefixed environment variables, or cobra-bound flags
// (the three sources viper's own docs call out, and the order the
// teacher's config loader checks them in).
package engineconfig

import (
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CSV holds the reader defaults applied to tables registered through
// cmd/sqlshell's --table flag; there is no per-table override clause.
type CSV struct {
	HasHeader      bool
	Delimiter      string
	BatchSize      int
	MaxReadRecords int
	DatetimeFormat string
}

// Optimizer holds rewrite-rule toggles. Only ProjectionPushdown is read
// (by pkg/driver, which adds the rule when it is on); it defaults to off
// (the original prototype's [0..k) shortcut was unsound and the safe
// replacement isn't worth enabling by default). PredicatePushdown and
// ConstantFolding default to on, but no optimizer rule reads them.
type Optimizer struct {
	ProjectionPushdown bool
	PredicatePushdown  bool
	ConstantFolding    bool
}

// PlanCache sizes the optimized-plan LRU.
type PlanCache struct {
	Capacity int
}

// Config is the engine's full tunable surface.
type Config struct {
	CSV       CSV
	Optimizer Optimizer
	PlanCache PlanCache
}

// Load reads defaults, an optional config file at path (skipped if
// empty or missing), SQLENGINE_-prefixed env vars, and flags, in that
// increasing order of precedence, and returns the merged Config.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("csv.has_header", true)
	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("csv.batch_size", 1024)
	v.SetDefault("csv.max_read_records", 0)
	v.SetDefault("csv.datetime_format", "")
	v.SetDefault("optimizer.projection_pushdown", false)
	v.SetDefault("optimizer.predicate_pushdown", true)
	v.SetDefault("optimizer.constant_folding", true)
	v.SetDefault("plancache.capacity", 128)

	v.SetEnvPrefix("SQLENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	return &Config{
		CSV: CSV{
			HasHeader:      v.GetBool("csv.has_header"),
			Delimiter:      v.GetString("csv.delimiter"),
			BatchSize:      v.GetInt("csv.batch_size"),
			MaxReadRecords: v.GetInt("csv.max_read_records"),
			DatetimeFormat: v.GetString("csv.datetime_format"),
		},
		Optimizer: Optimizer{
			ProjectionPushdown: v.GetBool("optimizer.projection_pushdown"),
			PredicatePushdown:  v.GetBool("optimizer.predicate_pushdown"),
			ConstantFolding:    v.GetBool("optimizer.constant_folding"),
		},
		PlanCache: PlanCache{Capacity: v.GetInt("plancache.capacity")},
	}, nil
}

// Default returns Load("", nil), the engine's out-of-the-box config.
func Default() *Config {
	cfg, err := Load("", nil)
	if err != nil {
		// Load("", nil) never touches a config file and BindPFlags is
		// skipped, so the only failure modes are viper bugs.
		panic(err)
	}
	return cfg
}
