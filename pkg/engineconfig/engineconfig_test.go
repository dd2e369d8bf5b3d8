package engineconfig_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldframe/coldframe/pkg/engineconfig"
)

func TestDefaultMatchesCsvAndOptimizerDefaults(t *testing.T) {
	cfg := engineconfig.Default()
	assert.True(t, cfg.CSV.HasHeader)
	assert.Equal(t, ",", cfg.CSV.Delimiter)
	assert.Equal(t, 1024, cfg.CSV.BatchSize)
	assert.False(t, cfg.Optimizer.ProjectionPushdown)
	assert.True(t, cfg.Optimizer.PredicatePushdown)
	assert.Equal(t, 128, cfg.PlanCache.Capacity)
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	t.Setenv("SQLENGINE_CSV_DELIMITER", ";")
	cfg, err := engineconfig.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, ";", cfg.CSV.Delimiter)
}

func TestLoadMissingConfigFileIsNotAnError(t *testing.T) {
	cfg, err := engineconfig.Load("/nonexistent/sqlengine.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.CSV.BatchSize)
}
