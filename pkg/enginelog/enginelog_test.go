package enginelog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coldframe/coldframe/pkg/enginelog"
)

func TestNewBuildsAUsableLogger(t *testing.T) {
	logger, err := enginelog.New()
	assert.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNopDiscardsWithoutError(t *testing.T) {
	logger := enginelog.Nop()
	assert.NotNil(t, logger)
	logger.Info("should not panic")
}
