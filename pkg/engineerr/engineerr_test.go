package engineerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coldframe/coldframe/pkg/engineerr"
)

func TestErrorFormatsKindAndMessage(t *testing.T) {
	err := engineerr.New(engineerr.NoSuchField, "field %q", "age")
	assert.Equal(t, "NoSuchField: field \"age\"", err.Error())
}

func TestWrapPreservesCauseForUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := engineerr.Wrap(engineerr.IoError, cause, "reading csv")
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "boom")
}

func TestNoSuchTableErrorIsKindNoSuchTable(t *testing.T) {
	err := engineerr.NoSuchTableError("widgets")
	assert.True(t, engineerr.Is(err, engineerr.NoSuchTable))
	assert.False(t, engineerr.Is(err, engineerr.ColumnNotExists))
}

func TestIsLooksThroughFmtErrorfWrapping(t *testing.T) {
	base := engineerr.ColumnNotExistsError("ghost")
	wrapped := fmt.Errorf("planning select: %w", base)
	assert.True(t, engineerr.Is(wrapped, engineerr.ColumnNotExists))
}
