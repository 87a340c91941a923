package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "file", "class.xpt")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "file=class.xpt")
	assert.Contains(t, buf.String(), Prefix)
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := New(&bytes.Buffer{}, "chatty")

	assert.ErrorContains(t, err, `failed to parse log level "chatty"`)
}
