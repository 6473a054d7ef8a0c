package lfdemod

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	var logger, err = NewLogger(&buf, LogConfig{Level: "debug"}, "lfdemod")
	require.NoError(t, err)

	logger.Debug("clock picked", "clock", 64)
	assert.Contains(t, buf.String(), "clock picked")
	assert.Contains(t, buf.String(), "lfdemod")

	_, err = NewLogger(&buf, LogConfig{Level: "loud"}, "")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTimestampPrefix(t *testing.T) {
	t.Cleanup(func() { _ = setTimestampFormat("") })

	var now = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.Empty(t, timestampPrefix(now))

	require.NoError(t, setTimestampFormat("%H:%M:%S"))
	assert.Equal(t, "03:04:05 ", timestampPrefix(now))
}
