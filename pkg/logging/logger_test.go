package logging

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("test-component")
	require.NoError(t, err)
	defer logger.Close()

	assert.NotEmpty(t, logger.RunID())
	assert.NotEmpty(t, logger.LogPath())
}

func TestLoggerWritesLevels(t *testing.T) {
	logger, err := NewLogger("levels")
	require.NoError(t, err)
	defer logger.Close()

	logger.Debugf("debug %d", 1)
	logger.Infof("info %s", "msg")
	logger.Warnf("warn")
	logger.Errorf("error")

	data, err := os.ReadFile(logger.LogPath())
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "[DEBUG] debug 1")
	assert.Contains(t, content, "[INFO] info msg")
	assert.Contains(t, content, "[WARN] warn")
	assert.Contains(t, content, "[ERROR] error")
	assert.Contains(t, content, "[levels]")
}

func TestRunIDSharedAcrossComponents(t *testing.T) {
	a, err := NewLogger("a")
	require.NoError(t, err)
	defer a.Close()

	b, err := NewLogger("b")
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, a.RunID(), b.RunID())
	assert.Equal(t, a.LogPath(), b.LogPath())
}

func TestCloseIsIdempotent(t *testing.T) {
	logger, err := NewLogger("close")
	require.NoError(t, err)

	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close())
}

func TestLogPathUnderHome(t *testing.T) {
	logger, err := NewLogger("path")
	require.NoError(t, err)
	defer logger.Close()

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(logger.LogPath(), home))
}
