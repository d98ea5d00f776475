package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_WritesJSONFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := InitLogger("test", dir)
	require.NoError(t, err)

	logger.Debug("debug only in file")
	_ = logger.Sync()

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "test_"))

	data, err := os.ReadFile(filepath.Join(dir, "logs", entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"debug only in file"`)
	assert.Contains(t, string(data), `"env":"test"`)
}
