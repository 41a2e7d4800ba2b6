package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/focuscope/focuscope/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathFilter_DefaultDirectories(t *testing.T) {
	filter := NewPathFilter(config.Default(), t.TempDir())

	assert.True(t, filter.IsIgnored("node_modules", true))
	assert.True(t, filter.IsIgnored("src/node_modules", true))
	assert.True(t, filter.IsIgnored(".git", true))
	// A matching segment anywhere on the path excludes files too.
	assert.True(t, filter.IsIgnored("node_modules/lib/index.js", false))
	assert.False(t, filter.IsIgnored("src", true))
	assert.False(t, filter.IsIgnored("node_modules_backup", true))
}

func TestPathFilter_FileGlobs(t *testing.T) {
	cfg := config.Default()
	cfg.IgnoredFiles = append(cfg.IgnoredFiles, "*.log")
	filter := NewPathFilter(cfg, t.TempDir())

	assert.True(t, filter.IsIgnored("debug.log", false))
	assert.True(t, filter.IsIgnored("sub/dir/debug.log", false))
	assert.True(t, filter.IsIgnored("main.pyc", false))
	assert.False(t, filter.IsIgnored("main.py", false))
}

func TestPathFilter_OwnOutputsAlwaysIgnored(t *testing.T) {
	filter := NewPathFilter(config.Default(), t.TempDir())

	assert.True(t, filter.IsIgnored("Focus.md", false))
	assert.True(t, filter.IsIgnored("CodeReview.md", false))
	assert.True(t, filter.IsIgnored(".cursorrules", false))
	assert.True(t, filter.IsIgnored("focus-config.yml", false))
	assert.False(t, filter.IsIgnored("README.md", false))
}

func TestPathFilter_IgnoreFile(t *testing.T) {
	root := t.TempDir()
	ignoreFile := "# generated artifacts\n*.generated.go\nsecrets/\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".focusignore"), []byte(ignoreFile), 0644))

	filter := NewPathFilter(config.Default(), root)

	assert.True(t, filter.IsIgnored("api.generated.go", false))
	assert.True(t, filter.IsIgnored("secrets", true))
	assert.True(t, filter.IsIgnored("secrets/key.pem", false))
	assert.False(t, filter.IsIgnored("api.go", false))
}

func TestPathFilter_IgnoreFileNegation(t *testing.T) {
	root := t.TempDir()
	ignoreFile := "*.log\n!keep.log\nreports/\n!summary.txt\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".focusignore"), []byte(ignoreFile), 0644))

	filter := NewPathFilter(config.Default(), root)

	assert.True(t, filter.IsIgnored("debug.log", false))
	assert.False(t, filter.IsIgnored("keep.log", false))
	assert.True(t, filter.IsIgnored("reports/daily.txt", false))
	assert.False(t, filter.IsIgnored("reports/summary.txt", false))
}

func TestPathFilter_NegationNeverOverridesBuiltins(t *testing.T) {
	root := t.TempDir()
	ignoreFile := "!node_modules\n!*.pyc\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".focusignore"), []byte(ignoreFile), 0644))

	filter := NewPathFilter(config.Default(), root)

	assert.True(t, filter.IsIgnored("node_modules", true))
	assert.True(t, filter.IsIgnored("cache.pyc", false))
}
