package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/focuscope/focuscope/config"
	"github.com/focuscope/focuscope/scanner/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pythonPair = `def greet(name):
    return "hello " + name


def farewell(name):
    return "goodbye " + name
`

func buildTestProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.py"), []byte(pythonPair), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.py"), []byte(pythonPair), 0644))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "lib"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "lib", "index.js"), []byte("module.exports = {};\n"), 0644))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "util.py"), []byte("def helper():\n    return 1\n"), 0644))

	return root
}

func TestTreeScanner_ScanBasics(t *testing.T) {
	root := buildTestProject(t)
	scanner := NewTreeScanner(config.Default())

	snapshot, err := scanner.Scan(context.Background(), config.ProjectConfig{Path: root})
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(root), snapshot.ProjectName)
	assert.Equal(t, 3, snapshot.TotalFiles)

	var paths []string
	for _, entry := range snapshot.AllFiles() {
		paths = append(paths, entry.Path)
	}
	assert.Equal(t, []string{"a.py", "b.py", "src/util.py"}, paths)
}

func TestTreeScanner_IdenticalFilesReportedOnce(t *testing.T) {
	root := buildTestProject(t)
	scanner := NewTreeScanner(config.Default())

	snapshot, err := scanner.Scan(context.Background(), config.ProjectConfig{Path: root})
	require.NoError(t, err)

	// a.py and b.py are byte-identical: exactly one duplicate group, at
	// file granularity.
	require.Len(t, snapshot.Duplicates, 1)
	assert.Equal(t, models.DuplicateFile, snapshot.Duplicates[0].Kind)
	assert.Equal(t, "a.py", snapshot.Duplicates[0].Members[0].Path)
	assert.Equal(t, "b.py", snapshot.Duplicates[0].Members[1].Path)
}

func TestTreeScanner_MaxDepthBoundsDescent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "one", "two", "three"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "top.txt"), []byte("x\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "one", "mid.txt"), []byte("x\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "one", "two", "deep.txt"), []byte("x\n"), 0644))

	cfg := config.Default()
	cfg.MaxDepth = 2
	scanner := NewTreeScanner(cfg)

	snapshot, err := scanner.Scan(context.Background(), config.ProjectConfig{Path: root})
	require.NoError(t, err)

	// Depth 0 is the root; "one" (depth 1) is expanded, "two" (depth 2) is
	// listed but not descended into.
	require.Len(t, snapshot.Root.Dirs, 1)
	one := snapshot.Root.Dirs[0]
	require.Len(t, one.Files, 1)
	require.Len(t, one.Dirs, 1)
	two := one.Dirs[0]
	assert.Equal(t, "two", two.Name)
	assert.Empty(t, two.Files)
	assert.Empty(t, two.Dirs)

	assert.Equal(t, 2, snapshot.TotalFiles)
}

func TestTreeScanner_MaxDepthZero(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "top.txt"), []byte("x\n"), 0644))

	cfg := config.Default()
	cfg.MaxDepth = 0
	scanner := NewTreeScanner(cfg)

	snapshot, err := scanner.Scan(context.Background(), config.ProjectConfig{Path: root})
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.TotalFiles)
	assert.Empty(t, snapshot.Root.Files)
}

func TestTreeScanner_SymlinksNotFollowed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "real.txt"), []byte("x\n"), 0644))
	require.NoError(t, os.Symlink(root, filepath.Join(root, "loop")))
	require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "alias.txt")))

	scanner := NewTreeScanner(config.Default())
	snapshot, err := scanner.Scan(context.Background(), config.ProjectConfig{Path: root})
	require.NoError(t, err)

	assert.Equal(t, 1, snapshot.TotalFiles)
	assert.Empty(t, snapshot.Root.Dirs)
}

func TestTreeScanner_PartialFailureIsolation(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "good1.py"), []byte("def one():\n    return 1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "good2.py"), []byte("def two():\n    return 2\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "blob.dat"), []byte("bin\x00ary"), 0644))

	scanner := NewTreeScanner(config.Default())
	snapshot, err := scanner.Scan(context.Background(), config.ProjectConfig{Path: root})
	require.NoError(t, err)

	// The unreadable entry becomes a warning; the rest of the scan is
	// unaffected.
	assert.Equal(t, 2, snapshot.TotalFiles)
	warnings := snapshot.AllWarnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "blob.dat", warnings[0].Path)
}

func TestTreeScanner_MissingRootFailsCycle(t *testing.T) {
	scanner := NewTreeScanner(config.Default())
	_, err := scanner.Scan(context.Background(), config.ProjectConfig{Path: "/nonexistent/project/root"})
	require.Error(t, err)
}

func TestTreeScanner_CanceledContext(t *testing.T) {
	root := buildTestProject(t)
	scanner := NewTreeScanner(config.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scanner.Scan(ctx, config.ProjectConfig{Path: root})
	require.ErrorIs(t, err, context.Canceled)
}

func TestTreeScanner_ProjectOverrides(t *testing.T) {
	root := buildTestProject(t)
	scanner := NewTreeScanner(config.Default())

	snapshot, err := scanner.Scan(context.Background(), config.ProjectConfig{
		Name: "custom",
		Path: root,
		Type: "python",
	})
	require.NoError(t, err)
	assert.Equal(t, "custom", snapshot.ProjectName)
	assert.Equal(t, "python", snapshot.ProjectType)
}
