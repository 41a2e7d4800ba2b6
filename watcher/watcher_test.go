package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/focuscope/focuscope/config"
	"github.com/focuscope/focuscope/report"
	"github.com/focuscope/focuscope/scanner/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProject(t *testing.T) (string, config.ProjectConfig) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.py"), []byte("def main():\n    return 0\n"), 0644))
	return root, config.ProjectConfig{Name: "demo", Path: root, Watch: true}
}

func TestWatcher_RunOnceWritesReport(t *testing.T) {
	root, project := testProject(t)
	w := NewWatcher(config.Default(), project, report.NewAtomicSink(root), t.Logf)

	wrote, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, wrote)

	_, err = os.Stat(filepath.Join(root, report.FocusFileName))
	require.NoError(t, err)
}

func TestWatcher_UnchangedProjectWritesNothing(t *testing.T) {
	root, project := testProject(t)
	w := NewWatcher(config.Default(), project, report.NewAtomicSink(root), t.Logf)

	wrote, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, wrote)

	before, err := os.Stat(filepath.Join(root, report.FocusFileName))
	require.NoError(t, err)

	// No file changed between cycles: comparison short-circuits before
	// rendering and the report keeps its mtime.
	wrote, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, wrote)

	after, err := os.Stat(filepath.Join(root, report.FocusFileName))
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestWatcher_FileChangeTriggersRewrite(t *testing.T) {
	root, project := testProject(t)
	w := NewWatcher(config.Default(), project, report.NewAtomicSink(root), t.Logf)

	wrote, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, wrote)

	require.NoError(t, os.WriteFile(filepath.Join(root, "extra.py"), []byte("def extra():\n    return 1\n"), 0644))

	wrote, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, wrote)
}

// flakySink fails a fixed number of writes before delegating.
type flakySink struct {
	inner    report.Sink
	failures int
}

func (s *flakySink) Path() string { return s.inner.Path() }

func (s *flakySink) Write(rendered *models.RenderedReport) (bool, error) {
	if s.failures > 0 {
		s.failures--
		return false, errors.New("disk full")
	}
	return s.inner.Write(rendered)
}

func TestWatcher_RetriesWriteAfterSinkFailure(t *testing.T) {
	root, project := testProject(t)
	sink := &flakySink{inner: report.NewAtomicSink(root), failures: 1}
	w := NewWatcher(config.Default(), project, sink, t.Logf)

	_, err := w.RunOnce(context.Background())
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(root, report.FocusFileName))
	require.True(t, os.IsNotExist(statErr))

	// Nothing changed on disk, but the failed write left the baseline
	// uncommitted: the next cycle writes the report instead of treating
	// the project as unchanged.
	wrote, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, wrote)

	_, err = os.Stat(filepath.Join(root, report.FocusFileName))
	require.NoError(t, err)
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	root, project := testProject(t)
	w := NewWatcher(config.Default(), project, report.NewAtomicSink(root), t.Logf)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Let the first cycle complete, then cancel out of the sleep.
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
	assert.Equal(t, StateStopped, w.State())
}

func TestWatcher_KickEndsSleepEarly(t *testing.T) {
	root, project := testProject(t)
	project.UpdateIntervalSeconds = 3600
	w := NewWatcher(config.Default(), project, report.NewAtomicSink(root), t.Logf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// First cycle runs immediately; wait for the sleep phase.
	require.Eventually(t, func() bool { return w.State() == StateSleeping }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "extra.py"), []byte("def extra():\n    return 1\n"), 0644))
	w.Kick()

	// The kicked cycle picks up the new file long before the hour-long
	// interval would have elapsed.
	require.Eventually(t, func() bool {
		content, err := os.ReadFile(filepath.Join(root, report.FocusFileName))
		return err == nil && strings.Contains(string(content), "extra.py")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	<-done
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "scanning", StateScanning.String())
	assert.Equal(t, "sleeping", StateSleeping.String())
	assert.Equal(t, "stopped", StateStopped.String())
}
