package watcher

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/focuscope/focuscope/config"
	"github.com/focuscope/focuscope/report"
	"github.com/focuscope/focuscope/scanner"
	"golang.org/x/sync/errgroup"
)

// State is the watcher's position in its scan cycle, exposed for logging
// and tests.
type State int32

const (
	StateIdle State = iota
	StateScanning
	StateComparing
	StateRendering
	StateSleeping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateComparing:
		return "comparing"
	case StateRendering:
		return "rendering"
	case StateSleeping:
		return "sleeping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Watcher runs the scan cycle for one project: scan, compare, render,
// write, sleep. Cycles never overlap; a cycle that runs long simply delays
// the next one.
type Watcher struct {
	project  config.ProjectConfig
	cfg      *config.Config
	scanner  *scanner.TreeScanner
	tracker  *report.ChangeTracker
	renderer *report.Renderer
	sink     report.Sink

	interval time.Duration
	kick     chan struct{}
	state    atomic.Int32
	logf     func(format string, args ...any)
}

func NewWatcher(cfg *config.Config, project config.ProjectConfig, sink report.Sink, logf func(format string, args ...any)) *Watcher {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Watcher{
		project:  project,
		cfg:      cfg,
		scanner:  scanner.NewTreeScanner(cfg),
		tracker:  report.NewChangeTracker(),
		renderer: report.NewRenderer(cfg),
		sink:     sink,
		interval: time.Duration(cfg.IntervalFor(project)) * time.Second,
		kick:     make(chan struct{}, 1),
		logf:     logf,
	}
}

// State returns the watcher's current cycle phase.
func (w *Watcher) State() State {
	return State(w.state.Load())
}

func (w *Watcher) setState(s State) {
	w.state.Store(int32(s))
}

// Kick requests an immediate cycle, ending the current sleep early. Kicks
// during a running cycle coalesce into at most one extra cycle.
func (w *Watcher) Kick() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// RunOnce executes a single scan cycle and reports whether the report was
// rewritten. A scan failure aborts only this cycle.
func (w *Watcher) RunOnce(ctx context.Context) (bool, error) {
	w.setState(StateScanning)
	snapshot, err := w.scanner.Scan(ctx, w.project)
	if err != nil {
		w.setState(StateIdle)
		return false, fmt.Errorf("scanning %s: %w", w.project.Path, err)
	}

	w.setState(StateComparing)
	if !w.tracker.HasMaterialChange(snapshot) {
		w.logf("%s: no material change, report left untouched", snapshot.ProjectName)
		w.setState(StateIdle)
		return false, nil
	}

	w.setState(StateRendering)
	rendered := w.renderer.Render(snapshot)
	wrote, err := w.sink.Write(rendered)
	w.setState(StateIdle)
	if err != nil {
		// The baseline stays uncommitted so the next cycle retries the
		// write even when the project itself has not changed again.
		return false, err
	}
	w.tracker.Commit(snapshot)
	if wrote {
		w.logf("%s: report updated (%d files, %d lines, %s)",
			snapshot.ProjectName, snapshot.TotalFiles, snapshot.TotalLines, snapshot.Duration.Round(time.Millisecond))
	}
	return wrote, nil
}

// Run loops scan cycles until the context is canceled. Cycle errors are
// logged and the loop continues; only cancellation ends it.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.setState(StateStopped)

	for {
		if _, err := w.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logf("%s: scan cycle failed: %v", w.project.Name, err)
		}

		w.setState(StateSleeping)
		timer := time.NewTimer(w.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-w.kick:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// RunAll runs one watcher per project concurrently and blocks until all
// stop. Per the one-scanner-per-project rule, projects never share state.
func RunAll(ctx context.Context, watchers []*Watcher) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, w := range watchers {
		w := w
		g.Go(func() error {
			return w.Run(ctx)
		})
	}
	return g.Wait()
}
