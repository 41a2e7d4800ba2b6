package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/focuscope/focuscope/scanner/models"
	"github.com/focuscope/focuscope/utils"
)

// Sink persists a rendered report for one project.
type Sink interface {
	// Write stores the report and reports whether anything was written.
	// Implementations skip the write when on-disk content already matches
	// the report's fingerprint.
	Write(rendered *models.RenderedReport) (bool, error)
	// Path returns the destination the sink writes to.
	Path() string
}

// AtomicSink writes Focus.md into the project root via a temp file and
// rename, so readers never observe a partially written report.
type AtomicSink struct {
	path string
}

func NewAtomicSink(projectRoot string) *AtomicSink {
	return &AtomicSink{path: filepath.Join(projectRoot, FocusFileName)}
}

func (s *AtomicSink) Path() string { return s.path }

func (s *AtomicSink) Write(rendered *models.RenderedReport) (bool, error) {
	if existing, err := os.ReadFile(s.path); err == nil {
		if Fingerprint(string(existing)) == rendered.Fingerprint {
			return false, nil
		}
	}
	if err := utils.WriteFileAtomic(s.path, []byte(rendered.Content)); err != nil {
		return false, fmt.Errorf("writing report %s: %w", s.path, err)
	}
	return true, nil
}
