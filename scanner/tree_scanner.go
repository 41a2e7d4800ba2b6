package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/focuscope/focuscope/config"
	"github.com/focuscope/focuscope/scanner/models"
	"github.com/focuscope/focuscope/utils"
)

// TreeScanner walks a project tree and produces immutable snapshots. One
// scanner instance serves one project; cycles are strictly sequential.
type TreeScanner struct {
	cfg      *config.Config
	analyzer *FileAnalyzer
	detector *DuplicateDetector
}

func NewTreeScanner(cfg *config.Config) *TreeScanner {
	return &TreeScanner{
		cfg:      cfg,
		analyzer: NewFileAnalyzer(cfg),
		detector: NewDuplicateDetector(cfg.MinDuplicateTokens),
	}
}

// scanFrame is one pending directory in the explicit traversal worklist.
// Using a worklist instead of recursion makes the max-depth cutoff and
// traversal order an explicit property rather than call-stack behavior.
type scanFrame struct {
	node  *models.DirectoryNode
	depth int
}

// Scan performs one full scan cycle. A missing or unreadable root aborts
// only this cycle; per-node failures become warnings on the affected node.
func (s *TreeScanner) Scan(ctx context.Context, project config.ProjectConfig) (*models.ScanSnapshot, error) {
	started := time.Now()

	rootPath, err := filepath.Abs(project.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving project root %s: %w", project.Path, err)
	}
	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("project root %s is not accessible: %w", rootPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", rootPath)
	}

	filter := NewPathFilter(s.cfg, rootPath)
	maxDepth := s.cfg.DepthFor(project)

	root := &models.DirectoryNode{Path: "", Name: filepath.Base(rootPath)}

	// Depth 0 is the root itself; a directory at depth == maxDepth is
	// listed but never descended into.
	stack := []scanFrame{}
	if maxDepth > 0 {
		stack = append(stack, scanFrame{node: root, depth: 0})
	}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := s.expand(frame, rootPath, filter, maxDepth)
		if err != nil {
			frame.node.Warnings = append(frame.node.Warnings, models.Warning{
				Path:   frame.node.Path,
				Reason: fmt.Sprintf("directory unreadable: %v", err),
			})
			continue
		}
		// Push in reverse so lexicographically first directories are
		// expanded first.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	aggregate(root)

	snapshot := &models.ScanSnapshot{
		ProjectName: projectName(project, rootPath),
		ProjectType: projectType(project, rootPath),
		RootPath:    rootPath,
		ScannedAt:   started,
		Duration:    time.Since(started),
		Root:        root,
		TotalFiles:  root.FileCount,
		TotalLines:  root.TotalLines,
	}
	snapshot.Duplicates = s.detector.FindDuplicates(snapshot.AllFiles())
	return snapshot, nil
}

// expand lists one directory: analyzes its files, creates child nodes and
// returns the frames to descend into.
func (s *TreeScanner) expand(frame scanFrame, rootPath string, filter *PathFilter, maxDepth int) ([]scanFrame, error) {
	absDir := filepath.Join(rootPath, filepath.FromSlash(frame.node.Path))
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var frames []scanFrame
	for _, entry := range entries {
		relPath := entry.Name()
		if frame.node.Path != "" {
			relPath = frame.node.Path + "/" + entry.Name()
		}

		// Symlinks are never followed; this keeps the tree cycle-free.
		if entry.Type()&fs.ModeSymlink != 0 {
			continue
		}

		if entry.IsDir() {
			if filter.IsIgnored(relPath, true) {
				continue
			}
			child := &models.DirectoryNode{Path: relPath, Name: entry.Name()}
			frame.node.Dirs = append(frame.node.Dirs, child)
			if frame.depth+1 < maxDepth {
				frames = append(frames, scanFrame{node: child, depth: frame.depth + 1})
			}
			continue
		}

		if filter.IsIgnored(relPath, false) {
			continue
		}

		fileEntry, err := s.analyzer.Analyze(filepath.Join(absDir, entry.Name()), relPath)
		if err != nil {
			if skip, ok := err.(*SkipError); ok && skip.Silent {
				continue
			}
			frame.node.Warnings = append(frame.node.Warnings, models.Warning{Path: relPath, Reason: err.Error()})
			continue
		}
		frame.node.Files = append(frame.node.Files, *fileEntry)
	}

	return frames, nil
}

// aggregate accumulates line and file counts bottom-up.
func aggregate(node *models.DirectoryNode) {
	for _, file := range node.Files {
		node.FileCount++
		node.TotalLines += file.LineCount
	}
	for _, dir := range node.Dirs {
		aggregate(dir)
		node.FileCount += dir.FileCount
		node.TotalLines += dir.TotalLines
	}
}

func projectName(project config.ProjectConfig, rootPath string) string {
	if project.Name != "" {
		return project.Name
	}
	return filepath.Base(rootPath)
}

func projectType(project config.ProjectConfig, rootPath string) string {
	if project.Type != "" {
		return project.Type
	}
	return utils.DetectProjectType(rootPath)
}
