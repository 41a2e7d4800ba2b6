package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/focuscope/focuscope/config"
)

// defaultIgnoredDirs are excluded from every scan regardless of
// configuration. Configured lists are additive.
var defaultIgnoredDirs = []string{
	".git",
	".svn",
	".hg",
	".idea",
	".vscode",
	".cache",
	"node_modules",
	"__pycache__",
	"venv",
	"dist",
	"build",
	"out",
	"bin",
	"obj",
	"coverage",
	"vendor",
}

// defaultIgnoredFiles keeps the tool's own outputs out of its snapshots, so
// rewriting Focus.md never counts as a material project change.
var defaultIgnoredFiles = []string{
	"Focus.md",
	"CodeReview.md",
	".cursorrules",
	".focusignore",
	"focus-config.yml",
	"focus-config.yaml",
	"focus-config.json",
}

// ignoreFileName is an optional gitignore-style file in the project root.
const ignoreFileName = ".focusignore"

// PathFilter decides whether a path is excluded from the scan. It is built
// once per scan cycle and is a pure function of (path, config) afterwards.
type PathFilter struct {
	ignoredDirs   map[string]struct{}
	fileGlobs     []string
	extraGlobs    []string // from .focusignore
	extraPrefixes []string // "dir/" entries from .focusignore
	negatedGlobs  []string // "!pattern" entries from .focusignore
}

// NewPathFilter builds a filter from configuration plus the project's
// .focusignore file, if present. An unreadable ignore file is treated as
// absent; it never fails the scan.
func NewPathFilter(cfg *config.Config, rootPath string) *PathFilter {
	filter := &PathFilter{
		ignoredDirs: make(map[string]struct{}),
	}
	for _, name := range defaultIgnoredDirs {
		filter.ignoredDirs[name] = struct{}{}
	}
	for _, name := range cfg.IgnoredDirectories {
		filter.ignoredDirs[name] = struct{}{}
	}
	filter.fileGlobs = append(filter.fileGlobs, defaultIgnoredFiles...)
	filter.fileGlobs = append(filter.fileGlobs, cfg.IgnoredFiles...)

	for _, pattern := range readIgnoreFile(filepath.Join(rootPath, ignoreFileName)) {
		switch {
		case strings.HasPrefix(pattern, "!"):
			filter.negatedGlobs = append(filter.negatedGlobs, strings.TrimPrefix(pattern, "!"))
		case strings.HasSuffix(pattern, "/"):
			filter.extraPrefixes = append(filter.extraPrefixes, pattern)
		default:
			filter.extraGlobs = append(filter.extraGlobs, pattern)
		}
	}

	return filter
}

// IsIgnored reports whether the relative path should be excluded. Directory
// name rules match any path segment exactly; file rules are shell globs
// matched case-sensitively against both the base name and the full path.
// A "!pattern" line in .focusignore re-includes paths its other lines would
// exclude; negation never overrides the built-in or configured lists.
func (f *PathFilter) IsIgnored(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	if relPath == "" || relPath == "." {
		return false
	}

	for _, segment := range strings.Split(relPath, "/") {
		if _, ok := f.ignoredDirs[segment]; ok {
			return true
		}
	}

	base := relPath[strings.LastIndex(relPath, "/")+1:]

	if isDir {
		if f.matchesPrefix(relPath + "/") {
			return !matchGlobs(f.negatedGlobs, base, relPath)
		}
		return false
	}

	if matchGlobs(f.fileGlobs, base, relPath) {
		return true
	}
	if matchGlobs(f.extraGlobs, base, relPath) || f.matchesPrefix(relPath) {
		return !matchGlobs(f.negatedGlobs, base, relPath)
	}
	return false
}

// matchGlobs matches shell patterns against a path's base name and its full
// relative form.
func matchGlobs(patterns []string, base, relPath string) bool {
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}

func (f *PathFilter) matchesPrefix(relPath string) bool {
	for _, prefix := range f.extraPrefixes {
		if strings.HasPrefix(relPath, prefix) {
			return true
		}
	}
	return false
}

// readIgnoreFile returns the non-comment lines of a .focusignore file.
// Supported line forms: shell globs, "dir/" prefixes, and "!glob" negation.
func readIgnoreFile(path string) []string {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns
}
