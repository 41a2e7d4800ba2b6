package models

import "time"

// FileCategory classifies a file for line-length standards and reporting.
type FileCategory string

const (
	CategoryScript     FileCategory = "script"
	CategoryStyle      FileCategory = "style"
	CategoryMarkup     FileCategory = "markup"
	CategoryStructured FileCategory = "structured"
	CategoryDocs       FileCategory = "docs"
	CategoryOther      FileCategory = "other"
)

// FunctionSignature is one extracted top-level function.
// (Name, StartLine) is unique within a file; BodyHash is the normalized
// content hash used for duplicate detection.
type FunctionSignature struct {
	Name        string
	StartLine   int
	Description string
	BodyHash    uint64
	TokenCount  int
}

// FileEntry is the analysis result for a single file. It is created once
// per scan cycle and never mutated afterwards.
type FileEntry struct {
	Path       string // relative to project root, forward slashes
	Size       int64
	LineCount  int
	Language   string
	Category   FileCategory
	FileHash   uint64 // normalized whole-file hash
	TokenCount int    // tokens in the normalized content
	Functions  []FunctionSignature
}

// Warning records a non-fatal problem attached to a node or file.
type Warning struct {
	Path   string
	Reason string
}

// DirectoryNode forms the scanned tree. Children are ordered: Dirs and
// Files are each sorted lexicographically by name.
type DirectoryNode struct {
	Path       string // relative to project root, "" for the root itself
	Name       string
	Dirs       []*DirectoryNode
	Files      []FileEntry
	TotalLines int
	FileCount  int
	Warnings   []Warning
}

// DuplicateKind distinguishes whole-file from function-body duplicates.
type DuplicateKind string

const (
	DuplicateFile     DuplicateKind = "file"
	DuplicateFunction DuplicateKind = "function"
)

// DuplicateLocation is one member of a DuplicateGroup.
type DuplicateLocation struct {
	Path      string
	Name      string // function name, empty for whole-file duplicates
	StartLine int
	Kind      DuplicateKind
}

// DuplicateGroup is a set of locations sharing a normalized content hash.
// Cardinality is always >= 2.
type DuplicateGroup struct {
	Hash    uint64
	Kind    DuplicateKind
	Members []DuplicateLocation
}

// ScanSnapshot is the complete, immutable result of one directory scan.
type ScanSnapshot struct {
	ProjectName string
	ProjectType string
	RootPath    string
	ScannedAt   time.Time
	Duration    time.Duration
	Root        *DirectoryNode
	TotalFiles  int
	TotalLines  int
	Duplicates  []DuplicateGroup
	Warnings    []Warning
}

// RenderedReport is the textual report derived from a snapshot. Fingerprint
// hashes the content with the generated-at line excluded, so unchanged
// snapshots render to the same fingerprint across cycles.
type RenderedReport struct {
	Content     string
	Fingerprint uint64
}

// AllFiles flattens the tree into a path-ordered file list.
func (s *ScanSnapshot) AllFiles() []FileEntry {
	if s.Root == nil {
		return nil
	}
	return s.Root.allFiles(nil)
}

func (n *DirectoryNode) allFiles(acc []FileEntry) []FileEntry {
	acc = append(acc, n.Files...)
	for _, dir := range n.Dirs {
		acc = dir.allFiles(acc)
	}
	return acc
}

// AllWarnings collects node-level and snapshot-level warnings in tree order.
func (s *ScanSnapshot) AllWarnings() []Warning {
	var acc []Warning
	if s.Root != nil {
		acc = s.Root.allWarnings(acc)
	}
	return append(acc, s.Warnings...)
}

func (n *DirectoryNode) allWarnings(acc []Warning) []Warning {
	acc = append(acc, n.Warnings...)
	for _, dir := range n.Dirs {
		acc = dir.allWarnings(acc)
	}
	return acc
}
