package report

import (
	"fmt"
	"strings"

	"github.com/focuscope/focuscope/scanner/models"
	"github.com/zeebo/xxh3"
)

// ChangeTracker decides whether a snapshot differs materially from the last
// committed one. Scan timestamps and durations are excluded from the
// comparison, so two scans of an unchanged tree never count as a change.
type ChangeTracker struct {
	previous uint64
	seen     bool
}

func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{}
}

// HasMaterialChange reports whether the snapshot differs from the committed
// baseline. The first snapshot is always a material change. The baseline is
// not updated here; call Commit once the report is safely persisted.
func (t *ChangeTracker) HasMaterialChange(snapshot *models.ScanSnapshot) bool {
	return !t.seen || CanonicalHash(snapshot) != t.previous
}

// Commit records the snapshot as the rendered baseline. Committing only
// after a successful write keeps a failed write retryable: the next cycle
// still sees the snapshot as a material change.
func (t *ChangeTracker) Commit(snapshot *models.ScanSnapshot) {
	t.previous = CanonicalHash(snapshot)
	t.seen = true
}

// CanonicalHash folds every structural fact of a snapshot into one value:
// tree shape, per-file metrics, function signatures, duplicate groups and
// warnings. ScannedAt and Duration are deliberately left out.
func CanonicalHash(snapshot *models.ScanSnapshot) uint64 {
	var b strings.Builder

	fmt.Fprintf(&b, "project\x00%s\x00%s\n", snapshot.ProjectName, snapshot.ProjectType)
	if snapshot.Root != nil {
		hashNode(&b, snapshot.Root)
	}
	for _, group := range snapshot.Duplicates {
		fmt.Fprintf(&b, "dup\x00%s\x00%d\n", group.Kind, group.Hash)
		for _, member := range group.Members {
			fmt.Fprintf(&b, "member\x00%s\x00%s\x00%d\n", member.Path, member.Name, member.StartLine)
		}
	}
	for _, warning := range snapshot.Warnings {
		fmt.Fprintf(&b, "warn\x00%s\x00%s\n", warning.Path, warning.Reason)
	}

	return xxh3.HashString(b.String())
}

func hashNode(b *strings.Builder, node *models.DirectoryNode) {
	fmt.Fprintf(b, "dir\x00%s\n", node.Path)
	for _, file := range node.Files {
		fmt.Fprintf(b, "file\x00%s\x00%d\x00%d\x00%d\n", file.Path, file.Size, file.LineCount, file.FileHash)
		for _, function := range file.Functions {
			fmt.Fprintf(b, "func\x00%s\x00%d\x00%s\x00%d\n", function.Name, function.StartLine, function.Description, function.BodyHash)
		}
	}
	for _, warning := range node.Warnings {
		fmt.Fprintf(b, "warn\x00%s\x00%s\n", warning.Path, warning.Reason)
	}
	for _, dir := range node.Dirs {
		hashNode(b, dir)
	}
}
