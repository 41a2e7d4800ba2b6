package report

import (
	"fmt"
	"strings"

	"github.com/focuscope/focuscope/config"
	"github.com/focuscope/focuscope/scanner/models"
	"github.com/focuscope/focuscope/utils"
	"github.com/zeebo/xxh3"
)

// FocusFileName is the report written into each monitored project root.
const FocusFileName = "Focus.md"

const generatedAtPrefix = "*Generated at:"

// Renderer turns a snapshot into the Focus.md markdown document. Rendering
// is deterministic: the same snapshot always yields byte-identical output
// up to the generated-at footer.
type Renderer struct {
	cfg *config.Config
}

func NewRenderer(cfg *config.Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// Render produces the full report and its fingerprint.
func (r *Renderer) Render(snapshot *models.ScanSnapshot) *models.RenderedReport {
	var b strings.Builder

	r.writeHeader(&b, snapshot)
	r.writeTree(&b, snapshot)
	r.writeFileAnalysis(&b, snapshot)
	r.writeDuplicates(&b, snapshot)
	r.writeIssues(&b, snapshot)

	fmt.Fprintf(&b, "%s %s*\n", generatedAtPrefix, snapshot.ScannedAt.Format("2006-01-02 15:04:05"))

	content := b.String()
	return &models.RenderedReport{
		Content:     content,
		Fingerprint: Fingerprint(content),
	}
}

// Fingerprint hashes report content with the generated-at line excluded, so
// two reports differing only in timestamp compare equal.
func Fingerprint(content string) uint64 {
	var b strings.Builder
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, generatedAtPrefix) {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return xxh3.HashString(b.String())
}

func (r *Renderer) writeHeader(b *strings.Builder, snapshot *models.ScanSnapshot) {
	fmt.Fprintf(b, "# Project Focus: %s\n\n", snapshot.ProjectName)
	fmt.Fprintf(b, "**Project Type:** %s\n", utils.ProjectTypeDescription(snapshot.ProjectType))
	fmt.Fprintf(b, "**Total Files:** %d\n", snapshot.TotalFiles)
	fmt.Fprintf(b, "**Total Lines:** %d\n\n", snapshot.TotalLines)
}

func (r *Renderer) writeTree(b *strings.Builder, snapshot *models.ScanSnapshot) {
	b.WriteString("## Project Structure\n\n")
	b.WriteString("```\n")
	fmt.Fprintf(b, "📁 %s\n", snapshot.Root.Name)
	writeTreeNode(b, snapshot.Root, "")
	b.WriteString("```\n\n")
}

// writeTreeNode renders one directory's children. Directories come before
// files, each already lexicographically ordered by the scanner.
func writeTreeNode(b *strings.Builder, node *models.DirectoryNode, prefix string) {
	total := len(node.Dirs) + len(node.Files)
	index := 0

	connector := func() (string, string) {
		index++
		if index == total {
			return "└─ ", "   "
		}
		return "├─ ", "│  "
	}

	for _, dir := range node.Dirs {
		branch, childIndent := connector()
		fmt.Fprintf(b, "%s%s📁 %s\n", prefix, branch, dir.Name)
		writeTreeNode(b, dir, prefix+childIndent)
	}
	for _, file := range node.Files {
		branch, _ := connector()
		name := file.Path
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		fmt.Fprintf(b, "%s%s📄 %s (%d lines)\n", prefix, branch, name, file.LineCount)
	}
}

func (r *Renderer) writeFileAnalysis(b *strings.Builder, snapshot *models.ScanSnapshot) {
	files := snapshot.AllFiles()
	if len(files) == 0 {
		return
	}

	b.WriteString("## File Analysis\n\n")
	for _, file := range files {
		fmt.Fprintf(b, "### 📄 %s\n", file.Path)
		fmt.Fprintf(b, "**Lines:** %d", file.LineCount)
		if alert := r.lengthAlert(file); alert != "" {
			fmt.Fprintf(b, " %s", alert)
		}
		b.WriteString("\n")
		if file.Language != "" {
			fmt.Fprintf(b, "**Language:** %s\n", file.Language)
		}
		if len(file.Functions) > 0 {
			b.WriteString("\n**Functions:**\n")
			for _, function := range file.Functions {
				fmt.Fprintf(b, "- `%s` (line %d): %s\n", function.Name, function.StartLine, function.Description)
			}
		}
		b.WriteString("\n")
	}
}

// lengthAlert compares a file's line count against its category standard
// scaled by the configured thresholds. An empty string means within limits.
func (r *Renderer) lengthAlert(file models.FileEntry) string {
	limit := r.cfg.LengthLimitFor(string(file.Category))
	if limit <= 0 {
		return ""
	}
	ratio := float64(file.LineCount) / float64(limit)
	th := r.cfg.LengthThresholds
	switch {
	case ratio > th.Severe:
		return fmt.Sprintf("🚨 Critical-Length Alert: File is excessively long (recommended: %d lines)", limit)
	case ratio > th.Critical:
		return fmt.Sprintf("⚠️ High-Length Alert: File significantly exceeds recommended length (recommended: %d lines)", limit)
	case ratio > th.Warning:
		return fmt.Sprintf("📄 Length Alert: File exceeds recommended length (recommended: %d lines)", limit)
	default:
		return ""
	}
}

func (r *Renderer) writeDuplicates(b *strings.Builder, snapshot *models.ScanSnapshot) {
	if len(snapshot.Duplicates) == 0 {
		return
	}

	b.WriteString("## Duplicate Code\n\n")
	for _, group := range snapshot.Duplicates {
		switch group.Kind {
		case models.DuplicateFile:
			fmt.Fprintf(b, "**Identical files** (%d copies):\n", len(group.Members))
			for _, member := range group.Members {
				fmt.Fprintf(b, "- %s\n", member.Path)
			}
		case models.DuplicateFunction:
			fmt.Fprintf(b, "**Identical functions** (%d copies):\n", len(group.Members))
			for _, member := range group.Members {
				fmt.Fprintf(b, "- `%s` in %s (line %d)\n", member.Name, member.Path, member.StartLine)
			}
		}
		b.WriteString("\n")
	}
}

func (r *Renderer) writeIssues(b *strings.Builder, snapshot *models.ScanSnapshot) {
	warnings := snapshot.AllWarnings()
	if len(warnings) == 0 {
		return
	}

	b.WriteString("## Scan Issues\n\n")
	for _, warning := range warnings {
		path := warning.Path
		if path == "" {
			path = "."
		}
		fmt.Fprintf(b, "- ⚠️ %s: %s\n", path, warning.Reason)
	}
	b.WriteString("\n")
}
