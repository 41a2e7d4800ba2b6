package scanner

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/focuscope/focuscope/config"
	"github.com/focuscope/focuscope/scanner/models"
)

// SkipError signals that a file was deliberately excluded from the
// snapshot. Silent skips (known binary extensions) produce no warning;
// the rest surface in the report's issues section.
type SkipError struct {
	Reason string
	Silent bool
}

func (e *SkipError) Error() string { return e.Reason }

// binaryProbeSize bounds the prefix read used for the null-byte heuristic.
const binaryProbeSize = 1024

// FileAnalyzer computes per-file metrics and function listings. Safe for
// use from a single scan worker; it holds no per-file state.
type FileAnalyzer struct {
	cfg        *config.Config
	registry   *LanguageRegistry
	binaryExts map[string]struct{}
}

func NewFileAnalyzer(cfg *config.Config) *FileAnalyzer {
	binaryExts := make(map[string]struct{})
	for _, ext := range cfg.BinaryExtensions {
		binaryExts[strings.ToLower(ext)] = struct{}{}
	}
	return &FileAnalyzer{
		cfg:        cfg,
		registry:   NewLanguageRegistry(),
		binaryExts: binaryExts,
	}
}

// Analyze reads and analyzes one file. It returns a *SkipError for files
// excluded by policy (binary, oversized) and ordinary errors for files
// that could not be read; both are per-file conditions, never fatal to
// the scan.
func (a *FileAnalyzer) Analyze(absPath, relPath string) (*models.FileEntry, error) {
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat failed: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(relPath))
	if _, ok := a.binaryExts[ext]; ok {
		return nil, &SkipError{Reason: "binary extension", Silent: true}
	}

	if info.Size() > a.cfg.MaxFileSizeBytes {
		return nil, &SkipError{Reason: fmt.Sprintf("file exceeds size ceiling (%d bytes)", info.Size())}
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read failed: %w", err)
	}

	probe := content
	if len(probe) > binaryProbeSize {
		probe = probe[:binaryProbeSize]
	}
	if bytes.IndexByte(probe, 0) >= 0 {
		return nil, &SkipError{Reason: "binary content"}
	}

	rule := a.registry.RuleFor(ext)

	entry := &models.FileEntry{
		Path:       filepath.ToSlash(relPath),
		Size:       info.Size(),
		LineCount:  countLines(content),
		Language:   rule.Language(),
		Category:   rule.Category(),
		FileHash:   NormalizedHash(string(content)),
		TokenCount: TokenCount(string(content)),
	}

	spans, err := rule.Extract(content)
	if err != nil {
		// Extraction trouble degrades the listing, not the scan: the file
		// stays in the snapshot with metrics only.
		return entry, nil
	}

	lines := strings.Split(string(content), "\n")
	entry.Functions = a.buildSignatures(spans, lines)
	return entry, nil
}

// buildSignatures hashes bodies, derives descriptions, de-duplicates by
// (name, start line) and appends in-file duplicate notes.
func (a *FileAnalyzer) buildSignatures(spans []functionSpan, lines []string) []models.FunctionSignature {
	type firstSeen struct {
		name string
		line int
	}

	seen := make(map[string]struct{})
	firstByHash := make(map[uint64]firstSeen)
	var signatures []models.FunctionSignature

	for _, span := range spans {
		key := fmt.Sprintf("%s:%d", span.Name, span.StartLine)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		bodyHash := NormalizedHash(span.Body)
		tokens := TokenCount(span.Body)
		description := describeFunction(span, lines)

		if tokens >= a.cfg.MinDuplicateTokens {
			if first, ok := firstByHash[bodyHash]; ok {
				description += fmt.Sprintf(" 🔄 Duplicate of %s (line %d)", first.name, first.line)
			} else {
				firstByHash[bodyHash] = firstSeen{name: span.Name, line: span.StartLine}
			}
		}

		signatures = append(signatures, models.FunctionSignature{
			Name:        span.Name,
			StartLine:   span.StartLine,
			Description: description,
			BodyHash:    bodyHash,
			TokenCount:  tokens,
		})
	}

	return signatures
}

// countLines counts newline occurrences; a trailing partial line counts as
// one line.
func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	count := bytes.Count(content, []byte("\n"))
	if content[len(content)-1] != '\n' {
		count++
	}
	return count
}

const maxDescriptionLen = 120

// describeFunction produces the one-line description: the comment or
// docstring adjacent to the signature when present, otherwise a
// deterministic placeholder derived from the function name. No model call
// happens on this path.
func describeFunction(span functionSpan, lines []string) string {
	if comment := leadingComment(lines, span.StartLine); comment != "" {
		return truncateLine(comment)
	}
	if doc := pythonDocstring(span.Body); doc != "" {
		return truncateLine(doc)
	}
	return placeholderDescription(span.Name)
}

// leadingComment walks upward from the line above the signature and
// returns the first text of a contiguous comment block.
func leadingComment(lines []string, startLine int) string {
	var collected []string
	start := startLine - 2
	if start >= len(lines) {
		start = len(lines) - 1
	}
	for i := start; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(line, "//"):
			collected = append([]string{strings.TrimSpace(strings.TrimLeft(line, "/ "))}, collected...)
		case strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "#!"):
			collected = append([]string{strings.TrimSpace(strings.TrimLeft(line, "# "))}, collected...)
		case strings.HasPrefix(line, "*") || strings.HasPrefix(line, "/*") || strings.HasPrefix(line, "*/"):
			cleaned := strings.TrimSpace(strings.Trim(line, "/* "))
			if cleaned != "" && !strings.HasPrefix(cleaned, "@") {
				collected = append([]string{cleaned}, collected...)
			}
		default:
			if len(collected) > 0 || line != "" {
				return strings.Join(collected, " ")
			}
		}
	}
	return strings.Join(collected, " ")
}

var docstringPattern = regexp.MustCompile(`(?s)^[^\n]*\n\s*(?:'''|""")(.*?)(?:'''|""")`)

// pythonDocstring extracts the first line of a docstring directly under
// the signature line.
func pythonDocstring(body string) string {
	matches := docstringPattern.FindStringSubmatch(body)
	if matches == nil {
		return ""
	}
	for _, line := range strings.Split(matches[1], "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// verbDescriptions maps leading name verbs to description templates,
// mirroring the original name-analysis heuristics.
var verbDescriptions = map[string]string{
	"is": "Checks whether %s", "has": "Checks whether %s", "should": "Checks whether %s", "can": "Checks whether %s",
	"get": "Retrieves %s", "fetch": "Retrieves %s", "find": "Retrieves %s", "load": "Retrieves %s",
	"set": "Updates %s", "update": "Updates %s", "apply": "Updates %s",
	"calc": "Calculates %s", "compute": "Calculates %s", "calculate": "Calculates %s",
	"handle": "Processes %s", "process": "Processes %s", "parse": "Processes %s",
	"validate": "Validates %s", "verify": "Validates %s", "check": "Validates %s",
	"create": "Creates %s", "new": "Creates %s", "init": "Creates %s", "make": "Creates %s", "build": "Creates %s",
	"render": "Renders %s", "write": "Writes %s", "read": "Reads %s",
	"sort": "Sorts %s", "delete": "Removes %s", "remove": "Removes %s",
}

func placeholderDescription(name string) string {
	parts := splitIdentifier(name)
	if len(parts) == 0 {
		return "Function in this file"
	}
	verb := strings.ToLower(parts[0])
	subject := strings.ToLower(strings.Join(parts[1:], " "))
	if subject == "" {
		subject = "state"
	}
	if template, ok := verbDescriptions[verb]; ok {
		return fmt.Sprintf(template, subject)
	}
	return fmt.Sprintf("Implements %s", strings.ToLower(strings.Join(parts, " ")))
}

// splitIdentifier breaks camelCase and snake_case names into words.
func splitIdentifier(name string) []string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = nil
		}
	}
	for _, r := range name {
		switch {
		case r == '_' || r == '-':
			flush()
		case unicode.IsUpper(r):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()
	return words
}

func truncateLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	if len(s) > maxDescriptionLen {
		cut := maxDescriptionLen - 3
		// Back off to a rune boundary so the cut never emits invalid UTF-8.
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}
