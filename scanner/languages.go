package scanner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/focuscope/focuscope/embed_data"
	"github.com/focuscope/focuscope/scanner/models"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// functionSpan is a raw extraction result before hashing and description.
type functionSpan struct {
	Name      string
	StartLine int // 1-based
	Body      string
}

// LanguageRule extracts top-level function-like spans from one file type.
// Extraction must be deterministic: identical input yields identical spans.
type LanguageRule interface {
	Language() string
	Category() models.FileCategory
	Extract(source []byte) ([]functionSpan, error)
}

// LanguageRegistry maps file extensions to rules, with a generic fallback
// for unrecognized extensions.
type LanguageRegistry struct {
	rules    map[string]LanguageRule
	fallback LanguageRule
}

// NewLanguageRegistry builds the default registry: tree-sitter rules for
// the grammars the parser ships with, regex rules where no binding is
// wired, and plain categorized rules for non-code files.
func NewLanguageRegistry() *LanguageRegistry {
	registry := &LanguageRegistry{
		rules:    make(map[string]LanguageRule),
		fallback: &plainRule{language: "plain", category: models.CategoryOther},
	}

	goRule := newTreeSitterRule("go", models.CategoryScript, golang.GetLanguage(), embed_data.GoQuery)
	pyRule := newTreeSitterRule("python", models.CategoryScript, python.GetLanguage(), embed_data.PythonQuery)
	jsRule := newTreeSitterRule("javascript", models.CategoryScript, javascript.GetLanguage(), embed_data.JavascriptQuery)
	tsRule := newTreeSitterRule("typescript", models.CategoryScript, typescript.GetLanguage(), embed_data.TypescriptQuery)
	javaRule := newTreeSitterRule("java", models.CategoryScript, java.GetLanguage(), embed_data.JavaQuery)
	csRule := newTreeSitterRule("csharp", models.CategoryScript, csharp.GetLanguage(), embed_data.CSharpQuery)

	registry.register(goRule, ".go")
	registry.register(pyRule, ".py")
	registry.register(jsRule, ".js", ".jsx", ".mjs", ".cjs")
	registry.register(tsRule, ".ts", ".tsx")
	registry.register(javaRule, ".java")
	registry.register(csRule, ".cs")

	// No tree-sitter binding wired for these; line patterns with brace
	// matching cover them well enough for signature listings.
	registry.register(newRegexRule("rust", regexp.MustCompile(`^\s*(?:pub\s+)?(?:async\s+)?fn\s+(\w+)`)), ".rs")
	registry.register(newRegexRule("php", regexp.MustCompile(`^\s*(?:public\s+|private\s+|protected\s+)?(?:static\s+)?function\s+(\w+)\s*\(`)), ".php")

	registry.register(&plainRule{language: "c", category: models.CategoryScript}, ".c", ".h", ".cpp", ".hpp", ".cc")
	registry.register(&plainRule{language: "shell", category: models.CategoryScript}, ".sh", ".bash")
	registry.register(&plainRule{language: "ruby", category: models.CategoryScript}, ".rb")
	registry.register(&plainRule{language: "css", category: models.CategoryStyle}, ".css", ".scss", ".sass", ".less")
	registry.register(&plainRule{language: "markup", category: models.CategoryMarkup}, ".html", ".htm", ".vue", ".svelte", ".xml")
	registry.register(&plainRule{language: "structured", category: models.CategoryStructured}, ".json", ".yaml", ".yml", ".toml", ".ini", ".cfg")
	registry.register(&plainRule{language: "docs", category: models.CategoryDocs}, ".md", ".markdown", ".rst", ".txt")

	return registry
}

func (r *LanguageRegistry) register(rule LanguageRule, extensions ...string) {
	for _, ext := range extensions {
		r.rules[ext] = rule
	}
}

// RuleFor returns the rule for a file extension (with leading dot,
// lower-cased by the caller), falling back to the generic rule.
func (r *LanguageRegistry) RuleFor(ext string) LanguageRule {
	if rule, ok := r.rules[ext]; ok {
		return rule
	}
	return r.fallback
}

// treeSitterRule extracts functions with a tree-sitter grammar and a set of
// tagged queries, each capturing @name and @definition.
type treeSitterRule struct {
	language string
	category models.FileCategory
	lang     *sitter.Language
	queries  map[string]string
}

func newTreeSitterRule(language string, category models.FileCategory, lang *sitter.Language, queryData []byte) *treeSitterRule {
	queries := make(map[string]string)
	if err := json.Unmarshal(queryData, &queries); err != nil {
		// Embedded queries are fixed at build time; a parse failure here
		// is a programming error.
		panic(fmt.Sprintf("invalid embedded query for %s: %v", language, err))
	}
	return &treeSitterRule{language: language, category: category, lang: lang, queries: queries}
}

func (r *treeSitterRule) Language() string { return r.language }

func (r *treeSitterRule) Category() models.FileCategory { return r.category }

func (r *treeSitterRule) Extract(source []byte) ([]functionSpan, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(r.lang)
	tree := parser.Parse(nil, source)
	if tree == nil {
		return nil, fmt.Errorf("%s: parse failed", r.language)
	}

	// Iterate queries in tag order for deterministic output.
	tags := make([]string, 0, len(r.queries))
	for tag := range r.queries {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	var spans []functionSpan
	for _, tag := range tags {
		query, err := sitter.NewQuery([]byte(r.queries[tag]), r.lang)
		if err != nil {
			return nil, fmt.Errorf("%s: compile query %q: %w", r.language, tag, err)
		}

		cursor := sitter.NewQueryCursor()
		cursor.Exec(query, tree.RootNode())

		for {
			match, ok := cursor.NextMatch()
			if !ok {
				break
			}

			var name string
			var startLine int
			var body string
			for _, capture := range match.Captures {
				switch query.CaptureNameForId(capture.Index) {
				case "name":
					name = capture.Node.Content(source)
				case "definition":
					startLine = int(capture.Node.StartPoint().Row) + 1
					body = capture.Node.Content(source)
				}
			}
			if name != "" && startLine > 0 {
				spans = append(spans, functionSpan{Name: name, StartLine: startLine, Body: body})
			}
		}
	}

	sortSpans(spans)
	return spans, nil
}

// regexRule finds signatures by line pattern and takes the body up to the
// matching closing brace, in the style of the original per-language
// heuristics.
type regexRule struct {
	language string
	pattern  *regexp.Regexp
}

func newRegexRule(language string, pattern *regexp.Regexp) *regexRule {
	return &regexRule{language: language, pattern: pattern}
}

func (r *regexRule) Language() string { return r.language }

func (r *regexRule) Category() models.FileCategory { return models.CategoryScript }

func (r *regexRule) Extract(source []byte) ([]functionSpan, error) {
	lines := strings.Split(string(source), "\n")
	var spans []functionSpan
	for i, line := range lines {
		matches := r.pattern.FindStringSubmatch(line)
		if matches == nil {
			continue
		}
		spans = append(spans, functionSpan{
			Name:      matches[1],
			StartLine: i + 1,
			Body:      braceDelimitedBody(lines, i),
		})
	}
	sortSpans(spans)
	return spans, nil
}

// braceDelimitedBody collects lines from the signature through the brace
// that closes its block. Falls back to the signature line alone when no
// opening brace is found nearby.
func braceDelimitedBody(lines []string, start int) string {
	depth := 0
	opened := false
	var body []string
	for i := start; i < len(lines); i++ {
		body = append(body, lines[i])
		for _, ch := range lines[i] {
			switch ch {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}
		if opened && depth <= 0 {
			return strings.Join(body, "\n")
		}
		if !opened && i-start > 2 {
			// Signature with no block within a few lines: trait/abstract
			// declarations and the like.
			return lines[start]
		}
	}
	return strings.Join(body, "\n")
}

// plainRule categorizes a file without extracting functions.
type plainRule struct {
	language string
	category models.FileCategory
}

func (r *plainRule) Language() string { return r.language }

func (r *plainRule) Category() models.FileCategory { return r.category }

func (r *plainRule) Extract([]byte) ([]functionSpan, error) { return nil, nil }

func sortSpans(spans []functionSpan) {
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].StartLine != spans[j].StartLine {
			return spans[i].StartLine < spans[j].StartLine
		}
		return spans[i].Name < spans[j].Name
	})
}
