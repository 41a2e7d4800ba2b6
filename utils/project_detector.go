package utils

import (
	"os"
	"path/filepath"
)

// projectIndicator maps a project type to the files whose presence
// identifies it. First match wins; order matters (bun before node, since
// bun projects usually carry a package.json too).
type projectIndicator struct {
	Type        string
	Description string
	Indicators  []string
}

var projectIndicators = []projectIndicator{
	{Type: "bun", Description: "Bun Project", Indicators: []string{"bun.lockb", "bun.toml", "bunfig.toml"}},
	{Type: "chrome_extension", Description: "Chrome Extension", Indicators: []string{"manifest.json"}},
	{Type: "go", Description: "Go Module", Indicators: []string{"go.mod"}},
	{Type: "react", Description: "React Application", Indicators: []string{"src/App.js", "src/App.tsx"}},
	{Type: "node_js", Description: "Node.js Project", Indicators: []string{"package.json"}},
	{Type: "python", Description: "Python Project", Indicators: []string{"setup.py", "pyproject.toml", "requirements.txt"}},
	{Type: "rust", Description: "Rust Crate", Indicators: []string{"Cargo.toml"}},
}

// DetectProjectType inspects indicator files in the project root and
// returns a type name, or "generic" when nothing matches.
func DetectProjectType(rootPath string) string {
	for _, candidate := range projectIndicators {
		for _, indicator := range candidate.Indicators {
			if _, err := os.Stat(filepath.Join(rootPath, filepath.FromSlash(indicator))); err == nil {
				return candidate.Type
			}
		}
	}
	return "generic"
}

// ProjectTypeDescription returns the human-readable description for a
// detected type.
func ProjectTypeDescription(projectType string) string {
	for _, candidate := range projectIndicators {
		if candidate.Type == projectType {
			return candidate.Description
		}
	}
	return "Generic Project"
}
