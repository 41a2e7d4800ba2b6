package review

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/focuscope/focuscope/embed_data"
	"github.com/focuscope/focuscope/providers/contracts"
	"github.com/focuscope/focuscope/report"
	"github.com/focuscope/focuscope/scanner/models"
	"github.com/focuscope/focuscope/utils"
)

// ReviewFileName is the AI code review written into the project root.
const ReviewFileName = "CodeReview.md"

// RulesFileName is the editor rules file written into the project root.
const RulesFileName = ".cursorrules"

const truncationMarker = "\n\n[analysis context truncated]\n"

// Generator produces AI-assisted documents from a scan snapshot. The
// provider streams markdown which is echoed to the terminal and persisted
// atomically.
type Generator struct {
	Provider  contracts.IChatAIProvider
	Renderer  *report.Renderer
	Theme     string
	CharLimit int
}

// BuildContext renders the snapshot into the textual context handed to the
// AI provider, truncated at the configured character limit.
func (g *Generator) BuildContext(snapshot *models.ScanSnapshot) string {
	content := g.Renderer.Render(snapshot).Content
	if g.CharLimit > 0 && len(content) > g.CharLimit {
		cut := g.CharLimit
		// Back off to a rune boundary so truncation never splits a
		// multi-byte character.
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut] + truncationMarker
	}
	return content
}

// GenerateReview asks the provider for a code review of the snapshot and
// writes CodeReview.md into the project root.
func (g *Generator) GenerateReview(ctx context.Context, snapshot *models.ScanSnapshot) error {
	content, err := g.complete(ctx, snapshot, string(embed_data.CodeReviewPrompt))
	if err != nil {
		return err
	}
	path := filepath.Join(snapshot.RootPath, ReviewFileName)
	if err := utils.WriteFileAtomic(path, []byte(content)); err != nil {
		return fmt.Errorf("writing review %s: %w", path, err)
	}
	return nil
}

// GenerateRules asks the provider for editor rules derived from the
// snapshot and writes .cursorrules into the project root.
func (g *Generator) GenerateRules(ctx context.Context, snapshot *models.ScanSnapshot) error {
	content, err := g.complete(ctx, snapshot, string(embed_data.CursorRulesPrompt))
	if err != nil {
		return err
	}
	path := filepath.Join(snapshot.RootPath, RulesFileName)
	if err := utils.WriteFileAtomic(path, []byte(content)); err != nil {
		return fmt.Errorf("writing rules %s: %w", path, err)
	}
	return nil
}

// complete streams one completion, rendering chunks to the terminal as
// they arrive, and returns the accumulated text.
func (g *Generator) complete(ctx context.Context, snapshot *models.ScanSnapshot, prompt string) (string, error) {
	userInput := g.BuildContext(snapshot)

	var b strings.Builder
	for chunk := range g.Provider.ChatCompletionRequest(ctx, userInput, prompt) {
		if chunk.Err != nil {
			return "", fmt.Errorf("ai completion failed: %w", chunk.Err)
		}
		if chunk.Done {
			break
		}
		if chunk.Content == "" {
			continue
		}
		b.WriteString(chunk.Content)
		language := utils.DetectLanguageFromCodeBlock(chunk.Content)
		if err := utils.RenderAndPrintMarkdownWithContext(ctx, chunk.Content, language, g.Theme); err != nil {
			return "", err
		}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("ai provider returned an empty response")
	}
	return b.String(), nil
}
