package utils

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// RenderAndPrintMarkdownWithContext renders streamed markdown content to
// the terminal with syntax highlighting and cancellation support.
func RenderAndPrintMarkdownWithContext(ctx context.Context, content string, language string, theme string) error {
	lines := strings.Split(content, "\n")

	for i, line := range lines {
		select {
		case <-ctx.Done():
			fmt.Printf("\n\nOutput interrupted...\n")
			return ctx.Err()
		default:
		}

		var buf bytes.Buffer
		if err := quick.Highlight(&buf, line+"\n", language, "terminal256", theme); err != nil {
			return err
		}
		fmt.Print(buf.String())

		// Check more frequently than once per chunk so interruption stays
		// responsive on large outputs.
		if i%5 == 0 {
			select {
			case <-ctx.Done():
				fmt.Printf("\n\nOutput interrupted...\n")
				return ctx.Err()
			default:
			}
		}
	}

	return nil
}

// DetectLanguageFromCodeBlock returns the language tag of the first fenced
// code block in content, defaulting to markdown.
func DetectLanguageFromCodeBlock(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") && len(trimmed) > 3 {
			return strings.TrimPrefix(trimmed, "```")
		}
	}
	return "markdown"
}
