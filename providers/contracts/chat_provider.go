package contracts

import (
	"context"

	"github.com/focuscope/focuscope/providers/models"
)

// IChatAIProvider is the narrow interface the core depends on. A provider
// streams completion chunks on the returned channel and closes it when done.
type IChatAIProvider interface {
	ChatCompletionRequest(ctx context.Context, userInput string, prompt string) <-chan models.StreamResponse
}
