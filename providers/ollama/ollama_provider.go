package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/focuscope/focuscope/providers/contracts"
	"github.com/focuscope/focuscope/providers/models"
	ollama_models "github.com/focuscope/focuscope/providers/ollama/models"
)

// OllamaConfig implements the chat provider interface against a local
// Ollama server.
type OllamaConfig struct {
	BaseURL     string
	Model       string
	Temperature *float32
}

const defaultBaseURL = "http://localhost:11434/api"

// NewOllamaChatProvider initializes a new Ollama provider.
func NewOllamaChatProvider(config *OllamaConfig) contracts.IChatAIProvider {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &OllamaConfig{
		BaseURL:     baseURL,
		Model:       config.Model,
		Temperature: config.Temperature,
	}
}

func (ollamaProvider *OllamaConfig) ChatCompletionRequest(ctx context.Context, userInput string, prompt string) <-chan models.StreamResponse {
	responseChan := make(chan models.StreamResponse)
	var markdownBuffer strings.Builder // accumulate content until newline

	go func() {
		defer close(responseChan)

		reqBody := ollama_models.OllamaChatCompletionRequest{
			Model: ollamaProvider.Model,
			Messages: []ollama_models.Message{
				{Role: "system", Content: prompt},
				{Role: "user", Content: userInput},
			},
			Stream:      true,
			Temperature: ollamaProvider.Temperature,
		}

		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error marshalling request body: %v", err)}
			return
		}

		req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/chat", ollamaProvider.BaseURL), bytes.NewBuffer(jsonData))
		if err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error creating request: %v", err)}
			return
		}
		req.Header.Set("Content-Type", "application/json")

		client := &http.Client{}
		resp, err := client.Do(req)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				responseChan <- models.StreamResponse{Err: fmt.Errorf("request canceled: %v", err)}
				return
			}
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error sending request: %v", err)}
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			var apiError models.AIError
			if err := json.Unmarshal(body, &apiError); err != nil {
				responseChan <- models.StreamResponse{Err: fmt.Errorf("API request failed with status code '%d'", resp.StatusCode)}
				return
			}
			responseChan <- models.StreamResponse{Err: fmt.Errorf("API request failed with status code '%d' - %s", resp.StatusCode, apiError.Error.Message)}
			return
		}

		reader := bufio.NewReader(resp.Body)

		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					break
				}
				responseChan <- models.StreamResponse{Err: fmt.Errorf("error reading stream: %v", err)}
				return
			}

			var response ollama_models.OllamaChatCompletionResponse
			if err := json.Unmarshal([]byte(line), &response); err != nil {
				responseChan <- models.StreamResponse{Err: fmt.Errorf("error unmarshalling chunk: %v", err)}
				return
			}

			if len(response.Message.Content) > 0 {
				content := response.Message.Content
				markdownBuffer.WriteString(content)

				if strings.Contains(content, "\n") {
					responseChan <- models.StreamResponse{Content: markdownBuffer.String()}
					markdownBuffer.Reset()
				}
			}

			if response.Done {
				responseChan <- models.StreamResponse{Content: markdownBuffer.String()}
				markdownBuffer.Reset()
				responseChan <- models.StreamResponse{Done: true}
				return
			}
		}

		if markdownBuffer.Len() > 0 {
			responseChan <- models.StreamResponse{Content: markdownBuffer.String()}
		}
		responseChan <- models.StreamResponse{Done: true}
	}()

	return responseChan
}
