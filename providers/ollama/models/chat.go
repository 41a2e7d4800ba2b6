package models

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OllamaChatCompletionRequest is the request body for /chat.
type OllamaChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature *float32  `json:"temperature,omitempty"`
}

// OllamaChatCompletionResponse is one line of the streamed response.
type OllamaChatCompletionResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}
