package models

// StreamResponse is one chunk of a streamed chat completion. Err and Done
// are terminal; Content may be empty on the final chunk.
type StreamResponse struct {
	Content string
	Done    bool
	Err     error
}

// AIError is the error envelope returned by provider HTTP APIs.
type AIError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
