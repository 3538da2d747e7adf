package llm

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams holds parameters for chat completion requests.
type ChatParams struct {
	// Model specifies the model to use. If empty, the client's default
	// model is used.
	Model string

	// MaxTokens limits the number of generated tokens. 0 means no limit.
	MaxTokens int

	// Temperature controls the randomness of the output.
	Temperature float32
}
