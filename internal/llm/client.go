// Package llm contains the boundary to the external language model provider:
// the client interface, the message types, and the Gemini implementation.
package llm

import "context"

// Role represents the originator of a message in a conversation.
// Using a defined type and constants prevents typos and improves code clarity.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message sent to the model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// GenerationConfig holds the parameters that control generation behavior.
// Pointers distinguish "unset" from an explicit zero value.
type GenerationConfig struct {
	Model       string
	Temperature *float32
	TopP        *float32
	MaxTokens   int
}

// Usage holds token accounting for a single generation request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerationResult holds the complete output from a model call.
type GenerationResult struct {
	Content string
	Usage   Usage
}

// Client is the interface the analysis layer depends on. It performs a single
// blocking request against the provider; the caller bounds it with a context
// deadline. Keeping the surface this small lets tests substitute a fake
// provider without any network access.
type Client interface {
	Generate(ctx context.Context, messages []Message, config *GenerationConfig) (*GenerationResult, error)
}
