package ai

import "context"

// AI is the language model; it knows nothing about chat or identity.
type AI interface {
	GetReply(
		ctx context.Context,
		systemPrompt string,
		inputJSON string,
	) (string, error)
}

// Message is one line of chat history handed to the model.
type Message struct {
	Role string `json:"role"` // "user" | "assistant"
	Text string `json:"text"`
}
