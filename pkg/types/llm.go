package types

// Role is the author of a chat message.
type Role string

// Message is a single chat message sent to a completion service.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TokenUsage reports token consumption for one completion.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a completion returned by a language model.
type Response struct {
	Content      string      `json:"content"`
	FinishReason string      `json:"finish_reason,omitempty"`
	Model        string      `json:"model,omitempty"`
	TokensUsed   *TokenUsage `json:"tokens_used,omitempty"`
}

type contextKey string

// Context keys read by telemetry and token tracking.
const (
	ContextKeyRequestID     contextKey = "request_id"
	ContextKeyRequestSource contextKey = "request_source"
	ContextKeyDocumentID    contextKey = "document_id"
	ContextKeyStage         contextKey = "stage"
)
