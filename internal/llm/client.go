package llm

import "context"

// Role tags one transcript entry. The set is closed so a malformed role
// can never reach the completion endpoint.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn. Messages are immutable once
// created; their order defines the conversational context.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client turns an ordered transcript into one completion. Calls are
// stateless; the caller supplies the full context every time.
type Client interface {
	Complete(ctx context.Context, messages []Message) (Response, error)
}
