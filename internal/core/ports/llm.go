package ports

import "context"

// ChatTurn is one turn of an assistant conversation.
type ChatTurn struct {
	Role    string // "system", "user" or "assistant"
	Content string
}

// LLMClient calls the hosted large-language-model API. Implementations own
// their timeout/backpressure behavior; callers see only success or an error.
type LLMClient interface {
	Complete(ctx context.Context, turns []ChatTurn) (string, error)
}
