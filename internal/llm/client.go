package llm

import "context"

// Message is a single role-tagged entry in a completion request.
type Message struct {
	Role    string
	Content string
}

// Response carries the completion text plus token usage for metrics.
type Response struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client is the completion capability the core requires of the model
// provider. Message order must be preserved when forming context.
type Client interface {
	Complete(ctx context.Context, messages []Message) (Response, error)
}

// CompletionError wraps a failed model call (network, auth, quota) so
// callers can tell provider failures apart from their own. Calls are
// never retried internally.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	return "completion failed: " + e.Err.Error()
}

func (e *CompletionError) Unwrap() error { return e.Err }
