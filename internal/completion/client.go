// Package completion provides the generative text completion capability
// consumed by response synthesis. The engine works without it; a client only
// enriches wording.
package completion

import "context"

// Result is a single completion with its token usage.
type Result struct {
	Content    string
	TokensUsed int
}

// Client generates text completions.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (*Result, error)
	Close() error
}
