package rulecraft

import "context"

// ModelProvider is a strategy pattern interface for language-model
// backends. The returned stream yields raw text fragments; structure is
// imposed downstream by the protocol emitter.
type ModelProvider interface {
	Generate(ctx context.Context, req ModelRequest) (ModelStream, error)
}

// ModelRequest carries model selection and generation parameters to a
// backend. Providers use their own defaults for zero/nil fields. Hints
// are provider-specific pass-through options (parallel tool calls,
// service tier) opaque to the core.
type ModelRequest struct {
	Model        string
	SystemPrompt string
	Messages     []ChatMessage
	MaxTokens    int      // 0 = provider default
	Temperature  *float64 // nil = provider default
	Hints        map[string]string
}

// ModelStream is a pull-based iterator over text fragments. Next returns
// io.EOF on normal completion. Usage is valid after completion; before
// that it reports whatever the backend has sent so far.
type ModelStream interface {
	Next() (string, error)
	Usage() Usage
	Close() error
}
