package gemini

import (
	"context"
	"iter"

	"google.golang.org/genai"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
)

// NewStreamFromIter builds a stream directly from an iterator so tests
// can script chunks without a live client.
func NewStreamFromIter(ctx context.Context, iterFn iter.Seq2[*genai.GenerateContentResponse, error]) rulecraft.ModelStream {
	return newStream(ctx, iterFn)
}
