package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"

	"google.golang.org/genai"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
)

// stream implements [rulecraft.ModelStream] by wrapping the genai SDK's
// streaming iterator and extracting text parts from each chunk.
type stream struct {
	pull     func() (*genai.GenerateContentResponse, error, bool)
	stop     func()
	ctx      context.Context
	usage    rulecraft.Usage
	err      error
	complete bool
	closed   bool
}

// Interface compliance check.
var _ rulecraft.ModelStream = (*stream)(nil)

func newStream(ctx context.Context, iterFn iter.Seq2[*genai.GenerateContentResponse, error]) *stream {
	next, stop := iter.Pull2(iterFn)
	return &stream{
		pull: next,
		stop: stop,
		ctx:  ctx,
	}
}

// Next pulls chunks until one carries text. Returns io.EOF when the
// iterator is exhausted.
func (s *stream) Next() (string, error) {
	switch {
	case s.complete:
		return "", io.EOF
	case s.err != nil:
		return "", s.err
	case s.closed:
		return "", rulecraft.ErrStreamClosed
	}

	for {
		resp, err, ok := s.pull()
		if !ok {
			s.complete = true
			return "", io.EOF
		}
		if err != nil {
			if ctxErr := s.ctx.Err(); ctxErr != nil {
				s.err = ctxErr
			} else {
				s.err = fmt.Errorf("gemini: %w", err)
			}
			return "", s.err
		}

		s.recordUsage(resp)
		if text := extractText(resp); text != "" {
			return text, nil
		}
		// Chunk with no text parts, keep pulling.
	}
}

// Usage returns the token counts reported so far.
func (s *stream) Usage() rulecraft.Usage {
	return s.usage
}

// Close releases the iterator.
func (s *stream) Close() error {
	if !s.complete && s.err == nil {
		s.closed = true
	}
	s.stop()
	return nil
}

func (s *stream) recordUsage(resp *genai.GenerateContentResponse) {
	if resp.UsageMetadata == nil {
		return
	}
	s.usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
	s.usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
}

func extractText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		text += part.Text
	}
	return text
}
