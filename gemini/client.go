package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
)

// Interface compliance check.
var _ rulecraft.ModelProvider = (*Client)(nil)

// Client implements [rulecraft.ModelProvider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID used when a request names none.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Generate sends a streaming request to the Gemini API and returns a
// [rulecraft.ModelStream] of text deltas.
func (c *Client) Generate(ctx context.Context, req rulecraft.ModelRequest) (rulecraft.ModelStream, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	iter := c.client.Models.GenerateContentStream(ctx, model, ConvertMessages(req.Messages), buildConfig(req))
	return newStream(ctx, iter), nil
}

func buildConfig(req rulecraft.ModelRequest) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}

	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}

// ConvertMessages converts conversation turns to genai Contents.
// System turns are skipped; the system prompt travels as the request's
// system instruction. Exported for testing.
func ConvertMessages(msgs []rulecraft.ChatMessage) []*genai.Content {
	var result []*genai.Content
	for _, msg := range msgs {
		switch msg.Role {
		case rulecraft.RoleUser:
			result = append(result, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		case rulecraft.RoleAssistant:
			result = append(result, &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		}
	}
	return result
}
