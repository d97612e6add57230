// Package client implements the HTTP consumer of the rule-generation
// endpoint. It posts a generation request and decodes the line-delimited
// event stream in the response body through the pull-based
// [rulecraft.Stream] interface.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
)

const generatePath = "/api/generate"

// Client talks to a rulecraft server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for dropped-line diagnostics.
// Discarded by default.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a [Client] for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// generateBody is the JSON request body for POST /api/generate.
type generateBody struct {
	Message      string                  `json:"message,omitempty"`
	Messages     []rulecraft.ChatMessage `json:"messages,omitempty"`
	Model        string                  `json:"model,omitempty"`
	Provider     string                  `json:"provider,omitempty"`
	MaxTokens    int                     `json:"max_tokens,omitempty"`
	Temperature  *float64                `json:"temperature,omitempty"`
	RuleType     string                  `json:"rule_type,omitempty"`
	ProjectFiles []string                `json:"project_files,omitempty"`
}

// errorBody is the JSON body returned on non-2xx responses.
type errorBody struct {
	Error string `json:"error"`
}

// Stream opens the event stream for a generation request. A non-2xx
// response is a transport failure reported here; in-band errors arrive
// as events on the returned stream.
func (c *Client) Stream(ctx context.Context, req rulecraft.GenerateRequest) (rulecraft.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	body, err := json.Marshal(generateBody{
		Message:      req.Message,
		Messages:     req.Messages,
		Model:        req.Model,
		Provider:     req.Provider,
		MaxTokens:    req.MaxTokens,
		Temperature:  req.Temperature,
		RuleType:     string(req.RuleType),
		ProjectFiles: req.ProjectFiles,
	})
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}

	return newStream(ctx, resp.Body, c.log), nil
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || eb.Error == "" {
		return fmt.Errorf("client: HTTP %d: %s", resp.StatusCode, string(body))
	}
	return fmt.Errorf("client: HTTP %d: %s", resp.StatusCode, eb.Error)
}
