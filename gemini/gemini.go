// Package gemini implements [rulecraft.ModelProvider] for the Google
// Gemini API via the genai SDK's streaming iterator.
package gemini

const (
	defaultModel     = "gemini-2.5-pro"
	defaultMaxTokens = 65536
)
