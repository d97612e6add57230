package rulecraft

// Usage tracks token consumption reported by a model backend. Providers
// normalize their API-specific fields to these two counters.
type Usage struct {
	InputTokens  int
	OutputTokens int
}
