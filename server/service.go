package server

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
	"github.com/PhongLee1210/cursor-rules-craft/wire"
)

// Error codes carried by in-band error events.
const (
	CodeBackendError = "backend_error"
	CodeInternal     = "internal_error"
)

// clarifyConfidence is the intent confidence below which a terse
// request triggers a clarification instead of generation.
const clarifyConfidence = 0.5

// ErrUnknownProvider rejects requests naming a backend the service was
// not configured with. It wraps rulecraft.ErrValidation so transports
// can map it to a client error.
var ErrUnknownProvider = fmt.Errorf("%w: unknown provider", rulecraft.ErrValidation)

// Service turns generate requests into protocol event streams. It owns
// provider selection, intent detection, prompt construction, and the
// split of raw model output into the rule and follow-up phases.
type Service struct {
	providers       map[string]rulecraft.ModelProvider
	defaultProvider string
	defaultModel    string
	version         string
	createdBy       string
	log             *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithDefaultProvider sets the provider used when a request names none.
func WithDefaultProvider(name string) ServiceOption {
	return func(s *Service) { s.defaultProvider = name }
}

// WithDefaultModel sets the model used when a request names none.
func WithDefaultModel(model string) ServiceOption {
	return func(s *Service) { s.defaultModel = model }
}

// WithVersion sets the version stamped into done events.
func WithVersion(version string) ServiceOption {
	return func(s *Service) { s.version = version }
}

// WithServiceLogger sets the logger. The default discards everything.
func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// NewService creates a Service over the given named providers.
func NewService(providers map[string]rulecraft.ModelProvider, opts ...ServiceOption) *Service {
	s := &Service{
		providers: providers,
		version:   "dev",
		createdBy: "rulecraft",
		log:       slog.New(slog.DiscardHandler),
	}
	for name := range providers {
		s.defaultProvider = name
		break
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) resolve(req rulecraft.GenerateRequest) (rulecraft.ModelProvider, string, error) {
	name := req.Provider
	if name == "" {
		name = s.defaultProvider
	}
	p, ok := s.providers[name]
	if !ok {
		return nil, "", fmt.Errorf("%w %q", ErrUnknownProvider, name)
	}
	return p, name, nil
}

// Generate runs one generation turn, writing protocol lines to w.
// Validation failures, including an unknown provider, are returned
// before anything is written so transports can reject the request
// outright. Failures after streaming begins are emitted in-band as
// error events and also returned for logging.
func (s *Service) Generate(ctx context.Context, req rulecraft.GenerateRequest, w io.Writer) error {
	if err := req.Validate(); err != nil {
		return err
	}
	provider, providerName, err := s.resolve(req)
	if err != nil {
		return err
	}

	message := req.UserText()
	em := NewEmitter(wire.NewEncoder(w))

	ruleType := req.RuleType
	if ruleType == "" {
		detected, confidence := rulecraft.DetectIntent(message)
		if confidence < clarifyConfidence && terse(message) {
			return em.Clarify(
				"Could you say a bit more about the rule you want? For example, what kind of code it applies to and what it should enforce.",
				[]string{"rule_type", "description"},
			)
		}
		ruleType = detected
	}

	techStack := DetectTechStack(req.ProjectFiles)
	meta := wire.MetaPayload{
		ID:            newID(),
		RuleType:      string(ruleType),
		TechStack:     techStack,
		Filename:      DeriveFileName(ruleType, message),
		SchemaVersion: wire.SchemaVersion,
	}

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}
	stream, err := provider.Generate(ctx, rulecraft.ModelRequest{
		Model:        model,
		SystemPrompt: SystemPrompt(ruleType, techStack),
		Messages:     conversation(req),
		MaxTokens:    req.MaxTokens,
		Temperature:  req.Temperature,
	})
	if err != nil {
		s.log.Error("model backend unavailable", "provider", providerName, "error", err)
		if emitErr := em.Fail("model backend unavailable", CodeBackendError); emitErr != nil {
			return emitErr
		}
		return err
	}
	defer stream.Close()

	if err := em.StartRule(meta); err != nil {
		return err
	}

	var ruleBuf, followBuf strings.Builder
	// The delta before the marker usually ends in a newline that is
	// formatting, not rule content. The resolved rule drops it.
	resolvedRule := func() string {
		return strings.TrimSuffix(ruleBuf.String(), "\n")
	}
	sp := &splitter{}
	emit := func(rule, followUp string) error {
		if rule != "" {
			ruleBuf.WriteString(rule)
			if err := em.RuleDelta(rule); err != nil {
				return err
			}
		}
		if followUp != "" {
			if followBuf.Len() == 0 {
				final := resolvedRule()
				if err := em.StartFollowUp(&final); err != nil {
					return err
				}
			}
			followBuf.WriteString(followUp)
			if err := em.FollowUpDelta(followUp); err != nil {
				return err
			}
		}
		return nil
	}

	for {
		delta, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.log.Error("model stream failed", "provider", providerName, "error", err)
			if emitErr := em.Fail("model stream failed", CodeBackendError); emitErr != nil {
				return emitErr
			}
			return err
		}
		rule, followUp := sp.feed(delta)
		if err := emit(rule, followUp); err != nil {
			return err
		}
	}
	if err := emit(sp.flush()); err != nil {
		return err
	}

	finalRule := resolvedRule()
	if followBuf.Len() == 0 {
		// The model never produced the marker. Treat everything as the
		// rule and supply a stock follow-up so the session still settles.
		if err := em.StartFollowUp(&finalRule); err != nil {
			return err
		}
		stock := fmt.Sprintf("Your rule is ready. Save it to %s to start using it.", meta.Filename)
		followBuf.WriteString(stock)
		if err := em.FollowUpDelta(stock); err != nil {
			return err
		}
	}

	finalFollowUp := followBuf.String()
	sum := sha256.Sum256([]byte(finalRule))
	err = em.Complete(&finalFollowUp, wire.DonePayload{
		Filename:  meta.Filename,
		SHA256:    hex.EncodeToString(sum[:]),
		CreatedBy: s.createdBy,
		Version:   s.version,
	})
	if err != nil {
		return err
	}

	usage := stream.Usage()
	s.log.Info("generation complete",
		"id", meta.ID,
		"provider", providerName,
		"rule_type", string(ruleType),
		"filename", meta.Filename,
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
	)
	return nil
}

// conversation returns the full message history for the model, falling
// back to the single-message form.
func conversation(req rulecraft.GenerateRequest) []rulecraft.ChatMessage {
	if len(req.Messages) > 0 {
		return req.Messages
	}
	return []rulecraft.ChatMessage{{Role: rulecraft.RoleUser, Content: req.Message}}
}

// terse reports whether a message is too short to generate from without
// asking for more detail.
func terse(message string) bool {
	return len(strings.Fields(message)) < 3
}

func newID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("server: read random id: %v", err))
	}
	return "rule_" + hex.EncodeToString(b[:])
}
