// Command rulecraft is a terminal chat for generating cursor rules.
//
// Usage:
//
//	rulecraft [flags]
//
// Flags:
//
//	-server string     Rulecraft server URL (default http://localhost:8085)
//	-model string      Model ID (default: server default)
//	-provider string   Provider: anthropic, gemini (default: server default)
//	-rule-type string  Rule type: PROJECT_RULE, COMMAND, USER_RULE (default: inferred)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
	"github.com/PhongLee1210/cursor-rules-craft/client"
	"github.com/PhongLee1210/cursor-rules-craft/session"
	"github.com/PhongLee1210/cursor-rules-craft/tui"
)

const defaultServerURL = "http://localhost:8085"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "rulecraft: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		serverURL = flag.String("server", "", "Rulecraft server URL")
		model     = flag.String("model", "", "Model ID (provider-specific)")
		provider  = flag.String("provider", "", "Provider: anthropic, gemini")
		ruleType  = flag.String("rule-type", "", "Rule type: PROJECT_RULE, COMMAND, USER_RULE")
	)
	flag.Parse()

	_ = godotenv.Load()

	url := *serverURL
	if url == "" {
		url = os.Getenv("RULECRAFT_SERVER")
	}
	if url == "" {
		url = defaultServerURL
	}

	rt := rulecraft.RuleType(*ruleType)
	if rt != "" && !rt.Valid() {
		return fmt.Errorf("unknown rule type %q", rt)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cl := client.New(url)

	generateFn := func(ctx context.Context, req rulecraft.GenerateRequest, onEvent func(rulecraft.Event)) error {
		req.Model = *model
		req.Provider = *provider
		req.RuleType = rt
		sess := session.New(cl, session.WithObserver(onEvent))
		_, err := sess.GenerateRule(ctx, req)
		return err
	}

	m := tui.New(generateFn, rulecraft.DefaultTheme())
	if err := tui.Run(ctx, m); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}
