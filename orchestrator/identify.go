package orchestrator

import (
	"context"
	"log/slog"
	"strings"

	"configbot"
)

// Method records how an application was identified.
type Method string

const (
	MethodKeyword Method = "keyword"
	MethodModel   Method = "model"
)

// Sampling is the option set of one model call.
type Sampling struct {
	Temperature float64
	MaxTokens   int
}

// Identify resolves input to an application: keyword match first, one
// classification call otherwise. Provider failures count as "not identified".
// raw is the model's answer when one was requested.
func Identify(ctx context.Context, llm configbot.Completer, s Sampling, input string) (app configbot.App, method Method, raw string, ok bool) {
	if app, ok := configbot.MatchApp(input); ok {
		slog.Info("IDENTIFY: Matched keyword", "app", app.String())
		return app, MethodKeyword, "", true
	}

	slog.Info("IDENTIFY: No keyword match, asking model")
	out, err := llm.Complete(ctx, configbot.CompletionRequest{
		Prompt:      NewClassifyPrompt(input),
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	})
	if err != nil {
		slog.Warn("IDENTIFY: Classification call failed", "error", err)
		return configbot.AppUnknown, MethodModel, "", false
	}

	label := CleanLabel(out)
	app, ok = configbot.MatchApp(label)
	if !ok {
		slog.Info("IDENTIFY: Model answer names no application", "answer", label)
		return configbot.AppUnknown, MethodModel, out, false
	}

	slog.Info("IDENTIFY: Model identified application", "app", app.String())
	return app, MethodModel, out, true
}

// CleanLabel lower-cases s and drops every character outside a-z.
func CleanLabel(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, strings.ToLower(s))
}
