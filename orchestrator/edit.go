package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"configbot"

	"github.com/tidwall/pretty"
)

type EditRequest struct {
	Input  string
	Schema json.RawMessage
	Values json.RawMessage
}

// EditResult holds what was sent to the model and what came back.
type EditResult struct {
	Document json.RawMessage
	Prompt   string
	Output   string
}

// Edit asks the model for the modified configuration and extracts it. The
// prompt and raw model output are returned alongside any extraction error.
func Edit(ctx context.Context, llm configbot.Completer, s Sampling, req EditRequest) (EditResult, error) {
	prompt := NewEditPrompt(req.Input, req.Schema, req.Values)
	res := EditResult{Prompt: prompt}

	out, err := llm.Complete(ctx, configbot.CompletionRequest{
		Prompt:      prompt,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	})
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	res.Output = out

	doc, err := ExtractJSON(strings.TrimSpace(out))
	if err != nil {
		slog.Warn("EDIT: Could not extract configuration", "error", err, "output_len", len(out))
		return res, err
	}
	res.Document = doc
	return res, nil
}

// ExtractJSON parses the text between the first '{' and the last '}' of
// text inclusive. The result is compacted with key order and number
// literals preserved.
func ExtractJSON(text string) (json.RawMessage, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 {
		return nil, ErrNoJSON
	}
	if end < start {
		return nil, fmt.Errorf("%w: no closing brace after position %d", ErrMalformedJSON, start)
	}

	candidate := []byte(text[start : end+1])
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(candidate, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if len(obj) == 0 {
		return nil, ErrEmptyJSON
	}
	return json.RawMessage(pretty.Ugly(candidate)), nil
}
