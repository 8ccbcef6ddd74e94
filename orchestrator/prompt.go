package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/pretty"
)

var indent = &pretty.Options{Width: 80, Indent: "  "}

// NewClassifyPrompt asks for a single application name.
func NewClassifyPrompt(input string) string {
	return fmt.Sprintf(classifyTemplate, input)
}

// NewEditPrompt embeds the request, the current values and the schema.
func NewEditPrompt(input string, schema, values json.RawMessage) string {
	return fmt.Sprintf(editTemplate, input, prettyJSON(values), prettyJSON(schema))
}

func prettyJSON(doc json.RawMessage) string {
	return strings.TrimRight(string(pretty.PrettyOptions(doc, indent)), "\n")
}

const classifyTemplate = `Identify the application from this request. Only respond with one word: chat, matchmaking, or tournament.

Request: %s

Answer (one word only):`

const editTemplate = `You are a configuration management assistant. Your task is to modify a JSON configuration based on a user's natural language request.

User request: "%s"

Current configuration (JSON):
%s

JSON Schema (for validation):
%s

Instructions:
1. Understand the user's request and identify what needs to be changed
2. Apply ONLY the requested change to the current configuration
3. Keep ALL other fields unchanged
4. Ensure the modified JSON is valid and follows the schema
5. Respond with ONLY the complete modified JSON, no explanations or markdown

Common patterns:
- "set X memory to Y" → modify resources.memory.limitMiB or requestMiB
- "set X cpu to Y" → modify resources.cpu.limitMilliCPU or requestMilliCPU
- "set X env to Y" → modify envs object
- "lower/increase X by Y%%" → calculate new value based on percentage

Modified JSON:`
