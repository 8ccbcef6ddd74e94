package orchestrator

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// SchemaSummary describes the top level of a schema for logging.
type SchemaSummary struct {
	Title      string
	Type       string
	Properties []string
	Required   []string
}

// SummarizeSchema reads the top level of a JSON Schema document.
func SummarizeSchema(doc json.RawMessage) (SchemaSummary, error) {
	var s jsonschema.Schema
	if err := json.Unmarshal(doc, &s); err != nil {
		return SchemaSummary{}, fmt.Errorf("failed to parse schema: %w", err)
	}

	sum := SchemaSummary{Title: s.Title, Type: s.Type, Required: s.Required}
	if sum.Type == "" && len(s.Types) > 0 {
		sum.Type = s.Types[0]
	}
	for name := range s.Properties {
		sum.Properties = append(sum.Properties, name)
	}
	sort.Strings(sum.Properties)
	return sum, nil
}

// CheckSchema validates doc against schema and returns one line per
// violation. It never rejects a document; callers only report the result.
func CheckSchema(schema, doc json.RawMessage) ([]string, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to validate against schema: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		violations = append(violations, re.String())
	}
	return violations, nil
}
