package parser

import (
	"encoding/json"
	"strings"

	apperrors "github.com/ChardPeter/chaddybot-bridge/internal/errors"
)

// StructuredStrategy extracts a JSON object from completion text. Models
// often wrap the object in prose or a markdown fence, so the candidate
// region runs from the first '{' to the last '}'.
type StructuredStrategy struct{}

// Name returns the dialect name.
func (s *StructuredStrategy) Name() string {
	return "structured"
}

// Extract locates and decodes the JSON object.
func (s *StructuredStrategy) Extract(raw string) (Candidate, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, apperrors.NewParseError(s.Name(), "no JSON object in completion text")
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &fields); err != nil {
		return nil, apperrors.NewParseError(s.Name(), "invalid JSON object: "+err.Error())
	}

	return Candidate(fields), nil
}
