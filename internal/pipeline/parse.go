package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Kaliakbarb/persona/internal/model"
)

// parseModelJSON extracts a JSON object from model output and unmarshals it
// into v. Models frequently wrap JSON in markdown fences or prose, so the
// parser takes the outermost brace-delimited region. Failure returns a
// *model.ParseError carrying the raw text so callers can degrade instead of
// aborting.
func parseModelJSON(raw string, v interface{}) error {
	s := strings.TrimSpace(raw)
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return &model.ParseError{Raw: raw, Err: fmt.Errorf("no JSON object in output")}
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return &model.ParseError{Raw: raw, Err: err}
	}
	return nil
}
