package gifts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/nidrosoft/rizzer-sub001/internal/models"
)

// ParseSuggestions decodes model output and validates it. Output that is not
// JSON at all fails with ErrMalformedResponse; JSON with the wrong shape
// fails with a *ValidationError.
func ParseSuggestions(content string) ([]models.Suggestion, error) {
	parsed, err := decodeJSON(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return ValidateSuggestions(parsed)
}

// decodeJSON accepts a bare JSON document, or one wrapped in prose or a code
// fence, by retrying on the outermost braces.
func decodeJSON(content string) (interface{}, error) {
	var parsed interface{}
	raw := []byte(strings.TrimSpace(content))
	err := json.Unmarshal(raw, &parsed)
	if err == nil {
		return parsed, nil
	}
	start := bytes.IndexByte(raw, '{')
	end := bytes.LastIndexByte(raw, '}')
	if start == -1 || end <= start {
		return nil, err
	}
	if retryErr := json.Unmarshal(raw[start:end+1], &parsed); retryErr != nil {
		return nil, err
	}
	return parsed, nil
}

// ValidateSuggestions checks parsed JSON against the suggestion schema and
// stops at the first violation.
func ValidateSuggestions(parsed interface{}) ([]models.Suggestion, error) {
	envelope, ok := parsed.(map[string]interface{})
	if !ok {
		return nil, &ValidationError{Index: -1, Field: "response", Reason: "must be a JSON object"}
	}
	rawList, present := envelope["suggestions"]
	if !present {
		return nil, &ValidationError{Index: -1, Field: "suggestions", Reason: "is missing"}
	}
	list, ok := rawList.([]interface{})
	if !ok {
		return nil, &ValidationError{Index: -1, Field: "suggestions", Reason: "must be an array"}
	}
	if len(list) == 0 {
		return nil, &ValidationError{Index: -1, Field: "suggestions", Reason: "must not be empty"}
	}

	out := make([]models.Suggestion, 0, len(list))
	for i, item := range list {
		s, err := validateSuggestion(i, item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func validateSuggestion(i int, item interface{}) (models.Suggestion, error) {
	var s models.Suggestion
	obj, ok := item.(map[string]interface{})
	if !ok {
		return s, &ValidationError{Index: i, Field: "suggestion", Reason: "must be an object"}
	}

	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"title", &s.Title},
		{"reason", &s.Reason},
		{"price", &s.Price},
		{"occasion", &s.Occasion},
	} {
		v, ok := obj[f.name].(string)
		if !ok {
			return s, &ValidationError{Index: i, Field: f.name, Reason: "must be a string"}
		}
		if strings.TrimSpace(v) == "" {
			return s, &ValidationError{Index: i, Field: f.name, Reason: "must not be empty"}
		}
		*f.dst = strings.TrimSpace(v)
	}

	score, ok := obj["confidence_score"].(float64)
	if !ok {
		return s, &ValidationError{Index: i, Field: "confidence_score", Reason: "must be a number"}
	}
	if score < 0 || score > 100 {
		return s, &ValidationError{Index: i, Field: "confidence_score", Reason: "must be between 0 and 100"}
	}
	s.ConfidenceScore = int(math.Round(score))

	switch link := obj["product_link"].(type) {
	case nil:
	case string:
		if trimmed := strings.TrimSpace(link); trimmed != "" {
			s.ProductLink = &trimmed
		}
	default:
		return s, &ValidationError{Index: i, Field: "product_link", Reason: "must be a string or null"}
	}

	return s, nil
}
