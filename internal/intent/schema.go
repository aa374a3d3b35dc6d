// Package intent maps the untrusted structured payload produced by the
// language model into exactly one validated command. Nothing in the inbound
// schema is trusted beyond its shape; every field is re-parsed, unit
// normalized and range checked here.
package intent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DimensionValue is the loosely-typed dimensional field shape of the inbound
// contract: a numeric value, a unit token and the original user text.
type DimensionValue struct {
	Value    float64 `json:"value"`
	Unit     string  `json:"unit,omitempty"`
	Original string  `json:"original_text,omitempty"`
}

// LocationValue is a loosely-typed 3D location.
type LocationValue struct {
	X DimensionValue `json:"x"`
	Y DimensionValue `json:"y"`
	Z DimensionValue `json:"z"`
}

// CommandSchema is the inbound payload contract. The resolver is its sole
// consumer.
type CommandSchema struct {
	Intent                string                     `json:"intent"`
	Confidence            float64                    `json:"confidence"`
	Parameters            map[string]json.RawMessage `json:"parameters"`
	Message               string                     `json:"message"`
	NeedsClarification    bool                       `json:"needsClarification"`
	ClarificationQuestion string                     `json:"clarificationQuestion,omitempty"`
}

// Clarification is a first-class resolver outcome, not an error: the caller
// re-prompts the user with Question and resubmits a corrected schema.
type Clarification struct {
	Question      string
	MissingFields []string
}

// ErrCode classifies hard resolution failures.
type ErrCode string

const (
	CodeUnsupportedIntent ErrCode = "UnsupportedIntent"
	CodeOutOfRange        ErrCode = "OutOfRange"
	CodeBadParameter      ErrCode = "BadParameter"
)

// ResolveError is a typed, recoverable resolution failure.
type ResolveError struct {
	Code  ErrCode
	Field string
	Msg   string
}

func (e *ResolveError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("intent: %s (%s): %s", e.Code, e.Field, e.Msg)
	}
	return fmt.Sprintf("intent: %s: %s", e.Code, e.Msg)
}

func unsupported(tag string) *ResolveError {
	return &ResolveError{Code: CodeUnsupportedIntent, Msg: fmt.Sprintf("unknown intent %q", tag)}
}

func outOfRange(field, msg string) *ResolveError {
	return &ResolveError{Code: CodeOutOfRange, Field: field, Msg: msg}
}

func badParam(field, msg string) *ResolveError {
	return &ResolveError{Code: CodeBadParameter, Field: field, Msg: msg}
}

// decodeString tolerates raw JSON strings, numbers and booleans for
// reference/text fields.
func decodeString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), true
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strings.TrimSpace(fmt.Sprintf("%g", n)), true
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return fmt.Sprintf("%t", b), true
	}
	return "", false
}

// decodeDimension tolerates the {value, unit, original_text} shape, a bare
// number, or a bare string like "10 mm".
func decodeDimension(raw json.RawMessage) (DimensionValue, bool) {
	var dv DimensionValue
	if err := json.Unmarshal(raw, &dv); err == nil && (dv.Value != 0 || dv.Unit != "" || dv.Original != "") {
		return dv, true
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return DimensionValue{Value: n}, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
		return DimensionValue{Original: s}, true
	}
	return DimensionValue{}, false
}

// decodeNumber tolerates bare numbers and numeric strings.
func decodeNumber(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if _, convErr := fmt.Sscanf(strings.TrimSpace(s), "%g", &n); convErr == nil {
			return n, true
		}
	}
	return 0, false
}

func decodeLocation(raw json.RawMessage) (LocationValue, bool) {
	var lv LocationValue
	if err := json.Unmarshal(raw, &lv); err == nil {
		return lv, true
	}
	return LocationValue{}, false
}
