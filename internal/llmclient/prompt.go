package llmclient

import (
	"bytes"
	"fmt"
	"strings"
)

// PromptField describes a single output field in the payload contract.
type PromptField struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// PromptSpec defines the sections of a structured translation prompt.
type PromptSpec struct {
	Purpose      string
	Background   string
	OutputFields []PromptField
	Rules        []string
	Examples     []PromptExample
}

// PromptExample captures an optional input/output example pair.
type PromptExample struct {
	Input      string
	OutputJSON string
}

// BuildPrompt renders the sectioned prompt text.
func BuildPrompt(spec PromptSpec) (string, error) {
	if strings.TrimSpace(spec.Purpose) == "" {
		return "", fmt.Errorf("llmclient: prompt purpose is empty")
	}
	if len(spec.OutputFields) == 0 {
		return "", fmt.Errorf("llmclient: prompt output fields are empty")
	}
	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE", spec.Purpose)
	writeSection(&buf, "BACKGROUND", spec.Background)
	writeSection(&buf, "OUTPUT", formatFields(spec.OutputFields))
	writeSection(&buf, "RULES", formatList(spec.Rules))
	writeSection(&buf, "OUTPUT_FORMAT", "Respond with a single JSON object and nothing else.")
	if len(spec.Examples) > 0 {
		writeSection(&buf, "EXAMPLES", formatExamples(spec.Examples))
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}

// TranslationPrompt is the fixed prompt for turning user text into the
// structured command payload the resolver consumes.
func TranslationPrompt(knownIntents []string) (string, error) {
	return BuildPrompt(PromptSpec{
		Purpose: "Translate one natural-language CAD modeling request into a structured command payload.",
		Background: "The user is describing a modeling operation in a parametric CAD session. " +
			"Dimensions may be given in any unit and in free-form text.",
		OutputFields: []PromptField{
			{Name: "intent", Type: "string", Required: true,
				Description: "one of: " + strings.Join(knownIntents, ", ")},
			{Name: "confidence", Type: "number", Required: true,
				Description: "0.0 to 1.0, how certain the translation is"},
			{Name: "parameters", Type: "object", Required: true,
				Description: "operation parameters; dimensional values as {value, unit, original_text}"},
			{Name: "message", Type: "string", Required: true,
				Description: "the original user text, verbatim"},
			{Name: "needsClarification", Type: "boolean", Required: false,
				Description: "true when the request cannot be translated without asking the user"},
			{Name: "clarificationQuestion", Type: "string", Required: false,
				Description: "the question to ask when needsClarification is true"},
		},
		Rules: []string{
			"Never invent dimensions the user did not state; omit the parameter instead.",
			"Preserve the user's unit tokens in original_text exactly as written.",
			"Use needsClarification when the request is ambiguous rather than guessing.",
			"Lower confidence when the request only loosely matches an intent.",
		},
		Examples: []PromptExample{
			{
				Input: "make a box 10 by 5 by 2 inches",
				OutputJSON: `{"intent":"CREATE_BOX","confidence":0.95,"message":"make a box 10 by 5 by 2 inches",` +
					`"parameters":{"width":{"value":10,"unit":"inches","original_text":"10"},` +
					`"length":{"value":5,"unit":"inches","original_text":"5"},` +
					`"height":{"value":2,"unit":"inches","original_text":"2 inches"}}}`,
			},
		},
	})
}

func formatFields(fields []PromptField) string {
	var buf strings.Builder
	for _, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		req := "optional"
		if f.Required {
			req = "required"
		}
		if f.Description != "" {
			fmt.Fprintf(&buf, "- %s (%s, %s): %s\n", name, f.Type, req, f.Description)
		} else {
			fmt.Fprintf(&buf, "- %s (%s, %s)\n", name, f.Type, req)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatList(items []string) string {
	var buf strings.Builder
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fmt.Fprintf(&buf, "- %s\n", item)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatExamples(examples []PromptExample) string {
	var buf strings.Builder
	for i, ex := range examples {
		fmt.Fprintf(&buf, "Example %d:\n", i+1)
		if strings.TrimSpace(ex.Input) != "" {
			buf.WriteString("INPUT:\n")
			buf.WriteString(ex.Input)
			buf.WriteString("\n")
		}
		if strings.TrimSpace(ex.OutputJSON) != "" {
			buf.WriteString("OUTPUT:\n")
			buf.WriteString(ex.OutputJSON)
			buf.WriteString("\n")
		}
		buf.WriteString("\n")
	}
	return strings.TrimRight(buf.String(), "\n")
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}
