package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cadpilot/internal/intent"
)

// Translator drives one model round trip: raw user text in, untrusted
// structured payload out. Validation belongs to the resolver, not here.
type Translator struct {
	client Client
	prompt string
}

func NewTranslator(client Client) (*Translator, error) {
	prompt, err := TranslationPrompt(intent.KnownIntents())
	if err != nil {
		return nil, err
	}
	return &Translator{client: client, prompt: prompt}, nil
}

// Translate asks the model for a structured payload for the given text.
func (t *Translator) Translate(ctx context.Context, text string) (intent.CommandSchema, error) {
	var schema intent.CommandSchema
	text = strings.TrimSpace(text)
	if text == "" {
		return schema, ErrEmptyInput
	}
	raw, err := t.client.GenerateJSON(ctx, t.prompt, map[string]string{"text": text})
	if err != nil {
		return schema, fmt.Errorf("llmclient: translate: %w", err)
	}
	if err := DecodeSchema(raw, &schema); err != nil {
		return schema, err
	}
	if schema.Message == "" {
		schema.Message = text
	}
	return schema, nil
}

// DecodeSchema unmarshals a model payload tolerantly: code fences are
// stripped and a payload double-encoded as a JSON string is unwrapped.
func DecodeSchema(raw json.RawMessage, v any) error {
	data := stripFences(raw)
	if json.Unmarshal(data, v) == nil {
		return nil
	}
	var inner string
	if err := json.Unmarshal(data, &inner); err == nil {
		if err := json.Unmarshal([]byte(inner), v); err == nil {
			return nil
		}
	}
	return ErrInvalidJSON
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag.
func stripFences(raw []byte) []byte {
	data := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(data, []byte("```")) {
		return data
	}
	data = bytes.TrimPrefix(data, []byte("```"))
	if i := bytes.IndexByte(data, '\n'); i >= 0 && !bytes.ContainsAny(data[:i], "{[") {
		data = data[i+1:]
	}
	data = bytes.TrimSuffix(bytes.TrimSpace(data), []byte("```"))
	return bytes.TrimSpace(data)
}
