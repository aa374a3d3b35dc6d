package llmclient

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranslate_UsesClientPayload(t *testing.T) {
	fake := &FakeClient{Responses: []json.RawMessage{
		json.RawMessage(`{"intent":"CREATE_BOX","confidence":0.9,"message":"box please","parameters":{}}`),
	}}
	tr, err := NewTranslator(fake)
	require.NoError(t, err)

	schema, err := tr.Translate(context.Background(), "box please")
	require.NoError(t, err)
	require.Equal(t, "CREATE_BOX", schema.Intent)
	require.InDelta(t, 0.9, schema.Confidence, 1e-9)
}

func TestTranslate_EmptyInput(t *testing.T) {
	tr, err := NewTranslator(&FakeClient{})
	require.NoError(t, err)
	_, err = tr.Translate(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestTranslate_FillsMissingMessage(t *testing.T) {
	fake := &FakeClient{Responses: []json.RawMessage{
		json.RawMessage(`{"intent":"SAVE","confidence":1}`),
	}}
	tr, err := NewTranslator(fake)
	require.NoError(t, err)
	schema, err := tr.Translate(context.Background(), "save it")
	require.NoError(t, err)
	require.Equal(t, "save it", schema.Message)
}

func TestDecodeSchema_Tolerance(t *testing.T) {
	type payload struct {
		Intent string `json:"intent"`
	}
	cases := []string{
		`{"intent":"SAVE"}`,
		"```json\n{\"intent\":\"SAVE\"}\n```",
		"```\n{\"intent\":\"SAVE\"}\n```",
		`"{\"intent\":\"SAVE\"}"`,
	}
	for _, raw := range cases {
		var p payload
		require.NoError(t, DecodeSchema(json.RawMessage(raw), &p), raw)
		require.Equal(t, "SAVE", p.Intent, raw)
	}

	var p payload
	require.ErrorIs(t, DecodeSchema(json.RawMessage("not json at all"), &p), ErrInvalidJSON)
}

func TestTranslationPrompt_Sections(t *testing.T) {
	prompt, err := TranslationPrompt([]string{"CREATE_BOX", "SAVE"})
	require.NoError(t, err)
	for _, section := range []string{"[PURPOSE]", "[OUTPUT]", "[RULES]", "[OUTPUT_FORMAT]", "[EXAMPLES]"} {
		require.Contains(t, prompt, section)
	}
	require.Contains(t, prompt, "CREATE_BOX, SAVE")
	require.True(t, strings.HasSuffix(prompt, "\n"))
}

func TestBuildPrompt_RequiresPurposeAndFields(t *testing.T) {
	_, err := BuildPrompt(PromptSpec{OutputFields: []PromptField{{Name: "x", Type: "string"}}})
	require.Error(t, err)
	_, err = BuildPrompt(PromptSpec{Purpose: "p"})
	require.Error(t, err)
}
