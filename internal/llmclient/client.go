// Package llmclient talks to the external language model that turns raw
// user text into the structured command payload. The client is a thin
// transport wrapper; everything it returns is untrusted until the resolver
// has re-validated it.
package llmclient

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrInvalidJSON = errors.New("llmclient: model returned no parseable JSON")
	ErrEmptyInput  = errors.New("llmclient: empty input text")
)

// Client is the minimal surface the translator needs from a model backend.
type Client interface {
	Name() string
	// GenerateJSON sends prompt plus input and returns the model's raw JSON
	// payload. Callers must treat the payload as untrusted.
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	Close() error
}

// FakeClient returns canned payloads in order. Used by tests and by the
// offline mode of the gateway.
type FakeClient struct {
	Responses []json.RawMessage
	next      int
}

func (f *FakeClient) Name() string { return "fake" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(_ context.Context, _ string, _ any) (json.RawMessage, error) {
	if f.next >= len(f.Responses) {
		return nil, ErrInvalidJSON
	}
	r := f.Responses[f.next]
	f.next++
	return r, nil
}
