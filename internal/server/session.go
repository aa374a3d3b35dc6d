package server

import (
	"context"
	"errors"
	"fmt"

	"cadpilot/internal/broker"
	"cadpilot/internal/intent"
	"cadpilot/internal/llmclient"
)

// Translator is the model round trip the session needs; nil means schemas
// must arrive pre-translated.
type Translator interface {
	Translate(ctx context.Context, text string) (intent.CommandSchema, error)
}

// Outcome is the single result of handling one user turn: exactly one of
// Clarification or Preview is set.
type Outcome struct {
	Clarification *intent.Clarification
	Preview       *broker.PreviewResult
}

// SessionService ties translator, resolver and broker together for one
// conversation. It owns the session context (unit, confirmations).
type SessionService struct {
	translator Translator
	resolver   *intent.Resolver
	broker     *broker.Broker
	sess       *intent.Session
}

func NewSessionService(translator Translator, resolver *intent.Resolver, b *broker.Broker, sess *intent.Session) *SessionService {
	return &SessionService{
		translator: translator,
		resolver:   resolver,
		broker:     b,
		sess:       sess,
	}
}

// HandleText runs the full path: model translation, resolution, preview.
func (s *SessionService) HandleText(ctx context.Context, text string) (*Outcome, error) {
	if s.translator == nil {
		return nil, errors.New("server: no translator configured, submit a schema instead")
	}
	schema, err := s.translator.Translate(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.HandleSchema(ctx, schema)
}

// HandleSchema resolves an already-translated payload and, when it yields a
// command, generates its preview. Nothing executes here.
func (s *SessionService) HandleSchema(_ context.Context, schema intent.CommandSchema) (*Outcome, error) {
	cmd, clar, err := s.resolver.Resolve(schema, s.sess)
	if err != nil {
		return nil, err
	}
	if clar != nil {
		return &Outcome{Clarification: clar}, nil
	}
	p, err := s.broker.GeneratePreview(cmd, schema.Message, schema.Confidence)
	if err != nil {
		return nil, err
	}
	return &Outcome{Preview: p}, nil
}

// Confirm records an explicit confirmation of the input text and retries
// resolution of the accompanying schema.
func (s *SessionService) Confirm(ctx context.Context, schema intent.CommandSchema) (*Outcome, error) {
	s.sess.Confirm(schema.Message)
	return s.HandleSchema(ctx, schema)
}

// Execute replays a pending preview.
func (s *SessionService) Execute(ctx context.Context, previewID string) (broker.ExecuteResult, error) {
	return s.broker.Execute(ctx, previewID)
}

// Cancel discards a pending preview.
func (s *SessionService) Cancel(previewID string) error {
	if _, ok := s.broker.Preview(previewID); !ok {
		return fmt.Errorf("%w: %s", broker.ErrUnknownPreview, previewID)
	}
	s.broker.MarkCancelled(previewID)
	return nil
}

// Preview looks up a retained preview.
func (s *SessionService) Preview(previewID string) (*broker.PreviewResult, bool) {
	return s.broker.Preview(previewID)
}

var _ Translator = (*llmclient.Translator)(nil)
