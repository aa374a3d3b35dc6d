package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"cadpilot/internal/broker"
	"cadpilot/internal/cad"
	"cadpilot/internal/intent"
	"cadpilot/internal/llmclient"
	"cadpilot/internal/model"
	"cadpilot/internal/units"
)

func newService(t *testing.T, responses ...json.RawMessage) (*SessionService, *model.PartDocument, *cad.TraceEngine) {
	t.Helper()
	engine := cad.NewTraceEngine()
	registry := model.NewRegistry()
	doc := model.NewPartDocument("Bracket", units.Inch)
	registry.AddPart(doc)

	translator, err := llmclient.NewTranslator(&llmclient.FakeClient{Responses: responses})
	require.NoError(t, err)

	svc := NewSessionService(
		translator,
		intent.NewResolver(registry),
		broker.New(engine, registry),
		intent.NewSession(units.Inch, 0.5, 0),
	)
	return svc, doc, engine
}

const boxPayload = `{
	"intent": "CREATE_BOX",
	"confidence": 0.9,
	"message": "make a box 10x5x2 inches",
	"parameters": {
		"width":  {"value": 10, "unit": "inches"},
		"length": {"value": 5,  "unit": "inches"},
		"height": {"value": 2,  "unit": "inches"}
	}
}`

func TestSession_TextToPreviewToExecute(t *testing.T) {
	svc, doc, engine := newService(t, json.RawMessage(boxPayload))
	ctx := context.Background()

	outcome, err := svc.HandleText(ctx, "make a box 10x5x2 inches")
	require.NoError(t, err)
	require.Nil(t, outcome.Clarification)
	require.NotNil(t, outcome.Preview)
	require.Len(t, outcome.Preview.Actions, 4)
	require.Empty(t, engine.Calls(), "preview alone must not execute")

	res, err := svc.Execute(ctx, outcome.Preview.ID)
	require.NoError(t, err)
	require.Equal(t, 4, res.Completed)
	require.Len(t, doc.Features, 1)
}

func TestSession_LowConfidenceClarifiesThenConfirmResolves(t *testing.T) {
	raw := `{
		"intent": "CREATE_BOX",
		"confidence": 0.2,
		"message": "box 10 5 2",
		"parameters": {
			"width":  {"value": 10, "unit": "in"},
			"length": {"value": 5,  "unit": "in"},
			"height": {"value": 2,  "unit": "in"}
		}
	}`
	svc, _, _ := newService(t)
	var schema intent.CommandSchema
	require.NoError(t, json.Unmarshal([]byte(raw), &schema))
	ctx := context.Background()

	outcome, err := svc.HandleSchema(ctx, schema)
	require.NoError(t, err)
	require.NotNil(t, outcome.Clarification)

	outcome, err = svc.Confirm(ctx, schema)
	require.NoError(t, err)
	require.NotNil(t, outcome.Preview)
}

func TestSession_CancelDiscardsPendingPreview(t *testing.T) {
	svc, _, engine := newService(t, json.RawMessage(boxPayload))
	ctx := context.Background()

	outcome, err := svc.HandleText(ctx, "make a box 10x5x2 inches")
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(outcome.Preview.ID))

	p, ok := svc.Preview(outcome.Preview.ID)
	require.True(t, ok)
	require.Equal(t, broker.StatusCancelled, p.Status)

	_, err = svc.Execute(ctx, outcome.Preview.ID)
	require.ErrorIs(t, err, broker.ErrNotPending)
	require.Empty(t, engine.Calls())
}

func TestSession_CancelUnknownPreview(t *testing.T) {
	svc, _, _ := newService(t)
	require.ErrorIs(t, svc.Cancel("nope"), broker.ErrUnknownPreview)
}

func TestErrorCode_Mapping(t *testing.T) {
	require.Equal(t, "UnsupportedIntent", errorCode(&intent.ResolveError{Code: intent.CodeUnsupportedIntent}))
	require.Equal(t, "not_found", errorCode(broker.ErrUnknownPreview))
	require.Equal(t, "failed_precondition", errorCode(broker.ErrNotPending))
	require.Equal(t, "cancelled", errorCode(context.Canceled))
}
