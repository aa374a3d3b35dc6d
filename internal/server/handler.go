package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"cadpilot/internal/broker"
	"cadpilot/internal/intent"
)

const (
	sessionWSWriteWait = 10 * time.Second
	sessionWSPongWait  = 60 * time.Second
	sessionWSPingEvery = (sessionWSPongWait * 9) / 10
)

var sessionWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type sessionWSInbound struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Schema    json.RawMessage `json:"schema,omitempty"`
	PreviewID string          `json:"previewId,omitempty"`
	Mode      string          `json:"mode,omitempty"`
}

type sessionWSOutbound struct {
	Type          string   `json:"type"`
	PreviewID     string   `json:"previewId,omitempty"`
	Actions       []string `json:"actions,omitempty"`
	Status        string   `json:"status,omitempty"`
	Question      string   `json:"question,omitempty"`
	MissingFields []string `json:"missingFields,omitempty"`
	Completed     int      `json:"completed,omitempty"`
	Remaining     int      `json:"remaining,omitempty"`
	Code          string   `json:"code,omitempty"`
	Message       string   `json:"message,omitempty"`
}

// SessionHandler serves the websocket session endpoint.
type SessionHandler struct {
	svc *SessionService
}

func NewSessionHandler(svc *SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) HandleSessionWS(w http.ResponseWriter, r *http.Request) {
	conn, err := sessionWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(sessionWSPongWait)); err != nil {
		log.Printf("session ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(sessionWSPongWait))
	})

	writeCh := make(chan sessionWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(sessionWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(sessionWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(sessionWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		var in sessionWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		msgType := strings.ToLower(strings.TrimSpace(in.Type))
		switch msgType {
		case "ping":
			pushSessionWS(writeCh, sessionWSOutbound{Type: "pong"})
		case "input":
			outcome, err := h.svc.HandleText(ctx, in.Text)
			h.pushOutcome(writeCh, outcome, err, in.Mode)
		case "schema":
			schema, ok := decodeInboundSchema(writeCh, in.Schema)
			if !ok {
				continue
			}
			outcome, err := h.svc.HandleSchema(ctx, schema)
			h.pushOutcome(writeCh, outcome, err, in.Mode)
		case "confirm":
			schema, ok := decodeInboundSchema(writeCh, in.Schema)
			if !ok {
				continue
			}
			outcome, err := h.svc.Confirm(ctx, schema)
			h.pushOutcome(writeCh, outcome, err, in.Mode)
		case "execute":
			res, err := h.svc.Execute(ctx, strings.TrimSpace(in.PreviewID))
			if err != nil {
				pushSessionWS(writeCh, sessionWSOutbound{
					Type:      "error",
					PreviewID: res.PreviewID,
					Completed: res.Completed,
					Remaining: res.Remaining,
					Code:      errorCode(err),
					Message:   err.Error(),
				})
				continue
			}
			pushSessionWS(writeCh, sessionWSOutbound{
				Type:      "executed",
				PreviewID: res.PreviewID,
				Completed: res.Completed,
				Remaining: res.Remaining,
			})
		case "cancel":
			id := strings.TrimSpace(in.PreviewID)
			if err := h.svc.Cancel(id); err != nil {
				pushSessionWS(writeCh, sessionWSOutbound{
					Type:    "error",
					Code:    errorCode(err),
					Message: err.Error(),
				})
				continue
			}
			pushSessionWS(writeCh, sessionWSOutbound{Type: "cancelled", PreviewID: id})
		default:
			pushSessionWS(writeCh, sessionWSOutbound{
				Type:    "error",
				Code:    "invalid_argument",
				Message: "unsupported type: " + msgType,
			})
		}
	}
}

func (h *SessionHandler) pushOutcome(writeCh chan sessionWSOutbound, outcome *Outcome, err error, mode string) {
	if err != nil {
		pushSessionWS(writeCh, sessionWSOutbound{
			Type:    "error",
			Code:    errorCode(err),
			Message: err.Error(),
		})
		return
	}
	if outcome.Clarification != nil {
		pushSessionWS(writeCh, sessionWSOutbound{
			Type:          "clarify",
			Question:      outcome.Clarification.Question,
			MissingFields: outcome.Clarification.MissingFields,
		})
		return
	}
	p := outcome.Preview
	pushSessionWS(writeCh, sessionWSOutbound{
		Type:      "preview",
		PreviewID: p.ID,
		Actions:   p.Trace(displayMode(mode)),
		Status:    string(p.Status),
	})
}

func decodeInboundSchema(writeCh chan sessionWSOutbound, raw json.RawMessage) (intent.CommandSchema, bool) {
	var schema intent.CommandSchema
	if len(raw) == 0 {
		pushSessionWS(writeCh, sessionWSOutbound{
			Type:    "error",
			Code:    "invalid_argument",
			Message: "schema is required",
		})
		return schema, false
	}
	if err := json.Unmarshal(raw, &schema); err != nil {
		pushSessionWS(writeCh, sessionWSOutbound{
			Type:    "error",
			Code:    "invalid_argument",
			Message: "schema is not valid JSON: " + err.Error(),
		})
		return schema, false
	}
	return schema, true
}

func displayMode(mode string) broker.DisplayMode {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "verbose":
		return broker.Verbose
	case "compact":
		return broker.Compact
	default:
		return broker.Detailed
	}
}

func errorCode(err error) string {
	var re *intent.ResolveError
	if errors.As(err, &re) {
		return string(re.Code)
	}
	switch {
	case errors.Is(err, broker.ErrUnknownPreview):
		return "not_found"
	case errors.Is(err, broker.ErrNotPending):
		return "failed_precondition"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "internal"
	}
}

func pushSessionWS(writeCh chan sessionWSOutbound, out sessionWSOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
