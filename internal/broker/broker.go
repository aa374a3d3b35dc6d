package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"cadpilot/internal/cad"
	"cadpilot/internal/command"
	"cadpilot/internal/model"
)

var (
	ErrUnknownPreview = errors.New("broker: unknown preview")
	ErrNotPending     = errors.New("broker: preview is not pending")
)

const defaultHistorySize = 128

// SnapshotStore persists document snapshots on Save commands.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, doc *model.PartDocument) error
}

// ArtifactSink receives export artifacts.
type ArtifactSink interface {
	Put(ctx context.Context, documentID, name string, content []byte) error
}

// step pairs a sub-action with its side effect. Preview drops the effect;
// execute replays it. Both come from the same decomposition.
type step struct {
	action SubAction
	run    func(ctx context.Context) error
}

// Broker decomposes commands into previews and serializes execution per
// document. Preview generation never touches the domain model.
type Broker struct {
	engine    cad.Engine
	registry  *model.Registry
	snapshots SnapshotStore // optional
	artifacts ArtifactSink  // optional

	history *lru.Cache[string, *PreviewResult]

	mu       sync.Mutex
	docLocks map[string]*sync.Mutex
}

// Option configures a Broker.
type Option func(*Broker)

// WithSnapshots wires a snapshot store for Save commands.
func WithSnapshots(s SnapshotStore) Option {
	return func(b *Broker) { b.snapshots = s }
}

// WithArtifacts wires an artifact sink for Export commands.
func WithArtifacts(a ArtifactSink) Option {
	return func(b *Broker) { b.artifacts = a }
}

// WithHistorySize bounds the preview history ring.
func WithHistorySize(n int) Option {
	return func(b *Broker) {
		if n > 0 {
			cache, _ := lru.New[string, *PreviewResult](n)
			b.history = cache
		}
	}
}

func New(engine cad.Engine, registry *model.Registry, opts ...Option) *Broker {
	cache, _ := lru.New[string, *PreviewResult](defaultHistorySize)
	b := &Broker{
		engine:   engine,
		registry: registry,
		history:  cache,
		docLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// GeneratePreview decomposes the command into ordered sub-actions purely
// from its resolved parameters and retains the result in the bounded
// history ring (oldest evicted first).
func (b *Broker) GeneratePreview(cmd command.Command, inputText string, confidence float64) (*PreviewResult, error) {
	steps, err := b.decompose(cmd, confidence)
	if err != nil {
		return nil, err
	}
	p := &PreviewResult{
		ID:        uuid.NewString(),
		InputText: inputText,
		Status:    StatusPending,
		CreatedAt: time.Now(),
		steps:     steps,
		docID:     commandDocID(cmd),
	}
	for _, s := range steps {
		p.Actions = append(p.Actions, s.action)
	}
	b.history.Add(p.ID, p)
	return p, nil
}

// Preview looks up a retained preview by id.
func (b *Broker) Preview(id string) (*PreviewResult, bool) {
	return b.history.Get(id)
}

// ExecuteResult reports how far execution got.
type ExecuteResult struct {
	PreviewID string
	Completed int
	Remaining int
}

// Execute replays the preview's decomposition against the capability
// interface, serialized per document. Cancellation stops before the next
// untried sub-action but never interrupts one already dispatched. On
// failure the already-applied sub-actions stay in place; the result
// reports the partial-success split.
func (b *Broker) Execute(ctx context.Context, previewID string) (ExecuteResult, error) {
	p, ok := b.history.Get(previewID)
	if !ok {
		return ExecuteResult{}, fmt.Errorf("%w: %s", ErrUnknownPreview, previewID)
	}

	b.mu.Lock()
	if p.Status != StatusPending {
		b.mu.Unlock()
		return ExecuteResult{PreviewID: p.ID}, fmt.Errorf("%w: %s is %s", ErrNotPending, p.ID, p.Status)
	}
	lock := b.lockForLocked(p.docID)
	b.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	res := ExecuteResult{PreviewID: p.ID, Remaining: len(p.steps)}
	for i, s := range p.steps {
		if err := ctx.Err(); err != nil {
			b.markLocked(p, StatusCancelled, i, i < len(p.steps))
			return res, err
		}
		if err := s.run(ctx); err != nil {
			b.markLocked(p, StatusExecuted, i, true)
			return res, fmt.Errorf("broker: sub-action %d (%s) failed, %d applied, %d abandoned: %w",
				i+1, s.action.Type, i, len(p.steps)-i, err)
		}
		res.Completed = i + 1
		res.Remaining = len(p.steps) - res.Completed
	}
	b.markLocked(p, StatusExecuted, len(p.steps), false)
	return res, nil
}

// MarkExecuted transitions a pending preview to Executed. Idempotent no-op
// once terminal.
func (b *Broker) MarkExecuted(previewID string) {
	b.mark(previewID, StatusExecuted)
}

// MarkCancelled transitions a pending preview to Cancelled. Idempotent
// no-op once terminal.
func (b *Broker) MarkCancelled(previewID string) {
	b.mark(previewID, StatusCancelled)
}

func (b *Broker) mark(previewID string, status Status) {
	p, ok := b.history.Get(previewID)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.Status != StatusPending {
		return
	}
	p.Status = status
}

func (b *Broker) markLocked(p *PreviewResult, status Status, completed int, partial bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.Status == StatusPending {
		p.Status = status
	}
	p.Completed = completed
	p.Partial = partial
}

// lockForLocked returns the per-document mutex; callers hold b.mu.
func (b *Broker) lockForLocked(docID string) *sync.Mutex {
	if docID == "" {
		docID = "-"
	}
	l, ok := b.docLocks[docID]
	if !ok {
		l = &sync.Mutex{}
		b.docLocks[docID] = l
	}
	return l
}

// commandDocID extracts the targeted document id; the switch is exhaustive
// over the sealed command union.
func commandDocID(cmd command.Command) string {
	switch c := cmd.(type) {
	case command.CreatePart:
		return ""
	case command.CreateBox:
		return c.DocumentID
	case command.CreateCylinder:
		return c.DocumentID
	case command.AddFillet:
		return c.DocumentID
	case command.AddChamfer:
		return c.DocumentID
	case command.AddHole:
		return c.DocumentID
	case command.AddPattern:
		return c.DocumentID
	case command.AddMate:
		return c.DocumentID
	case command.InsertComponent:
		return c.DocumentID
	case command.SaveDocument:
		return c.DocumentID
	case command.ExportDocument:
		return c.DocumentID
	case command.Undo:
		return c.DocumentID
	case command.Redo:
		return c.DocumentID
	case command.CloseDocument:
		return c.DocumentID
	}
	return ""
}
