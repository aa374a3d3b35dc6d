package cad

import (
	"context"
	"fmt"
	"sync"

	"cadpilot/internal/geom"
)

// TraceEngine records every capability call as a formatted line instead of
// driving a real kernel. It backs dry runs, audits and tests. Export
// returns a deterministic textual artifact.
type TraceEngine struct {
	mu    sync.Mutex
	calls []string

	// FailAt makes the n-th call (1-based) fail; zero disables. Used by
	// tests to exercise partial execution.
	FailAt int
	n      int
}

func NewTraceEngine() *TraceEngine {
	return &TraceEngine{}
}

// Calls returns a copy of the recorded call lines.
func (e *TraceEngine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.calls))
	copy(out, e.calls)
	return out
}

func (e *TraceEngine) record(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.n++
	if e.FailAt > 0 && e.n == e.FailAt {
		return fmt.Errorf("cad: engine rejected call %d: %s", e.n, line)
	}
	e.calls = append(e.calls, line)
	return nil
}

func (e *TraceEngine) SelectPlane(ctx context.Context, plane string) error {
	return e.record(ctx, fmt.Sprintf("select_plane(%s)", plane))
}

func (e *TraceEngine) StartSketch(ctx context.Context) error {
	return e.record(ctx, "start_sketch()")
}

func (e *TraceEngine) DrawRectangle(ctx context.Context, x, y, width, length float64) error {
	return e.record(ctx, fmt.Sprintf("draw_rectangle(x=%g, y=%g, w=%g, l=%g)", x, y, width, length))
}

func (e *TraceEngine) DrawCircle(ctx context.Context, x, y, radius float64) error {
	return e.record(ctx, fmt.Sprintf("draw_circle(x=%g, y=%g, r=%g)", x, y, radius))
}

func (e *TraceEngine) EndSketch(ctx context.Context) error {
	return e.record(ctx, "end_sketch()")
}

func (e *TraceEngine) Extrude(ctx context.Context, depth float64) error {
	return e.record(ctx, fmt.Sprintf("extrude(depth=%g)", depth))
}

func (e *TraceEngine) CutExtrude(ctx context.Context, depth float64) error {
	return e.record(ctx, fmt.Sprintf("cut_extrude(depth=%g)", depth))
}

func (e *TraceEngine) Fillet(ctx context.Context, radius float64, edges string) error {
	return e.record(ctx, fmt.Sprintf("fillet(r=%g, edges=%s)", radius, edges))
}

func (e *TraceEngine) Chamfer(ctx context.Context, distance float64, edges string) error {
	return e.record(ctx, fmt.Sprintf("chamfer(d=%g, edges=%s)", distance, edges))
}

func (e *TraceEngine) Hole(ctx context.Context, x, y, diameter, depth float64) error {
	return e.record(ctx, fmt.Sprintf("hole(x=%g, y=%g, d=%g, depth=%g)", x, y, diameter, depth))
}

func (e *TraceEngine) InsertComponent(ctx context.Context, part, name string, at geom.Point3D) error {
	return e.record(ctx, fmt.Sprintf("insert_component(part=%s, name=%s, at=(%g,%g,%g))", part, name, at.X, at.Y, at.Z))
}

func (e *TraceEngine) AddMate(ctx context.Context, mateType, ref1, ref2 string, value float64) error {
	return e.record(ctx, fmt.Sprintf("add_mate(type=%s, ref1=%s, ref2=%s, value=%g)", mateType, ref1, ref2, value))
}

func (e *TraceEngine) Save(ctx context.Context, documentID string) error {
	return e.record(ctx, fmt.Sprintf("save(doc=%s)", documentID))
}

func (e *TraceEngine) Export(ctx context.Context, documentID, format string) ([]byte, error) {
	if err := e.record(ctx, fmt.Sprintf("export(doc=%s, format=%s)", documentID, format)); err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("cadpilot export %s as %s\n", documentID, format)), nil
}

var _ Engine = (*TraceEngine)(nil)
