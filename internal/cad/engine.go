// Package cad defines the outbound capability interface to the external
// CAD engine. Every operation takes base-unit (meter) numeric parameters;
// user-unit values never cross this boundary. Implementations are expected
// to be long-running and cancellable via the context.
package cad

import (
	"context"

	"cadpilot/internal/geom"
)

// Engine is the abstract CAD capability interface. The broker is its only
// caller in this codebase.
type Engine interface {
	SelectPlane(ctx context.Context, plane string) error
	StartSketch(ctx context.Context) error
	DrawRectangle(ctx context.Context, x, y, width, length float64) error
	DrawCircle(ctx context.Context, x, y, radius float64) error
	EndSketch(ctx context.Context) error
	Extrude(ctx context.Context, depth float64) error
	CutExtrude(ctx context.Context, depth float64) error
	Fillet(ctx context.Context, radius float64, edges string) error
	Chamfer(ctx context.Context, distance float64, edges string) error
	Hole(ctx context.Context, x, y, diameter, depth float64) error
	InsertComponent(ctx context.Context, part, name string, at geom.Point3D) error
	AddMate(ctx context.Context, mateType, ref1, ref2 string, value float64) error
	Save(ctx context.Context, documentID string) error
	Export(ctx context.Context, documentID, format string) ([]byte, error)
}
