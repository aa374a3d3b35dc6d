// Package geom holds the pure geometric value types shared across the
// domain model, constraint engine and broker. Coordinates are base-unit
// meters once resolved; nothing here carries identity.
package geom

import (
	"fmt"
	"math"
	"strings"
)

// Point3D is an ordered triple in base meters.
type Point3D struct {
	X, Y, Z float64
}

// Vector3D is a direction or displacement in base meters.
type Vector3D struct {
	X, Y, Z float64
}

func (v Vector3D) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vector3D) Scale(s float64) Vector3D {
	return Vector3D{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Normalize returns the unit vector, or the zero vector unchanged.
func (v Vector3D) Normalize() Vector3D {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

func (p Point3D) Translate(v Vector3D) Point3D {
	return Point3D{X: p.X + v.X, Y: p.Y + v.Y, Z: p.Z + v.Z}
}

// Pose is a position plus an axis-angle orientation assigned to an assembly
// component instance.
type Pose struct {
	Position Point3D
	Axis     Vector3D
	AngleDeg float64
}

// PlaneKind enumerates the standard reference planes.
type PlaneKind int

const (
	PlaneFront PlaneKind = iota
	PlaneTop
	PlaneRight
	PlaneCustom
)

// ReferencePlane is one of the standard planes or a custom plane referenced
// by name. Every command resolves to one of these.
type ReferencePlane struct {
	Kind PlaneKind
	Name string // set for PlaneCustom only
}

var standardPlanes = map[string]PlaneKind{
	"front": PlaneFront,
	"top":   PlaneTop,
	"right": PlaneRight,
}

// ParsePlane maps a plane name to a ReferencePlane. Unrecognized names
// become custom-plane references; resolving them against the document is
// the caller's job.
func ParsePlane(name string) ReferencePlane {
	n := strings.ToLower(strings.TrimSpace(name))
	if kind, ok := standardPlanes[n]; ok {
		return ReferencePlane{Kind: kind}
	}
	return ReferencePlane{Kind: PlaneCustom, Name: strings.TrimSpace(name)}
}

func (p ReferencePlane) String() string {
	switch p.Kind {
	case PlaneFront:
		return "Front"
	case PlaneTop:
		return "Top"
	case PlaneRight:
		return "Right"
	case PlaneCustom:
		return p.Name
	}
	return fmt.Sprintf("Plane(%d)", int(p.Kind))
}
