// Package model is the in-memory CAD graph: sketch entities, features,
// part and assembly documents, components and mates. Dimensions are stored
// in base meters; the owning document remembers its display unit system.
package model

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"cadpilot/internal/geom"
	"cadpilot/internal/units"
)

var (
	ErrOpenProfile     = errors.New("model: profile contour is not closed")
	ErrSelfIntersect   = errors.New("model: profile contour self-intersects")
	ErrNothingToUndo   = errors.New("model: nothing to undo")
	ErrNothingToRedo   = errors.New("model: nothing to redo")
	ErrDocumentClosed  = errors.New("model: document is closed")
	ErrMissingProfile  = errors.New("model: feature references no profile")
	ErrUnknownDocument = errors.New("model: unknown document")
)

// SketchEntity is the closed set of sketch primitives. Dimensions are base
// meters; origins are points on the owning profile's plane.
type SketchEntity interface {
	sketchEntity()
	// Closed reports whether the entity alone forms a closed contour.
	Closed() bool
}

type Rectangle struct {
	Origin        geom.Point3D
	Width, Length float64
}

type Circle struct {
	Origin geom.Point3D
	Radius float64
}

type Line struct {
	Start, End geom.Point3D
}

func (Rectangle) sketchEntity() {}
func (Circle) sketchEntity()    {}
func (Line) sketchEntity()      {}

func (Rectangle) Closed() bool { return true }
func (Circle) Closed() bool    { return true }
func (Line) Closed() bool      { return false }

// SketchProfile owns an ordered sequence of entities on exactly one plane.
// Contour validity is checked lazily when a feature references the profile,
// not when entities are added.
type SketchProfile struct {
	ID       string
	Plane    geom.ReferencePlane
	Entities []SketchEntity
}

func NewSketchProfile(plane geom.ReferencePlane) *SketchProfile {
	return &SketchProfile{ID: uuid.NewString(), Plane: plane}
}

func (p *SketchProfile) Add(e SketchEntity) {
	p.Entities = append(p.Entities, e)
}

const weldTol = 1e-9

// Validate checks that the aggregate entities form a closed,
// non-self-intersecting contour. Closed primitives stand on their own;
// bare lines must chain end-to-start back to the first point.
func (p *SketchProfile) Validate() error {
	if p == nil || len(p.Entities) == 0 {
		return ErrOpenProfile
	}
	var lines []Line
	for _, e := range p.Entities {
		if l, ok := e.(Line); ok {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	if len(lines) < 3 {
		return ErrOpenProfile
	}
	for i := 0; i < len(lines); i++ {
		next := lines[(i+1)%len(lines)]
		if !samePoint(lines[i].End, next.Start) {
			return ErrOpenProfile
		}
	}
	for i := 0; i < len(lines); i++ {
		for j := i + 2; j < len(lines); j++ {
			if i == 0 && j == len(lines)-1 {
				continue // shares the closing vertex
			}
			if segmentsCross(lines[i], lines[j]) {
				return ErrSelfIntersect
			}
		}
	}
	return nil
}

func samePoint(a, b geom.Point3D) bool {
	return math.Abs(a.X-b.X) < weldTol && math.Abs(a.Y-b.Y) < weldTol && math.Abs(a.Z-b.Z) < weldTol
}

// segmentsCross tests proper intersection of two profile segments projected
// onto the sketch plane (X/Y components).
func segmentsCross(a, b Line) bool {
	d1 := cross2(b.Start, b.End, a.Start)
	d2 := cross2(b.Start, b.End, a.End)
	d3 := cross2(a.Start, a.End, b.Start)
	d4 := cross2(a.Start, a.End, b.End)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross2(o, a, b geom.Point3D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// Feature is the closed set of part features. Order of application is
// semantically significant and preserved by PartDocument.
type Feature interface {
	feature()
	// Describe returns a short human label for previews and exports.
	Describe() string
}

type Extrusion struct {
	Profile *SketchProfile
	Depth   float64
}

type Cut struct {
	Profile *SketchProfile
	Depth   float64
}

type Fillet struct {
	Radius       float64
	EdgeSelector string
}

type Chamfer struct {
	Distance     float64
	EdgeSelector string
}

type Hole struct {
	Center   geom.Point3D
	Diameter float64
	Depth    float64
}

// PatternKind selects linear or circular replication.
type PatternKind int

const (
	PatternLinear PatternKind = iota
	PatternCircular
)

// Pattern records replicated instances of the preceding feature. Instance
// poses are appended as the pattern is applied, so a partially executed
// pattern retains exactly the instances that completed.
type Pattern struct {
	Kind      PatternKind
	Count     int
	Instances []geom.Pose
}

func (*Extrusion) feature() {}
func (*Cut) feature()       {}
func (*Fillet) feature()    {}
func (*Chamfer) feature()   {}
func (*Hole) feature()      {}
func (*Pattern) feature()   {}

func (f *Extrusion) Describe() string { return fmt.Sprintf("extrusion depth %gm", f.Depth) }
func (f *Cut) Describe() string       { return fmt.Sprintf("cut depth %gm", f.Depth) }
func (f *Fillet) Describe() string    { return fmt.Sprintf("fillet r=%gm", f.Radius) }
func (f *Chamfer) Describe() string   { return fmt.Sprintf("chamfer d=%gm", f.Distance) }
func (f *Hole) Describe() string      { return fmt.Sprintf("hole d=%gm depth %gm", f.Diameter, f.Depth) }
func (f *Pattern) Describe() string {
	kind := "linear"
	if f.Kind == PatternCircular {
		kind = "circular"
	}
	return fmt.Sprintf("%s pattern x%d (%d placed)", kind, f.Count, len(f.Instances))
}

// PartDocument owns ordered sketch profiles and features. Identity is a
// generated unique id; an explicit Close ends the lifecycle.
type PartDocument struct {
	ID         string
	Name       string
	Units      units.Unit
	Profiles   []*SketchProfile
	Features   []Feature
	redo       []Feature
	Dirty      bool
	Closed     bool
	CreatedAt  time.Time
	ModifiedAt time.Time

	// BoundingHint is the smallest known edge length in meters, zero when
	// unknown. Box-like parts set it so the resolver can bound fillet radii.
	BoundingHint float64
}

func NewPartDocument(name string, unit units.Unit) *PartDocument {
	now := time.Now()
	return &PartDocument{
		ID:         uuid.NewString(),
		Name:       name,
		Units:      unit,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

func (d *PartDocument) touch() {
	d.Dirty = true
	d.ModifiedAt = time.Now()
}

func (d *PartDocument) AddProfile(p *SketchProfile) error {
	if d.Closed {
		return ErrDocumentClosed
	}
	d.Profiles = append(d.Profiles, p)
	d.touch()
	return nil
}

// AddFeature appends a feature in creation order. Extrusions and cuts
// trigger the lazy contour check on their profile.
func (d *PartDocument) AddFeature(f Feature) error {
	if d.Closed {
		return ErrDocumentClosed
	}
	switch ft := f.(type) {
	case *Extrusion:
		if ft.Profile == nil {
			return ErrMissingProfile
		}
		if err := ft.Profile.Validate(); err != nil {
			return err
		}
	case *Cut:
		if ft.Profile == nil {
			return ErrMissingProfile
		}
		if err := ft.Profile.Validate(); err != nil {
			return err
		}
	}
	d.Features = append(d.Features, f)
	d.redo = nil
	d.touch()
	return nil
}

// Undo removes the most recent feature and parks it on the redo stack.
func (d *PartDocument) Undo() (Feature, error) {
	if d.Closed {
		return nil, ErrDocumentClosed
	}
	if len(d.Features) == 0 {
		return nil, ErrNothingToUndo
	}
	last := d.Features[len(d.Features)-1]
	d.Features = d.Features[:len(d.Features)-1]
	d.redo = append(d.redo, last)
	d.touch()
	return last, nil
}

// Redo re-applies the most recently undone feature.
func (d *PartDocument) Redo() (Feature, error) {
	if d.Closed {
		return nil, ErrDocumentClosed
	}
	if len(d.redo) == 0 {
		return nil, ErrNothingToRedo
	}
	last := d.redo[len(d.redo)-1]
	d.redo = d.redo[:len(d.redo)-1]
	d.Features = append(d.Features, last)
	d.touch()
	return last, nil
}

// Close ends the document lifecycle. Further mutation fails with
// ErrDocumentClosed.
func (d *PartDocument) Close() {
	d.Closed = true
}

// LastFeature returns the most recent feature, or nil.
func (d *PartDocument) LastFeature() Feature {
	if len(d.Features) == 0 {
		return nil
	}
	return d.Features[len(d.Features)-1]
}
