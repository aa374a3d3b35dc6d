package model

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cadpilot/internal/geom"
	"cadpilot/internal/units"
)

func pt(x, y float64) geom.Point3D { return geom.Point3D{X: x, Y: y} }

func chain(points ...geom.Point3D) *SketchProfile {
	p := NewSketchProfile(geom.ReferencePlane{Kind: geom.PlaneFront})
	for i := 0; i < len(points)-1; i++ {
		p.Add(Line{Start: points[i], End: points[i+1]})
	}
	return p
}

func TestProfileValidate_ClosedPrimitivesStandAlone(t *testing.T) {
	p := NewSketchProfile(geom.ReferencePlane{Kind: geom.PlaneFront})
	p.Add(Rectangle{Width: 0.1, Length: 0.05})
	require.NoError(t, p.Validate())

	p = NewSketchProfile(geom.ReferencePlane{Kind: geom.PlaneTop})
	p.Add(Circle{Radius: 0.02})
	require.NoError(t, p.Validate())
}

func TestProfileValidate_OpenChainRejected(t *testing.T) {
	// Three sides of a square, never returning to the start.
	p := chain(pt(0, 0), pt(1, 0), pt(1, 1), pt(0, 1))
	require.ErrorIs(t, p.Validate(), ErrOpenProfile)

	require.ErrorIs(t, (&SketchProfile{}).Validate(), ErrOpenProfile)
}

func TestProfileValidate_ClosedChainAccepted(t *testing.T) {
	p := chain(pt(0, 0), pt(1, 0), pt(1, 1), pt(0, 1), pt(0, 0))
	require.NoError(t, p.Validate())
}

func TestProfileValidate_SelfIntersectingBowtie(t *testing.T) {
	// Figure-eight: the two diagonals cross mid-span.
	p := chain(pt(0, 0), pt(1, 1), pt(1, 0), pt(0, 1), pt(0, 0))
	require.ErrorIs(t, p.Validate(), ErrSelfIntersect)
}

func TestProfileValidate_LazyUntilFeatureReferencesIt(t *testing.T) {
	doc := NewPartDocument("Plate", units.Millimeter)
	open := chain(pt(0, 0), pt(1, 0), pt(1, 1))
	// Adding an invalid profile succeeds; the contour check fires on extrude.
	require.NoError(t, doc.AddProfile(open))
	require.ErrorIs(t, doc.AddFeature(&Extrusion{Profile: open, Depth: 0.01}), ErrOpenProfile)
	require.Empty(t, doc.Features)

	require.ErrorIs(t, doc.AddFeature(&Cut{Depth: 0.01}), ErrMissingProfile)
}

func TestPartDocument_UndoRedo(t *testing.T) {
	doc := NewPartDocument("Bracket", units.Inch)
	fillet := &Fillet{Radius: 0.002, EdgeSelector: "all"}
	hole := &Hole{Diameter: 0.005, Depth: 0.01}
	require.NoError(t, doc.AddFeature(fillet))
	require.NoError(t, doc.AddFeature(hole))

	undone, err := doc.Undo()
	require.NoError(t, err)
	require.Same(t, Feature(hole), undone)
	require.Len(t, doc.Features, 1)

	redone, err := doc.Redo()
	require.NoError(t, err)
	require.Same(t, Feature(hole), redone)
	require.Len(t, doc.Features, 2)

	_, err = doc.Redo()
	require.ErrorIs(t, err, ErrNothingToRedo)
}

func TestPartDocument_NewFeatureClearsRedo(t *testing.T) {
	doc := NewPartDocument("Bracket", units.Inch)
	require.NoError(t, doc.AddFeature(&Fillet{Radius: 0.001}))
	require.NoError(t, doc.AddFeature(&Chamfer{Distance: 0.001}))
	_, err := doc.Undo()
	require.NoError(t, err)

	require.NoError(t, doc.AddFeature(&Hole{Diameter: 0.004, Depth: 0.008}))
	_, err = doc.Redo()
	require.ErrorIs(t, err, ErrNothingToRedo)
}

func TestPartDocument_UndoOnEmpty(t *testing.T) {
	doc := NewPartDocument("Empty", units.Meter)
	_, err := doc.Undo()
	require.ErrorIs(t, err, ErrNothingToUndo)
}

func TestPartDocument_ClosedRejectsMutation(t *testing.T) {
	doc := NewPartDocument("Done", units.Millimeter)
	require.NoError(t, doc.AddFeature(&Fillet{Radius: 0.001}))
	doc.Close()

	require.ErrorIs(t, doc.AddFeature(&Chamfer{Distance: 0.001}), ErrDocumentClosed)
	require.ErrorIs(t, doc.AddProfile(NewSketchProfile(geom.ReferencePlane{})), ErrDocumentClosed)
	_, err := doc.Undo()
	require.ErrorIs(t, err, ErrDocumentClosed)
	_, err = doc.Redo()
	require.ErrorIs(t, err, ErrDocumentClosed)
}

func TestPartDocument_DirtyTracking(t *testing.T) {
	doc := NewPartDocument("Plate", units.Millimeter)
	require.False(t, doc.Dirty)
	require.NoError(t, doc.AddFeature(&Hole{Diameter: 0.004, Depth: 0.008}))
	require.True(t, doc.Dirty)
}

func TestRegistry_ActiveDocumentTracking(t *testing.T) {
	r := NewRegistry()
	require.Equal(t, "", r.ActiveID())

	a := NewPartDocument("A", units.Inch)
	b := NewPartDocument("B", units.Millimeter)
	r.AddPart(a)
	r.AddPart(b)
	require.Equal(t, b.ID, r.ActiveID(), "most recently added becomes active")

	require.NoError(t, r.SetActive(a.ID))
	got, ok := r.ActivePart()
	require.True(t, ok)
	require.Same(t, a, got)

	require.ErrorIs(t, r.SetActive("nope"), ErrUnknownDocument)
}

func TestRegistry_CloseClearsActive(t *testing.T) {
	r := NewRegistry()
	d := NewPartDocument("Solo", units.Inch)
	r.AddPart(d)
	require.NoError(t, r.ClosePart(d.ID))
	require.True(t, d.Closed)
	require.Equal(t, "", r.ActiveID())
	_, ok := r.Part(d.ID)
	require.False(t, ok)
}

func TestRegistry_Lookups(t *testing.T) {
	r := NewRegistry()
	d := NewPartDocument("Bracket", units.Inch)
	d.BoundingHint = 0.0508
	r.AddPart(d)

	require.True(t, r.HasPartNamed("bracket"), "name match is case-insensitive")
	require.False(t, r.HasPartNamed("Widget"))

	edge, ok := r.SmallestEdge(d.ID)
	require.True(t, ok)
	require.InDelta(t, 0.0508, edge, 1e-12)
	_, ok = r.SmallestEdge("nope")
	require.False(t, ok)

	asm := NewAssemblyDocument("rig")
	require.NoError(t, asm.Insert(&AssemblyComponent{Name: "base", PartID: d.ID}))
	r.AddAssembly(asm)
	require.True(t, r.HasComponent("base"))
	require.False(t, r.HasComponent("shaft"))
}

func TestAssembly_ComponentLifecycle(t *testing.T) {
	asm := NewAssemblyDocument("rig")
	require.NoError(t, asm.Insert(&AssemblyComponent{Name: "base", PartID: "p1"}))
	require.ErrorIs(t, asm.Insert(&AssemblyComponent{Name: "base", PartID: "p2"}), ErrComponentExists)

	asm.AddMate(&AssemblyMate{
		Type: MateCoincident,
		Ref1: MateReference{Component: "base", Face: "top"},
		Ref2: MateReference{Component: "base", Face: "bottom"},
	})
	require.ErrorIs(t, asm.DeleteComponent("base"), ErrComponentMated)

	require.NoError(t, asm.DeleteMate(asm.Mates[0].ID))
	require.NoError(t, asm.DeleteComponent("base"))
	require.ErrorIs(t, asm.DeleteComponent("base"), ErrUnknownComponent)
	require.ErrorIs(t, asm.DeleteMate("nope"), ErrUnknownMate)
}

func TestParseMateType(t *testing.T) {
	typ, ok := ParseMateType(" concentric ")
	require.True(t, ok)
	require.Equal(t, MateConcentric, typ)
	require.False(t, typ.RequiresValue())
	require.True(t, MateDistance.RequiresValue())
	_, ok = ParseMateType("glued")
	require.False(t, ok)
}
