// Package command defines the closed set of user-invokable operations.
// Each variant carries validated, unit-resolved parameters; values are
// produced only by the intent resolver and consumed exactly once by the
// broker. The union is sealed so the resolver and broker switch over it
// exhaustively.
package command

import (
	"cadpilot/internal/geom"
	"cadpilot/internal/model"
	"cadpilot/internal/units"
)

// Command is the sealed union of operation variants. Implementations are
// immutable once built.
type Command interface {
	isCommand()
	// Intent returns the canonical intent tag the command was resolved from.
	Intent() string
}

// CreatePart opens a new empty part document.
type CreatePart struct {
	Name string
	Unit units.Unit
}

// CreateBox sketches a rectangle on a plane and extrudes it.
type CreateBox struct {
	DocumentID string
	Plane      geom.ReferencePlane
	Width      units.Dimension
	Length     units.Dimension
	Height     units.Dimension
}

// CreateCylinder sketches a circle on a plane and extrudes it.
type CreateCylinder struct {
	DocumentID string
	Plane      geom.ReferencePlane
	Diameter   units.Dimension
	Height     units.Dimension
}

// AddFillet rounds the selected edges of the active part.
type AddFillet struct {
	DocumentID   string
	Radius       units.Dimension
	EdgeSelector string
}

// AddChamfer bevels the selected edges of the active part.
type AddChamfer struct {
	DocumentID   string
	Distance     units.Dimension
	EdgeSelector string
}

// AddHole drills a hole at a sketch-plane location.
type AddHole struct {
	DocumentID string
	Center     geom.Point3D
	Diameter   units.Dimension
	Depth      units.Dimension
}

// AddPattern replicates the most recent feature.
type AddPattern struct {
	DocumentID string
	Kind       model.PatternKind
	Count      int

	// Linear parameters.
	Spacing   units.Dimension
	Direction geom.Vector3D

	// Circular parameters.
	Radius        units.Dimension
	TotalAngleDeg float64
	Closed        bool
}

// AddMate constrains two assembly components.
type AddMate struct {
	DocumentID string
	Type       model.MateType
	Ref1       model.MateReference
	Ref2       model.MateReference
	Alignment  model.MateAlignment
	Value      *units.Dimension
}

// InsertComponent places a part instance into the active assembly.
type InsertComponent struct {
	DocumentID    string
	PartName      string
	ComponentName string
	At            geom.Point3D
}

// SaveDocument persists a snapshot of the document.
type SaveDocument struct {
	DocumentID string
}

// ExportDocument renders the document to a neutral format and stores the
// artifact.
type ExportDocument struct {
	DocumentID string
	Format     string // e.g. "step", "stl"
}

// Undo reverts the most recent feature of the document.
type Undo struct {
	DocumentID string
}

// Redo re-applies the most recently undone feature.
type Redo struct {
	DocumentID string
}

// CloseDocument ends the document lifecycle explicitly.
type CloseDocument struct {
	DocumentID string
}

func (CreatePart) isCommand()      {}
func (CreateBox) isCommand()       {}
func (CreateCylinder) isCommand()  {}
func (AddFillet) isCommand()       {}
func (AddChamfer) isCommand()      {}
func (AddHole) isCommand()         {}
func (AddPattern) isCommand()      {}
func (AddMate) isCommand()         {}
func (InsertComponent) isCommand() {}
func (SaveDocument) isCommand()    {}
func (ExportDocument) isCommand()  {}
func (Undo) isCommand()            {}
func (Redo) isCommand()            {}
func (CloseDocument) isCommand()   {}

func (CreatePart) Intent() string      { return "CREATE_PART" }
func (CreateBox) Intent() string       { return "CREATE_BOX" }
func (CreateCylinder) Intent() string  { return "CREATE_CYLINDER" }
func (AddFillet) Intent() string       { return "ADD_FILLET" }
func (AddChamfer) Intent() string      { return "ADD_CHAMFER" }
func (AddHole) Intent() string         { return "ADD_HOLE" }
func (AddPattern) Intent() string      { return "ADD_PATTERN" }
func (AddMate) Intent() string         { return "ADD_MATE" }
func (InsertComponent) Intent() string { return "INSERT_COMPONENT" }
func (SaveDocument) Intent() string    { return "SAVE" }
func (ExportDocument) Intent() string  { return "EXPORT" }
func (Undo) Intent() string            { return "UNDO" }
func (Redo) Intent() string            { return "REDO" }
func (CloseDocument) Intent() string   { return "CLOSE" }
