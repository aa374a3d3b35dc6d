package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cadpilot/internal/geom"
)

var (
	ErrComponentExists   = errors.New("model: component name already in use")
	ErrUnknownComponent  = errors.New("model: unknown component")
	ErrComponentMated    = errors.New("model: component is referenced by a live mate")
	ErrUnknownMate       = errors.New("model: unknown mate")
	ErrComponentSuppress = errors.New("model: component is suppressed")
)

// MateType enumerates the supported assembly constraints.
type MateType int

const (
	MateCoincident MateType = iota
	MateConcentric
	MateDistance
	MateAngle
	MateParallel
	MatePerpendicular
)

var mateNames = map[MateType]string{
	MateCoincident:    "Coincident",
	MateConcentric:    "Concentric",
	MateDistance:      "Distance",
	MateAngle:         "Angle",
	MateParallel:      "Parallel",
	MatePerpendicular: "Perpendicular",
}

func (t MateType) String() string {
	if s, ok := mateNames[t]; ok {
		return s
	}
	return fmt.Sprintf("MateType(%d)", int(t))
}

// ParseMateType resolves a mate type name case-insensitively.
func ParseMateType(s string) (MateType, bool) {
	for t, name := range mateNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return t, true
		}
	}
	return 0, false
}

// RequiresValue reports whether the mate type carries a numeric value.
func (t MateType) RequiresValue() bool {
	return t == MateDistance || t == MateAngle
}

// MateAlignment selects the facing of the two mated faces.
type MateAlignment int

const (
	AlignAligned MateAlignment = iota
	AlignAntiAligned
)

func (a MateAlignment) String() string {
	if a == AlignAntiAligned {
		return "AntiAligned"
	}
	return "Aligned"
}

// MateReference identifies one endpoint of a mate: a component plus a face
// selector on that component.
type MateReference struct {
	Component string
	Face      string
}

func (r MateReference) String() string {
	return r.Component + "/" + r.Face
}

// AssemblyMate is a validated constraint between two components.
// Value is in base meters for Distance and degrees for Angle.
type AssemblyMate struct {
	ID        string
	Type      MateType
	Ref1      MateReference
	Ref2      MateReference
	Alignment MateAlignment
	Value     *float64
}

// AssemblyComponent is a named instance of a part with a pose.
type AssemblyComponent struct {
	Name       string
	PartID     string
	Pose       geom.Pose
	Fixed      bool
	Suppressed bool
}

// AssemblyDocument owns components and mates.
type AssemblyDocument struct {
	ID         string
	Name       string
	Components map[string]*AssemblyComponent
	Mates      []*AssemblyMate
	Dirty      bool
	CreatedAt  time.Time
	ModifiedAt time.Time
}

func NewAssemblyDocument(name string) *AssemblyDocument {
	now := time.Now()
	return &AssemblyDocument{
		ID:         uuid.NewString(),
		Name:       name,
		Components: make(map[string]*AssemblyComponent),
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

func (d *AssemblyDocument) touch() {
	d.Dirty = true
	d.ModifiedAt = time.Now()
}

// Insert adds a named component instance.
func (d *AssemblyDocument) Insert(c *AssemblyComponent) error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return fmt.Errorf("model: component name is required")
	}
	if _, exists := d.Components[name]; exists {
		return fmt.Errorf("%w: %s", ErrComponentExists, name)
	}
	d.Components[name] = c
	d.touch()
	return nil
}

// Component resolves a component by name; suppressed components resolve but
// are flagged by the caller where that matters.
func (d *AssemblyDocument) Component(name string) (*AssemblyComponent, bool) {
	c, ok := d.Components[strings.TrimSpace(name)]
	return c, ok
}

// DeleteComponent removes a component. A component referenced by a live
// mate cannot be deleted; the mate must be removed first.
func (d *AssemblyDocument) DeleteComponent(name string) error {
	name = strings.TrimSpace(name)
	if _, ok := d.Components[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}
	for _, m := range d.Mates {
		if m.Ref1.Component == name || m.Ref2.Component == name {
			return fmt.Errorf("%w: %s held by mate %s", ErrComponentMated, name, m.ID)
		}
	}
	delete(d.Components, name)
	d.touch()
	return nil
}

// AddMate appends an already validated mate.
func (d *AssemblyDocument) AddMate(m *AssemblyMate) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	d.Mates = append(d.Mates, m)
	d.touch()
}

// DeleteMate removes a mate by id.
func (d *AssemblyDocument) DeleteMate(id string) error {
	for i, m := range d.Mates {
		if m.ID == id {
			d.Mates = append(d.Mates[:i], d.Mates[i+1:]...)
			d.touch()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownMate, id)
}
