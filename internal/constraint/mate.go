// Package constraint validates assembly mates and generates pattern pose
// sequences. It performs referential and type validation only; numeric
// degrees-of-freedom solving is the external CAD engine's job.
package constraint

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"cadpilot/internal/model"
	"cadpilot/internal/units"
)

var (
	ErrInvalidMateValue    = errors.New("constraint: mate value mismatch")
	ErrOverConstrained     = errors.New("constraint: duplicate mate between faces")
	ErrDanglingReference   = errors.New("constraint: mate reference does not resolve")
	ErrSuppressedReference = errors.New("constraint: mate reference is suppressed")
	ErrInvalidPatternCount = errors.New("constraint: invalid pattern count")
)

// AddMate validates and appends a mate to the assembly. An identical
// duplicate of an existing mate is returned as the existing mate without
// appending.
func AddMate(doc *model.AssemblyDocument, typ model.MateType, ref1, ref2 model.MateReference, alignment model.MateAlignment, value *units.Dimension) (*model.AssemblyMate, error) {
	mate, err := ValidateMate(doc, typ, ref1, ref2, alignment, value)
	if err != nil {
		return nil, err
	}
	for _, existing := range doc.Mates {
		if existing.ID == mate.ID {
			return existing, nil
		}
	}
	doc.AddMate(mate)
	return mate, nil
}

// ValidateMate performs the full referential and type validation of a mate
// without mutating the assembly, so previews share the exact semantics of
// execution. Distance and Angle mates require a value (meters and degrees
// respectively); all other types must not carry one. A mate duplicating an
// existing constraint between the same two faces with a different value or
// alignment is rejected as over-constrained; an identical duplicate returns
// the existing mate.
func ValidateMate(doc *model.AssemblyDocument, typ model.MateType, ref1, ref2 model.MateReference, alignment model.MateAlignment, value *units.Dimension) (*model.AssemblyMate, error) {
	if err := checkReference(doc, ref1); err != nil {
		return nil, err
	}
	if err := checkReference(doc, ref2); err != nil {
		return nil, err
	}

	if typ.RequiresValue() && value == nil {
		return nil, fmt.Errorf("%w: %s mate requires a value", ErrInvalidMateValue, typ)
	}
	if !typ.RequiresValue() && value != nil {
		return nil, fmt.Errorf("%w: %s mate must not carry a value", ErrInvalidMateValue, typ)
	}

	var resolved *float64
	if value != nil {
		v := value.BaseMeters()
		if typ == model.MateAngle {
			v = value.Raw() // angles are degrees, not lengths
		}
		resolved = &v
	}

	for _, existing := range doc.Mates {
		if !sameFacePair(existing, ref1, ref2) {
			continue
		}
		if existing.Type != typ {
			continue
		}
		if existing.Alignment == alignment && sameValue(existing.Value, resolved) {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: %s vs %s between %s and %s",
			ErrOverConstrained, existing.Alignment, alignment, ref1, ref2)
	}

	return &model.AssemblyMate{
		ID:        uuid.NewString(),
		Type:      typ,
		Ref1:      ref1,
		Ref2:      ref2,
		Alignment: alignment,
		Value:     resolved,
	}, nil
}

func checkReference(doc *model.AssemblyDocument, ref model.MateReference) error {
	c, ok := doc.Component(ref.Component)
	if !ok {
		return fmt.Errorf("%w: %s", ErrDanglingReference, ref)
	}
	if c.Suppressed {
		return fmt.Errorf("%w: %s", ErrSuppressedReference, ref)
	}
	return nil
}

func sameFacePair(m *model.AssemblyMate, ref1, ref2 model.MateReference) bool {
	if m.Ref1 == ref1 && m.Ref2 == ref2 {
		return true
	}
	return m.Ref1 == ref2 && m.Ref2 == ref1
}

func sameValue(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
