// Package units provides the unit-tagged Dimension value type used by every
// layer that touches user-supplied measurements. All cross-unit arithmetic
// goes through the canonical base (meters) using exact rational scale
// factors, so repeated conversions never accumulate drift.
package units

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Unit enumerates the supported length units.
type Unit int

const (
	Inch Unit = iota
	Millimeter
	Centimeter
	Meter
)

var (
	ErrInvalidFormat = errors.New("units: no numeric literal found")
	ErrUnknownUnit   = errors.New("units: unknown unit")
)

// ratio is an exact unit-to-meter scale factor.
type ratio struct {
	num, den float64
}

var toMeter = map[Unit]ratio{
	Inch:       {254, 10000},
	Millimeter: {1, 1000},
	Centimeter: {1, 100},
	Meter:      {1, 1},
}

var unitNames = map[Unit]string{
	Inch:       "in",
	Millimeter: "mm",
	Centimeter: "cm",
	Meter:      "m",
}

// synonyms maps every accepted unit token to its Unit. Tokens are matched
// case-insensitively after trimming.
var synonyms = map[string]Unit{
	`"`:           Inch,
	"in":          Inch,
	"inch":        Inch,
	"inches":      Inch,
	"mm":          Millimeter,
	"millimeter":  Millimeter,
	"millimeters": Millimeter,
	"cm":          Centimeter,
	"centimeter":  Centimeter,
	"centimeters": Centimeter,
	"m":           Meter,
	"meter":       Meter,
	"meters":      Meter,
}

func (u Unit) String() string {
	if s, ok := unitNames[u]; ok {
		return s
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// ParseUnit resolves a unit token from the synonym table.
func ParseUnit(token string) (Unit, error) {
	tok := strings.ToLower(strings.TrimSpace(token))
	if tok == "" {
		return Meter, fmt.Errorf("%w: empty token", ErrUnknownUnit)
	}
	if u, ok := synonyms[tok]; ok {
		return u, nil
	}
	return Meter, fmt.Errorf("%w: %q", ErrUnknownUnit, token)
}

// Dimension is an immutable unit-tagged scalar. The zero value is 0 inches;
// construct through New or Parse.
type Dimension struct {
	raw  float64
	unit Unit
}

// New builds a Dimension from a raw value in the given unit.
func New(value float64, unit Unit) Dimension {
	return Dimension{raw: value, unit: unit}
}

// Raw returns the value as originally expressed in Unit().
func (d Dimension) Raw() float64 { return d.raw }

// Unit returns the display unit the dimension was expressed in.
func (d Dimension) Unit() Unit { return d.unit }

// BaseMeters materializes the dimension in the canonical base unit.
func (d Dimension) BaseMeters() float64 {
	r := toMeter[d.unit]
	return d.raw * r.num / r.den
}

// ConvertTo returns an equivalent dimension expressed in target. Conversion
// always goes through the meter base, never unit to unit directly.
func (d Dimension) ConvertTo(target Unit) Dimension {
	if target == d.unit {
		return d
	}
	from := toMeter[d.unit]
	to := toMeter[target]
	// (raw * from) / to, ordered to keep the rational factors exact.
	return Dimension{
		raw:  d.raw * from.num * to.den / (from.den * to.num),
		unit: target,
	}
}

// Add returns d + other in d's display unit.
func (d Dimension) Add(other Dimension) Dimension {
	return Dimension{raw: d.raw + other.ConvertTo(d.unit).raw, unit: d.unit}
}

// Sub returns d - other in d's display unit.
func (d Dimension) Sub(other Dimension) Dimension {
	return Dimension{raw: d.raw - other.ConvertTo(d.unit).raw, unit: d.unit}
}

func (d Dimension) String() string {
	return strconv.FormatFloat(d.raw, 'g', -1, 64) + " " + d.unit.String()
}

var literalRe = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?)\s*(.*)$`)

// Parse reads a leading numeric literal plus an optional unit token. When the
// unit is omitted the caller-supplied context unit applies; it is never
// silently meters.
func Parse(text string, contextUnit Unit) (Dimension, error) {
	m := literalRe.FindStringSubmatch(text)
	if m == nil {
		return Dimension{}, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Dimension{}, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}
	token := strings.TrimSpace(m[2])
	if token == "" {
		return Dimension{raw: value, unit: contextUnit}, nil
	}
	unit, err := ParseUnit(token)
	if err != nil {
		return Dimension{}, err
	}
	return Dimension{raw: value, unit: unit}, nil
}
