package units

import (
	"errors"
	"math"
	"testing"
)

func TestParse_Table(t *testing.T) {
	cases := []struct {
		in      string
		context Unit
		want    float64
		unit    Unit
	}{
		{`10"`, Millimeter, 10, Inch},
		{"10 in", Millimeter, 10, Inch},
		{"2 inches", Millimeter, 2, Inch},
		{"3.5mm", Inch, 3.5, Millimeter},
		{"12 millimeters", Inch, 12, Millimeter},
		{"7 cm", Inch, 7, Centimeter},
		{"0.25 m", Inch, 0.25, Meter},
		{"1.5 Meters", Inch, 1.5, Meter},
		{"42", Centimeter, 42, Centimeter},
		{"  -3.2 mm ", Inch, -3.2, Millimeter},
		{"1e2 mm", Inch, 100, Millimeter},
	}
	for _, tc := range cases {
		d, err := Parse(tc.in, tc.context)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if d.Raw() != tc.want || d.Unit() != tc.unit {
			t.Fatalf("Parse(%q) = %v %v, want %v %v", tc.in, d.Raw(), d.Unit(), tc.want, tc.unit)
		}
	}
}

func TestParse_NoLiteral(t *testing.T) {
	for _, in := range []string{"", "abc", "mm 10", "roughly five"} {
		if _, err := Parse(in, Meter); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("Parse(%q): want ErrInvalidFormat, got %v", in, err)
		}
	}
}

func TestParse_UnknownUnit(t *testing.T) {
	if _, err := Parse("10 furlongs", Meter); !errors.Is(err, ErrUnknownUnit) {
		t.Fatalf("want ErrUnknownUnit, got %v", err)
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	inputs := []string{"10 in", "3.5 mm", "7 cm", "0.125 m", `2"`}
	targets := []Unit{Inch, Millimeter, Centimeter, Meter}
	for _, in := range inputs {
		d, err := Parse(in, Meter)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		for _, u := range targets {
			back := d.ConvertTo(u).ConvertTo(d.Unit())
			if math.Abs(back.Raw()-d.Raw()) > 1e-12 {
				t.Fatalf("%q via %v: got %v, want %v", in, u, back.Raw(), d.Raw())
			}
		}
	}
}

func TestConvert_SameUnitIsNoop(t *testing.T) {
	d := New(12.34, Centimeter)
	if got := d.ConvertTo(Centimeter); got != d {
		t.Fatalf("same-unit conversion changed value: %v", got)
	}
}

func TestBaseMeters(t *testing.T) {
	cases := []struct {
		d    Dimension
		want float64
	}{
		{New(2, Inch), 0.0508},
		{New(1000, Millimeter), 1},
		{New(100, Centimeter), 1},
		{New(1.5, Meter), 1.5},
	}
	for _, tc := range cases {
		if got := tc.d.BaseMeters(); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("%v.BaseMeters() = %v, want %v", tc.d, got, tc.want)
		}
	}
}

func TestAddSub_KeepsDisplayUnit(t *testing.T) {
	a := New(1, Inch)
	b := New(25.4, Millimeter)
	sum := a.Add(b)
	if sum.Unit() != Inch || math.Abs(sum.Raw()-2) > 1e-12 {
		t.Fatalf("Add = %v, want 2 in", sum)
	}
	diff := a.Sub(b)
	if diff.Unit() != Inch || math.Abs(diff.Raw()) > 1e-12 {
		t.Fatalf("Sub = %v, want 0 in", diff)
	}
}

func TestRepeatedConversion_NoDrift(t *testing.T) {
	d := New(17, Inch)
	cur := d
	for i := 0; i < 1000; i++ {
		cur = cur.ConvertTo(Millimeter).ConvertTo(Centimeter).ConvertTo(Meter).ConvertTo(Inch)
	}
	if math.Abs(cur.Raw()-17) > 1e-9 {
		t.Fatalf("drift after repeated conversions: %v", cur.Raw())
	}
}
