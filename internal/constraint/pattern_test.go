package constraint

import (
	"errors"
	"math"
	"testing"

	"cadpilot/internal/geom"
	"cadpilot/internal/units"
)

func collect(seq func(func(geom.Pose) bool)) []geom.Pose {
	var out []geom.Pose
	seq(func(p geom.Pose) bool {
		out = append(out, p)
		return true
	})
	return out
}

func TestLinear_SpacingAlongDirection(t *testing.T) {
	seq, err := Linear(4, units.New(10, units.Millimeter), geom.Vector3D{X: 1})
	if err != nil {
		t.Fatalf("Linear: %v", err)
	}
	poses := collect(seq)
	if len(poses) != 4 {
		t.Fatalf("got %d poses, want 4", len(poses))
	}
	if poses[0].Position != (geom.Point3D{}) {
		t.Fatalf("pose[0] not at origin: %+v", poses[0])
	}
	for i := 1; i < len(poses); i++ {
		dx := poses[i].Position.X - poses[i-1].Position.X
		if math.Abs(dx-0.01) > 1e-12 {
			t.Fatalf("step %d = %v, want 0.01m", i, dx)
		}
	}
}

func TestLinear_SingleInstance(t *testing.T) {
	seq, err := Linear(1, units.New(5, units.Inch), geom.Vector3D{Y: 1})
	if err != nil {
		t.Fatalf("Linear: %v", err)
	}
	if got := len(collect(seq)); got != 1 {
		t.Fatalf("got %d poses, want 1", got)
	}
}

func TestLinear_RejectsZeroCount(t *testing.T) {
	if _, err := Linear(0, units.New(1, units.Meter), geom.Vector3D{X: 1}); !errors.Is(err, ErrInvalidPatternCount) {
		t.Fatalf("want ErrInvalidPatternCount, got %v", err)
	}
}

func TestCircular_AngleDistribution(t *testing.T) {
	for _, tc := range []struct {
		count int
		total float64
	}{
		{2, 360}, {3, 360}, {6, 360}, {4, 180}, {5, 90},
	} {
		seq, err := Circular(tc.count, units.New(50, units.Millimeter), tc.total, false)
		if err != nil {
			t.Fatalf("Circular(%d, %v): %v", tc.count, tc.total, err)
		}
		poses := collect(seq)
		if len(poses) != tc.count {
			t.Fatalf("count=%d: got %d poses", tc.count, len(poses))
		}
		if poses[0].AngleDeg != 0 {
			t.Fatalf("first pose angle = %v, want 0", poses[0].AngleDeg)
		}
		wantLast := float64(tc.count-1) * tc.total / float64(tc.count)
		if math.Abs(poses[len(poses)-1].AngleDeg-wantLast) > 1e-9 {
			t.Fatalf("count=%d total=%v: last angle %v, want %v",
				tc.count, tc.total, poses[len(poses)-1].AngleDeg, wantLast)
		}
	}
}

func TestCircular_DefaultsTo360(t *testing.T) {
	seq, err := Circular(4, units.New(1, units.Meter), 0, false)
	if err != nil {
		t.Fatalf("Circular: %v", err)
	}
	poses := collect(seq)
	if poses[3].AngleDeg != 270 {
		t.Fatalf("last angle = %v, want 270", poses[3].AngleDeg)
	}
}

func TestCircular_ClosedEndsAtTotal(t *testing.T) {
	seq, err := Circular(5, units.New(1, units.Meter), 360, true)
	if err != nil {
		t.Fatalf("Circular: %v", err)
	}
	poses := collect(seq)
	if poses[4].AngleDeg != 360 {
		t.Fatalf("closed sweep last angle = %v, want 360", poses[4].AngleDeg)
	}
}

func TestCircular_RejectsCountBelowTwo(t *testing.T) {
	if _, err := Circular(1, units.New(1, units.Meter), 360, false); !errors.Is(err, ErrInvalidPatternCount) {
		t.Fatalf("want ErrInvalidPatternCount, got %v", err)
	}
}

func TestSequences_Restartable(t *testing.T) {
	seq, err := Circular(3, units.New(10, units.Millimeter), 360, false)
	if err != nil {
		t.Fatalf("Circular: %v", err)
	}
	// Materialize a prefix, then restart and consume fully.
	var prefix []geom.Pose
	seq(func(p geom.Pose) bool {
		prefix = append(prefix, p)
		return len(prefix) < 2
	})
	full := collect(seq)
	if len(prefix) != 2 || len(full) != 3 {
		t.Fatalf("prefix=%d full=%d, want 2 and 3", len(prefix), len(full))
	}
	if prefix[0] != full[0] || prefix[1] != full[1] {
		t.Fatalf("restarted sequence diverged")
	}
}
