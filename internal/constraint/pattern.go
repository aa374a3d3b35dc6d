package constraint

import (
	"fmt"
	"iter"
	"math"

	"cadpilot/internal/geom"
	"cadpilot/internal/units"
)

// Linear yields count poses at i*spacing along direction for i in [0,count).
// The sequence is lazy and restartable; consumers may materialize a prefix
// and abandon the rest without side effects. count < 1 is rejected.
func Linear(count int, spacing units.Dimension, direction geom.Vector3D) (iter.Seq[geom.Pose], error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: linear pattern needs count >= 1, got %d", ErrInvalidPatternCount, count)
	}
	dir := direction.Normalize()
	step := spacing.BaseMeters()
	return func(yield func(geom.Pose) bool) {
		for i := 0; i < count; i++ {
			offset := dir.Scale(float64(i) * step)
			pose := geom.Pose{Position: geom.Point3D{}.Translate(offset)}
			if !yield(pose) {
				return
			}
		}
	}, nil
}

// Circular distributes count poses over totalAngleDeg (default 360 when
// zero). By convention the last pose does not coincide with the first:
// pose i sits at angle i*total/count. Passing closed spaces poses by
// total/(count-1) so the sweep ends exactly at totalAngleDeg. count < 2 is
// rejected.
func Circular(count int, radius units.Dimension, totalAngleDeg float64, closed bool) (iter.Seq[geom.Pose], error) {
	if count < 2 {
		return nil, fmt.Errorf("%w: circular pattern needs count >= 2, got %d", ErrInvalidPatternCount, count)
	}
	if totalAngleDeg == 0 {
		totalAngleDeg = 360
	}
	step := totalAngleDeg / float64(count)
	if closed {
		step = totalAngleDeg / float64(count-1)
	}
	r := radius.BaseMeters()
	return func(yield func(geom.Pose) bool) {
		for i := 0; i < count; i++ {
			angle := float64(i) * step
			rad := angle * math.Pi / 180
			pose := geom.Pose{
				Position: geom.Point3D{X: r * math.Cos(rad), Y: r * math.Sin(rad)},
				Axis:     geom.Vector3D{Z: 1},
				AngleDeg: angle,
			}
			if !yield(pose) {
				return
			}
		}
	}, nil
}
