package sim

import (
	"math"

	"github.com/san-kum/usvsim/internal/marine"
)

// Derived quantities for reporting; none of these feed back into the
// loop.

// SpeedOverGround is the horizontal speed sqrt(u^2 + v^2).
func SpeedOverGround(x marine.State) float64 {
	return math.Hypot(x[marine.StateSurge], x[marine.StateSway])
}

// CrabAngle is the angle between heading and course caused by lateral
// drift. Zero when the vessel is not moving.
func CrabAngle(x marine.State) float64 {
	u := SpeedOverGround(x)
	if u == 0 {
		return 0
	}
	return math.Asin(x[marine.StateSway] / u)
}

// CourseAngle is heading plus crab angle, wrapped to (-pi, pi].
func CourseAngle(x marine.State) float64 {
	return marine.Wrap(x[marine.StatePsi] + CrabAngle(x))
}

// StateFromRow rebuilds the vessel state embedded in a log row.
func StateFromRow(row []float64) marine.State {
	x := marine.NewState()
	copy(x, row[1:1+marine.StateDim])
	return x
}

// CourseSeries derives the true course angle for every log row.
func (r *Result) CourseSeries() []float64 {
	out := make([]float64, len(r.Log))
	for i, row := range r.Log {
		out[i] = CourseAngle(StateFromRow(row))
	}
	return out
}

// SpeedSeries derives speed over ground for every log row.
func (r *Result) SpeedSeries() []float64 {
	out := make([]float64, len(r.Log))
	for i, row := range r.Log {
		out[i] = SpeedOverGround(StateFromRow(row))
	}
	return out
}
