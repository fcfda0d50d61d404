package metrics

import (
	"math"

	"github.com/san-kum/usvsim/internal/marine"
)

// CourseRMS is the root-mean-square wrapped error between the
// estimated course and the desired course trajectory.
type CourseRMS struct {
	sumsq   float64
	samples int
}

func NewCourseRMS() *CourseRMS {
	return &CourseRMS{}
}

func (c *CourseRMS) Name() string { return "course_rms" }

func (c *CourseRMS) Observe(tk marine.Tick) {
	e := marine.Wrap(tk.Est.Course - tk.DesiredCourse)
	c.sumsq += e * e
	c.samples++
}

func (c *CourseRMS) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return math.Sqrt(c.sumsq / float64(c.samples))
}

func (c *CourseRMS) Reset() {
	c.sumsq = 0
	c.samples = 0
}
