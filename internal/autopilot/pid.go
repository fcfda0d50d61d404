package autopilot

import (
	"fmt"

	"github.com/san-kum/usvsim/internal/marine"
)

// CourseAutopilot is a PID control law with Nomoto feedforward. Gains
// come from pole placement on the first-order Nomoto yaw model
// (time constant T, gain K) against a desired closed-loop natural
// frequency and damping; they are derived once at construction.
type CourseAutopilot struct {
	T float64
	K float64

	kp float64
	td float64
	ti float64

	// fixed surge-force command; the autopilot only shapes yaw
	SurgeForce float64

	h        float64
	integral float64
}

type Gains struct {
	NomotoT    float64
	NomotoK    float64
	Wn         float64
	Zeta       float64
	SurgeForce float64
	SampleTime float64
}

func NewCourseAutopilot(g Gains) (*CourseAutopilot, error) {
	if g.NomotoK == 0 {
		return nil, fmt.Errorf("nomoto gain must be nonzero")
	}
	if g.Wn <= 0 {
		return nil, fmt.Errorf("natural frequency must be positive, got %f", g.Wn)
	}
	kp := g.NomotoT / g.NomotoK * g.Wn * g.Wn
	kd := (2*g.Zeta*g.Wn*g.NomotoT - 1) / g.NomotoK
	return &CourseAutopilot{
		T:          g.NomotoT,
		K:          g.NomotoK,
		kp:         kp,
		td:         kd / kp,
		ti:         10.0 / g.Wn,
		SurgeForce: g.SurgeForce,
		h:          g.SampleTime,
	}, nil
}

// Command computes the (surge force, yaw moment) pair from the latest
// estimate and the reference trajectory. The integral state is the one
// accumulated through the previous tick; Accumulate must be called
// afterwards, never before.
func (a *CourseAutopilot) Command(est marine.Estimate, ref *ReferenceModel) (tauX, tauN float64) {
	e := marine.Wrap(est.Course - ref.Course())
	edot := est.CourseRate - ref.Rate()

	ff := a.T/a.K*ref.Accel() + ref.Rate()/a.K
	fb := -a.kp * (e + a.td*edot + a.integral/a.ti)

	return a.SurgeForce, ff + fb
}

// Accumulate integrates the wrapped course tracking error.
func (a *CourseAutopilot) Accumulate(est marine.Estimate, desiredCourse float64) {
	a.integral += a.h * marine.Wrap(est.Course-desiredCourse)
}

// Integral exposes the accumulated error state for logging and tests.
func (a *CourseAutopilot) Integral() float64 { return a.integral }

func (a *CourseAutopilot) Reset() { a.integral = 0 }
