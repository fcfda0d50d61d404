package autopilot

import "github.com/san-kum/usvsim/internal/marine"

// ReferenceModel shapes a piecewise-constant course setpoint into a
// smooth desired course trajectory with rate and acceleration, via a
// critically-tuned third-order low-pass chain.
type ReferenceModel struct {
	Wn   float64
	Zeta float64

	h      float64
	course float64
	rate   float64
	accel  float64
}

func NewReferenceModel(wn, zeta, sampleTime float64) *ReferenceModel {
	return &ReferenceModel{Wn: wn, Zeta: zeta, h: sampleTime}
}

func (r *ReferenceModel) Course() float64 { return r.course }
func (r *ReferenceModel) Rate() float64   { return r.rate }
func (r *ReferenceModel) Accel() float64  { return r.accel }

// Jerk evaluates the third derivative for the current reference state
// and setpoint without advancing the model.
func (r *ReferenceModel) Jerk(setpoint float64) float64 {
	e := marine.Wrap(setpoint - r.course)
	k := 2*r.Zeta + 1
	return r.Wn*r.Wn*r.Wn*e - k*r.Wn*r.Wn*r.rate - k*r.Wn*r.accel
}

// Step advances the reference state one sample by explicit Euler, all
// three integrations using pre-update values.
func (r *ReferenceModel) Step(setpoint float64) {
	j := r.Jerk(setpoint)
	course := r.course + r.h*r.rate
	rate := r.rate + r.h*r.accel
	accel := r.accel + r.h*j
	r.course, r.rate, r.accel = course, rate, accel
}

func (r *ReferenceModel) Reset() {
	r.course, r.rate, r.accel = 0, 0, 0
}
