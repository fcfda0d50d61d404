// Package otter implements a 6-DOF maneuvering model of a small
// twin-propeller catamaran USV. Hydrodynamic forces act on the
// velocity relative to the water; position kinematics use the
// ground-fixed velocity, so an ambient current produces drift.
package otter

import (
	"fmt"
	"math"

	"github.com/san-kum/usvsim/internal/marine"
)

type Otter struct {
	// Hull
	Mass   float64 // hull mass without payload (kg)
	Length float64
	Beam   float64

	// Payload, rigidly mounted at PayloadPos (body frame, m)
	PayloadMass float64
	PayloadPos  [3]float64

	// Ambient current (ground-fixed speed and direction)
	CurrentSpeed float64
	CurrentDir   float64

	// Added mass
	Xudot, Yvdot, Zwdot float64
	Kpdot, Mqdot, Nrdot float64

	// Linear and quadratic damping
	Xu, Yv, Zw, Kp, Mq, Nr float64
	Xuu, Yvv, Nrr          float64

	// Restoring springs (heave, roll, pitch)
	Zz, Kphi, Mtheta float64

	// Propulsion: thrust T = ThrustCoeff * n * |n|, propellers mounted
	// at lateral offset +-PropOffset from the centerline (port first).
	ThrustCoeff float64
	PropOffset  float64
}

// New returns the model with the nominal hull coefficients.
func New() *Otter {
	return &Otter{
		Mass:        55.0,
		Length:      2.0,
		Beam:        1.08,
		PayloadMass: 25.0,
		PayloadPos:  [3]float64{0.05, 0, -0.35},
		Xudot:       5.5,
		Yvdot:       82.5,
		Zwdot:       55.0,
		Kpdot:       3.0,
		Mqdot:       12.0,
		Nrdot:       20.0,
		Xu:          20.0,
		Yv:          100.0,
		Zw:          500.0,
		Kp:          50.0,
		Mq:          120.0,
		Nr:          80.0,
		Xuu:         5.0,
		Yvv:         100.0,
		Nrr:         30.0,
		Zz:          5000.0,
		Kphi:        280.0,
		Mtheta:      870.0,
		ThrustCoeff: 2.0,
		PropOffset:  0.395,
	}
}

func (o *Otter) StateDim() int { return marine.StateDim }

// massProps returns total mass and the moments of inertia including the
// payload via the parallel-axis theorem.
func (o *Otter) massProps() (m, ix, iy, iz float64) {
	m = o.Mass + o.PayloadMass
	// slender-box approximation for the bare hull
	ix = o.Mass * (o.Beam / 2) * (o.Beam / 2) * 0.4
	iy = o.Mass * (o.Length / 2) * (o.Length / 2) * 0.25
	iz = o.Mass * (o.Length / 2) * (o.Length / 2) * 0.3
	px, py, pz := o.PayloadPos[0], o.PayloadPos[1], o.PayloadPos[2]
	ix += o.PayloadMass * (py*py + pz*pz)
	iy += o.PayloadMass * (px*px + pz*pz)
	iz += o.PayloadMass * (px*px + py*py)
	return m, ix, iy, iz
}

func (o *Otter) Derivative(x marine.State, prop [2]float64, t float64) marine.State {
	u, v, w := x[marine.StateSurge], x[marine.StateSway], x[marine.StateHeave]
	p, q, r := x[marine.StateRoll], x[marine.StatePitch], x[marine.StateYaw]
	z := x[marine.StateDown]
	phi, theta, psi := x[marine.StatePhi], x[marine.StateTheta], x[marine.StatePsi]

	m, ix, iy, iz := o.massProps()

	// current in body frame; hydrodynamic forces see relative velocity
	uc := o.CurrentSpeed * math.Cos(o.CurrentDir-psi)
	vc := o.CurrentSpeed * math.Sin(o.CurrentDir-psi)
	ur := u - uc
	vr := v - vc

	// propeller thrust and yaw moment (port prop at y = -PropOffset)
	t1 := o.ThrustCoeff * prop[0] * math.Abs(prop[0])
	t2 := o.ThrustCoeff * prop[1] * math.Abs(prop[1])
	tauX := t1 + t2
	tauN := o.PropOffset * (t1 - t2)

	udot := (tauX - (o.Xu+o.Xuu*math.Abs(ur))*ur + m*v*r) / (m + o.Xudot)
	vdot := (-(o.Yv+o.Yvv*math.Abs(vr))*vr - m*u*r) / (m + o.Yvdot)
	wdot := (-o.Zw*w - o.Zz*z) / (m + o.Zwdot)
	pdot := (-o.Kp*p - o.Kphi*phi) / (ix + o.Kpdot)
	qdot := (-o.Mq*q - o.Mtheta*theta) / (iy + o.Mqdot)
	rdot := (tauN - (o.Nr+o.Nrr*math.Abs(r))*r) / (iz + o.Nrdot)

	sphi, cphi := math.Sin(phi), math.Cos(phi)
	sth, cth := math.Sin(theta), math.Cos(theta)
	spsi, cpsi := math.Sin(psi), math.Cos(psi)

	xdot := cpsi*cth*u + (cpsi*sth*sphi-spsi*cphi)*v + (cpsi*sth*cphi+spsi*sphi)*w
	ydot := spsi*cth*u + (spsi*sth*sphi+cpsi*cphi)*v + (spsi*sth*cphi-cpsi*sphi)*w
	zdot := -sth*u + cth*sphi*v + cth*cphi*w

	tth := math.Tan(theta)
	phidot := p + sphi*tth*q + cphi*tth*r
	thetadot := cphi*q - sphi*r
	psidot := (sphi/cth)*q + (cphi/cth)*r

	return marine.State{
		udot, vdot, wdot, pdot, qdot, rdot,
		xdot, ydot, zdot, phidot, thetadot, psidot,
	}
}

func (o *Otter) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":          o.Mass,
		"payload_mass":  o.PayloadMass,
		"current_speed": o.CurrentSpeed,
		"current_dir":   o.CurrentDir,
		"thrust_coeff":  o.ThrustCoeff,
	}
}

func (o *Otter) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		o.Mass = value
	case "payload_mass":
		o.PayloadMass = value
	case "current_speed":
		o.CurrentSpeed = value
	case "current_dir":
		o.CurrentDir = value
	case "thrust_coeff":
		o.ThrustCoeff = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
