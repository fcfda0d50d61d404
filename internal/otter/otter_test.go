package otter

import (
	"math"
	"testing"

	"github.com/san-kum/usvsim/internal/marine"
)

func TestStateDim(t *testing.T) {
	o := New()
	if o.StateDim() != marine.StateDim {
		t.Errorf("expected state dim %d, got %d", marine.StateDim, o.StateDim())
	}
}

func TestRestEquilibrium(t *testing.T) {
	o := New()
	dx := o.Derivative(marine.NewState(), [2]float64{}, 0)

	for i, v := range dx {
		if v != 0 {
			t.Errorf("derivative[%d] should be 0 at rest with no thrust, got %f", i, v)
		}
	}
}

func TestThrustAccelerates(t *testing.T) {
	o := New()
	dx := o.Derivative(marine.NewState(), [2]float64{10, 10}, 0)

	if dx[marine.StateSurge] <= 0 {
		t.Errorf("equal forward thrust should accelerate surge, got %f", dx[marine.StateSurge])
	}
	if dx[marine.StateYaw] != 0 {
		t.Errorf("equal thrust should produce no yaw, got %f", dx[marine.StateYaw])
	}
}

func TestDifferentialThrustYaws(t *testing.T) {
	o := New()
	// port faster than starboard turns to starboard (positive yaw)
	dx := o.Derivative(marine.NewState(), [2]float64{10, -10}, 0)

	if dx[marine.StateYaw] <= 0 {
		t.Errorf("port-heavy thrust should yaw positive, got %f", dx[marine.StateYaw])
	}
	if dx[marine.StateSurge] != 0 {
		t.Errorf("opposed thrust should cancel surge, got %f", dx[marine.StateSurge])
	}
}

func TestThrustQuadratic(t *testing.T) {
	o := New()
	lo := o.Derivative(marine.NewState(), [2]float64{1, 1}, 0)
	hi := o.Derivative(marine.NewState(), [2]float64{2, 2}, 0)

	ratio := hi[marine.StateSurge] / lo[marine.StateSurge]
	if math.Abs(ratio-4) > 1e-9 {
		t.Errorf("T = k n|n| should quadruple with doubled speed, got ratio %f", ratio)
	}
}

func TestCurrentDrag(t *testing.T) {
	o := New()
	o.CurrentSpeed = 0.5
	o.CurrentDir = 0 // setting north, vessel heading north at rest

	dx := o.Derivative(marine.NewState(), [2]float64{}, 0)
	if dx[marine.StateSurge] <= 0 {
		t.Errorf("a following current should drag the hull forward, got %f", dx[marine.StateSurge])
	}
}

func TestDampingOpposesMotion(t *testing.T) {
	o := New()
	x := marine.NewState()
	x[marine.StateSurge] = 2.0
	x[marine.StateYaw] = 0.5

	dx := o.Derivative(x, [2]float64{}, 0)
	if dx[marine.StateSurge] >= 0 {
		t.Errorf("surge damping should decelerate, got %f", dx[marine.StateSurge])
	}
	if dx[marine.StateYaw] >= 0 {
		t.Errorf("yaw damping should decelerate, got %f", dx[marine.StateYaw])
	}
}

func TestRestoringSprings(t *testing.T) {
	o := New()
	x := marine.NewState()
	x[marine.StateDown] = 0.1
	x[marine.StatePhi] = 0.1
	x[marine.StateTheta] = 0.1

	dx := o.Derivative(x, [2]float64{}, 0)
	if dx[marine.StateHeave] >= 0 {
		t.Error("heave spring should push back toward equilibrium")
	}
	if dx[marine.StateRoll] >= 0 {
		t.Error("roll spring should push back toward equilibrium")
	}
	if dx[marine.StatePitch] >= 0 {
		t.Error("pitch spring should push back toward equilibrium")
	}
}

func TestKinematicsHeadingEast(t *testing.T) {
	o := New()
	x := marine.NewState()
	x[marine.StateSurge] = 1.0
	x[marine.StatePsi] = math.Pi / 2

	dx := o.Derivative(x, [2]float64{}, 0)
	if math.Abs(dx[marine.StateNorth]) > 1e-12 {
		t.Errorf("heading east, north rate should be 0, got %f", dx[marine.StateNorth])
	}
	if math.Abs(dx[marine.StateEast]-1.0) > 1e-12 {
		t.Errorf("heading east at 1 m/s, east rate should be 1, got %f", dx[marine.StateEast])
	}
}

func TestPayloadRaisesInertia(t *testing.T) {
	bare := New()
	bare.PayloadMass = 0
	loaded := New()

	x := marine.NewState()
	dxBare := bare.Derivative(x, [2]float64{10, 10}, 0)
	dxLoaded := loaded.Derivative(x, [2]float64{10, 10}, 0)

	if dxLoaded[marine.StateSurge] >= dxBare[marine.StateSurge] {
		t.Error("payload should reduce surge acceleration for the same thrust")
	}
}

func TestSetParam(t *testing.T) {
	o := New()
	if err := o.SetParam("payload_mass", 10); err != nil {
		t.Fatal(err)
	}
	if o.PayloadMass != 10 {
		t.Errorf("expected payload mass 10, got %f", o.PayloadMass)
	}
	if err := o.SetParam("bogus", 1); err == nil {
		t.Error("expected error for unknown param")
	}
	if o.GetParams()["payload_mass"] != 10 {
		t.Error("GetParams should reflect the update")
	}
}
