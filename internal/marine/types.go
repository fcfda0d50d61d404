package marine

import (
	"fmt"
	"math"
)

// State is the 12-element vessel state: body-fixed velocities
// [u v w p q r] followed by pose [x y z phi theta psi] (NED positions,
// Euler angles).
type State []float64

// Indices into State.
const (
	StateSurge = iota // u, forward velocity
	StateSway         // v, lateral velocity
	StateHeave        // w, vertical velocity
	StateRoll         // p, roll rate
	StatePitch        // q, pitch rate
	StateYaw          // r, yaw rate
	StateNorth        // x, north position
	StateEast         // y, east position
	StateDown         // z, down position
	StatePhi          // roll angle
	StateTheta        // pitch angle
	StatePsi          // yaw (heading) angle
)

// StateDim is the dimension of a full vessel state.
const StateDim = 12

func NewState() State {
	return make(State, StateDim)
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Estimate is the navigation filter output: position over ground plus
// speed, course, and course rate.
type Estimate struct {
	North      float64
	East       float64
	Speed      float64
	Course     float64
	CourseRate float64
}

// Vessel produces a state derivative from the current state and the
// actual propeller speeds. Environment (payload, current) is fixed per
// run and owned by the implementation.
type Vessel interface {
	Derivative(x State, prop [2]float64, t float64) State
	StateDim() int
}

// Estimator maintains a navigation estimate from periodic position
// fixes. Implementations carry internal filter state across calls and
// must be Reset before an independent run.
type Estimator interface {
	Update(north, east float64) Estimate
	Reset()
}

// Tick is what the driver hands to observers and metrics once per step.
type Tick struct {
	T             float64
	X             State
	Est           Estimate
	Prop          [2]float64
	DesiredCourse float64
	SurgeForce    float64
	YawMoment     float64
}

type Observer interface {
	OnTick(tk Tick)
}

type Metric interface {
	Name() string
	Observe(tk Tick)
	Value() float64
	Reset()
}

// Configurable exposes tunable model parameters for per-run overrides.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// ApplyParams sets each named parameter, failing on the first unknown
// name.
func ApplyParams(c Configurable, params map[string]float64) error {
	for name, value := range params {
		if err := c.SetParam(name, value); err != nil {
			return err
		}
	}
	return nil
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
