// Package sim owns the closed-loop time stepping: autopilot,
// allocation, actuator, vessel, and estimator sequenced in a fixed
// order each tick, with a pre-sized log of every tick.
package sim

import (
	"fmt"

	"github.com/san-kum/usvsim/internal/actuator"
	"github.com/san-kum/usvsim/internal/allocation"
	"github.com/san-kum/usvsim/internal/autopilot"
	"github.com/san-kum/usvsim/internal/marine"
)

// NumColumns is the fixed log width: time, 12 state components,
// 5 estimate components, 2 propeller speeds.
const NumColumns = 1 + marine.StateDim + 5 + 2

// Columns returns the log header, index-aligned with each row.
func Columns() []string {
	return []string{
		"time",
		"u", "v", "w", "p", "q", "r",
		"x", "y", "z", "phi", "theta", "psi",
		"x_hat", "y_hat", "U_hat", "chi_hat", "omega_hat",
		"n1", "n2",
	}
}

type Config struct {
	SampleTime float64
	Steps      int // the loop always runs Steps+1 ticks
	Setpoint   func(t float64) float64
}

// StepSetpoint returns the classic step scenario: amplitude until
// switchTime, zero afterwards.
func StepSetpoint(amplitude, switchTime float64) func(t float64) float64 {
	return func(t float64) float64 {
		if t < switchTime {
			return amplitude
		}
		return 0
	}
}

type Result struct {
	Log     [][]float64 // (Steps+1) x NumColumns, write-once per row
	Metrics map[string]float64
}

func (r *Result) Times() []float64 { return r.Series(0) }

// Series extracts one log column as a time series.
func (r *Result) Series(col int) []float64 {
	out := make([]float64, len(r.Log))
	for i, row := range r.Log {
		out[i] = row[col]
	}
	return out
}

type Runner struct {
	vessel    marine.Vessel
	estimator marine.Estimator
	pilot     *autopilot.CourseAutopilot
	ref       *autopilot.ReferenceModel
	alloc     *allocation.Allocator
	props     *actuator.Propellers
	metrics   []marine.Metric
	observers []marine.Observer
}

func New(vessel marine.Vessel, est marine.Estimator, pilot *autopilot.CourseAutopilot,
	ref *autopilot.ReferenceModel, alloc *allocation.Allocator, props *actuator.Propellers) *Runner {
	return &Runner{
		vessel:    vessel,
		estimator: est,
		pilot:     pilot,
		ref:       ref,
		alloc:     alloc,
		props:     props,
	}
}

func (r *Runner) AddMetric(m marine.Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o marine.Observer) { r.observers = append(r.observers, o) }

// Run executes one deterministic pass of Steps+1 ticks. All loop state
// (vessel, estimator, reference, integral, propellers) is reset first,
// so back-to-back runs are independent.
//
// The per-tick order is load-bearing: the command uses the previous
// tick's estimate and the pre-update integral; the log row records
// pre-integration state; the estimator sees the current true position;
// then vessel, integral, propellers, and reference advance, each from
// pre-update values of the others.
func (r *Runner) Run(cfg Config) (*Result, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	r.estimator.Reset()
	r.pilot.Reset()
	r.ref.Reset()
	r.props.Reset()
	for _, m := range r.metrics {
		m.Reset()
	}

	h := cfg.SampleTime
	x := marine.NewState()
	var est marine.Estimate

	log := make([][]float64, cfg.Steps+1)

	for i := 0; i <= cfg.Steps; i++ {
		t := float64(i) * h
		sp := cfg.Setpoint(t)

		tauX, tauN := r.pilot.Command(est, r.ref)
		cmd := r.alloc.Allocate(tauX, tauN)

		log[i] = logRow(t, x, est, r.props.Speeds())

		if len(r.metrics) > 0 || len(r.observers) > 0 {
			tk := marine.Tick{
				T:             t,
				X:             x.Clone(),
				Est:           est,
				Prop:          r.props.Speeds(),
				DesiredCourse: r.ref.Course(),
				SurgeForce:    tauX,
				YawMoment:     tauN,
			}
			for _, m := range r.metrics {
				m.Observe(tk)
			}
			for _, o := range r.observers {
				o.OnTick(tk)
			}
		}

		// the true position doubles as the (noiseless) position fix
		est = r.estimator.Update(x[marine.StateNorth], x[marine.StateEast])

		dx := r.vessel.Derivative(x, r.props.Speeds(), t)
		for j := range x {
			x[j] += h * dx[j]
		}
		if !x.IsValid() {
			return nil, marine.SimError{Time: t, Step: i, Message: "state is not finite"}
		}

		desired := r.ref.Course()
		r.pilot.Accumulate(est, desired)
		r.props.Step(cmd)
		r.ref.Step(sp)
	}

	res := &Result{Log: log, Metrics: make(map[string]float64, len(r.metrics))}
	for _, m := range r.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res, nil
}

func validate(cfg Config) error {
	if cfg.SampleTime <= 0 {
		return fmt.Errorf("sample time must be positive, got %f", cfg.SampleTime)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("step count must be positive, got %d", cfg.Steps)
	}
	if cfg.Setpoint == nil {
		return fmt.Errorf("setpoint function is required")
	}
	return nil
}

func logRow(t float64, x marine.State, est marine.Estimate, prop [2]float64) []float64 {
	row := make([]float64, 0, NumColumns)
	row = append(row, t)
	row = append(row, x...)
	row = append(row, est.North, est.East, est.Speed, est.Course, est.CourseRate)
	row = append(row, prop[0], prop[1])
	return row
}
