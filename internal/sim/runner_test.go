package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/usvsim/internal/actuator"
	"github.com/san-kum/usvsim/internal/allocation"
	"github.com/san-kum/usvsim/internal/autopilot"
	"github.com/san-kum/usvsim/internal/marine"
	"github.com/san-kum/usvsim/internal/observer"
	"github.com/san-kum/usvsim/internal/otter"
)

const testDt = 0.02

func newTestRunner(t *testing.T, surgeForce float64) *Runner {
	t.Helper()

	pilot, err := autopilot.NewCourseAutopilot(autopilot.Gains{
		NomotoT:    1.0,
		NomotoK:    0.3,
		Wn:         1.5,
		Zeta:       1.0,
		SurgeForce: surgeForce,
		SampleTime: testDt,
	})
	if err != nil {
		t.Fatal(err)
	}

	alloc, err := allocation.New([2][2]float64{{2, 2}, {0.79, -0.79}})
	if err != nil {
		t.Fatal(err)
	}

	est := observer.New(observer.Config{
		SampleTime:    testDt,
		Decimation:    10,
		SpeedNoise:    100.0,
		RateNoise:     10.0,
		PositionNoise: 0.1,
	})

	ref := autopilot.NewReferenceModel(0.5, 1.0, testDt)
	props := actuator.NewPropellers(0.1, testDt)

	return New(otter.New(), est, pilot, ref, alloc, props)
}

func TestRunValidation(t *testing.T) {
	r := newTestRunner(t, 100)

	if _, err := r.Run(Config{SampleTime: 0, Steps: 10, Setpoint: StepSetpoint(0, 1)}); err == nil {
		t.Error("expected error for zero sample time")
	}
	if _, err := r.Run(Config{SampleTime: testDt, Steps: 0, Setpoint: StepSetpoint(0, 1)}); err == nil {
		t.Error("expected error for zero steps")
	}
	if _, err := r.Run(Config{SampleTime: testDt, Steps: 10}); err == nil {
		t.Error("expected error for missing setpoint")
	}
}

func TestRunLogShape(t *testing.T) {
	r := newTestRunner(t, 100)
	res, err := r.Run(Config{
		SampleTime: testDt,
		Steps:      50,
		Setpoint:   StepSetpoint(0.349, 20),
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Log) != 51 {
		t.Fatalf("expected 51 rows, got %d", len(res.Log))
	}
	for i, row := range res.Log {
		if len(row) != NumColumns {
			t.Fatalf("row %d: expected %d columns, got %d", i, NumColumns, len(row))
		}
		if math.Abs(row[0]-float64(i)*testDt) > 1e-12 {
			t.Fatalf("row %d: expected time %f, got %f", i, float64(i)*testDt, row[0])
		}
	}
	if len(Columns()) != NumColumns {
		t.Errorf("header has %d names for %d columns", len(Columns()), NumColumns)
	}
}

func TestRunCalmStaysAtRest(t *testing.T) {
	r := newTestRunner(t, 0)
	res, err := r.Run(Config{
		SampleTime: testDt,
		Steps:      200,
		Setpoint:   func(t float64) float64 { return 0 },
	})
	if err != nil {
		t.Fatal(err)
	}

	for i, row := range res.Log {
		for j, v := range row[1:] {
			if v != 0 {
				t.Fatalf("row %d col %d: expected exact rest, got %g", i, j+1, v)
			}
		}
	}
}

func TestRunStepScenario(t *testing.T) {
	r := newTestRunner(t, 100)
	res, err := r.Run(Config{
		SampleTime: testDt,
		Steps:      2000,
		Setpoint:   StepSetpoint(0.349, 20),
	})
	if err != nil {
		t.Fatal(err)
	}

	for i, row := range res.Log {
		if !StateFromRow(row).IsValid() {
			t.Fatalf("row %d: state diverged", i)
		}
	}

	// at the setpoint switch (t = 20s) the boat has spun up and turned
	// a good part of the way toward the 20-degree setpoint
	mid := res.Log[1000]
	if u := mid[1+marine.StateSurge]; u < 2.0 {
		t.Errorf("expected surge speed above 2 m/s at t=20s, got %f", u)
	}
	if psi := mid[1+marine.StatePsi]; psi <= 0.05 {
		t.Errorf("expected positive heading at t=20s, got %f", psi)
	}
	if chiHat := mid[16]; chiHat < 0.1 || chiHat > 0.6 {
		t.Errorf("expected course estimate near the setpoint at t=20s, got %f", chiHat)
	}
	if n1 := mid[18]; n1 <= 0 {
		t.Errorf("expected spinning propellers at t=20s, got %f", n1)
	}
}

func TestRunDeterministic(t *testing.T) {
	r := newTestRunner(t, 100)
	cfg := Config{SampleTime: testDt, Steps: 100, Setpoint: StepSetpoint(0.349, 1)}

	first, err := r.Run(cfg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Run(cfg)
	if err != nil {
		t.Fatal(err)
	}

	for i := range first.Log {
		for j := range first.Log[i] {
			if first.Log[i][j] != second.Log[i][j] {
				t.Fatalf("row %d col %d: runs diverged (%g vs %g)", i, j, first.Log[i][j], second.Log[i][j])
			}
		}
	}
}

type divergingVessel struct{}

func (divergingVessel) StateDim() int { return marine.StateDim }

func (divergingVessel) Derivative(x marine.State, prop [2]float64, t float64) marine.State {
	dx := marine.NewState()
	dx[marine.StateSurge] = math.NaN()
	return dx
}

func TestRunStopsOnDivergence(t *testing.T) {
	r := newTestRunner(t, 100)
	r.vessel = divergingVessel{}

	_, err := r.Run(Config{SampleTime: testDt, Steps: 100, Setpoint: StepSetpoint(0, 1)})
	if err == nil {
		t.Fatal("expected error for non-finite state")
	}
	var se marine.SimError
	if !errors.As(err, &se) {
		t.Fatalf("expected SimError, got %v", err)
	}
	if se.Step != 0 {
		t.Errorf("divergence should surface on the first step, got %d", se.Step)
	}
}

type countingObserver struct {
	ticks int
	last  marine.Tick
}

func (c *countingObserver) OnTick(tk marine.Tick) {
	c.ticks++
	c.last = tk
}

func TestRunObserversAndMetrics(t *testing.T) {
	r := newTestRunner(t, 100)
	obs := &countingObserver{}
	r.AddObserver(obs)

	res, err := r.Run(Config{SampleTime: testDt, Steps: 50, Setpoint: StepSetpoint(0.349, 20)})
	if err != nil {
		t.Fatal(err)
	}

	if obs.ticks != 51 {
		t.Errorf("expected 51 ticks, got %d", obs.ticks)
	}
	if obs.last.T != 50*testDt {
		t.Errorf("expected final tick at t=%f, got %f", 50*testDt, obs.last.T)
	}
	if res.Metrics == nil {
		t.Error("expected metrics map, got nil")
	}
}

func TestStepSetpoint(t *testing.T) {
	sp := StepSetpoint(0.349, 20)
	if sp(0) != 0.349 || sp(19.99) != 0.349 {
		t.Error("setpoint should hold amplitude before the switch")
	}
	if sp(20) != 0 || sp(100) != 0 {
		t.Error("setpoint should drop to zero at the switch")
	}
}

func TestSeries(t *testing.T) {
	res := &Result{Log: [][]float64{{0, 1}, {0.1, 2}, {0.2, 3}}}
	times := res.Times()
	if len(times) != 3 || times[2] != 0.2 {
		t.Errorf("unexpected times: %v", times)
	}
	s := res.Series(1)
	if s[0] != 1 || s[2] != 3 {
		t.Errorf("unexpected series: %v", s)
	}
}
