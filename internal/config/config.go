// Package config defines the run configuration: every scalar the
// simulation reads, yaml-serializable, with defaults and presets.
// All values are read-only once the run starts.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/usvsim/internal/actuator"
	"github.com/san-kum/usvsim/internal/allocation"
	"github.com/san-kum/usvsim/internal/autopilot"
	"github.com/san-kum/usvsim/internal/marine"
	"github.com/san-kum/usvsim/internal/observer"
	"github.com/san-kum/usvsim/internal/otter"
	"github.com/san-kum/usvsim/internal/sim"
)

type Config struct {
	Dt         float64 `yaml:"dt"`
	Steps      int     `yaml:"steps"`
	Decimation int     `yaml:"decimation"`

	Nomoto    NomotoConfig    `yaml:"nomoto"`
	Pole      PoleConfig      `yaml:"pole_placement"`
	Reference ReferenceConfig `yaml:"reference"`

	SurgeForce         float64       `yaml:"surge_force"`
	PropellerTimeConst float64       `yaml:"propeller_time_const"`
	Allocation         [2][2]float64 `yaml:"allocation"`

	Payload PayloadConfig `yaml:"payload"`
	Current CurrentConfig `yaml:"current"`
	EKF     EKFConfig     `yaml:"ekf"`

	Setpoint SetpointConfig `yaml:"setpoint"`

	// model parameter overrides, resolved through marine.Configurable
	Params map[string]float64 `yaml:"model_params"`
}

type NomotoConfig struct {
	T float64 `yaml:"t"`
	K float64 `yaml:"k"`
}

type PoleConfig struct {
	Wn   float64 `yaml:"wn"`
	Zeta float64 `yaml:"zeta"`
}

type ReferenceConfig struct {
	Wn   float64 `yaml:"wn"`
	Zeta float64 `yaml:"zeta"`
}

type PayloadConfig struct {
	Mass float64 `yaml:"mass"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Z    float64 `yaml:"z"`
}

type CurrentConfig struct {
	Speed        float64 `yaml:"speed"`
	DirectionDeg float64 `yaml:"direction_deg"`
}

type EKFConfig struct {
	SpeedNoise    float64 `yaml:"speed_noise"`
	RateNoise     float64 `yaml:"rate_noise"`
	PositionNoise float64 `yaml:"position_noise"`
}

type SetpointConfig struct {
	StepDeg    float64 `yaml:"step_deg"`
	SwitchTime float64 `yaml:"switch_time"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:                 0.02,
		Steps:              2000,
		Decimation:         10,
		Nomoto:             NomotoConfig{T: 1.0, K: 0.3},
		Pole:               PoleConfig{Wn: 1.5, Zeta: 1.0},
		Reference:          ReferenceConfig{Wn: 0.5, Zeta: 1.0},
		SurgeForce:         100.0,
		PropellerTimeConst: 0.1,
		// B = k*[1 1; l -l] for thrust coefficient k=2, offset 0.395 m
		Allocation: [2][2]float64{{2, 2}, {0.79, -0.79}},
		Payload:    PayloadConfig{Mass: 25.0, X: 0.05, Z: -0.35},
		EKF:        EKFConfig{SpeedNoise: 100.0, RateNoise: 10.0, PositionNoise: 0.1},
		Setpoint:   SetpointConfig{StepDeg: 20.0, SwitchTime: 20.0},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BuildVessel instantiates the otter model with this run's payload and
// current.
func (c *Config) BuildVessel() *otter.Otter {
	v := otter.New()
	v.PayloadMass = c.Payload.Mass
	v.PayloadPos = [3]float64{c.Payload.X, c.Payload.Y, c.Payload.Z}
	v.CurrentSpeed = c.Current.Speed
	v.CurrentDir = marine.Deg2Rad(c.Current.DirectionDeg)
	return v
}

// BuildRunner wires the full closed loop from the configuration.
// Fails on invalid gains or a singular allocation matrix.
func (c *Config) BuildRunner() (*sim.Runner, sim.Config, error) {
	pilot, err := autopilot.NewCourseAutopilot(autopilot.Gains{
		NomotoT:    c.Nomoto.T,
		NomotoK:    c.Nomoto.K,
		Wn:         c.Pole.Wn,
		Zeta:       c.Pole.Zeta,
		SurgeForce: c.SurgeForce,
		SampleTime: c.Dt,
	})
	if err != nil {
		return nil, sim.Config{}, err
	}

	alloc, err := allocation.New(c.Allocation)
	if err != nil {
		return nil, sim.Config{}, err
	}

	est := observer.New(observer.Config{
		SampleTime:    c.Dt,
		Decimation:    c.Decimation,
		SpeedNoise:    c.EKF.SpeedNoise,
		RateNoise:     c.EKF.RateNoise,
		PositionNoise: c.EKF.PositionNoise,
	})

	ref := autopilot.NewReferenceModel(c.Reference.Wn, c.Reference.Zeta, c.Dt)
	props := actuator.NewPropellers(c.PropellerTimeConst, c.Dt)

	vessel := c.BuildVessel()
	if err := marine.ApplyParams(vessel, c.Params); err != nil {
		return nil, sim.Config{}, err
	}

	runner := sim.New(vessel, est, pilot, ref, alloc, props)
	simCfg := sim.Config{
		SampleTime: c.Dt,
		Steps:      c.Steps,
		Setpoint:   sim.StepSetpoint(marine.Deg2Rad(c.Setpoint.StepDeg), c.Setpoint.SwitchTime),
	}
	return runner, simCfg, nil
}
