package config

// Presets are named scenarios. "step" is the nominal 20-degree course
// step; "calm" is the zero-input case (no setpoint, no surge force,
// no current); "current" repeats the step with a crossflow current.
var Presets = map[string]func() *Config{
	"step": DefaultConfig,
	"calm": func() *Config {
		cfg := DefaultConfig()
		cfg.Setpoint.StepDeg = 0
		cfg.SurgeForce = 0
		cfg.Current = CurrentConfig{}
		return cfg
	},
	"current": func() *Config {
		cfg := DefaultConfig()
		cfg.Current = CurrentConfig{Speed: 0.3, DirectionDeg: 30}
		return cfg
	},
}

func GetPreset(name string) *Config {
	f, ok := Presets[name]
	if !ok {
		return nil
	}
	return f()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
