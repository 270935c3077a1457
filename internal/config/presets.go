package config

import "sort"

// Presets build named starting configurations. Each call returns a fresh
// Config so callers can modify it freely.
var Presets = map[string]func() *Config{
	"nominal": DefaultConfig,
	"rod_withdrawal": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "rod_withdrawal"
		cfg.InitState.RodInsertion = 0.0
		cfg.Duration = 30.0
		return cfg
	},
	"void_excursion": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "void_excursion"
		cfg.InitState.VaporFraction = 1.0
		cfg.InitState.RodInsertion = 0.0
		cfg.Duration = 10.0
		cfg.SampleEvery = 10
		return cfg
	},
	"no_failures": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "no_failures"
		cfg.Failures.EmergencyCooling = false
		cfg.Failures.EmergencyPower = false
		cfg.InitState.RodInsertion = 1.0
		cfg.Design.VoidCoefficient = 0
		cfg.Duration = 200.0
		cfg.Speed = 2.0
		cfg.Dt = 0.01
		return cfg
	},
	"long_run": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "long_run"
		cfg.InitState.RodInsertion = 1.0
		cfg.Design.VoidCoefficient = 0
		cfg.Duration = 200.0
		cfg.Speed = 2.0
		cfg.Dt = 0.01
		cfg.SampleEvery = 500
		return cfg
	},
}

func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
